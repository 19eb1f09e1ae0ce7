package idgen_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-saga/internal/pkg/idgen"
)

func TestUUIDGenerator(t *testing.T) {
	t.Run("bare uuid", func(t *testing.T) {
		id := idgen.NewUUID("").Generate()
		_, err := uuid.Parse(id)
		require.NoError(t, err)
	})

	t.Run("prefixed uuid", func(t *testing.T) {
		id := idgen.NewUUID("req").Generate()
		require.True(t, strings.HasPrefix(id, "req_"))
		_, err := uuid.Parse(strings.TrimPrefix(id, "req_"))
		require.NoError(t, err)
	})

	t.Run("unique", func(t *testing.T) {
		gen := idgen.NewUUID("req")
		assert.NotEqual(t, gen.Generate(), gen.Generate())
	})
}

func TestSequentialGenerator(t *testing.T) {
	gen := idgen.NewSequential("req")
	assert.Equal(t, "req_1", gen.Generate())
	assert.Equal(t, "req_2", gen.Generate())

	bare := idgen.NewSequential("")
	assert.Equal(t, "1", bare.Generate())
}
