package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/testutils"
)

func TestNarrativeValidate(t *testing.T) {
	t.Run("all sections present", func(t *testing.T) {
		n := testutils.CreateTestNarrative("Aria")
		assert.NoError(t, n.Validate())
	})

	t.Run("blank section rejected", func(t *testing.T) {
		n := testutils.CreateTestNarrative("Aria")
		n.PlotSetup = "   "

		err := n.Validate()
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
		assert.False(t, errors.IsRetryable(err))
		fields := errors.GetMeta(err)["validation_errors"].(map[string][]string)
		assert.Contains(t, fields, entities.SectionPlotSetup)
	})
}

func TestNarrativeFormatting(t *testing.T) {
	n := &entities.Narrative{
		CharacterIntroduction: "One two.",
		WorldDescription:      "Three.",
		PlotSetup:             "Four five six.",
		Narrative:             "Seven.",
		SuspensefulEnding:     "Eight nine.",
	}

	assert.Equal(t, "One two.\n\nThree.\n\nFour five six.\n\nSeven.\n\nEight nine.", n.Formatted())
	assert.Equal(t, 9, n.WordCount())
	assert.Len(t, entities.SectionKeys(), 5)
}
