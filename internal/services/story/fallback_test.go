package story_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rpg-saga/internal/services/story"
	"github.com/KirkDiggler/rpg-saga/internal/testutils"
	"github.com/KirkDiggler/rpg-saga/internal/testutils/builders"
)

func TestFallbackNarrative(t *testing.T) {
	t.Run("elf healer", func(t *testing.T) {
		p := testutils.CreateTestProfile()
		n := story.FallbackNarrative(p)

		assert.NoError(t, n.Validate())
		assert.Equal(t,
			"Aria stands at the threshold of adventure, a compassionate Elf healer whose journey is about to begin in ways they never imagined.",
			n.CharacterIntroduction)
		assert.Contains(t, n.WorldDescription, "The forest stretches out before Aria")
		assert.Contains(t, n.WorldDescription, "The nature energies that flow through Aria seem to resonate with this place.")
		assert.Contains(t, n.SuspensefulEnding, "echoes through the forest")
		assert.Contains(t, n.SuspensefulEnding, "it knows Aria is here.")
	})

	t.Run("no magic", func(t *testing.T) {
		p := builders.NewProfileBuilder().AsComplete().Build()
		n := story.FallbackNarrative(p)

		assert.NoError(t, n.Validate())
		assert.Contains(t, n.WorldDescription, "Though Thorn has no magical abilities, there's something about this place that feels significant.")
		assert.Contains(t, n.PlotSetup, "the experienced warrior.")
	})

	t.Run("magic affinity is lowercased", func(t *testing.T) {
		p := builders.NewProfileBuilder().AsComplete().WithMagic("Elemental").Build()
		n := story.FallbackNarrative(p)

		assert.Contains(t, n.WorldDescription, "The elemental energies that flow through Thorn seem to resonate with this place.")
	})

	t.Run("deterministic", func(t *testing.T) {
		p := testutils.CreateTestProfile()
		assert.Equal(t, story.FallbackNarrative(p), story.FallbackNarrative(p))
	})
}
