package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/state"
)

func TestUIStore(t *testing.T) {
	t.Run("navigation", func(t *testing.T) {
		store := state.NewUIStore()
		assert.Equal(t, entities.PageLanding, store.CurrentPage())

		assert.True(t, store.NavigateTo(entities.PageQuiz))
		assert.False(t, store.NavigateTo(entities.PageQuiz))
		assert.Equal(t, &entities.UISnapshot{CurrentPage: entities.PageQuiz}, store.Snapshot())
	})

	t.Run("errors and loading", func(t *testing.T) {
		store := state.NewUIStore()
		store.SetLoading(state.OpStoryGeneration, true)
		store.SetError(state.OpNetwork, "offline")
		store.SetError(state.OpStoryGeneration, "Request timeout")
		store.SetGlobalError("Something went wrong")

		assert.True(t, store.HasAnyLoading())
		assert.True(t, store.HasAnyError())
		assert.Equal(t, []string{"Something went wrong", "Request timeout", "offline"}, store.ActiveErrors())

		store.SetLoading(state.OpStoryGeneration, false)
		store.ClearAllErrors()
		assert.False(t, store.HasAnyLoading())
		assert.False(t, store.HasAnyError())
	})

	t.Run("reset and restore", func(t *testing.T) {
		store := state.NewUIStore()
		store.Restore(&entities.UISnapshot{CurrentPage: entities.PageStory})
		assert.Equal(t, entities.PageStory, store.CurrentPage())

		store.Reset()
		assert.Equal(t, entities.PageLanding, store.CurrentPage())
	})
}
