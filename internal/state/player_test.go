package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/state"
	"github.com/KirkDiggler/rpg-saga/internal/testutils"
)

func TestProfileFromAnswers(t *testing.T) {
	t.Run("full answer set matches fixture profile", func(t *testing.T) {
		p := state.ProfileFromAnswers(testutils.CreateTestAnswers())
		assert.Equal(t, testutils.CreateTestProfile(), p)
		assert.True(t, p.IsComplete())
	})

	t.Run("enums are coerced ignoring case", func(t *testing.T) {
		p := state.ProfileFromAnswers(map[string]string{
			entities.QuestionGender:           "female",
			entities.QuestionSocialPreference: "LEADERSHIP ROLE",
			entities.QuestionMoralAlignment:   "Evil",
			entities.QuestionRomanceInterest:  "yes",
		})
		assert.Equal(t, entities.GenderFemale, p.Gender)
		assert.Equal(t, entities.SocialLeadershipRole, p.SocialPreference)
		assert.Empty(t, p.MoralAlignment)
		assert.True(t, p.WantsRomance())
	})

	t.Run("partner only kept with romance", func(t *testing.T) {
		answers := testutils.CreateTestAnswers()
		answers[entities.QuestionRomanticPartner] = "Elven Lord"

		assert.Empty(t, state.ProfileFromAnswers(answers).RomanticPartner)

		answers[entities.QuestionRomanceInterest] = entities.AnswerYes
		assert.Equal(t, "Elven Lord", state.ProfileFromAnswers(answers).RomanticPartner)
	})

	t.Run("unmapped ids become additional choices", func(t *testing.T) {
		p := state.ProfileFromAnswers(map[string]string{"favoriteColor": "Blue"})
		assert.Equal(t, map[string]string{"favoriteColor": "Blue"}, p.AdditionalChoices)
	})

	t.Run("unknown romance answer leaves it unset", func(t *testing.T) {
		p := state.ProfileFromAnswers(map[string]string{entities.QuestionRomanceInterest: "Maybe"})
		assert.Nil(t, p.RomanceInterest)
	})
}

func TestPlayerStore(t *testing.T) {
	t.Run("completeness follows every mutation", func(t *testing.T) {
		store := state.NewPlayerStore()
		assert.False(t, store.IsProfileComplete())

		store.SetProfile(testutils.CreateTestProfileAtStage(testutils.StageNearlyFilled))
		assert.False(t, store.IsProfileComplete())

		store.UpdateProfile(entities.Profile{RomanceInterest: entities.BoolPtr(true)})
		assert.True(t, store.IsProfileComplete())

		store.UpdateProfile(entities.Profile{Gender: "Other"})
		assert.False(t, store.IsProfileComplete())
	})

	t.Run("profile for generation requires a valid profile", func(t *testing.T) {
		store := state.NewPlayerStore()
		_, err := store.ProfileForGeneration()
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))

		store.BuildFromAnswers(testutils.CreateTestAnswers())
		p, err := store.ProfileForGeneration()
		require.NoError(t, err)
		assert.Equal(t, testutils.TestCharacterName, p.Name)
	})

	t.Run("build from answers keeps custom answers", func(t *testing.T) {
		store := state.NewPlayerStore()
		store.UpdateProfile(entities.Profile{CustomAnswers: map[string]string{"race": "Half-Orc"}})

		store.BuildFromAnswers(map[string]string{entities.QuestionName: "Aria"})
		p := store.Profile()
		assert.Equal(t, "Aria", p.Name)
		assert.Equal(t, "Half-Orc", p.CustomAnswers["race"])
	})

	t.Run("returned profile is a copy", func(t *testing.T) {
		store := state.NewPlayerStore()
		store.SetProfile(testutils.CreateTestProfile())

		p := store.Profile()
		p.AdditionalChoices["pet"] = "Owl"
		assert.Empty(t, store.Profile().AdditionalChoices)
	})

	t.Run("restore recomputes completeness", func(t *testing.T) {
		store := state.NewPlayerStore()
		store.Restore(&entities.PlayerSnapshot{
			Profile:           testutils.CreateTestProfile(),
			IsProfileComplete: false,
		})
		assert.True(t, store.IsProfileComplete())

		store.Reset()
		assert.Equal(t, state.PlayerState{Profile: entities.Profile{
			AdditionalChoices: map[string]string{},
			CustomAnswers:     map[string]string{},
		}}, store.State())
	})
}
