package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
)

func TestDefaultCatalog(t *testing.T) {
	c := entities.DefaultCatalog()
	require.Len(t, c.Questions, 13)

	partner, ok := c.Question(entities.QuestionRomanticPartner)
	require.True(t, ok)
	require.NotNil(t, partner.Conditional)
	assert.Equal(t, entities.QuestionRomanceInterest, partner.Conditional.DependsOn)
	assert.Equal(t, entities.AnswerYes, partner.Conditional.Value)

	social, ok := c.Question(entities.QuestionSocialPreference)
	require.True(t, ok)
	assert.Equal(t, []string{"Solitary", "Small Groups", "Large Communities", "Leadership Role"}, social.Options)
}

func TestVisibleQuestions(t *testing.T) {
	c := entities.DefaultCatalog()

	assert.Len(t, c.Visible(map[string]string{}), 12)
	assert.Len(t, c.Visible(map[string]string{entities.QuestionRomanceInterest: "No"}), 12)
	assert.Len(t, c.Visible(map[string]string{entities.QuestionRomanceInterest: "Yes"}), 13)
}

func TestRomanticPartnerOptions(t *testing.T) {
	male := entities.RomanticPartnerOptions(entities.GenderMale)
	female := entities.RomanticPartnerOptions(entities.GenderFemale)

	assert.Contains(t, male, "Elven Maiden")
	assert.NotContains(t, male, "Elven Lord")
	assert.Contains(t, female, "Elven Lord")
	assert.NotContains(t, female, "Elven Maiden")
	assert.Nil(t, entities.RomanticPartnerOptions(""))

	male[0] = "changed"
	assert.Equal(t, "Elven Maiden", entities.RomanticPartnerOptions(entities.GenderMale)[0])
}

func TestParseCatalogRejectsBrokenInput(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"empty", "  "},
		{"not yaml", "questions: [unterminated"},
		{"missing id", "questions:\n  - text: hi\n"},
		{"duplicate id", "questions:\n  - id: a\n  - id: a\n"},
		{"forward dependency", "questions:\n  - id: a\n    conditional: {dependsOn: b, value: x}\n  - id: b\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := entities.ParseCatalog([]byte(tc.yaml))
			require.Error(t, err)
			assert.True(t, errors.IsInvalidArgument(err))
		})
	}
}

func TestValidateAnswer(t *testing.T) {
	testCases := []struct {
		name       string
		questionID string
		answer     string
		valid      bool
	}{
		{"plain name", entities.QuestionName, "Aria Moonwhisper", true},
		{"name with apostrophe", entities.QuestionName, "D'Arcy", true},
		{"name with digits", entities.QuestionName, "Aria2", false},
		{"empty name", entities.QuestionName, "", false},
		{"gender", entities.QuestionGender, "Female", true},
		{"gender lowercase", entities.QuestionGender, "female", false},
		{"romance yes", entities.QuestionRomanceInterest, "Yes", true},
		{"romance maybe", entities.QuestionRomanceInterest, "Maybe", false},
		{"custom race", entities.QuestionRace, "Half-Orc", true},
		{"race too long", entities.QuestionRace, "Abcdefghijklmnopqrstuvwxyzabcde", false},
		{"social", entities.QuestionSocialPreference, "Leadership Role", true},
		{"alignment", entities.QuestionMoralAlignment, "Evil", false},
		{"partner optional", entities.QuestionRomanticPartner, "", true},
		{"extension answer", "favoriteColor", "Blue", true},
		{"extension empty", "favoriteColor", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := entities.ValidateAnswer(tc.questionID, tc.answer)
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}
