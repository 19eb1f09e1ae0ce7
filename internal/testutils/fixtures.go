package testutils

import (
	"github.com/KirkDiggler/rpg-saga/internal/entities"
)

// Profile stages for testing
const (
	StageNameOnly     = "name_only"
	StageIdentity     = "identity"
	StageNearlyFilled = "nearly_filled"
	StageComplete     = "complete"

	// TestCharacterName is the default character name for test fixtures
	TestCharacterName = "Aria"
)

// CreateTestProfile returns a complete profile without romance
func CreateTestProfile() entities.Profile {
	return entities.Profile{
		Name:                TestCharacterName,
		Gender:              entities.GenderFemale,
		Race:                "Elf",
		Specialty:           "Healer",
		Lifestyle:           "Peaceful",
		PersonalityTrait:    "Compassionate",
		FavoriteEnvironment: "Forest",
		MagicalAffinity:     "Nature",
		SocialPreference:    entities.SocialSmallGroups,
		MoralAlignment:      entities.AlignmentLawful,
		PrimaryMotivation:   "Family",
		RomanceInterest:     entities.BoolPtr(false),
		AdditionalChoices:   map[string]string{},
		CustomAnswers:       map[string]string{},
	}
}

// CreateTestProfileAtStage returns a profile filled up to stage
func CreateTestProfileAtStage(stage string) entities.Profile {
	full := CreateTestProfile()
	p := entities.Profile{AdditionalChoices: map[string]string{}, CustomAnswers: map[string]string{}}

	switch stage {
	case StageNameOnly:
		p.Name = full.Name
	case StageIdentity:
		p.Name = full.Name
		p.Gender = full.Gender
		p.Race = full.Race
	case StageNearlyFilled:
		p = full.Clone()
		p.RomanceInterest = nil
	case StageComplete:
		p = full
	}

	return p
}

// CreateTestAnswers returns quiz answers equivalent to CreateTestProfile
func CreateTestAnswers() map[string]string {
	return map[string]string{
		entities.QuestionName:                TestCharacterName,
		entities.QuestionGender:              "Female",
		entities.QuestionRace:                "Elf",
		entities.QuestionSpecialty:           "Healer",
		entities.QuestionLifestyle:           "Peaceful",
		entities.QuestionPersonalityTrait:    "Compassionate",
		entities.QuestionFavoriteEnvironment: "Forest",
		entities.QuestionMagicalAffinity:     "Nature",
		entities.QuestionSocialPreference:    "Small Groups",
		entities.QuestionMoralAlignment:      "Lawful",
		entities.QuestionPrimaryMotivation:   "Family",
		entities.QuestionRomanceInterest:     entities.AnswerNo,
	}
}

// CreateTestNarrative returns a valid five-section narrative
func CreateTestNarrative(name string) *entities.Narrative {
	return &entities.Narrative{
		CharacterIntroduction: name + " wakes beneath the silver boughs.",
		WorldDescription:      "The forest hums with old magic.",
		PlotSetup:             "A blight creeps in from the east.",
		Narrative:             name + " follows the withering trail toward its source.",
		SuspensefulEnding:     "Something in the dark whispers " + name + "'s name.",
	}
}
