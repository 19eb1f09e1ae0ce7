// Package builders provides test data builders for creating test fixtures
package builders

import (
	"github.com/KirkDiggler/rpg-saga/internal/entities"
)

// ProfileBuilder provides a fluent interface for building test profiles
type ProfileBuilder struct {
	profile entities.Profile
}

// NewProfileBuilder creates a builder with an empty profile
func NewProfileBuilder() *ProfileBuilder {
	return &ProfileBuilder{
		profile: entities.Profile{
			AdditionalChoices: map[string]string{},
			CustomAnswers:     map[string]string{},
		},
	}
}

// WithName sets the character name
func (b *ProfileBuilder) WithName(name string) *ProfileBuilder {
	b.profile.Name = name
	return b
}

// WithGender sets the gender
func (b *ProfileBuilder) WithGender(g entities.Gender) *ProfileBuilder {
	b.profile.Gender = g
	return b
}

// WithRace sets the race
func (b *ProfileBuilder) WithRace(race string) *ProfileBuilder {
	b.profile.Race = race
	return b
}

// WithSpecialty sets the specialty
func (b *ProfileBuilder) WithSpecialty(specialty string) *ProfileBuilder {
	b.profile.Specialty = specialty
	return b
}

// WithEnvironment sets the favorite environment
func (b *ProfileBuilder) WithEnvironment(env string) *ProfileBuilder {
	b.profile.FavoriteEnvironment = env
	return b
}

// WithMagic sets the magical affinity
func (b *ProfileBuilder) WithMagic(affinity string) *ProfileBuilder {
	b.profile.MagicalAffinity = affinity
	return b
}

// WithRomance requests romance with the given partner
func (b *ProfileBuilder) WithRomance(partner string) *ProfileBuilder {
	b.profile.RomanceInterest = entities.BoolPtr(true)
	b.profile.RomanticPartner = partner
	return b
}

// WithoutRomance declines romance
func (b *ProfileBuilder) WithoutRomance() *ProfileBuilder {
	b.profile.RomanceInterest = entities.BoolPtr(false)
	b.profile.RomanticPartner = ""
	return b
}

// WithAdditionalChoice records an extension answer
func (b *ProfileBuilder) WithAdditionalChoice(questionID, answer string) *ProfileBuilder {
	b.profile.AdditionalChoices[questionID] = answer
	return b
}

// AsComplete fills every unset required field with a default
func (b *ProfileBuilder) AsComplete() *ProfileBuilder {
	p := &b.profile
	if p.Name == "" {
		p.Name = "Thorn"
	}
	if p.Gender == "" {
		p.Gender = entities.GenderMale
	}
	if p.Race == "" {
		p.Race = "Dwarf"
	}
	if p.Specialty == "" {
		p.Specialty = "Warrior"
	}
	if p.Lifestyle == "" {
		p.Lifestyle = "Adventurous"
	}
	if p.PersonalityTrait == "" {
		p.PersonalityTrait = "Brave"
	}
	if p.FavoriteEnvironment == "" {
		p.FavoriteEnvironment = "Mountains"
	}
	if p.MagicalAffinity == "" {
		p.MagicalAffinity = entities.MagicalAffinityNone
	}
	if p.SocialPreference == "" {
		p.SocialPreference = entities.SocialSmallGroups
	}
	if p.MoralAlignment == "" {
		p.MoralAlignment = entities.AlignmentNeutral
	}
	if p.PrimaryMotivation == "" {
		p.PrimaryMotivation = "Justice"
	}
	if p.RomanceInterest == nil {
		p.RomanceInterest = entities.BoolPtr(false)
	}
	return b
}

// Build returns a copy of the profile
func (b *ProfileBuilder) Build() entities.Profile {
	return b.profile.Clone()
}
