package state

import (
	"strings"
	"sync"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
)

// PlayerState is a copy of the player store
type PlayerState struct {
	Profile           entities.Profile
	IsProfileComplete bool
}

// PlayerStore holds the derived, possibly partial profile. Completeness is
// recomputed on every mutation.
type PlayerStore struct {
	mu       sync.RWMutex
	profile  entities.Profile
	complete bool

	subs listeners[PlayerState]
}

// NewPlayerStore returns a store with an empty profile
func NewPlayerStore() *PlayerStore {
	return &PlayerStore{profile: emptyProfile()}
}

// Subscribe registers fn for every profile change and returns its removal func
func (p *PlayerStore) Subscribe(fn func(PlayerState)) func() {
	return p.subs.add(fn)
}

// State returns a copy of the store
func (p *PlayerStore) State() PlayerState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PlayerState{Profile: p.profile.Clone(), IsProfileComplete: p.complete}
}

// Profile returns a copy of the profile
func (p *PlayerStore) Profile() entities.Profile {
	return p.State().Profile
}

// IsProfileComplete returns the cached completeness
func (p *PlayerStore) IsProfileComplete() bool {
	return p.State().IsProfileComplete
}

// UpdateProfile overlays the set fields of updates
func (p *PlayerStore) UpdateProfile(updates entities.Profile) {
	p.set(func(current entities.Profile) entities.Profile {
		return current.Merge(updates)
	})
}

// SetProfile replaces the profile
func (p *PlayerStore) SetProfile(profile entities.Profile) {
	p.set(func(entities.Profile) entities.Profile {
		return profile.Clone()
	})
}

// BuildFromAnswers replaces the profile with the one derived from answers.
// Custom answers are not quiz answers and carry over.
func (p *PlayerStore) BuildFromAnswers(answers map[string]string) {
	p.set(func(current entities.Profile) entities.Profile {
		next := ProfileFromAnswers(answers)
		for k, v := range current.CustomAnswers {
			next.CustomAnswers[k] = v
		}
		return next
	})
}

// Reset clears the profile
func (p *PlayerStore) Reset() {
	p.SetProfile(emptyProfile())
}

// Validate checks the profile for generation
func (p *PlayerStore) Validate() error {
	profile := p.Profile()
	return profile.Validate()
}

// ProfileForGeneration returns the profile when it is complete
func (p *PlayerStore) ProfileForGeneration() (*entities.Profile, error) {
	profile := p.Profile()
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Snapshot returns the persisted fields
func (p *PlayerStore) Snapshot() *entities.PlayerSnapshot {
	s := p.State()
	return &entities.PlayerSnapshot{Profile: s.Profile, IsProfileComplete: s.IsProfileComplete}
}

// Restore replaces the profile with a persisted one. Completeness is
// recomputed rather than trusted.
func (p *PlayerStore) Restore(snap *entities.PlayerSnapshot) {
	if snap == nil {
		return
	}
	p.SetProfile(snap.Profile)
}

func (p *PlayerStore) set(fn func(entities.Profile) entities.Profile) {
	p.mu.Lock()
	p.profile = fn(p.profile)
	p.complete = p.profile.IsComplete()
	out := PlayerState{Profile: p.profile.Clone(), IsProfileComplete: p.complete}
	p.mu.Unlock()

	p.subs.notify(out)
}

func emptyProfile() entities.Profile {
	return entities.Profile{
		AdditionalChoices: map[string]string{},
		CustomAnswers:     map[string]string{},
	}
}

// ProfileFromAnswers derives a profile from quiz answers alone. Closed enums
// are matched without regard to case and unknown values are left empty.
// Unmapped question IDs land in AdditionalChoices.
func ProfileFromAnswers(answers map[string]string) entities.Profile {
	p := emptyProfile()

	for id, answer := range answers {
		switch id {
		case entities.QuestionName:
			p.Name = answer
		case entities.QuestionGender:
			p.Gender, _ = entities.ParseGender(answer)
		case entities.QuestionRace:
			p.Race = answer
		case entities.QuestionSpecialty:
			p.Specialty = answer
		case entities.QuestionLifestyle:
			p.Lifestyle = answer
		case entities.QuestionPersonalityTrait:
			p.PersonalityTrait = answer
		case entities.QuestionFavoriteEnvironment:
			p.FavoriteEnvironment = answer
		case entities.QuestionMagicalAffinity:
			p.MagicalAffinity = answer
		case entities.QuestionSocialPreference:
			p.SocialPreference, _ = entities.ParseSocialPreference(answer)
		case entities.QuestionMoralAlignment:
			p.MoralAlignment, _ = entities.ParseMoralAlignment(answer)
		case entities.QuestionPrimaryMotivation:
			p.PrimaryMotivation = answer
		case entities.QuestionRomanceInterest:
			switch {
			case strings.EqualFold(strings.TrimSpace(answer), entities.AnswerYes):
				p.RomanceInterest = entities.BoolPtr(true)
			case strings.EqualFold(strings.TrimSpace(answer), entities.AnswerNo):
				p.RomanceInterest = entities.BoolPtr(false)
			}
		case entities.QuestionRomanticPartner:
			// applied below once romance is known
		default:
			p.AdditionalChoices[id] = answer
		}
	}

	if p.WantsRomance() {
		p.RomanticPartner = answers[entities.QuestionRomanticPartner]
	}

	return p
}
