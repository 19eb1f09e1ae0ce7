// Package entities holds the player profile, quiz catalog, narrative and
// session snapshot types shared across rpg-saga
package entities

import (
	"strings"

	"github.com/KirkDiggler/rpg-saga/internal/errors"
)

// Profile describes the character a narrative is generated for. A Profile
// held by the player store may be partial; Validate reports whether it is
// ready for generation.
type Profile struct {
	Name                string            `json:"name"`
	Gender              Gender            `json:"gender"`
	Race                string            `json:"race"`
	Specialty           string            `json:"specialty"`
	Lifestyle           string            `json:"lifestyle"`
	PersonalityTrait    string            `json:"personalityTrait"`
	FavoriteEnvironment string            `json:"favoriteEnvironment"`
	MagicalAffinity     string            `json:"magicalAffinity"`
	SocialPreference    SocialPreference  `json:"socialPreference"`
	MoralAlignment      MoralAlignment    `json:"moralAlignment"`
	PrimaryMotivation   string            `json:"primaryMotivation"`
	RomanceInterest     *bool             `json:"romanceInterest,omitempty"`
	RomanticPartner     string            `json:"romanticPartner,omitempty"`
	AdditionalChoices   map[string]string `json:"additionalChoices"`
	CustomAnswers       map[string]string `json:"customAnswers"`
}

// requiredFields is the order fields are reported as missing
var requiredFields = []string{
	QuestionName,
	QuestionGender,
	QuestionRace,
	QuestionSpecialty,
	QuestionLifestyle,
	QuestionPersonalityTrait,
	QuestionFavoriteEnvironment,
	QuestionMagicalAffinity,
	QuestionSocialPreference,
	QuestionMoralAlignment,
	QuestionPrimaryMotivation,
	QuestionRomanceInterest,
}

// RequiredFields returns the names of the fields a complete profile must carry
func RequiredFields() []string {
	out := make([]string, len(requiredFields))
	copy(out, requiredFields)
	return out
}

// WantsRomance reports whether romance was requested
func (p *Profile) WantsRomance() bool {
	return p.RomanceInterest != nil && *p.RomanceInterest
}

// fieldValue returns the string form of a required field, empty when unset
func (p *Profile) fieldValue(field string) string {
	switch field {
	case QuestionName:
		return p.Name
	case QuestionGender:
		return string(p.Gender)
	case QuestionRace:
		return p.Race
	case QuestionSpecialty:
		return p.Specialty
	case QuestionLifestyle:
		return p.Lifestyle
	case QuestionPersonalityTrait:
		return p.PersonalityTrait
	case QuestionFavoriteEnvironment:
		return p.FavoriteEnvironment
	case QuestionMagicalAffinity:
		return p.MagicalAffinity
	case QuestionSocialPreference:
		return string(p.SocialPreference)
	case QuestionMoralAlignment:
		return string(p.MoralAlignment)
	case QuestionPrimaryMotivation:
		return p.PrimaryMotivation
	case QuestionRomanceInterest:
		if p.RomanceInterest == nil {
			return ""
		}
		if *p.RomanceInterest {
			return AnswerYes
		}
		return AnswerNo
	}
	return ""
}

// MissingFields lists required fields that are unset, in question order
func (p *Profile) MissingFields() []string {
	var missing []string
	for _, field := range requiredFields {
		if strings.TrimSpace(p.fieldValue(field)) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// CompletionPercentage is the rounded share of required fields that are set
func (p *Profile) CompletionPercentage() int {
	total := len(requiredFields)
	done := total - len(p.MissingFields())
	return (done*100 + total/2) / total
}

// IsComplete reports whether every required field is present and conforms
// to its type and bounds. It is always derived from the fields.
func (p *Profile) IsComplete() bool {
	return p.Validate() == nil
}

// Validate checks presence, closed enums and length bounds. Errors carry
// CodeValidation with per-field details in the metadata.
func (p *Profile) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired(QuestionName, p.Name, vb)
	errors.ValidateMaxLength(QuestionName, p.Name, MaxNameLength, vb)

	if p.Gender == "" {
		vb.RequiredField(QuestionGender)
	} else {
		errors.ValidateEnum(QuestionGender, string(p.Gender), []string{string(GenderMale), string(GenderFemale)}, vb)
	}

	for _, f := range []struct {
		name  string
		value string
	}{
		{QuestionRace, p.Race},
		{QuestionSpecialty, p.Specialty},
		{QuestionLifestyle, p.Lifestyle},
		{QuestionPersonalityTrait, p.PersonalityTrait},
		{QuestionFavoriteEnvironment, p.FavoriteEnvironment},
		{QuestionMagicalAffinity, p.MagicalAffinity},
		{QuestionPrimaryMotivation, p.PrimaryMotivation},
	} {
		errors.ValidateRequired(f.name, f.value, vb)
		errors.ValidateMaxLength(f.name, f.value, MaxFieldLength, vb)
	}

	if p.SocialPreference == "" {
		vb.RequiredField(QuestionSocialPreference)
	} else {
		errors.ValidateEnum(QuestionSocialPreference, string(p.SocialPreference), socialPreferenceNames(), vb)
	}

	if p.MoralAlignment == "" {
		vb.RequiredField(QuestionMoralAlignment)
	} else {
		errors.ValidateEnum(QuestionMoralAlignment, string(p.MoralAlignment), moralAlignmentNames(), vb)
	}

	if p.RomanceInterest == nil {
		vb.RequiredField(QuestionRomanceInterest)
	}

	if p.RomanticPartner != "" {
		if !p.WantsRomance() {
			vb.Field(QuestionRomanticPartner, "is only allowed when romance is requested")
		}
		errors.ValidateMaxLength(QuestionRomanticPartner, p.RomanticPartner, MaxPartnerLength, vb)
	}

	return vb.BuildWithCode(errors.CodeValidation)
}

// Clone returns a deep copy with non-nil extension maps
func (p *Profile) Clone() Profile {
	out := *p
	if p.RomanceInterest != nil {
		v := *p.RomanceInterest
		out.RomanceInterest = &v
	}
	out.AdditionalChoices = cloneMap(p.AdditionalChoices)
	out.CustomAnswers = cloneMap(p.CustomAnswers)
	return out
}

// Merge overlays the set fields of updates onto a copy of p. Extension maps
// are merged key by key.
func (p *Profile) Merge(updates Profile) Profile {
	out := p.Clone()
	if updates.Name != "" {
		out.Name = updates.Name
	}
	if updates.Gender != "" {
		out.Gender = updates.Gender
	}
	if updates.Race != "" {
		out.Race = updates.Race
	}
	if updates.Specialty != "" {
		out.Specialty = updates.Specialty
	}
	if updates.Lifestyle != "" {
		out.Lifestyle = updates.Lifestyle
	}
	if updates.PersonalityTrait != "" {
		out.PersonalityTrait = updates.PersonalityTrait
	}
	if updates.FavoriteEnvironment != "" {
		out.FavoriteEnvironment = updates.FavoriteEnvironment
	}
	if updates.MagicalAffinity != "" {
		out.MagicalAffinity = updates.MagicalAffinity
	}
	if updates.SocialPreference != "" {
		out.SocialPreference = updates.SocialPreference
	}
	if updates.MoralAlignment != "" {
		out.MoralAlignment = updates.MoralAlignment
	}
	if updates.PrimaryMotivation != "" {
		out.PrimaryMotivation = updates.PrimaryMotivation
	}
	if updates.RomanceInterest != nil {
		v := *updates.RomanceInterest
		out.RomanceInterest = &v
	}
	if updates.RomanticPartner != "" {
		out.RomanticPartner = updates.RomanticPartner
	}
	for k, v := range updates.AdditionalChoices {
		out.AdditionalChoices[k] = v
	}
	for k, v := range updates.CustomAnswers {
		out.CustomAnswers[k] = v
	}
	return out
}

// ParseGender coerces a case-insensitive answer to a Gender
func ParseGender(s string) (Gender, bool) {
	for _, g := range Genders() {
		if strings.EqualFold(strings.TrimSpace(s), string(g)) {
			return g, true
		}
	}
	return "", false
}

// ParseSocialPreference coerces a case-insensitive answer to a SocialPreference
func ParseSocialPreference(s string) (SocialPreference, bool) {
	for _, sp := range SocialPreferences() {
		if strings.EqualFold(strings.TrimSpace(s), string(sp)) {
			return sp, true
		}
	}
	return "", false
}

// ParseMoralAlignment coerces a case-insensitive answer to a MoralAlignment
func ParseMoralAlignment(s string) (MoralAlignment, bool) {
	for _, a := range MoralAlignments() {
		if strings.EqualFold(strings.TrimSpace(s), string(a)) {
			return a, true
		}
	}
	return "", false
}

func socialPreferenceNames() []string {
	prefs := SocialPreferences()
	out := make([]string, len(prefs))
	for i, sp := range prefs {
		out[i] = string(sp)
	}
	return out
}

func moralAlignmentNames() []string {
	aligns := MoralAlignments()
	out := make([]string, len(aligns))
	for i, a := range aligns {
		out[i] = string(a)
	}
	return out
}

func cloneMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}
