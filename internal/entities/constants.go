package entities

// Gender is the closed set of genders a Profile accepts
type Gender string

// Gender constants
const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// SocialPreference is the closed set of social preferences
type SocialPreference string

// SocialPreference constants
const (
	SocialSolitary         SocialPreference = "Solitary"
	SocialSmallGroups      SocialPreference = "Small Groups"
	SocialLargeCommunities SocialPreference = "Large Communities"
	SocialLeadershipRole   SocialPreference = "Leadership Role"
)

// MoralAlignment is the closed set of moral alignments
type MoralAlignment string

// MoralAlignment constants
const (
	AlignmentLawful  MoralAlignment = "Lawful"
	AlignmentNeutral MoralAlignment = "Neutral"
	AlignmentChaotic MoralAlignment = "Chaotic"
)

// Page is the top-level screen a consumer is showing
type Page string

// Page constants
const (
	PageLanding Page = "landing"
	PageQuiz    Page = "quiz"
	PageStory   Page = "story"
)

// Question IDs that map onto typed Profile fields
const (
	QuestionName                = "name"
	QuestionGender              = "gender"
	QuestionRace                = "race"
	QuestionSpecialty           = "specialty"
	QuestionLifestyle           = "lifestyle"
	QuestionPersonalityTrait    = "personalityTrait"
	QuestionFavoriteEnvironment = "favoriteEnvironment"
	QuestionMagicalAffinity     = "magicalAffinity"
	QuestionSocialPreference    = "socialPreference"
	QuestionMoralAlignment      = "moralAlignment"
	QuestionPrimaryMotivation   = "primaryMotivation"
	QuestionRomanceInterest     = "romanceInterest"
	QuestionRomanticPartner     = "romanticPartner"
)

// Literal answers for yes/no questions
const (
	AnswerYes = "Yes"
	AnswerNo  = "No"
)

// MagicalAffinityNone marks a character without magic
const MagicalAffinityNone = "None"

// Field length bounds
const (
	MaxNameLength    = 50
	MaxFieldLength   = 30
	MaxPartnerLength = 30
)

// Genders lists the accepted genders in display order
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale}
}

// SocialPreferences lists the accepted social preferences in display order
func SocialPreferences() []SocialPreference {
	return []SocialPreference{SocialSolitary, SocialSmallGroups, SocialLargeCommunities, SocialLeadershipRole}
}

// MoralAlignments lists the accepted moral alignments in display order
func MoralAlignments() []MoralAlignment {
	return []MoralAlignment{AlignmentLawful, AlignmentNeutral, AlignmentChaotic}
}
