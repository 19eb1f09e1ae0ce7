package entities

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-saga/internal/errors"
)

// QuestionType describes how a question is answered
type QuestionType string

// QuestionType constants
const (
	QuestionTypeMultipleChoice QuestionType = "multiple-choice"
	QuestionTypeTextInput      QuestionType = "text-input"
	QuestionTypeHybrid         QuestionType = "hybrid"
	QuestionTypeGenderOnly     QuestionType = "gender-only"
)

// Question is one entry of the quiz catalog
type Question struct {
	ID          string       `yaml:"id" json:"id"`
	Text        string       `yaml:"text" json:"text"`
	Type        QuestionType `yaml:"type" json:"type"`
	Options     []string     `yaml:"options,omitempty" json:"options,omitempty"`
	AllowCustom bool         `yaml:"allowCustom,omitempty" json:"allowCustom,omitempty"`
	Required    bool         `yaml:"required" json:"required"`
	Conditional *Condition   `yaml:"conditional,omitempty" json:"conditional,omitempty"`
}

// Condition makes a question visible only when another answer matches Value
type Condition struct {
	DependsOn string `yaml:"dependsOn" json:"dependsOn"`
	Value     string `yaml:"value" json:"value"`
}

// VisibleFor reports whether the question is shown given answers
func (q *Question) VisibleFor(answers map[string]string) bool {
	if q.Conditional == nil {
		return true
	}
	return answers[q.Conditional.DependsOn] == q.Conditional.Value
}

// QuestionCatalog is the ordered quiz plus the gender-keyed partner options
type QuestionCatalog struct {
	Questions      []Question          `yaml:"questions"`
	PartnerOptions map[Gender][]string `yaml:"partnerOptions"`
}

//go:embed questions.yaml
var questionsYAML []byte

var defaultCatalog = mustParseCatalog(questionsYAML)

// ParseCatalog decodes and checks a YAML question catalog
func ParseCatalog(data []byte) (*QuestionCatalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.InvalidArgument("question catalog is empty")
	}

	var c QuestionCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode question catalog")
	}

	seen := make(map[string]bool, len(c.Questions))
	for i, q := range c.Questions {
		if q.ID == "" {
			return nil, errors.InvalidArgumentf("question %d has no id", i)
		}
		if seen[q.ID] {
			return nil, errors.InvalidArgumentf("duplicate question id %q", q.ID)
		}
		if q.Conditional != nil && !seen[q.Conditional.DependsOn] {
			return nil, errors.InvalidArgumentf("question %q depends on unknown or later question %q", q.ID, q.Conditional.DependsOn)
		}
		seen[q.ID] = true
	}

	return &c, nil
}

func mustParseCatalog(data []byte) *QuestionCatalog {
	c, err := ParseCatalog(data)
	if err != nil {
		panic(fmt.Sprintf("entities: embedded question catalog: %v", err))
	}
	return c
}

// DefaultCatalog returns the built-in question catalog
func DefaultCatalog() *QuestionCatalog {
	return defaultCatalog
}

// Question looks up a question by id
func (c *QuestionCatalog) Question(id string) (Question, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Visible returns the questions shown for the given answers, in order
func (c *QuestionCatalog) Visible(answers map[string]string) []Question {
	out := make([]Question, 0, len(c.Questions))
	for _, q := range c.Questions {
		if q.VisibleFor(answers) {
			out = append(out, q)
		}
	}
	return out
}

// RomanticPartnerOptions returns the partner option set for gender. The
// result is a fresh slice; an unknown gender yields nil.
func (c *QuestionCatalog) RomanticPartnerOptions(gender Gender) []string {
	opts, ok := c.PartnerOptions[gender]
	if !ok {
		return nil
	}
	out := make([]string, len(opts))
	copy(out, opts)
	return out
}

// RomanticPartnerOptions returns the built-in partner options for gender
func RomanticPartnerOptions(gender Gender) []string {
	return defaultCatalog.RomanticPartnerOptions(gender)
}

var (
	namePattern       = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	customTextPattern = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
)

const (
	msgNamePattern = "can only contain letters, spaces, hyphens, and apostrophes"
	msgTextPattern = "only letters, spaces, hyphens, and apostrophes are allowed"
)

// ValidateAnswer checks a single quiz answer. It is pure; callers own any
// debounce or scheduling around it.
func ValidateAnswer(questionID, answer string) error {
	vb := errors.NewValidationBuilder()

	switch questionID {
	case QuestionName:
		errors.ValidateRequired(questionID, answer, vb)
		errors.ValidateMaxLength(questionID, answer, MaxNameLength, vb)
		errors.ValidatePattern(questionID, answer, namePattern, msgNamePattern, vb)
	case QuestionGender:
		errors.ValidateEnum(questionID, answer, []string{string(GenderMale), string(GenderFemale)}, vb)
	case QuestionRomanceInterest:
		errors.ValidateEnum(questionID, answer, []string{AnswerYes, AnswerNo}, vb)
	case QuestionRace, QuestionSpecialty, QuestionLifestyle, QuestionPersonalityTrait,
		QuestionFavoriteEnvironment, QuestionMagicalAffinity, QuestionPrimaryMotivation:
		errors.ValidateRequired(questionID, answer, vb)
		errors.ValidateMaxLength(questionID, answer, MaxFieldLength, vb)
		errors.ValidatePattern(questionID, answer, customTextPattern, msgTextPattern, vb)
	case QuestionSocialPreference:
		errors.ValidateEnum(questionID, answer, socialPreferenceNames(), vb)
	case QuestionMoralAlignment:
		errors.ValidateEnum(questionID, answer, moralAlignmentNames(), vb)
	case QuestionRomanticPartner:
		errors.ValidateMaxLength(questionID, answer, MaxPartnerLength, vb)
	default:
		errors.ValidateRequired(questionID, answer, vb)
	}

	return vb.BuildWithCode(errors.CodeValidation)
}
