package entities

import (
	"strings"

	"github.com/KirkDiggler/rpg-saga/internal/errors"
)

// Narrative section keys, as they appear on the wire
const (
	SectionCharacterIntroduction = "characterIntroduction"
	SectionWorldDescription      = "worldDescription"
	SectionPlotSetup             = "plotSetup"
	SectionNarrative             = "narrative"
	SectionSuspensefulEnding     = "suspensefulEnding"
)

// Narrative is the five-section generated story
type Narrative struct {
	CharacterIntroduction string `json:"characterIntroduction"`
	WorldDescription      string `json:"worldDescription"`
	PlotSetup             string `json:"plotSetup"`
	Narrative             string `json:"narrative"`
	SuspensefulEnding     string `json:"suspensefulEnding"`
}

// SectionKeys returns the five section keys in reading order
func SectionKeys() []string {
	return []string{
		SectionCharacterIntroduction,
		SectionWorldDescription,
		SectionPlotSetup,
		SectionNarrative,
		SectionSuspensefulEnding,
	}
}

// Sections returns the section texts in reading order
func (n *Narrative) Sections() []string {
	return []string{
		n.CharacterIntroduction,
		n.WorldDescription,
		n.PlotSetup,
		n.Narrative,
		n.SuspensefulEnding,
	}
}

// Validate requires all five sections to be non-empty
func (n *Narrative) Validate() error {
	vb := errors.NewValidationBuilder()
	for i, text := range n.Sections() {
		if strings.TrimSpace(text) == "" {
			vb.RequiredField(SectionKeys()[i])
		}
	}
	return vb.BuildWithCode(errors.CodeValidation)
}

// Formatted joins the non-empty sections with blank lines
func (n *Narrative) Formatted() string {
	parts := make([]string, 0, 5)
	for _, text := range n.Sections() {
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// WordCount counts whitespace-separated words across all sections
func (n *Narrative) WordCount() int {
	return len(strings.Fields(n.Formatted()))
}
