package story

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
)

// FallbackNarrative builds a template story from the profile without calling
// any provider. It is deterministic and never fails.
func FallbackNarrative(p entities.Profile) *entities.Narrative {
	name := p.Name
	specialty := strings.ToLower(p.Specialty)
	environment := strings.ToLower(p.FavoriteEnvironment)
	trait := strings.ToLower(p.PersonalityTrait)

	magic := fmt.Sprintf("Though %s has no magical abilities, there's something about this place that feels significant.", name)
	if p.MagicalAffinity != entities.MagicalAffinityNone {
		magic = fmt.Sprintf("The %s energies that flow through %s seem to resonate with this place.",
			strings.ToLower(p.MagicalAffinity), name)
	}

	return &entities.Narrative{
		CharacterIntroduction: fmt.Sprintf(
			"%s stands at the threshold of adventure, a %s %s %s whose journey is about to begin in ways they never imagined.",
			name, trait, p.Race, specialty),

		WorldDescription: fmt.Sprintf(
			"The %s stretches out before %s, alive with ancient mysteries and hidden wonders. Every shadow holds a secret, every breeze carries whispers of forgotten tales. %s",
			environment, name, magic),

		PlotSetup: fmt.Sprintf(
			"As %s ventures deeper into this mystical realm, strange occurrences begin to unfold around them. The very fabric of reality seems to shift and bend, responding to their presence in ways that both intrigue and unsettle the experienced %s.",
			name, specialty),

		Narrative: fmt.Sprintf(
			"%s moves with the confidence of someone who has mastered their craft as a %s, yet the %s presents challenges unlike any they've faced before. "+
				"Their %s nature serves them well as they navigate through increasingly strange phenomena. "+
				"The air itself seems to thicken with possibility, and %s can't shake the feeling that they're being watched by unseen eyes. "+
				"Every step forward reveals new wonders and new dangers, testing not just their skills but their very understanding of the world around them.",
			name, specialty, environment, trait, name),

		SuspensefulEnding: fmt.Sprintf(
			"Just as %s begins to feel they understand the patterns of this strange place, a sound echoes through the %s that shouldn't exist - a sound that makes their blood run cold and their heart race with anticipation. Something ancient has awakened, and it knows %s is here.",
			name, environment, name),
	}
}
