package narrative

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
)

// ConnectionTestPrompt is the canary sent by TestConnection
const ConnectionTestPrompt = `Test connection. Respond with: {"test": "success"}`

const responseFormat = `RESPONSE FORMAT:
Return your response as a JSON object with exactly these fields:
{
  "characterIntroduction": "A compelling introduction to the character and their current situation (2-3 sentences)",
  "worldDescription": "Rich description of the fantasy world and immediate environment (3-4 sentences)",
  "plotSetup": "The inciting incident or main conflict that drives the story forward (3-4 sentences)",
  "narrative": "The main story content with detailed descriptions, dialogue, and action (8-12 sentences)",
  "suspensefulEnding": "A cliffhanger or suspenseful conclusion that leaves the reader wanting more (2-3 sentences)"
}`

// BuildPrompt renders the generation prompt for profile. The output depends
// only on the profile fields.
func BuildPrompt(p entities.Profile) string {
	var b strings.Builder

	b.WriteString("You are a master fantasy storyteller. Create an immersive, personalized fantasy story based on the following character profile. The story should be engaging, detailed, and end with compelling suspense.\n\n")

	b.WriteString("CHARACTER PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Gender: %s\n", p.Gender)
	fmt.Fprintf(&b, "- Race: %s\n", p.Race)
	fmt.Fprintf(&b, "- Specialty/Profession: %s\n", p.Specialty)
	fmt.Fprintf(&b, "- Lifestyle: %s\n", p.Lifestyle)
	fmt.Fprintf(&b, "- Personality Trait: %s\n", p.PersonalityTrait)
	fmt.Fprintf(&b, "- Favorite Environment: %s\n", p.FavoriteEnvironment)
	fmt.Fprintf(&b, "- Magical Affinity: %s\n", p.MagicalAffinity)
	fmt.Fprintf(&b, "- Social Preference: %s\n", p.SocialPreference)
	fmt.Fprintf(&b, "- Moral Alignment: %s\n", p.MoralAlignment)
	fmt.Fprintf(&b, "- Primary Motivation: %s\n", p.PrimaryMotivation)
	for _, key := range slices.Sorted(maps.Keys(p.AdditionalChoices)) {
		fmt.Fprintf(&b, "- %s: %s\n", key, p.AdditionalChoices[key])
	}
	for _, key := range slices.Sorted(maps.Keys(p.CustomAnswers)) {
		fmt.Fprintf(&b, "- %s: %s\n", key, p.CustomAnswers[key])
	}
	b.WriteString(romanceSection(p))
	b.WriteString("\n\n")

	b.WriteString("STORY REQUIREMENTS:\n")
	fmt.Fprintf(&b, "1. The story must center around %s as the protagonist\n", p.Name)
	b.WriteString("2. Incorporate ALL character traits naturally into the narrative\n")
	fmt.Fprintf(&b, "3. Set the story in %s or a related fantasy setting\n", p.FavoriteEnvironment)
	fmt.Fprintf(&b, "4. Include elements related to their %s profession\n", p.Specialty)
	fmt.Fprintf(&b, "5. Reflect their %s personality and %s moral alignment\n", p.PersonalityTrait, p.MoralAlignment)
	fmt.Fprintf(&b, "6. The story should align with their %s motivation\n", p.PrimaryMotivation)
	fmt.Fprintf(&b, "7. Include magical elements appropriate to their %s affinity\n", p.MagicalAffinity)
	b.WriteString("8. End with a compelling cliffhanger or suspenseful moment\n\n")

	b.WriteString(responseFormat)
	b.WriteString("\n\n")
	b.WriteString("Make the story immersive, detailed, and true to the character's profile. Use vivid descriptions and engaging narrative techniques. The total story should be substantial but not overwhelming - aim for a compelling short story that feels complete yet leaves room for continuation.")

	return b.String()
}

func romanceSection(p entities.Profile) string {
	if p.WantsRomance() && p.RomanticPartner != "" {
		return fmt.Sprintf("The story should include a romantic interest: a %s who complements %s's journey.", p.RomanticPartner, p.Name)
	}
	return "This story focuses on adventure and personal growth without romantic elements."
}
