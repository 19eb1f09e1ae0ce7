package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-saga/internal/services/story"
	"github.com/KirkDiggler/rpg-saga/internal/state"
)

var fallbackCmd = &cobra.Command{
	Use:   "fallback [answers-file]",
	Short: "Print the offline template story for a set of answers",
	Long: `Build a profile from an answers file and print the template story that
is used when generation is unavailable. No network calls are made.`,
	Args: cobra.ExactArgs(1),
	RunE: fallback,
}

func fallback(_ *cobra.Command, args []string) error {
	answers, err := readAnswers(args[0])
	if err != nil {
		return err
	}

	profile := state.ProfileFromAnswers(answers)
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("profile is incomplete: %w", err)
	}

	printNarrative(story.FallbackNarrative(profile))
	return nil
}
