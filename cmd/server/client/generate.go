package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
)

var (
	answersFile   string
	startOver     bool
	useFallback   bool
	autoRetry     bool
	forceGenerate bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Answer the quiz and generate a story",
	Long: `Answer the quiz from a YAML or JSON file keyed by question id and
generate a story. Without --answers the saved session is resumed.

  client generate --answers answers.yaml
  client generate --answers answers.yaml --fallback
  client generate --regenerate`,
	RunE: generate,
}

func init() {
	generateCmd.Flags().StringVar(&answersFile, "answers", "", "Answers file (question id: answer)")
	generateCmd.Flags().BoolVar(&startOver, "new", false, "Discard the saved session first")
	generateCmd.Flags().BoolVar(&useFallback, "fallback", false, "Use the offline template story when generation fails")
	generateCmd.Flags().BoolVar(&autoRetry, "auto-retry", true, "Retry retryable failures automatically")
	generateCmd.Flags().BoolVar(&forceGenerate, "regenerate", false, "Generate even when the session already has a story")
}

func generate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	svc, err := newStoryService(ctx)
	if err != nil {
		return err
	}

	run, resumed, err := openAdventure(ctx, svc, autoRetry)
	if err != nil {
		return err
	}
	defer run.close(context.WithoutCancel(ctx))

	if resumed {
		fmt.Printf("Resumed session %q\n", sessionName)
	}

	if startOver || answersFile != "" {
		if err := run.app.StartNewAdventure(ctx); err != nil {
			return fmt.Errorf("failed to start over: %w", err)
		}
	}

	if answersFile != "" {
		if err := applyAnswers(run, answersFile); err != nil {
			return err
		}
	} else if n := run.generation.State().Narrative; n != nil && !forceGenerate {
		printNarrative(n)
		return nil
	}

	started, err := run.app.CompleteQuiz(ctx)
	if !started {
		missing := run.app.State(ctx).MissingFields
		return fmt.Errorf("profile is incomplete, missing: %s", strings.Join(missing, ", "))
	}
	if err != nil {
		slog.Debug("First attempt failed", "error", err)
	}

	result, err := run.wait(ctx)
	if err != nil {
		return fmt.Errorf("generation did not finish: %w", err)
	}

	if result.narrative == nil {
		if !useFallback {
			return fmt.Errorf("story generation failed: %s", result.message)
		}
		fmt.Printf("Generation failed (%s), using the template story\n\n", result.message)
		n, err := run.app.UseFallbackStory()
		if err != nil {
			return err
		}
		printNarrative(n)
		return nil
	}

	printNarrative(result.narrative)
	return nil
}

// applyAnswers answers questions in catalog order so conditional questions
// see the answers they depend on
func applyAnswers(run *adventureRun, path string) error {
	answers, err := readAnswers(path)
	if err != nil {
		return err
	}

	run.app.StartQuiz()
	known := make(map[string]bool, len(answers))
	for _, q := range entities.DefaultCatalog().Questions {
		answer, ok := answers[q.ID]
		if !ok {
			continue
		}
		known[q.ID] = true
		if err := run.app.SetAnswer(q.ID, answer); err != nil {
			return fmt.Errorf("answer for %s rejected: %w", q.ID, err)
		}
	}

	for id := range answers {
		if !known[id] {
			slog.Warn("Ignoring answer for unknown question", "question", id)
		}
	}
	return nil
}
