package client

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-saga/internal/errors"
	sessionrepo "github.com/KirkDiggler/rpg-saga/internal/repositories/session"
)

var (
	purgeMaxAge time.Duration
	purgeDryRun bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and manage saved sessions",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved session",
	RunE:  showSession,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved session",
	RunE:  clearSession,
}

var sessionPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove corrupted and stale session records",
	Long: `Scan every session record and remove the ones that cannot be decoded or
are older than --max-age. Use --dry-run to only report them.`,
	RunE: purgeSessions,
}

func init() {
	sessionPurgeCmd.Flags().DurationVar(&purgeMaxAge, "max-age", sessionrepo.DefaultTTL, "Remove records older than this (0 keeps all valid records)")
	sessionPurgeCmd.Flags().BoolVar(&purgeDryRun, "dry-run", false, "Report without deleting")

	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	sessionCmd.AddCommand(sessionPurgeCmd)
}

func showSession(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	repo, cleanup, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := repo.Get(ctx, sessionrepo.GetInput{Name: sessionName})
	if errors.IsNotFound(err) {
		fmt.Printf("No saved session %q\n", sessionName)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	snap := out.Snapshot
	fmt.Printf("Session %q saved %s\n", sessionName, snap.CapturedAt().Format(time.RFC3339))
	if snap.UI != nil {
		fmt.Printf("  Page: %s\n", snap.UI.CurrentPage)
	}
	if snap.Quiz != nil {
		fmt.Printf("  Quiz: %d answers, %d%% complete\n", len(snap.Quiz.Answers), snap.Quiz.Progress)
	}
	if snap.Player != nil {
		fmt.Printf("  Character: %s (complete: %t)\n", snap.Player.Profile.Name, snap.Player.IsProfileComplete)
	}
	if snap.Story != nil && snap.Story.GeneratedStory != nil {
		fmt.Printf("  Story: %d words\n", snap.Story.GeneratedStory.WordCount())
	}
	return nil
}

func clearSession(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	repo, cleanup, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := repo.Delete(ctx, sessionrepo.DeleteInput{Name: sessionName})
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if out.Deleted {
		fmt.Printf("Cleared session %q\n", sessionName)
	} else {
		fmt.Printf("No saved session %q\n", sessionName)
	}
	return nil
}

func purgeSessions(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	repo, cleanup, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := repo.Purge(ctx, sessionrepo.PurgeInput{
		MaxAge: purgeMaxAge,
		Now:    time.Now(),
		DryRun: purgeDryRun,
	})
	if err != nil {
		return fmt.Errorf("failed to purge sessions: %w", err)
	}

	verb := "Removed"
	if purgeDryRun {
		verb = "Would remove"
	}
	for _, name := range out.Removed {
		fmt.Printf("  ✗ %s\n", name)
	}
	fmt.Printf("%s %d of %d session records\n", verb, len(out.Removed), out.Checked)
	return nil
}
