package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that the relay and the provider are reachable",
	RunE:  probe,
}

func probe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	svc, err := newStoryService(ctx)
	if err != nil {
		return err
	}

	out := svc.TestService(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}

	if !out.RelayReachable && !out.ProviderReachable {
		return fmt.Errorf("no generation path is reachable")
	}
	return nil
}
