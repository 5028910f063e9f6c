package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-finder/internal/pipeline"
)

var searchProfile string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for jobs matching a free-text request",
	Long: `Runs the full pipeline on a single request and prints the results document.
The request is routed first, so small talk prints a conversational reply.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchProfile, "profile", "p", "", "Profile URL used as context (never fetched)")
	rootCmd.AddCommand(searchCmd)
}

// newOrchestrator builds the pipeline from the resolved settings
func newOrchestrator(ctx context.Context) (*pipeline.Orchestrator, error) {
	o, err := pipeline.NewFromConfig(ctx, settings, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	return o, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	o, err := newOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer o.Close() //nolint:errcheck

	var onProgress pipeline.ProgressCallback
	if settings.Verbose {
		onProgress = func(e pipeline.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "→ %s\n", e.Message)
		}
	}

	res := o.Run(ctx, pipeline.Request{
		Query:      strings.Join(args, " "),
		ProfileRef: searchProfile,
		OnProgress: onProgress,
	})
	fmt.Fprintln(cmd.OutOrStdout(), res.Document)
	return nil
}
