package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route <message>",
	Short: "Show how a message would be routed",
	Long:  `Classifies a message as a job search or conversation and prints the route result as JSON.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	o, err := newOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer o.Close() //nolint:errcheck

	route := o.Route(ctx, strings.Join(args, " "), nil)
	out, err := json.MarshalIndent(route, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode route: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
