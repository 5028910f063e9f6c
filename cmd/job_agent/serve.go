package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-finder/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server exposing /health, /search, /search/stream and /chat.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080, or PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	o, err := newOrchestrator(cmd.Context())
	if err != nil {
		return err
	}
	defer o.Close() //nolint:errcheck

	port := settings.Port
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(server.Config{
		Port:          port,
		MaxConcurrent: settings.MaxConcurrent,
	}, o, log.Logger)

	if err := srv.Start(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
