// Package main provides the CLI entry point for the MedAssist hospital
// front-desk assistant.
//
// MedAssist answers patient chat messages with a Gemini-backed agent that can
// search doctors, check weekly availability, list appointments by phone
// number, and book appointments against the hospital backend API.
//
// # Basic Usage
//
// Start the server:
//
//	medassist serve --config medassist.yaml
//
// # Environment Variables
//
//   - GOOGLE_API_KEY: Google AI API key for Gemini (required)
//   - GEMINI_MODEL: Model identifier override
//   - HOSPITAL_API_BASE_URL: Hospital backend base URL
//   - HOSPITAL_CLIENT_ID: Default client identifier used for bookings
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "medassist",
		Short:        "MedAssist - hospital front desk assistant",
		Long:         "MedAssist serves a patient-facing chat API backed by Gemini with hospital booking tools.",
		Version:      version + " (commit: " + commit + ", built: " + date + ")",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildServeCmd(),
	)

	return rootCmd
}
