package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/medassist/internal/agent"
	"github.com/haasonsaas/medassist/internal/config"
	"github.com/haasonsaas/medassist/internal/gateway"
	"github.com/haasonsaas/medassist/internal/hospital"
	"github.com/haasonsaas/medassist/internal/memory"
	"github.com/haasonsaas/medassist/internal/providers"
)

// buildServeCmd creates the "serve" command that starts the chat API server.
func buildServeCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MedAssist chat API server",
		Example: `  # Start with default config
  medassist serve

  # Start with custom config
  medassist serve --config /etc/medassist/production.yaml

  # Start with debug logging
  medassist serve --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "medassist.yaml",
		"Path to YAML configuration file")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false,
		"Enable debug logging (verbose output)")

	return cmd
}

// runServe loads configuration, wires the agent stack, and serves until
// SIGINT/SIGTERM. Missing credentials fail here rather than at the first
// request.
func runServe(ctx context.Context, configPath string, debug bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := slog.LevelInfo
	if debug || cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	apiKey, err := cfg.RequireGoogleAPIKey()
	if err != nil {
		return err
	}
	clientID, err := cfg.RequireHospitalClientID()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := providers.NewGeminiClient(ctx, providers.GeminiConfig{
		APIKey:     apiKey,
		Model:      cfg.LLM.Model,
		MaxRetries: cfg.LLM.MaxRetries,
	})
	if err != nil {
		return fmt.Errorf("create model client: %w", err)
	}

	hospitalClient := hospital.NewClient(cfg.Hospital.BaseURL, cfg.Hospital.Timeout)
	tools, err := hospital.NewTools(hospitalClient, hospital.NewSynonymMatcher(), clientID)
	if err != nil {
		return fmt.Errorf("create hospital tools: %w", err)
	}

	registry, err := agent.NewToolRegistry(tools...)
	if err != nil {
		return fmt.Errorf("create tool registry: %w", err)
	}

	store := memory.NewStore(memory.DefaultCapacity)
	loop := agent.NewLoop(client, registry, store, &agent.LoopConfig{
		Temperature: cfg.LLM.Temperature,
		Logger:      logger,
	})

	server := gateway.NewServer(gateway.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ModelName:      client.Model(),
	}, loop, logger, gateway.NewMetrics())

	logger.Info("starting medassist",
		"model", client.Model(),
		"hospital_api", cfg.Hospital.BaseURL,
		"tools", len(tools),
	)

	return server.Run(ctx)
}
