package main

import (
	"fmt"

	"github.com/jonathan/matching-guru/internal/config"
	"github.com/jonathan/matching-guru/internal/logger"
	"github.com/jonathan/matching-guru/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveConfigPath string
	servePort       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the intake REST API server",
	Long:  `Start an HTTP server that runs intake wizard sessions against the upstream Matching Guru API and serves the derived dashboard.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to YAML or JSON config file (GURU_* env vars override)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadServeConfig(serveConfigPath, servePort)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	srv, err := server.New(cfg, server.Deps{Logger: log})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	log.Info("starting intake server",
		zap.Int("port", cfg.Server.Port),
		zap.String("upstream", cfg.Upstream.BaseURL),
	)
	return srv.Start()
}

// loadServeConfig loads the config file and applies the --port override
func loadServeConfig(path string, port int) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if port != 0 {
		cfg.Server.Port = port
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return cfg, nil
}
