package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/proformatools/proforma/internal/config"
	"github.com/proformatools/proforma/internal/engine"
	"github.com/proformatools/proforma/internal/server"
	"github.com/proformatools/proforma/pkg/constants"
	"github.com/proformatools/proforma/pkg/output"
	"github.com/proformatools/proforma/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via -ldflags.
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func newRunCommand() *cobra.Command {
	var (
		configLocation   string
		outputFormatFlag string
		logLevel         string
		sensitivity      bool
		monteCarlo       bool
		iterations       int
		seed             uint64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze a development scenario from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfiguration(configLocation)
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", configLocation, err)
			}

			logger, err := initializeLogger(conf.Logging, logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			// Output format: CLI override takes precedence over config.
			outputFormat := conf.Output.Format
			if outputFormatFlag != "" {
				outputFormat = outputFormatFlag
			}
			if outputFormat == "" {
				outputFormat = constants.OutputFormatPretty
			}
			if err := validation.ValidateOutputFormat(outputFormat); err != nil {
				return err
			}

			for _, warning := range conf.ValidateConfiguration() {
				logger.Warn("Configuration warning: "+warning,
					zap.String("op", "main"),
				)
			}

			scenario, err := conf.Resolve()
			if err != nil {
				return fmt.Errorf("invalid scenario: %w", err)
			}

			// CLI analysis toggles layer on top of the config file.
			opts := conf.EngineOptions()
			if cmd.Flags().Changed("sensitivity") {
				opts.Sensitivity = sensitivity
			}
			if cmd.Flags().Changed("monte-carlo") {
				opts.MonteCarlo = monteCarlo
			}
			if iterations > 0 {
				opts.MonteCarloConfig.Iterations = iterations
			}
			if seed != 0 {
				opts.MonteCarloConfig.Seed = seed
			}

			eng := engine.New(logger)
			analysis, err := eng.Analyze(scenario, opts)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			switch outputFormat {
			case constants.OutputFormatPretty:
				return output.PrettyFormat(cmd.OutOrStdout(), analysis)
			case constants.OutputFormatCSV:
				return output.CsvFormat(cmd.OutOrStdout(), analysis)
			case constants.OutputFormatJSON:
				return output.JSONFormat(cmd.OutOrStdout(), analysis)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configLocation, "config", constants.DefaultConfigFile, "path to scenario configuration file")
	cmd.Flags().StringVar(&outputFormatFlag, "output-format", "", "type of output override: pretty, csv, json")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	cmd.Flags().BoolVar(&sensitivity, "sensitivity", false, "run tornado sensitivity analysis")
	cmd.Flags().BoolVar(&monteCarlo, "monte-carlo", false, "run Monte Carlo simulation")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Monte Carlo iteration count override")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Monte Carlo random seed (0 seeds from the clock)")
	return cmd
}

func newServeCommand() *cobra.Command {
	var (
		configLocation string
		address        string
		logLevel       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the feasibility analysis API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			serverConfig, err := server.LoadConfig(configLocation)
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}
			if address != "" {
				serverConfig.Address = address
			}

			logger, err := initializeLogger(serverConfig.Logging, logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			handler := server.NewHandler(logger, serverConfig.UploadSizeBytes(), version)
			srv := &http.Server{
				Addr:         serverConfig.Address,
				Handler:      handler,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 180 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening",
					zap.String("op", "main"),
					zap.String("address", serverConfig.Address),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			logger.Info("server stopped", zap.String("op", "main"))
			return nil
		},
	}

	cmd.Flags().StringVar(&configLocation, "config", "", "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override (e.g., :8080)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	return cmd
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "proforma",
		Short:         "Real estate development feasibility analysis",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand())
	root.AddCommand(newServeCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
