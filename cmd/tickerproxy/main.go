package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/saedabdu/tickerproxy/internal/api/handler"
	"github.com/saedabdu/tickerproxy/internal/client"
	"github.com/saedabdu/tickerproxy/internal/config"
	"github.com/saedabdu/tickerproxy/internal/logger"
	"github.com/saedabdu/tickerproxy/internal/metrics"
	"github.com/saedabdu/tickerproxy/internal/server"
	"github.com/saedabdu/tickerproxy/internal/service"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tickerproxy",
		Short:         "HTTP proxy serving Yahoo Finance ticker datasets as JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
				return err
			}
			applyFlags(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("port", config.DefaultPort, "port to listen on (overrides PORT)")
	cmd.Flags().String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error or disabled")
	cmd.Flags().Bool("log-json", false, "emit logs as JSON")
	return cmd
}

// applyFlags overrides the loaded configuration with flags set on the command line
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetString("port")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON, _ = flags.GetBool("log-json")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Init(&logger.Config{
		Level:      logger.LogLevel(cfg.Log.Level),
		Output:     os.Stdout,
		JSON:       cfg.Log.JSON,
		TimeFormat: "2006-01-02 15:04:05",
	})
	log := logger.GetDefault()

	if cfg.Log.Level != string(logger.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	yahoo := client.NewYahoo(cfg.Provider, client.WithObserver(m))
	tickerService := service.New(yahoo)
	tickerHandler := handler.NewTickerHandler(tickerService)
	router := server.NewRouter(tickerHandler, m, log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Configuration loaded",
		"port", cfg.Server.Port,
		"provider", cfg.Provider.BaseURL,
		"log_level", cfg.Log.Level,
	)

	if err := server.New(cfg.Server, router, log).Run(ctx); err != nil {
		log.Error("Server stopped", "error", err)
		return err
	}
	return nil
}
