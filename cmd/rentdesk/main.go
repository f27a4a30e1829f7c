package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/config"
	"github.com/rentdesk/rentdesk/internal/event"
	"github.com/rentdesk/rentdesk/internal/eventbus"
	"github.com/rentdesk/rentdesk/internal/seed"
	"github.com/rentdesk/rentdesk/internal/server"
	"github.com/rentdesk/rentdesk/internal/service"
	"github.com/rentdesk/rentdesk/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:   "rentdesk",
		Short: "Rental and tenant management server",
	}
	root.AddCommand(serveCmd(), seedCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			feed := activity.NewMemoryStore()
			bus := eventbus.New(log, 256)
			bus.Subscribe("log", eventbus.NewLogConsumer(log))
			bus.Start(ctx)

			rec := event.NewActivityRecorder(feed)
			rec.SetPublisher(bus)

			svc := service.New(db, cfg.Billing, rec)

			err = server.Run(ctx, server.Config{
				Cfg:      cfg,
				DB:       db,
				Services: svc,
				Feed:     feed,
				Log:      log,
			})
			bus.Stop()
			return err
		},
	}
}

func seedCmd() *cobra.Command {
	var clear bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo data into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if clear {
				if err := seed.Clear(db); err != nil {
					return fmt.Errorf("clearing data: %w", err)
				}
				log.Info("existing data cleared")
			}
			return seed.Run(cmd.Context(), db, cfg.Billing, log)
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "delete existing data before seeding")
	return cmd
}

// bootstrap loads configuration, builds the logger, and opens a migrated
// database handle. Shared by every subcommand.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building logger: %w", err)
	}

	db, err := store.Open(cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}
	log.Info("database ready", zap.String("driver", cfg.Database.Driver))

	return cfg, log, db, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}
