package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bher20/gasbillmanager/internal/api"
	"github.com/bher20/gasbillmanager/internal/billing"
	"github.com/bher20/gasbillmanager/internal/config"
	"github.com/bher20/gasbillmanager/internal/cron"
	"github.com/bher20/gasbillmanager/internal/migrate"

	// Register all gas providers.
	_ "github.com/bher20/gasbillmanager/pkg/providers/gasproviders/busan"
	_ "github.com/bher20/gasbillmanager/pkg/providers/gasproviders/daeryun"
	_ "github.com/bher20/gasbillmanager/pkg/providers/gasproviders/incheon"
	_ "github.com/bher20/gasbillmanager/pkg/providers/gasproviders/manual"
	_ "github.com/bher20/gasbillmanager/pkg/providers/gasproviders/samchully"
	_ "github.com/bher20/gasbillmanager/pkg/providers/gasproviders/seoul"
)

func main() {
	root := &cobra.Command{
		Use:   "gasbillmanager",
		Short: "City-gas bill estimation service",
	}
	root.AddCommand(serveCmd(), workerCmd(), migrateCmd(), calcCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			mux, err := api.NewMux(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			addr := ":" + cfg.Port
			log.Printf("gasbillmanager listening on %s", addr)
			return http.ListenAndServe(addr, mux)
		},
	}
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the scheduled worker (tariff refresh, period close)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := cron.Run(ctx, cfg); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	mig := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema",
	}
	run := func(fn func(context.Context, string, string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			return fn(cmd.Context(), cfg.DBDriver, cfg.DSN)
		}
	}
	mig.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply pending migrations", RunE: run(migrate.Up)},
		&cobra.Command{Use: "down", Short: "Roll back the last migration", RunE: run(migrate.Down)},
		&cobra.Command{Use: "status", Short: "Show migration status", RunE: run(migrate.Status)},
	)
	return mig
}

func calcCmd() *cobra.Command {
	var (
		usage      float64
		readingDay int
		date       string
		usageType  string
		tariffJSON string
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute a bill offline from a tariff document",
		Long:  "Computes a bill for the given corrected usage and tariff without touching storage. The tariff is a JSON document with the same fields the /tariffs endpoint returns.",
		RunE: func(cmd *cobra.Command, args []string) error {
			today := time.Now()
			if date != "" {
				t, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				today = t
			}

			var snap billing.TariffSnapshot
			if tariffJSON != "" {
				raw, err := os.ReadFile(tariffJSON)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(raw, &snap); err != nil {
					return fmt.Errorf("parse tariff file: %w", err)
				}
			}

			res, err := billing.ComputeBill(billing.Input{
				Today:            today,
				ReadingDay:       readingDay,
				CorrectedUsageM3: usage,
				UsageType:        billing.UsageType(usageType),
				Tariff:           snap,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().Float64Var(&usage, "usage", 0, "corrected usage in m³")
	cmd.Flags().IntVar(&readingDay, "reading-day", 1, "meter reading day (0 = last day of month)")
	cmd.Flags().StringVar(&date, "date", "", "estimation date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&usageType, "usage-type", "combined", "combined, cooking_only or heating_only")
	cmd.Flags().StringVar(&tariffJSON, "tariff", "", "path to a tariff JSON document")
	return cmd
}
