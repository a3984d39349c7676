package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/openfooty/schedsync/external/worldfootball"
	"github.com/openfooty/schedsync/internal/config"
	"github.com/openfooty/schedsync/internal/domain/schedule"
	"github.com/openfooty/schedsync/internal/domain/team"
	"github.com/openfooty/schedsync/internal/infrastructure/store"
	"github.com/openfooty/schedsync/internal/platform/logging"
	"github.com/openfooty/schedsync/internal/usecase"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "schedsync",
		Short:         "Incremental football schedule reconciliation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSyncCmd())
	return root
}

func newSyncCmd() *cobra.Command {
	var (
		season   string
		leagues  []string
		cups     []string
		storeDir string
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch, reconcile and persist the configured competition schedules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if storeDir != "" {
				cfg.StoreDir = storeDir
			}
			if workers > 0 {
				cfg.MaxWorkers = workers
			}

			logger := logging.NewJSON(cfg.LogLevel).With(
				"service", cfg.ServiceName,
				"version", cfg.ServiceVersion,
				"env", cfg.AppEnv,
			)
			logging.SetDefault(logger)
			defer logger.Sync()

			targets := buildTargets(season, leagues, cups)
			if len(targets) == 0 {
				return fmt.Errorf("at least one --league or --cup is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSync(ctx, cfg, logger, targets)
		},
	}

	cmd.Flags().StringVar(&season, "season", "", "season to sync, e.g. 2025-2026")
	cmd.Flags().StringSliceVar(&leagues, "league", nil, "league competition slug, repeatable")
	cmd.Flags().StringSliceVar(&cups, "cup", nil, "cup competition slug, repeatable")
	cmd.Flags().StringVar(&storeDir, "store-dir", "", "override the store directory")
	cmd.Flags().IntVar(&workers, "workers", 0, "override the worker count")
	_ = cmd.MarkFlagRequired("season")

	return cmd
}

func buildTargets(season string, leagues, cups []string) []usecase.CompetitionTarget {
	targets := make([]usecase.CompetitionTarget, 0, len(leagues)+len(cups))
	for _, competition := range leagues {
		targets = append(targets, usecase.CompetitionTarget{
			Competition: competition,
			Family:      schedule.FamilyLeague,
			Season:      season,
		})
	}
	for _, competition := range cups {
		targets = append(targets, usecase.CompetitionTarget{
			Competition: competition,
			Family:      schedule.FamilyCup,
			Season:      season,
		})
	}
	return targets
}

func runSync(ctx context.Context, cfg config.Config, logger *logging.Logger, targets []usecase.CompetitionTarget) error {
	var resolver team.Resolver
	if cfg.TeamAliasFile != "" {
		table, err := team.LoadAliasCSV(cfg.TeamAliasFile)
		if err != nil {
			return err
		}
		logger.Info("team alias table loaded", "path", cfg.TeamAliasFile, "aliases", table.Len())
		resolver = table
	} else {
		logger.Warn("no team alias file configured, team identities stay unresolved")
	}

	stores, err := buildStores(ctx, cfg, targets)
	if err != nil {
		return err
	}

	fetcher := worldfootball.NewClient(worldfootball.ClientConfig{
		BaseURLs:   cfg.WFBaseURLs,
		Timeout:    cfg.WFTimeout,
		MaxRetries: cfg.WFMaxRetries,
		Logger:     logger,
	})

	service := usecase.NewSyncService(fetcher, stores, usecase.NewNormalizer(resolver, logger), logger, time.Now)
	result, err := service.Run(ctx, usecase.RunInput{Targets: targets, MaxWorkers: cfg.MaxWorkers})
	if err != nil {
		return err
	}

	summary, err := sonic.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	fmt.Println(string(summary))

	if result.SuccessCount == 0 && result.FailedCount > 0 {
		return fmt.Errorf("all %d sync tasks failed", result.FailedCount)
	}
	return nil
}

func buildStores(ctx context.Context, cfg config.Config, targets []usecase.CompetitionTarget) (map[schedule.Family]usecase.ScheduleStore, error) {
	families := make(map[schedule.Family]struct{})
	for _, target := range targets {
		families[target.Family] = struct{}{}
	}

	stores := make(map[schedule.Family]usecase.ScheduleStore, len(families))
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := store.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		for family := range families {
			stores[family] = store.NewPostgresStore(db, "schedule_"+string(family))
		}
	default:
		for family := range families {
			path := filepath.Join(cfg.StoreDir, "schedule_"+string(family)+".json")
			stores[family] = store.NewFileStore(path)
		}
	}
	return stores, nil
}
