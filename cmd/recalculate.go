package cmd

import (
	"context"
	"time"

	"obetrack/internal/config"
	"obetrack/internal/infrastructure/cache"
	"obetrack/internal/infrastructure/database"
	"obetrack/internal/infrastructure/repository"
	interfaces "obetrack/internal/interfaces/infrastructure"
	"obetrack/internal/service"
	"obetrack/pkg/logger"

	"github.com/spf13/cobra"
)

var recalcBatchID uint

// recalculateCmd rebuilds the attainment cache for one batch from the stored
// result rows, the same repair the queue workers run.
var recalculateCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Rebuild the attainment cache for a batch",
	Long: `Recompute the per-student program-level PLO attainment cache for every
student in a batch from the stored course results. Use this after manual
database repairs or when the cache is suspected to be stale.`,
	Run: func(cmd *cobra.Command, args []string) {
		runRecalculate()
	},
}

func init() {
	rootCmd.AddCommand(recalculateCmd)

	recalculateCmd.Flags().UintVar(&recalcBatchID, "batch", 0, "Batch ID to recalculate")
	recalculateCmd.MarkFlagRequired("batch")
}

func runRecalculate() {
	cfg := config.Get()

	db, err := database.NewConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.Username,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	var reportCache interfaces.ReportCache
	if cfg.Cache.Enabled {
		reportCache = cache.NewRedisCacheWithConfig(&cfg.Cache)
	}

	attainmentService := service.NewAttainmentService(
		repository.NewResultRepository(db),
		repository.NewPloCacheRepository(db),
		reportCache,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	if err := attainmentService.RecalculateForBatch(ctx, recalcBatchID); err != nil {
		logger.Fatal("Recalculation failed for batch %d: %v", recalcBatchID, err)
	}
	logger.Info("Batch %d recalculated in %s", recalcBatchID, time.Since(start))
}
