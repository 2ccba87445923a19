package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amberworks/bestflow_backend/config"
	"github.com/amberworks/bestflow_backend/models"
	"github.com/amberworks/bestflow_backend/models/reports"
	"github.com/amberworks/bestflow_backend/utils"
)

func main() {
	year := flag.Int("year", utils.CurrentYear(), "Report year (defaults to the current year)")
	outDir := flag.String("out-dir", ".", "Directory to write the xlsx files into")
	limit := flag.Int("deployment-limit", 500, "Max rows in the deployment report")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	logger := config.GetLogger()

	exports := []struct {
		name string
		run  func(ctx context.Context, filename string) error
	}{
		{
			name: fmt.Sprintf("leaderboard_%d.xlsx", *year),
			run: func(ctx context.Context, filename string) error {
				return reports.ExportLeaderboardReport(ctx, *year, filename)
			},
		},
		{
			name: fmt.Sprintf("savings_%d.xlsx", *year),
			run: func(ctx context.Context, filename string) error {
				return reports.ExportSavingsReport(ctx, *year, filename)
			},
		},
		{
			name: "deployment_status.xlsx",
			run: func(ctx context.Context, filename string) error {
				return reports.ExportDeploymentReport(ctx, models.Page{Limit: *limit}, filename)
			},
		},
	}

	failed := 0
	for _, e := range exports {
		filename := filepath.Join(*outDir, e.name)
		if err := e.run(ctx, filename); err != nil {
			config.LogError(logger, "cmd/export-reports", "main", "exporting "+e.name, nil, err)
			failed++
			continue
		}
		fmt.Println(filename)
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d exports failed\n", failed, len(exports))
		os.Exit(1)
	}
}
