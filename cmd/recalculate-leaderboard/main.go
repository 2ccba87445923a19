package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/amberworks/bestflow_backend/config"
	"github.com/amberworks/bestflow_backend/models"
	"github.com/amberworks/bestflow_backend/utils"
	"github.com/amberworks/bestflow_backend/workflow"
)

func main() {
	year := flag.Int("year", utils.CurrentYear(), "Leaderboard year to rebuild (defaults to the current year)")
	skipLock := flag.Bool("skip-lock", false, "Run without the redis mutual-exclusion lock")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	logger := config.GetLogger()
	engine := workflow.NewLeaderboardEngine(workflow.NewGormUnitOfWork(db), logger)
	if !*skipLock {
		config.ConnectRedis()
		engine.Locker = config.GetRedisLock()
	}

	summary, err := engine.Recalculate(ctx, *year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recalculate leaderboard %d: %v\n", *year, err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
}
