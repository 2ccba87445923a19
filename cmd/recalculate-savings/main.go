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
	year := flag.Int("year", utils.CurrentYear(), "Year to recalculate (defaults to the current year)")
	plantID := flag.String("plant-id", "", "Optional: recalculate only one plant (uuid string). If empty, recalculates all active plants.")
	month := flag.Int("month", 0, "Optional: single month (1-12); requires -plant-id")
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
	calc := workflow.NewSavingsCalculator(workflow.NewGormUnitOfWork(db), logger)
	calc.IncludeCroreSavings = config.IncludeCroreSavings()
	if !*skipLock {
		config.ConnectRedis()
		calc.Locker = config.GetRedisLock()
	}

	if *month != 0 {
		if *plantID == "" {
			fmt.Fprintln(os.Stderr, "-month requires -plant-id")
			os.Exit(1)
		}
		aggregate, err := calc.AggregateMonth(ctx, *plantID, *year, *month)
		if err != nil {
			fmt.Fprintf(os.Stderr, "aggregate %s %d-%02d: %v\n", *plantID, *year, *month, err)
			os.Exit(1)
		}
		out, _ := json.MarshalIndent(aggregate, "", "  ")
		fmt.Println(string(out))
		return
	}

	if *plantID != "" {
		for _, ym := range utils.MonthsElapsed(*year) {
			aggregate, err := calc.AggregateMonth(ctx, *plantID, ym.Year, ym.Month)
			if err != nil {
				fmt.Fprintf(os.Stderr, "aggregate %s %d-%02d: %v\n", *plantID, ym.Year, ym.Month, err)
				os.Exit(1)
			}
			out, _ := json.Marshal(aggregate)
			fmt.Println(string(out))
		}
		return
	}

	result, err := calc.RecalculateAll(ctx, *year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recalculate savings %d: %v\n", *year, err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}
