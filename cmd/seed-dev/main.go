package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/amberworks/bestflow_backend/config"
	"github.com/amberworks/bestflow_backend/models"
	"github.com/amberworks/bestflow_backend/utils"
	"github.com/amberworks/bestflow_backend/workflow"
	"github.com/shopspring/decimal"
)

// Seeds a small but complete dev dataset: plants, users, categories,
// approved practices, one benchmarked and copied practice, and the derived
// rollups. Re-running wipes nothing; pass a fresh database.

func main() {
	year := flag.Int("year", utils.CurrentYear(), "Year for seeded submission dates")
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
	active := true

	plants := []models.Plant{
		{Name: "Amberworks Pune", ShortName: "PUN", Division: "West", IsActive: &active},
		{Name: "Amberworks Chennai", ShortName: "CHE", Division: "South", IsActive: &active},
		{Name: "Amberworks Haridwar", ShortName: "HAR", Division: "North", IsActive: &active},
	}
	for i := range plants {
		if err := db.WithContext(ctx).Create(&plants[i]).Error; err != nil {
			fmt.Fprintf(os.Stderr, "seed plant %s: %v\n", plants[i].Name, err)
			os.Exit(1)
		}
	}

	category := models.Category{Name: "Energy Efficiency", Description: "Power and utility consumption improvements"}
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		fmt.Fprintf(os.Stderr, "seed category: %v\n", err)
		os.Exit(1)
	}

	users := []models.User{
		{Email: "hq.admin@amberworks.example", FullName: "HQ Admin", Role: models.UserRoleHqAdmin},
		{Email: "pune.user@amberworks.example", FullName: "Pune Engineer", Role: models.UserRolePlantUser, PlantId: &plants[0].Id},
		{Email: "chennai.user@amberworks.example", FullName: "Chennai Engineer", Role: models.UserRolePlantUser, PlantId: &plants[1].Id},
	}
	for i := range users {
		if err := db.WithContext(ctx).Create(&users[i]).Error; err != nil {
			fmt.Fprintf(os.Stderr, "seed user %s: %v\n", users[i].Email, err)
			os.Exit(1)
		}
	}

	submitted := time.Date(*year, 2, 10, 0, 0, 0, 0, time.UTC)
	savings := decimal.RequireFromString("12.5")
	practice := models.BestPractice{
		Title:             "Compressed air leak audit",
		Description:       "Weekly ultrasonic leak survey of the compressed air network",
		CategoryId:        category.Id,
		SubmittedByUserId: users[1].Id,
		PlantId:           plants[0].Id,
		ProblemStatement:  "Compressed air leaks were costing roughly 8% of compressor output",
		Solution:          "Ultrasonic detector survey and tagged repair backlog, closed weekly",
		SavingsAmount:     &savings,
		SavingsCurrency:   models.SavingsCurrencyLakhs,
		SavingsPeriod:     models.SavingsPeriodAnnually,
		Status:            models.PracticeStatusApproved,
		SubmittedDate:     &submitted,
	}
	if err := db.WithContext(ctx).Create(&practice).Error; err != nil {
		fmt.Fprintf(os.Stderr, "seed practice: %v\n", err)
		os.Exit(1)
	}

	uow := workflow.NewGormUnitOfWork(db)

	manager := workflow.NewBenchmarkManager(uow, logger)
	if _, err := manager.Benchmark(ctx, practice.Id, users[0].Id); err != nil {
		fmt.Fprintf(os.Stderr, "benchmark: %v\n", err)
		os.Exit(1)
	}

	tracker := workflow.NewCopyTracker(uow, logger)
	if _, err := tracker.RecordCopy(ctx, workflow.CopyInput{
		OriginalPracticeId: practice.Id,
		CopyingPlantId:     plants[1].Id,
		CopiedByUserId:     users[2].Id,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "copy: %v\n", err)
		os.Exit(1)
	}

	calc := workflow.NewSavingsCalculator(uow, logger)
	calc.IncludeCroreSavings = config.IncludeCroreSavings()
	if _, err := calc.RecalculateAll(ctx, *year); err != nil {
		fmt.Fprintf(os.Stderr, "recalculate savings: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("dev data seeded")
}
