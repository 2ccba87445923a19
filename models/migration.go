package models

import (
	"log"

	"github.com/amberworks/bestflow_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Plant{}, &Category{}, &User{},
		&BestPractice{}, &BenchmarkedPractice{}, &CopiedPractice{},
		&MonthlySavings{}, &LeaderboardEntry{},
		&Notification{},
		&PortalEventRecord{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
