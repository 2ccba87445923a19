package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amberworks/bestflow_backend/config"
	"github.com/amberworks/bestflow_backend/models"
	"github.com/amberworks/bestflow_backend/workflow"
)

func main() {
	pollInterval := flag.Duration("poll-interval", 500*time.Millisecond, "How often to look for pending events")
	batchSize := flag.Int("batch-size", 50, "Max events claimed per poll")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	logger := config.GetLogger()
	publisher, err := workflow.NewPubSubEventPublisher(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pubsub publisher: %v\n", err)
		os.Exit(1)
	}

	dispatcher := workflow.NewOutboxDispatcher(db, publisher, logger)
	dispatcher.PollInterval = *pollInterval
	dispatcher.BatchSize = *batchSize

	logger.WithField("topic", config.PortalEventTopicName()).Info("outbox dispatcher started")
	dispatcher.Run(ctx)
	logger.Info("outbox dispatcher stopped")
}
