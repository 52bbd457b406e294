// Command seed fills the database with demo content.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/logging"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numPosts := flag.Int("posts", 120, "Number of posts to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gdb, err := db.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.SeedDemo(gdb, *numUsers, *numPosts, logger); err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}
	logger.Info("Seeding complete", zap.String("password", db.DemoPassword))
}
