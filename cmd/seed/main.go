package main

import (
	"context"
	"flag"
	"os"
	"time"

	repository "github.com/okian/foodrank/internal/adapters/repository"
	"github.com/okian/foodrank/internal/seed"
	"github.com/okian/foodrank/pkg/logger"
)

// Default configuration constants.
const (
	defaultCount   = 100
	defaultSeed    = 42
	defaultTimeout = 2 * time.Minute
)

func main() {
	var (
		table    = flag.String("table", "FoodReviews", "Target DynamoDB table")
		region   = flag.String("region", "ap-southeast-1", "AWS region")
		endpoint = flag.String("endpoint", "", "DynamoDB endpoint override (local testing)")
		count    = flag.Int("count", defaultCount, "Number of sample records to write")
		rngSeed  = flag.Int64("seed", defaultSeed, "RNG seed for reproducible data")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := repository.NewClient(ctx, *region, *endpoint)
	if err != nil {
		logger.Get().Error(ctx, "failed to build DynamoDB client", logger.Error(err))
		os.Exit(1)
	}

	cfg := &seed.Config{
		Table: *table,
		Count: *count,
		Seed:  *rngSeed,
	}
	if err := seed.Run(ctx, client, cfg); err != nil {
		logger.Get().Error(ctx, "seeding failed", logger.Error(err))
		os.Exit(1)
	}
}
