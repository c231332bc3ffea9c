// Package seed fills a food-review table with sample records so the
// pipeline can be exercised against a real or local DynamoDB.
package seed

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/okian/foodrank/pkg/logger"
)

// batchSize is the DynamoDB BatchWriteItem request cap.
const batchSize = 25

// Ranges for generated review statistics.
const (
	maxReviewCount = 500
	minRating      = 1.0
	maxRating      = 5.0
)

// menu is the base set of generated food names; counts beyond it get
// uuid-suffixed names to stay unique.
var menu = []string{
	"laksa", "satay", "rendang", "nasi lemak", "char kway teow",
	"chilli crab", "hainanese chicken rice", "roti prata", "bak kut teh",
	"hokkien mee", "mee goreng", "otak-otak", "kaya toast", "popiah",
	"fish head curry",
}

// Config holds configuration for a seeding run.
type Config struct {
	Table string // target table name
	Count int    // number of records to generate
	Seed  int64  // RNG seed for reproducible data
}

// BatchWriteAPI is the subset of the DynamoDB client used by the seeder.
type BatchWriteAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// record mirrors the table schema written for each sample food.
type record struct {
	Name        string  `dynamodbav:"name"`
	ReviewCount int64   `dynamodbav:"review_count"`
	Rating      float64 `dynamodbav:"rating"`
	ReviewID    string  `dynamodbav:"review_id"`
}

// Generate produces count sample records with unique names.
func Generate(cfg *Config) []record {
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic seed for reproducible data
	records := make([]record, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		name := menu[i%len(menu)]
		if i >= len(menu) {
			name = fmt.Sprintf("%s-%s", name, uuid.NewString()[:8])
		}
		rating := minRating + rng.Float64()*(maxRating-minRating)
		records = append(records, record{
			Name:        name,
			ReviewCount: rng.Int63n(maxReviewCount + 1),
			Rating:      float64(int(rating*10)) / 10,
			ReviewID:    uuid.NewString(),
		})
	}
	return records
}

// Run generates sample records and writes them in batches of 25.
// Unprocessed items are re-submitted once before failing.
func Run(ctx context.Context, client BatchWriteAPI, cfg *Config) error {
	records := Generate(cfg)
	log := logger.Get()

	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}

		requests := make([]ddbtypes.WriteRequest, 0, end-start)
		for _, rec := range records[start:end] {
			item, err := attributevalue.MarshalMap(rec)
			if err != nil {
				return fmt.Errorf("marshal record %q: %w", rec.Name, err)
			}
			requests = append(requests, ddbtypes.WriteRequest{
				PutRequest: &ddbtypes.PutRequest{Item: item},
			})
		}

		if err := writeBatch(ctx, client, cfg.Table, requests); err != nil {
			return err
		}
		log.Debug(ctx, "batch written",
			logger.Int("from", start),
			logger.Int("to", end),
		)
	}

	log.Info(ctx, "seeding complete",
		logger.String("table", cfg.Table),
		logger.Int("records", len(records)),
	)
	return nil
}

func writeBatch(ctx context.Context, client BatchWriteAPI, table string, requests []ddbtypes.WriteRequest) error {
	out, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]ddbtypes.WriteRequest{table: requests},
	})
	if err != nil {
		return fmt.Errorf("batch write: %w", err)
	}

	if leftover := out.UnprocessedItems[table]; len(leftover) > 0 {
		out, err = client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]ddbtypes.WriteRequest{table: leftover},
		})
		if err != nil {
			return fmt.Errorf("batch write retry: %w", err)
		}
		if len(out.UnprocessedItems[table]) > 0 {
			return fmt.Errorf("batch write: %d items unprocessed after retry", len(out.UnprocessedItems[table]))
		}
	}
	return nil
}
