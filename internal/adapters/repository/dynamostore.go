package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/okian/foodrank/internal/domain/model"
	"github.com/okian/foodrank/pkg/logger"
	"github.com/okian/foodrank/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultPageSize     = int32(100)
	defaultScanLimit    = 5_000
	defaultFetchTimeout = 10 * time.Second
)

// ScanAPI is the subset of the DynamoDB client used by the store.
type ScanAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// foodItem mirrors the table schema of a food-review record.
type foodItem struct {
	Name        string   `dynamodbav:"name"`
	ReviewCount *int64   `dynamodbav:"review_count"`
	Rating      *float64 `dynamodbav:"rating"`
}

// DynamoStore implements Source by scanning a DynamoDB table.
// At the record counts this pipeline handles, a full bounded scan is
// cheaper than maintaining a server-side top-K index.
type DynamoStore struct {
	client       ScanAPI
	table        string
	pageSize     int32
	scanLimit    int
	timeout      time.Duration
	retryBackoff time.Duration
	log          logger.Logger
}

// New creates a DynamoStore for the given table with configuration options.
func New(client ScanAPI, table string, opts ...Option) *DynamoStore {
	s := &DynamoStore{
		client:    client,
		table:     table,
		pageSize:  defaultPageSize,
		scanLimit: defaultScanLimit,
		timeout:   defaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient builds the DynamoDB client from the SDK default chain.
// Credentials come from AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY (or any
// other provider in the chain); endpoint overrides the service endpoint
// for local tables. The SDK retryer is disabled: the store performs its
// own single bounded retry.
func NewClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// Fetch retrieves candidate records with at most one connectivity retry.
func (s *DynamoStore) Fetch(ctx context.Context) ([]model.FoodRecord, error) {
	records, err := s.fetchOnce(ctx)
	if err == nil || s.retryBackoff <= 0 || !errors.Is(err, ErrConnectivity) {
		return records, err
	}

	metrics.RecordFetchRetry()
	if s.log != nil {
		s.log.Warn(ctx, "fetch failed, retrying once",
			logger.Error(err),
			logger.Duration("backoff", s.retryBackoff),
		)
	}
	select {
	case <-ctx.Done():
		return nil, classify(ctx.Err())
	case <-time.After(s.retryBackoff):
	}
	return s.fetchOnce(ctx)
}

// fetchOnce performs one timed scan across pages up to the scan limit.
func (s *DynamoStore) fetchOnce(ctx context.Context) ([]model.FoodRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	records := make([]model.FoodRecord, 0, s.pageSize)
	var startKey map[string]ddbtypes.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			Limit:             aws.Int32(s.pageSize),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, classify(err)
		}

		page, err := decodeItems(out.Items)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)

		if len(records) >= s.scanLimit || len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	if len(records) > s.scanLimit {
		records = records[:s.scanLimit]
	}
	return records, nil
}

// decodeItems converts raw attribute maps into domain records, rejecting
// items that miss required fields.
func decodeItems(items []map[string]ddbtypes.AttributeValue) ([]model.FoodRecord, error) {
	var raw []foodItem
	if err := attributevalue.UnmarshalListOfMaps(items, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	records := make([]model.FoodRecord, 0, len(raw))
	for i, item := range raw {
		switch {
		case item.Name == "":
			return nil, fmt.Errorf("%w: item %d missing name", ErrSchema, i)
		case item.ReviewCount == nil:
			return nil, fmt.Errorf("%w: item %q missing review_count", ErrSchema, item.Name)
		case *item.ReviewCount < 0:
			return nil, fmt.Errorf("%w: item %q has negative review_count %d", ErrSchema, item.Name, *item.ReviewCount)
		}
		records = append(records, model.FoodRecord{
			Name:        item.Name,
			ReviewCount: *item.ReviewCount,
			Rating:      item.Rating,
		})
	}
	return records, nil
}
