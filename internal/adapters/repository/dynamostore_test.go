package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	. "github.com/smartystreets/goconvey/convey"

	repository "github.com/okian/foodrank/internal/adapters/repository"
)

// stubScanner replays canned pages or errors per call.
type stubScanner struct {
	outputs []*dynamodb.ScanOutput
	errs    []error
	calls   int
	inputs  []*dynamodb.ScanInput
	block   bool
}

func (s *stubScanner) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	i := s.calls
	s.calls++
	s.inputs = append(s.inputs, in)
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.outputs) {
		return s.outputs[i], nil
	}
	return &dynamodb.ScanOutput{}, nil
}

func item(name string, count string, rating string) map[string]ddbtypes.AttributeValue {
	m := map[string]ddbtypes.AttributeValue{
		"name":         &ddbtypes.AttributeValueMemberS{Value: name},
		"review_count": &ddbtypes.AttributeValueMemberN{Value: count},
	}
	if rating != "" {
		m["rating"] = &ddbtypes.AttributeValueMemberN{Value: rating}
	}
	return m
}

func TestDynamoStoreFetch(t *testing.T) {
	Convey("Given a store backed by a stub client", t, func() {
		ctx := context.Background()

		Convey("When the table yields a single page", func() {
			stub := &stubScanner{outputs: []*dynamodb.ScanOutput{{
				Items: []map[string]ddbtypes.AttributeValue{
					item("laksa", "90", "4.5"),
					item("satay", "50", ""),
				},
			}}}
			store := repository.New(stub, "FoodReviews")

			records, err := store.Fetch(ctx)

			Convey("Then all records decode with optional ratings", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 2)
				So(records[0].Name, ShouldEqual, "laksa")
				So(records[0].ReviewCount, ShouldEqual, 90)
				So(*records[0].Rating, ShouldEqual, 4.5)
				So(records[1].Rating, ShouldBeNil)
			})

			Convey("And the scan targets the configured table", func() {
				So(*stub.inputs[0].TableName, ShouldEqual, "FoodReviews")
			})
		})

		Convey("When the scan paginates", func() {
			lastKey := map[string]ddbtypes.AttributeValue{
				"name": &ddbtypes.AttributeValueMemberS{Value: "laksa"},
			}
			stub := &stubScanner{outputs: []*dynamodb.ScanOutput{
				{
					Items:            []map[string]ddbtypes.AttributeValue{item("laksa", "90", "")},
					LastEvaluatedKey: lastKey,
				},
				{
					Items: []map[string]ddbtypes.AttributeValue{item("satay", "50", "")},
				},
			}}
			store := repository.New(stub, "FoodReviews")

			records, err := store.Fetch(ctx)

			Convey("Then pages are concatenated", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 2)
				So(stub.calls, ShouldEqual, 2)
			})

			Convey("And the second scan resumes from the last key", func() {
				So(stub.inputs[1].ExclusiveStartKey, ShouldNotBeNil)
			})
		})

		Convey("When the scan limit is reached mid-pagination", func() {
			lastKey := map[string]ddbtypes.AttributeValue{
				"name": &ddbtypes.AttributeValueMemberS{Value: "a"},
			}
			stub := &stubScanner{outputs: []*dynamodb.ScanOutput{
				{
					Items: []map[string]ddbtypes.AttributeValue{
						item("a", "1", ""), item("b", "2", ""), item("c", "3", ""),
					},
					LastEvaluatedKey: lastKey,
				},
			}}
			store := repository.New(stub, "FoodReviews", repository.WithScanLimit(2))

			records, err := store.Fetch(ctx)

			Convey("Then fetching stops at the cap", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 2)
				So(stub.calls, ShouldEqual, 1)
			})
		})
	})
}

func TestDynamoStoreSchemaErrors(t *testing.T) {
	Convey("Given records with schema defects", t, func() {
		ctx := context.Background()

		cases := []struct {
			about string
			items []map[string]ddbtypes.AttributeValue
		}{
			{
				about: "a missing name",
				items: []map[string]ddbtypes.AttributeValue{{
					"review_count": &ddbtypes.AttributeValueMemberN{Value: "5"},
				}},
			},
			{
				about: "a missing review count",
				items: []map[string]ddbtypes.AttributeValue{{
					"name": &ddbtypes.AttributeValueMemberS{Value: "laksa"},
				}},
			},
			{
				about: "a negative review count",
				items: []map[string]ddbtypes.AttributeValue{item("laksa", "-1", "")},
			},
		}

		for _, tc := range cases {
			Convey("When a record has "+tc.about, func() {
				stub := &stubScanner{outputs: []*dynamodb.ScanOutput{{Items: tc.items}}}
				store := repository.New(stub, "FoodReviews")

				records, err := store.Fetch(ctx)

				Convey("Then the fetch fails with ErrSchema", func() {
					So(records, ShouldBeNil)
					So(errors.Is(err, repository.ErrSchema), ShouldBeTrue)
				})
			})
		}
	})
}

func TestDynamoStoreErrorClassification(t *testing.T) {
	Convey("Given a store backed by a failing client", t, func() {
		ctx := context.Background()

		Convey("When the service rejects the credentials", func() {
			stub := &stubScanner{errs: []error{&smithy.GenericAPIError{
				Code:    "UnrecognizedClientException",
				Message: "The security token included in the request is invalid.",
			}}}
			store := repository.New(stub, "FoodReviews", repository.WithRetryBackoff(time.Millisecond))

			_, err := store.Fetch(ctx)

			Convey("Then the error is ErrAuth and no retry happens", func() {
				So(errors.Is(err, repository.ErrAuth), ShouldBeTrue)
				So(stub.calls, ShouldEqual, 1)
			})
		})

		Convey("When the transport fails once with retry enabled", func() {
			stub := &stubScanner{
				errs: []error{errors.New("dial tcp: connection refused"), nil},
				outputs: []*dynamodb.ScanOutput{
					nil,
					{Items: []map[string]ddbtypes.AttributeValue{item("laksa", "90", "")}},
				},
			}
			store := repository.New(stub, "FoodReviews", repository.WithRetryBackoff(time.Millisecond))

			records, err := store.Fetch(ctx)

			Convey("Then the single retry succeeds", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
				So(stub.calls, ShouldEqual, 2)
			})
		})

		Convey("When the transport keeps failing", func() {
			stub := &stubScanner{errs: []error{
				errors.New("dial tcp: connection refused"),
				errors.New("dial tcp: connection refused"),
			}}
			store := repository.New(stub, "FoodReviews", repository.WithRetryBackoff(time.Millisecond))

			_, err := store.Fetch(ctx)

			Convey("Then the fetch fails with ErrConnectivity after one retry", func() {
				So(errors.Is(err, repository.ErrConnectivity), ShouldBeTrue)
				So(stub.calls, ShouldEqual, 2)
			})
		})

		Convey("When retries are disabled", func() {
			stub := &stubScanner{errs: []error{errors.New("dial tcp: connection refused")}}
			store := repository.New(stub, "FoodReviews")

			_, err := store.Fetch(ctx)

			Convey("Then the fetch fails on the first attempt", func() {
				So(errors.Is(err, repository.ErrConnectivity), ShouldBeTrue)
				So(stub.calls, ShouldEqual, 1)
			})
		})

		Convey("When the fetch exceeds its timeout", func() {
			stub := &stubScanner{block: true}
			store := repository.New(stub, "FoodReviews",
				repository.WithTimeout(10*time.Millisecond),
			)

			_, err := store.Fetch(ctx)

			Convey("Then the error is ErrConnectivity", func() {
				So(errors.Is(err, repository.ErrConnectivity), ShouldBeTrue)
			})
		})
	})
}
