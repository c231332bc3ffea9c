package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	publish "github.com/okian/foodrank/internal/adapters/publish"
	repository "github.com/okian/foodrank/internal/adapters/repository"
	app "github.com/okian/foodrank/internal/app"
	model "github.com/okian/foodrank/internal/domain/model"
	"github.com/okian/foodrank/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeSource returns canned records or a canned error.
type fakeSource struct {
	records []model.FoodRecord
	err     error
	calls   int
}

func (f *fakeSource) Fetch(_ context.Context) ([]model.FoodRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

// fakePublisher captures the published snapshot.
type fakePublisher struct {
	published []model.Snapshot
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, snap model.Snapshot) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, snap)
	return nil
}

func TestServiceRun(t *testing.T) {
	Convey("Given a service over fake stages", t, func() {
		ctx := context.Background()
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }

		Convey("When the pipeline runs over unordered records", func() {
			src := &fakeSource{records: []model.FoodRecord{
				{Name: "A", ReviewCount: 50},
				{Name: "B", ReviewCount: 90},
				{Name: "C", ReviewCount: 90},
				{Name: "D", ReviewCount: 10},
			}}
			sink := &fakePublisher{}
			svc := app.New(
				app.WithSource(src),
				app.WithPublisher(sink),
				app.WithClock(clock),
			)

			err := svc.Run(ctx)

			Convey("Then the published snapshot is ranked", func() {
				So(err, ShouldBeNil)
				So(len(sink.published), ShouldEqual, 1)
				snap := sink.published[0]
				So(snap.GeneratedAt, ShouldEqual, now)
				names := make([]string, 0, len(snap.Foods))
				for _, f := range snap.Foods {
					names = append(names, f.Name)
				}
				So(fmt.Sprint(names), ShouldEqual, "[B C A D]")
			})
		})

		Convey("When more records exist than the configured top K", func() {
			records := make([]model.FoodRecord, 0, 15)
			for i := 0; i < 15; i++ {
				records = append(records, model.FoodRecord{
					Name:        fmt.Sprintf("food-%02d", i),
					ReviewCount: int64(i),
				})
			}
			sink := &fakePublisher{}
			svc := app.New(
				app.WithSource(&fakeSource{records: records}),
				app.WithPublisher(sink),
				app.WithTopK(5),
				app.WithClock(clock),
			)

			err := svc.Run(ctx)

			Convey("Then only the top K are published", func() {
				So(err, ShouldBeNil)
				So(len(sink.published[0].Foods), ShouldEqual, 5)
				So(sink.published[0].Foods[0].Name, ShouldEqual, "food-14")
			})
		})

		Convey("When the fetch fails", func() {
			src := &fakeSource{err: fmt.Errorf("%w: dial tcp", repository.ErrConnectivity)}
			sink := &fakePublisher{}
			svc := app.New(
				app.WithSource(src),
				app.WithPublisher(sink),
				app.WithClock(clock),
			)

			err := svc.Run(ctx)

			Convey("Then nothing is published and the cause surfaces", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, repository.ErrConnectivity), ShouldBeTrue)
				So(len(sink.published), ShouldEqual, 0)
			})
		})

		Convey("When the publish fails", func() {
			src := &fakeSource{records: []model.FoodRecord{{Name: "A", ReviewCount: 1}}}
			sink := &fakePublisher{err: fmt.Errorf("%w: disk full", publish.ErrWrite)}
			svc := app.New(
				app.WithSource(src),
				app.WithPublisher(sink),
				app.WithClock(clock),
			)

			err := svc.Run(ctx)

			So(err, ShouldNotBeNil)
			So(errors.Is(err, publish.ErrWrite), ShouldBeTrue)
		})

		Convey("When no source or publisher is configured", func() {
			err := app.New().Run(ctx)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestErrorKind(t *testing.T) {
	Convey("Given errors from every pipeline stage", t, func() {
		cases := map[string]error{
			"connectivity": fmt.Errorf("fetch: %w", repository.ErrConnectivity),
			"auth":         fmt.Errorf("fetch: %w", repository.ErrAuth),
			"schema":       fmt.Errorf("fetch: %w", repository.ErrSchema),
			"write":        fmt.Errorf("publish: %w", publish.ErrWrite),
			"internal":     errors.New("unexpected"),
		}
		for kind, err := range cases {
			So(app.ErrorKind(err), ShouldEqual, kind)
		}
	})
}
