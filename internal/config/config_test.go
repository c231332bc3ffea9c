package config_test

import (
	"testing"
	"time"

	"github.com/okian/foodrank/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Table, convey.ShouldEqual, "FoodReviews")
			convey.So(cfg.Region, convey.ShouldEqual, "ap-southeast-1")
			convey.So(cfg.TopK, convey.ShouldEqual, 10)
			convey.So(cfg.ScanPageSize, convey.ShouldEqual, 100)
			convey.So(cfg.ScanLimit, convey.ShouldEqual, 5_000)
			convey.So(cfg.OutputDir, convey.ShouldEqual, "data")
			convey.So(cfg.JSONFile, convey.ShouldEqual, "top_foods.json")
			convey.So(cfg.ChartFile, convey.ShouldEqual, "top_foods.html")
			convey.So(cfg.IntervalSeconds, convey.ShouldEqual, 0)
			convey.So(cfg.MetricsAddr, convey.ShouldEqual, "")
		})

		convey.Convey("Then duration accessors should convert correctly", func() {
			convey.So(cfg.FetchTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.RetryBackoff(), convey.ShouldEqual, 2*time.Second)
			convey.So(cfg.Interval(), convey.ShouldEqual, time.Duration(0))
		})
	})
}
