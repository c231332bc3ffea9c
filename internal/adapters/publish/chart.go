package publish

import (
	"bytes"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/okian/foodrank/internal/domain/model"
)

// chartID pins the element id go-echarts would otherwise randomize, so
// rendering the same snapshot twice produces identical bytes.
const chartID = "top-foods"

// renderChart renders the snapshot as a static bar-chart page.
func renderChart(snap model.Snapshot, title string) ([]byte, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:   chartID,
			PageTitle: title,
			Width:     "900px",
			Height:    "520px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "generated " + snap.GeneratedAt.UTC().Format(time.RFC3339),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	names := make([]string, 0, len(snap.Foods))
	values := make([]opts.BarData, 0, len(snap.Foods))
	for _, f := range snap.Foods {
		names = append(names, f.Name)
		values = append(values, opts.BarData{Value: f.ReviewCount})
	}
	bar.SetXAxis(names).AddSeries("reviews", values)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
