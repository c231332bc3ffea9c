// Package publish writes snapshot artifacts atomically.
//
// Both artifacts are staged as temp files inside the destination
// directory and moved into place with rename, so readers never observe
// a partially written file. Publishing the same snapshot twice yields
// byte-identical output.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/foodrank/internal/domain/model"
	"github.com/okian/foodrank/pkg/logger"
	"github.com/okian/foodrank/pkg/metrics"
)

// Default artifact names inside the output directory.
const (
	defaultJSONFile  = "top_foods.json"
	defaultChartFile = "top_foods.html"
	defaultTitle     = "Top Reviewed Foods"

	artifactMode = 0o644
)

// Option applies a configuration option to the Publisher.
type Option func(*Publisher)

// WithJSONFile sets the JSON artifact name.
func WithJSONFile(name string) Option {
	return func(p *Publisher) {
		if name != "" {
			p.jsonFile = name
		}
	}
}

// WithChartFile sets the chart artifact name.
func WithChartFile(name string) Option {
	return func(p *Publisher) {
		if name != "" {
			p.chartFile = name
		}
	}
}

// WithChartTitle sets the chart page title.
func WithChartTitle(title string) Option {
	return func(p *Publisher) {
		if title != "" {
			p.chartTitle = title
		}
	}
}

// WithLogger sets a custom logger for the publisher.
func WithLogger(l logger.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.log = l
		}
	}
}

// Publisher writes the JSON snapshot and the chart page under a single
// output directory.
type Publisher struct {
	dir        string
	jsonFile   string
	chartFile  string
	chartTitle string
	log        logger.Logger
}

// New creates a Publisher targeting dir with configuration options.
func New(dir string, opts ...Option) *Publisher {
	p := &Publisher{
		dir:        dir,
		jsonFile:   defaultJSONFile,
		chartFile:  defaultChartFile,
		chartTitle: defaultTitle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// JSONPath returns the final path of the JSON artifact.
func (p *Publisher) JSONPath() string { return filepath.Join(p.dir, p.jsonFile) }

// ChartPath returns the final path of the chart artifact.
func (p *Publisher) ChartPath() string { return filepath.Join(p.dir, p.chartFile) }

// Publish renders both artifacts and moves them into place. Rendering
// and staging happen before any final path is touched; a failure on
// either side leaves the previously published artifacts intact.
func (p *Publisher) Publish(ctx context.Context, snap model.Snapshot) error {
	jsonBytes, err := EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", ErrWrite, err)
	}
	chartBytes, err := renderChart(snap, p.chartTitle)
	if err != nil {
		return fmt.Errorf("%w: render chart: %v", ErrWrite, err)
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	jsonTmp, err := stage(p.dir, jsonBytes)
	if err != nil {
		return err
	}
	chartTmp, err := stage(p.dir, chartBytes)
	if err != nil {
		_ = os.Remove(jsonTmp)
		return err
	}

	if err := os.Rename(jsonTmp, p.JSONPath()); err != nil {
		_ = os.Remove(jsonTmp)
		_ = os.Remove(chartTmp)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	metrics.RecordArtifactWritten()

	if err := os.Rename(chartTmp, p.ChartPath()); err != nil {
		_ = os.Remove(chartTmp)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	metrics.RecordArtifactWritten()

	if p.log != nil {
		p.log.Info(ctx, "snapshot published",
			logger.String("json", p.JSONPath()),
			logger.String("chart", p.ChartPath()),
			logger.Int("foods", len(snap.Foods)),
		)
	}
	return nil
}

// stage writes data to a temp file in dir and returns its path. The file
// is removed on any failure before the final rename.
func stage(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".staging-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	name := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := f.Chmod(artifactMode); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return name, nil
}

// EncodeSnapshot serializes a snapshot as the canonical two-space
// indented JSON document with a trailing newline. Field order is fixed
// by the struct layout, so equal snapshots encode byte-identically.
func EncodeSnapshot(snap model.Snapshot) ([]byte, error) {
	if snap.Foods == nil {
		snap.Foods = []model.FoodRecord{}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeSnapshot parses a previously published JSON artifact.
func DecodeSnapshot(data []byte) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}
