// Package rank builds ranked snapshots from raw food records.
package rank

import (
	"sort"
	"time"

	"github.com/okian/foodrank/internal/domain/model"
)

// defaultLimit is the number of records kept in a snapshot.
const defaultLimit = 10

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithLimit sets the maximum snapshot size.
func WithLimit(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.limit = n
		}
	}
}

// Builder produces snapshots ordered by review count descending with
// name-ascending tie-breaks. It performs no I/O and never fails.
type Builder struct {
	limit int
}

// NewBuilder creates a Builder with configuration options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{limit: defaultLimit}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Limit returns the configured snapshot size bound.
func (b *Builder) Limit() int {
	return b.limit
}

// Build ranks records and truncates them to the configured limit.
// Duplicate names collapse to the entry with the highest review count.
// The input slice is not modified; empty input yields a valid empty
// snapshot.
func (b *Builder) Build(records []model.FoodRecord, generatedAt time.Time) model.Snapshot {
	byName := make(map[string]model.FoodRecord, len(records))
	for _, r := range records {
		if prev, ok := byName[r.Name]; ok && prev.ReviewCount >= r.ReviewCount {
			continue
		}
		byName[r.Name] = r
	}

	foods := make([]model.FoodRecord, 0, len(byName))
	for _, r := range byName {
		foods = append(foods, r)
	}
	sort.Slice(foods, func(i, j int) bool {
		if foods[i].ReviewCount != foods[j].ReviewCount {
			return foods[i].ReviewCount > foods[j].ReviewCount
		}
		return foods[i].Name < foods[j].Name
	})

	if len(foods) > b.limit {
		foods = foods[:b.limit]
	}

	return model.Snapshot{
		GeneratedAt: generatedAt.UTC(),
		Foods:       foods,
	}
}
