// Package model contains domain models passed between layers.
package model

import "time"

// FoodRecord represents a single food with its review statistics.
// Name is the unique key within a snapshot.
type FoodRecord struct {
	Name        string   `json:"name"`
	ReviewCount int64    `json:"reviewCount"`
	Rating      *float64 `json:"rating,omitempty"`
}

// Snapshot is the ranked, size-bounded result set published at a point
// in time. Foods are ordered by review count descending, name ascending
// on ties.
type Snapshot struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	Foods       []FoodRecord `json:"foods"`
}

// Equal reports whether two snapshots hold the same records in the same
// order with the same generation timestamp.
func (s Snapshot) Equal(other Snapshot) bool {
	if !s.GeneratedAt.Equal(other.GeneratedAt) {
		return false
	}
	if len(s.Foods) != len(other.Foods) {
		return false
	}
	for i := range s.Foods {
		a, b := s.Foods[i], other.Foods[i]
		if a.Name != b.Name || a.ReviewCount != b.ReviewCount {
			return false
		}
		if (a.Rating == nil) != (b.Rating == nil) {
			return false
		}
		if a.Rating != nil && *a.Rating != *b.Rating {
			return false
		}
	}
	return true
}
