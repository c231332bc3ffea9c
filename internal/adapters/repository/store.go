// Package repository defines the food-record source interface and errors.
package repository

import (
	"context"

	"github.com/okian/foodrank/internal/domain/model"
)

// Source provides read-only access to candidate food records.
type Source interface {
	// Fetch retrieves all candidate records, or a bounded superset
	// sufficient to compute the top K. The returned order is
	// unspecified; ranking happens downstream.
	Fetch(ctx context.Context) ([]model.FoodRecord, error)
}
