package contract

import (
	"context"

	"roomlink-be/internal/model"
)

type SuggestionRepository interface {
	// AllEntries returns the full hint table in fixed (insertion) order.
	// Matching is first-hit-wins, so the order must be stable between calls.
	AllEntries(ctx context.Context) ([]model.CommandSuggestion, error)
	GetOrCreate(ctx context.Context, suggestion *model.CommandSuggestion) (created bool, err error)
	Count(ctx context.Context) (int64, error)
}
