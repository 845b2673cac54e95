package store

import (
	"context"
	"errors"

	"github.com/joescharf/yr/internal/models"
)

// ErrNotFound is returned by GetReview when no review has the given ID.
var ErrNotFound = errors.New("review not found")

// ReviewListFilter specifies filters for listing reviews.
type ReviewListFilter struct {
	Year   *int64
	Source models.ReviewSource
	Limit  int // 0 = no limit
}

// Store defines the persistence interface for review history.
type Store interface {
	CreateReview(ctx context.Context, r *models.Review) error
	GetReview(ctx context.Context, id string) (*models.Review, error)
	ListReviews(ctx context.Context, filter ReviewListFilter) ([]*models.Review, error)
	ReviewStats(ctx context.Context) ([]*models.ResultCount, error)
	DeleteReviews(ctx context.Context) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
