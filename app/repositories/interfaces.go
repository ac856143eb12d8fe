package repositories

import (
	"context"

	"strategyboard/app/models"
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	// Create assigns the next id and stores the post.
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	// ListRecent returns posts newest first by creation time, ties broken
	// by id descending.
	ListRecent(ctx context.Context, limit, offset int) ([]*models.Post, error)
	// ListLatest returns the limit posts with the highest ids, descending.
	ListLatest(ctx context.Context, limit int) ([]*models.Post, error)
	// ListBefore returns posts with id strictly below cursor, descending.
	ListBefore(ctx context.Context, cursor int64, limit int) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
}
