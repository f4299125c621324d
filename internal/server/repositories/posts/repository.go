package posts

import (
	"context"

	"github.com/StormRens/Fake-Twitter/internal/server/models"
)

// Repository persists posts. All list methods return newest first and
// never return nil slices.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	// ListFollowedBy returns posts written by anyone userID follows.
	ListFollowedBy(ctx context.Context, userID string) ([]*models.Post, error)
	DeleteByAuthor(ctx context.Context, authorID string) (int64, error)
}
