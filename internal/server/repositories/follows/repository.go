// Package follows stores the directed follow graph as one row per edge.
// A row (follower, followee) puts follower in followee's followers and
// followee in follower's following, so both sides change together.
package follows

import (
	"context"

	"github.com/StormRens/Fake-Twitter/internal/server/models"
)

type Repository interface {
	// Add is a no-op when the edge already exists.
	Add(ctx context.Context, followerID, followeeID string) error
	// Remove is a no-op when the edge does not exist.
	Remove(ctx context.Context, followerID, followeeID string) error
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	Followers(ctx context.Context, userID string) ([]models.UserSummary, error)
	Following(ctx context.Context, userID string) ([]models.UserSummary, error)
	Counts(ctx context.Context, userID string) (followers, following int, err error)
	// DeleteAllFor removes every edge touching userID.
	DeleteAllFor(ctx context.Context, userID string) error
}
