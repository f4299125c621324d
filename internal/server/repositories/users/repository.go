package users

import (
	"context"
	"time"

	"github.com/StormRens/Fake-Twitter/internal/server/models"
)

// Repository persists user accounts. Lookups that match nothing return
// common.ErrorNotFound; a duplicate username or email on Create returns
// common.ErrorConflict.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsByUserNameOrEmail(ctx context.Context, userName, email string) (bool, error)
	// ConsumeVerificationToken marks the owner of a still-valid token as
	// verified and clears the token in one step, so a token redeems once.
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	List(ctx context.Context) ([]models.UserSummary, error)
	Delete(ctx context.Context, id string) error
}
