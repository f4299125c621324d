package memory

import (
	"context"
	"sort"
	"time"

	"github.com/StormRens/Fake-Twitter/internal/common"
	"github.com/StormRens/Fake-Twitter/internal/server/models"
)

type userRepo struct {
	s  *Store
	tx *txn
}

func (r *userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.st.users {
		if u.UserName == user.UserName || u.Email == user.Email {
			return nil, common.ErrorConflict
		}
		if user.VerificationToken != nil && u.VerificationToken != nil && *u.VerificationToken == *user.VerificationToken {
			return nil, common.ErrorConflict
		}
	}
	if _, ok := r.s.st.users[user.ID]; ok {
		return nil, common.ErrorConflict
	}

	now := r.s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.st.putUser(r.tx, *user)

	return user, nil
}

func (r *userRepo) GetByUserName(_ context.Context, userName string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.st.users {
		if u.UserName == userName {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.st.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *userRepo) ExistsByUserNameOrEmail(_ context.Context, userName, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.st.users {
		if u.UserName == userName || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) ConsumeVerificationToken(_ context.Context, token string, now time.Time) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.st.users {
		if u.VerificationToken == nil || *u.VerificationToken != token {
			continue
		}
		if u.VerificationTokenExpiresAt == nil || !u.VerificationTokenExpiresAt.After(now) {
			return nil, common.ErrorNotFound
		}
		u.IsVerified = true
		u.VerificationToken = nil
		u.VerificationTokenExpiresAt = nil
		u.UpdatedAt = now
		r.s.st.putUser(r.tx, u)
		return &u, nil
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) List(_ context.Context) ([]models.UserSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]models.UserSummary, 0, len(r.s.st.users))
	for _, u := range r.s.st.users {
		result = append(result, u.Summary())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserName < result[j].UserName })
	return result, nil
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.users[id]; !ok {
		return common.ErrorNotFound
	}
	r.s.st.dropUser(r.tx, id)

	// mirror ON DELETE CASCADE
	for e := range r.s.st.follows {
		if e.follower == id || e.followee == id {
			r.s.st.dropEdge(r.tx, e)
		}
	}
	for pid, p := range r.s.st.posts {
		if p.AuthorID == id {
			r.s.st.dropPost(r.tx, pid)
		}
	}
	return nil
}
