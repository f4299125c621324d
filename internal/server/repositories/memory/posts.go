package memory

import (
	"context"
	"errors"

	"github.com/StormRens/Fake-Twitter/internal/common"
	"github.com/StormRens/Fake-Twitter/internal/server/models"
)

var errUnknownAuthor = errors.New("author does not exist")

type postRepo struct {
	s  *Store
	tx *txn
}

func (r *postRepo) Create(_ context.Context, post *models.Post) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.users[post.AuthorID]; !ok {
		return nil, errUnknownAuthor
	}
	if _, ok := r.s.st.posts[post.ID]; ok {
		return nil, common.ErrorConflict
	}

	now := r.s.now()
	post.CreatedAt, post.UpdatedAt = now, now
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	r.s.st.putPost(r.tx, *post, r.s.nextSeq())

	return post, nil
}

func (r *postRepo) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.st.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *postRepo) Update(_ context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.st.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	p.UpdatedAt = r.s.now()
	r.s.st.putPost(r.tx, p, 0)

	return &p, nil
}

func (r *postRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.posts[id]; !ok {
		return common.ErrorNotFound
	}
	r.s.st.dropPost(r.tx, id)
	return nil
}

func (r *postRepo) ListAll(_ context.Context) ([]*models.Post, error) {
	return r.filter(func(models.Post) bool { return true }), nil
}

func (r *postRepo) ListByAuthor(_ context.Context, authorID string) ([]*models.Post, error) {
	return r.filter(func(p models.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *postRepo) ListFollowedBy(_ context.Context, userID string) ([]*models.Post, error) {
	r.s.mu.RLock()
	followed := map[string]struct{}{}
	for e := range r.s.st.follows {
		if e.follower == userID {
			followed[e.followee] = struct{}{}
		}
	}
	r.s.mu.RUnlock()

	return r.filter(func(p models.Post) bool {
		_, ok := followed[p.AuthorID]
		return ok
	}), nil
}

func (r *postRepo) DeleteByAuthor(_ context.Context, authorID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, p := range r.s.st.posts {
		if p.AuthorID == authorID {
			r.s.st.dropPost(r.tx, id)
			n++
		}
	}
	return n, nil
}

func (r *postRepo) filter(keep func(models.Post) bool) []*models.Post {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*models.Post{}
	for _, p := range r.s.st.posts {
		if keep(p) {
			p := p
			result = append(result, &p)
		}
	}
	r.s.sortNewestFirst(result)
	return result
}
