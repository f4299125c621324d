package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/StormRens/Fake-Twitter/internal/common"
	"github.com/StormRens/Fake-Twitter/internal/dbx"
	"github.com/StormRens/Fake-Twitter/internal/logging"
	"github.com/StormRens/Fake-Twitter/internal/server/auth"
	"github.com/StormRens/Fake-Twitter/internal/server/metrics"
	"github.com/StormRens/Fake-Twitter/internal/server/models"
	"github.com/StormRens/Fake-Twitter/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// PostService lists posts and lets authors create, edit and delete their own.
type PostService struct {
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewPostService(tx dbx.Transactor, m repomanager.RepositoryManager, logger logging.Logger) *PostService {
	return &PostService{tx: tx, repomanager: m, logger: logger.With("module", "posts")}
}

func (s *PostService) ListAll(ctx context.Context) ([]*models.Post, error) {
	list, err := s.repomanager.Posts(s.tx.Conn()).ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return list, nil
}

// ListByUser returns the posts written by userID. An unknown but well-formed
// id gives an empty list.
func (s *PostService) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	if err := validateID(userID, "Invalid user id"); err != nil {
		return nil, err
	}

	list, err := s.repomanager.Posts(s.tx.Conn()).ListByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return list, nil
}

// ListByFollowing returns posts by everyone userID follows.
func (s *PostService) ListByFollowing(ctx context.Context, userID string) ([]*models.Post, error) {
	if err := validateID(userID, "Invalid user id"); err != nil {
		return nil, err
	}

	conn := s.tx.Conn()
	if _, err := s.repomanager.Users(conn).GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	list, err := s.repomanager.Posts(conn).ListFollowedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return list, nil
}

func (s *PostService) Create(ctx context.Context, caller auth.Identity, title, description string) (*models.Post, error) {
	if strings.TrimSpace(title) == "" {
		return nil, common.NewRequestError("Title is required")
	}

	conn := s.tx.Conn()
	if _, err := s.repomanager.Users(conn).GetByID(ctx, caller.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading author: %w", err)
	}

	post := &models.Post{
		ID:          uuid.NewString(),
		AuthorID:    caller.ID,
		Title:       title,
		Description: description,
	}
	created, err := s.repomanager.Posts(conn).Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	metrics.RecordPostEvent("create")
	s.logger.Debug(ctx, "post created", "post_id", created.ID, "author_id", caller.ID)
	return created, nil
}

// Edit applies patch to a post owned by caller.
func (s *PostService) Edit(ctx context.Context, caller auth.Identity, postID string, patch models.PostPatch) (*models.Post, error) {
	if err := validateID(postID, "Invalid post id"); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, common.NewRequestError("Nothing to update")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, common.NewRequestError("Title cannot be empty")
	}

	var updated *models.Post
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)
		if err := s.checkAuthor(ctx, repo.GetByID, caller, postID); err != nil {
			return err
		}
		p, err := repo.Update(ctx, postID, patch)
		if err != nil {
			return s.postErr("error updating post", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPostEvent("edit")
	return updated, nil
}

// Delete removes a post owned by caller.
func (s *PostService) Delete(ctx context.Context, caller auth.Identity, postID string) error {
	if err := validateID(postID, "Invalid post id"); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)
		if err := s.checkAuthor(ctx, repo.GetByID, caller, postID); err != nil {
			return err
		}
		if err := repo.Delete(ctx, postID); err != nil {
			return s.postErr("error deleting post", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordPostEvent("delete")
	s.logger.Debug(ctx, "post deleted", "post_id", postID, "author_id", caller.ID)
	return nil
}

func (s *PostService) checkAuthor(ctx context.Context, get func(context.Context, string) (*models.Post, error), caller auth.Identity, postID string) error {
	post, err := get(ctx, postID)
	if err != nil {
		return s.postErr("error loading post", err)
	}
	if post.AuthorID != caller.ID {
		return common.ErrorForbidden
	}
	return nil
}

func (s *PostService) postErr(msg string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorPostNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func validateID(id, msg string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.NewRequestError(msg)
	}
	return nil
}
