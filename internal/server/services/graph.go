package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/StormRens/Fake-Twitter/internal/common"
	"github.com/StormRens/Fake-Twitter/internal/dbx"
	"github.com/StormRens/Fake-Twitter/internal/logging"
	"github.com/StormRens/Fake-Twitter/internal/server/auth"
	"github.com/StormRens/Fake-Twitter/internal/server/metrics"
	"github.com/StormRens/Fake-Twitter/internal/server/models"
	"github.com/StormRens/Fake-Twitter/internal/server/repositories/repomanager"
)

// GraphService manages who follows whom, public profiles and account removal.
type GraphService struct {
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewGraphService(tx dbx.Transactor, m repomanager.RepositoryManager, logger logging.Logger) *GraphService {
	return &GraphService{tx: tx, repomanager: m, logger: logger.With("module", "graph")}
}

// Follow makes caller follow target. Following twice is not an error.
func (s *GraphService) Follow(ctx context.Context, caller auth.Identity, target string) error {
	followee, err := s.resolveTarget(ctx, caller, target)
	if err != nil {
		return err
	}
	if followee.ID == caller.ID {
		return common.ErrorSelfFollow
	}

	if err := s.repomanager.Follows(s.tx.Conn()).Add(ctx, caller.ID, followee.ID); err != nil {
		return fmt.Errorf("error adding follow: %w", err)
	}

	metrics.RecordGraphEvent("follow")
	s.logger.Debug(ctx, "follow", "follower", caller.ID, "followee", followee.ID)
	return nil
}

// Unfollow removes the edge if present; a missing edge is not an error.
func (s *GraphService) Unfollow(ctx context.Context, caller auth.Identity, target string) error {
	followee, err := s.resolveTarget(ctx, caller, target)
	if err != nil {
		return err
	}

	if err := s.repomanager.Follows(s.tx.Conn()).Remove(ctx, caller.ID, followee.ID); err != nil {
		return fmt.Errorf("error removing follow: %w", err)
	}

	metrics.RecordGraphEvent("unfollow")
	s.logger.Debug(ctx, "unfollow", "follower", caller.ID, "followee", followee.ID)
	return nil
}

func (s *GraphService) Followers(ctx context.Context, username string) ([]models.UserSummary, error) {
	user, err := s.userByName(ctx, username)
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.Follows(s.tx.Conn()).Followers(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing followers: %w", err)
	}
	return list, nil
}

func (s *GraphService) Following(ctx context.Context, username string) ([]models.UserSummary, error) {
	user, err := s.userByName(ctx, username)
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.Follows(s.tx.Conn()).Following(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing following: %w", err)
	}
	return list, nil
}

// Profile returns the public page of username. caller may be nil, in which
// case IsFollowing is false.
func (s *GraphService) Profile(ctx context.Context, caller *auth.Identity, username string) (*models.Profile, error) {
	user, err := s.userByName(ctx, username)
	if err != nil {
		return nil, err
	}

	conn := s.tx.Conn()
	followsRepo := s.repomanager.Follows(conn)

	followers, following, err := followsRepo.Counts(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error counting follows: %w", err)
	}

	posts, err := s.repomanager.Posts(conn).ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}

	isFollowing := false
	if caller != nil {
		isFollowing, err = followsRepo.Exists(ctx, caller.ID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("error checking follow: %w", err)
		}
	}

	return &models.Profile{
		UserName:       user.UserName,
		FollowersCount: followers,
		FollowingCount: following,
		Posts:          posts,
		IsFollowing:    isFollowing,
	}, nil
}

// DeleteAccount removes username together with every follow edge touching
// it and every post it wrote. Only the account owner may do this.
func (s *GraphService) DeleteAccount(ctx context.Context, caller auth.Identity, username string) error {
	user, err := s.userByName(ctx, username)
	if err != nil {
		return err
	}
	if user.ID != caller.ID {
		return common.ErrorForbidden
	}

	var removedPosts int64
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Follows(tx).DeleteAllFor(ctx, user.ID); err != nil {
			return fmt.Errorf("error deleting follows: %w", err)
		}
		n, err := s.repomanager.Posts(tx).DeleteByAuthor(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("error deleting posts: %w", err)
		}
		removedPosts = n
		if err := s.repomanager.Users(tx).Delete(ctx, user.ID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUserNotFound
			}
			return fmt.Errorf("error deleting user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordGraphEvent("delete_account")
	s.logger.Info(ctx, "account deleted", "user_id", user.ID, "posts", removedPosts)
	return nil
}

func (s *GraphService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	list, err := s.repomanager.Users(s.tx.Conn()).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return list, nil
}

// resolveTarget loads target and checks that caller still exists, so a
// token outliving its account cannot create dangling edges.
func (s *GraphService) resolveTarget(ctx context.Context, caller auth.Identity, target string) (*models.User, error) {
	if _, err := s.repomanager.Users(s.tx.Conn()).GetByID(ctx, caller.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading caller: %w", err)
	}
	return s.userByName(ctx, target)
}

func (s *GraphService) userByName(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repomanager.Users(s.tx.Conn()).GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}
