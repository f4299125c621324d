// Package services contains server-side business logic. This file implements
// AccountService, which handles registration, email verification and login.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/StormRens/Fake-Twitter/internal/common"
	"github.com/StormRens/Fake-Twitter/internal/dbx"
	"github.com/StormRens/Fake-Twitter/internal/logging"
	"github.com/StormRens/Fake-Twitter/internal/server/auth"
	"github.com/StormRens/Fake-Twitter/internal/server/config"
	"github.com/StormRens/Fake-Twitter/internal/server/metrics"
	"github.com/StormRens/Fake-Twitter/internal/server/models"
	"github.com/StormRens/Fake-Twitter/internal/server/notify"
	"github.com/StormRens/Fake-Twitter/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// verificationTokenBytes is the entropy of a verification token before hex encoding.
const verificationTokenBytes = 32

// userNamePattern keeps usernames addressable as a single /user/{username} path segment.
var userNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,32}$`)

// Session is the result of a successful verification or login.
type Session struct {
	Token string
	User  models.UserSummary
}

// AccountService provides the account lifecycle:
// - Register: create an unverified user and mail the verification link
// - Verify: redeem a verification token and start a session
// - Login: check credentials of a verified user and start a session
type AccountService struct {
	tx                   dbx.Transactor
	repomanager          repomanager.RepositoryManager
	tokens               *auth.Tokens
	hasher               *auth.Argon2
	notifier             notify.Notifier
	backendURL           string
	verificationValidity time.Duration
	logger               logging.Logger
	now                  func() time.Time
}

// NewAccountService constructs an AccountService using repositories and server config.
func NewAccountService(tx dbx.Transactor, m repomanager.RepositoryManager, tokens *auth.Tokens,
	notifier notify.Notifier, cfg *config.Config, logger logging.Logger) *AccountService {
	return &AccountService{
		tx:                   tx,
		repomanager:          m,
		tokens:               tokens,
		hasher:               auth.NewArgon2(),
		notifier:             notifier,
		backendURL:           cfg.BackendURL,
		verificationValidity: cfg.VerificationTokenValidityDuration,
		logger:               logger.With("module", "accounts"),
		now:                  time.Now,
	}
}

// SetHasher replaces the password hasher, e.g. with cheaper parameters in tests.
func (s *AccountService) SetHasher(h *auth.Argon2) {
	s.hasher = h
}

// Register creates an unverified user and sends the verification mail in
// the same transaction: if the mail is not accepted the user is not kept,
// so the caller can simply retry.
func (s *AccountService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	user, err := s.register(ctx, email, username, password)
	metrics.RecordAccountEvent("register", err == nil)
	return user, err
}

func (s *AccountService) register(ctx context.Context, email, username, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return nil, common.NewRequestError("All fields required")
	}
	if !userNamePattern.MatchString(username) || username == "." || username == ".." {
		return nil, common.NewRequestError("Username may only contain letters, digits, '.', '_' and '-' (max 32)")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	token, err := common.MakeRandHexString(verificationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating verification token: %w", err)
	}
	expires := s.now().Add(s.verificationValidity)

	user := &models.User{
		ID:                         uuid.NewString(),
		Email:                      email,
		UserName:                   username,
		PasswordHash:               hash,
		VerificationToken:          &token,
		VerificationTokenExpiresAt: &expires,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		exists, err := repo.ExistsByUserNameOrEmail(ctx, username, email)
		if err != nil {
			return fmt.Errorf("error checking user: %w", err)
		}
		if exists {
			return common.ErrorConflict
		}

		if _, err := repo.Create(ctx, user); err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return err
			}
			return fmt.Errorf("error creating user: %w", err)
		}

		msg := notify.VerificationMessage{
			To:       email,
			UserName: username,
			Link:     notify.VerificationLink(s.backendURL, token),
		}
		if err := s.notifier.SendVerification(ctx, msg); err != nil {
			return fmt.Errorf("error sending verification mail: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "username", user.UserName)
	return user, nil
}

// Verify redeems a verification token. Unknown, expired and already used
// tokens all yield common.ErrorInvalidVerificationToken.
func (s *AccountService) Verify(ctx context.Context, token string) (*Session, error) {
	session, err := s.verify(ctx, token)
	metrics.RecordAccountEvent("verify", err == nil)
	return session, err
}

func (s *AccountService) verify(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, common.NewRequestError("Missing token")
	}

	repo := s.repomanager.Users(s.tx.Conn())
	user, err := repo.ConsumeVerificationToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidVerificationToken
		}
		return nil, fmt.Errorf("error redeeming verification token: %w", err)
	}

	s.logger.Info(ctx, "email verified", "user_id", user.ID)
	return s.startSession(user)
}

// Login checks username and password. Unknown users and wrong passwords
// are indistinguishable to the caller; unverified users get
// common.ErrorNotVerified before the password is looked at.
func (s *AccountService) Login(ctx context.Context, username, password string) (*Session, error) {
	session, err := s.login(ctx, username, password)
	metrics.RecordAccountEvent("login", err == nil)
	return session, err
}

func (s *AccountService) login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, common.NewRequestError("Missing credentials")
	}

	repo := s.repomanager.Users(s.tx.Conn())
	user, err := repo.GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !user.IsVerified {
		return nil, common.ErrorNotVerified
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("error checking password: %w", err)
	}
	if !ok {
		s.logger.Warn(ctx, "failed login", "username", username)
		return nil, common.ErrorInvalidCredentials
	}

	return s.startSession(user)
}

func (s *AccountService) startSession(user *models.User) (*Session, error) {
	summary := user.Summary()
	token, err := s.tokens.Issue(auth.Identity{ID: summary.ID, Username: summary.UserName})
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}
	return &Session{Token: token, User: summary}, nil
}
