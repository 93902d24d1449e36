package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/formpost/formpost/internal/auth"
	"github.com/formpost/formpost/internal/metrics"
	"github.com/formpost/formpost/internal/model"
	"github.com/formpost/formpost/internal/repository"
)

const maxSiteKeyRetries = 3

// LoginResult is returned by successful logins.
type LoginResult struct {
	Token   string
	SiteKey string
}

// AccountService handles registration and login.
type AccountService struct {
	owners     OwnerStore
	tokens     *auth.TokenIssuer
	metrics    metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
	newSiteKey func() (string, error)
}

// NewAccountService creates a new AccountService.
func NewAccountService(owners OwnerStore, tokens *auth.TokenIssuer, recorder metrics.Recorder, logger *slog.Logger) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		owners:     owners,
		tokens:     tokens,
		metrics:    recorder,
		logger:     logger.With("component", "account"),
		now:        time.Now,
		newSiteKey: auth.GenerateSiteKey,
	}
}

// Register creates a password owner and returns its site key.
func (s *AccountService) Register(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}

	if _, err := s.owners.GetOwnerByEmail(ctx, email); err == nil {
		return "", ErrEmailExists
	} else if !errors.Is(err, repository.ErrOwnerNotFound) {
		return "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	owner, err := s.createOwner(ctx, &model.Owner{Email: email, PasswordHash: hash})
	if err != nil {
		return "", err
	}

	s.metrics.IncOwnerRegistered(metrics.MethodPassword)
	s.logger.InfoContext(ctx, "owner registered", "owner_id", owner.ID, "method", metrics.MethodPassword)
	return owner.SiteKey, nil
}

// Login verifies a password and issues a token. Unknown emails, wrong
// passwords and owners without a password all yield ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	owner, err := s.owners.GetOwnerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			s.metrics.IncLoginAttempt(metrics.StatusFailed)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !owner.HasPassword() {
		s.metrics.IncLoginAttempt(metrics.StatusFailed)
		return nil, ErrInvalidCredentials
	}

	ok, err := auth.VerifyPassword(password, owner.PasswordHash)
	if err != nil {
		s.logger.WarnContext(ctx, "stored password hash unreadable", "owner_id", owner.ID, "error", err)
		s.metrics.IncLoginAttempt(metrics.StatusFailed)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		s.metrics.IncLoginAttempt(metrics.StatusFailed)
		return nil, ErrInvalidCredentials
	}

	return s.issue(owner)
}

// FederatedLogin signs in the owner with the given verified email,
// registering a password-less owner on first sight. Existing owners are
// matched by email only; their federated id is left unchanged.
func (s *AccountService) FederatedLogin(ctx context.Context, googleID, email string) (*LoginResult, error) {
	if googleID == "" || email == "" {
		return nil, ErrMissingCredentials
	}

	owner, err := s.owners.GetOwnerByEmail(ctx, email)
	if errors.Is(err, repository.ErrOwnerNotFound) {
		owner, err = s.createOwner(ctx, &model.Owner{Email: email, GoogleID: googleID})
		if errors.Is(err, ErrEmailExists) {
			// Lost a race with a concurrent first login
			owner, err = s.owners.GetOwnerByEmail(ctx, email)
		} else if err == nil {
			s.metrics.IncOwnerRegistered(metrics.MethodGoogle)
			s.logger.InfoContext(ctx, "owner registered", "owner_id", owner.ID, "method", metrics.MethodGoogle)
		}
	}
	if err != nil {
		return nil, err
	}

	return s.issue(owner)
}

func (s *AccountService) issue(owner *model.Owner) (*LoginResult, error) {
	token, err := s.tokens.Issue(owner)
	if err != nil {
		return nil, err
	}
	s.metrics.IncLoginAttempt(metrics.StatusSuccess)
	return &LoginResult{Token: token, SiteKey: owner.SiteKey}, nil
}

// createOwner assigns id, site key and timestamps, retrying on site key collisions.
func (s *AccountService) createOwner(ctx context.Context, owner *model.Owner) (*model.Owner, error) {
	owner.ID = ulid.Make().String()
	owner.CreatedAt = s.now().UTC()
	if owner.Theme == nil {
		owner.Theme = model.Fields{}
	}

	for attempt := 0; attempt < maxSiteKeyRetries; attempt++ {
		key, err := s.newSiteKey()
		if err != nil {
			return nil, err
		}
		owner.SiteKey = key

		err = s.owners.CreateOwner(ctx, owner)
		switch {
		case err == nil:
			return owner, nil
		case errors.Is(err, repository.ErrSiteKeyExists):
			continue
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailExists
		default:
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to generate unique site key after %d attempts", maxSiteKeyRetries)
}
