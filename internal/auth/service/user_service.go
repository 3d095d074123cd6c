package service

import (
	"context"
	"fmt"
	"time"

	"github.com/SirapobM/Api-test/internal/auth/domain"
	"github.com/SirapobM/Api-test/internal/auth/dto"
	autherror "github.com/SirapobM/Api-test/internal/errors"
	"github.com/SirapobM/Api-test/internal/logging"
	"github.com/SirapobM/Api-test/internal/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo   domain.UserRepository
	tokens TokenGenerator
	log    logging.Logger
	now    func() time.Time
}

type Option func(*UserService)

// WithClock overrides the service clock. Each operation reads it once and
// uses that instant throughout.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) {
		s.now = now
	}
}

func NewUserService(repo domain.UserRepository, tokens TokenGenerator, log logging.Logger, opts ...Option) *UserService {
	s := &UserService{
		repo:   repo,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*domain.User, error) {
	if violations := validation.Register(input.Name, input.Email, input.Password); len(violations) > 0 {
		return nil, violations
	}

	existing, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, autherror.ErrEmailAlreadyInUse
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()

	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashed),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error) {
	if violations := validation.Login(input.Email, input.Password); len(violations) > 0 {
		return nil, violations
	}

	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	// A missing user and a wrong password fail identically.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, autherror.ErrInvalidCredentials
	}

	now := s.now()

	accessToken, err := s.tokens.NewToken()
	if err != nil {
		return nil, err
	}

	accessExpiry := now.Add(s.tokens.AccessTokenTTL())
	record := &domain.AccessToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     accessToken,
		IssuedAt:  now,
		ExpiresAt: accessExpiry,
	}
	if err := s.repo.StoreAccessToken(ctx, record); err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.NewToken()
	if err != nil {
		return nil, err
	}

	// Overwrites any previous refresh token; the old one dies immediately.
	refreshExpiry := now.Add(s.tokens.RefreshTokenTTL())
	if err := s.repo.SetRefreshToken(ctx, user.ID, refreshToken, refreshExpiry); err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		User:                  dto.NewUserOutput(user),
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiry,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExpiry,
	}, nil
}

// Refresh trades a live refresh token for a fresh access token. Every access
// token the owner holds is revoked first; the refresh token itself is not
// rotated and keeps working until its own expiry.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	if refreshToken == "" {
		return nil, autherror.ErrInvalidRefreshToken
	}

	now := s.now()

	accessToken, err := s.tokens.NewToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate new access token: %w", err)
	}

	replacement := &domain.AccessToken{
		ID:        uuid.New().String(),
		Token:     accessToken,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.tokens.AccessTokenTTL()),
	}

	user, err := s.repo.RotateAccessTokens(ctx, refreshToken, now, replacement)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate access tokens: %w", err)
	}
	if user == nil {
		return nil, autherror.ErrInvalidRefreshToken
	}

	s.log.Info(ctx, "rotated access tokens", "user_id", user.ID)

	return &dto.RefreshResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokens.AccessTokenTTL().Seconds()),
	}, nil
}

// Authenticate resolves a presented access token to its owner. Expired tokens
// are rejected but their rows are kept; expiry is a timestamp comparison, not
// a delete.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, autherror.ErrUnauthenticated
	}

	user, record, err := s.repo.GetByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrUnauthenticated
	}

	// Expired at the boundary: now == expiry is already invalid. A zero
	// expiry can never pass.
	if !record.ExpiresAt.After(s.now()) {
		return nil, autherror.ErrUnauthenticated
	}

	return user, nil
}

// Logout revokes every access token the caller holds. Revoking an empty set
// is a no-op.
func (s *UserService) Logout(ctx context.Context, caller *domain.User) error {
	return s.repo.RevokeAccessTokens(ctx, caller.ID)
}

func (s *UserService) UpdateUser(ctx context.Context, id string, input dto.UpdateUserInput) (*domain.User, error) {
	if violations := validation.Update(input.Name, input.Email, input.Password, input.PasswordConfirmation); len(violations) > 0 {
		return nil, violations
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrUserNotFound
	}

	if input.Email != nil && *input.Email != user.Email {
		inUse, err := s.repo.EmailInUse(ctx, *input.Email, id)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, autherror.ErrEmailAlreadyInUse
		}
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}

	user.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return autherror.ErrUserNotFound
	}

	return nil
}
