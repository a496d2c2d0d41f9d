package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/auth"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/domain"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/repository"
	apperrors "github.com/Dheeraj-pilakkat/BrewHaven/pkg/errors"
)

// RegisterInput holds the parameters for creating an account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput holds the credentials for signing in.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is the outcome of a successful register or login.
type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService handles account registration and sign-in. Login takes a
// deliberate minimum duration so response time does not reveal whether an
// email exists; the wait is interruptible through the request context.
type AuthService struct {
	repo       repository.UserRepository
	jwt        *auth.JWTManager
	logger     *slog.Logger
	loginDelay time.Duration
	bcryptCost int
}

// NewAuthService creates a new auth service.
func NewAuthService(repo repository.UserRepository, jwt *auth.JWTManager, logger *slog.Logger, loginDelay time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		repo:       repo,
		jwt:        jwt,
		logger:     logger,
		loginDelay: loginDelay,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new account and signs the user in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.AlreadyExists("user", "email", email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues an access token. Success and failure
// both take at least loginDelay.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	started := time.Now()
	email := normalizeEmail(input.Email)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	authenticated := err == nil && auth.VerifyPassword(user.PasswordHash, input.Password)

	if err := s.padDelay(ctx, started); err != nil {
		return nil, fmt.Errorf("login interrupted: %w", err)
	}

	if !authenticated {
		s.logger.WarnContext(ctx, "login rejected", slog.String("email", email))
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// GetProfile retrieves the account for the given user ID.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// padDelay sleeps out the remainder of the login delay, honoring cancellation.
func (s *AuthService) padDelay(ctx context.Context, started time.Time) error {
	remaining := s.loginDelay - time.Since(started)
	if remaining <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
