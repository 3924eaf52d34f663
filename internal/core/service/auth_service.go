package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskboard/assignment-system/internal/core/domain"
	"github.com/taskboard/assignment-system/internal/core/ports"
)

// AuthService implements registration and login. Login is the only path that
// proves identity; every other operation trusts the issued token.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenService
	logger zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, logger: logger}
}

// Register creates a new account. The role is fixed here for the lifetime of
// the user; there is no promotion operation.
func (s *AuthService) Register(ctx context.Context, username, password, role string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}
	if !domain.IsValidRole(role) {
		return nil, domain.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		TaskIDs:      []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", username).Str("role", role).Msg("user registered")
	return created, nil
}

// Login verifies the credentials and returns a session token on success.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}
