package ports

import (
	"context"

	"github.com/taskboard/assignment-system/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}

// TokenService issues and validates stateless session tokens.
type TokenService interface {
	Issue(user *domain.User) (string, error)
	// Validate fails closed: any parse error, signature mismatch, expired
	// token, or subject differing from expectedUsername yields false.
	Validate(token, expectedUsername string) (bool, error)
	// Claims extracts the subject and role after verifying the signature.
	// It does not check expiry; callers that need validity must call Validate.
	Claims(token string) (subject, role string, err error)
}
