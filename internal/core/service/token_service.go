package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskboard/assignment-system/internal/core/domain"
)

// TokenService issues and validates HS256 session tokens. Validity is purely
// a function of signature and expiry; there is no revocation list.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenService(secret string, lifetimeMinutes int) *TokenService {
	if lifetimeMinutes <= 0 {
		lifetimeMinutes = 60
	}
	return &TokenService{
		secret:   []byte(secret),
		lifetime: time.Duration(lifetimeMinutes) * time.Minute,
		now:      time.Now,
	}
}

// Issue creates a signed token carrying the user's identity and role.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub":  user.Username,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.lifetime).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate reports whether the token is genuine, unexpired, and issued for
// expectedUsername. It fails closed on any parse or signature problem.
func (s *TokenService) Validate(token, expectedUsername string) (bool, error) {
	claims, err := s.parse(token)
	if err != nil {
		return false, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, fmt.Errorf("token missing expiry")
	}
	if !exp.After(s.now()) {
		return false, nil
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return false, err
	}
	return sub == expectedUsername, nil
}

// Claims extracts the subject and role after verifying the signature. Expiry
// is not checked here; callers must Validate before trusting the result.
func (s *TokenService) Claims(token string) (subject, role string, err error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", "", err
	}

	subject, err = claims.GetSubject()
	if err != nil {
		return "", "", err
	}
	role, _ = claims["role"].(string)
	return subject, role, nil
}

func (s *TokenService) parse(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}
