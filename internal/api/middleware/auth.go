package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskboard/assignment-system/internal/core/ports"
)

// Identity resolves the bearer token into (username, role) context values.
// It never aborts the chain: a missing, malformed, or invalid token leaves
// the request anonymous and the route-level role check decides whether to
// reject. The subject is re-checked against the user store so a token for a
// deleted account carries no identity.
func Identity(tokens ports.TokenService, users ports.UserRepository, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return next(c)
			}
			raw := parts[1]

			subject, role, err := tokens.Claims(raw)
			if err != nil {
				log.Debug().Err(err).Msg("unreadable bearer token, proceeding anonymous")
				return next(c)
			}

			if _, err := users.FindByUsername(c.Request().Context(), subject); err != nil {
				log.Debug().Str("subject", subject).Msg("token subject unknown, proceeding anonymous")
				return next(c)
			}

			ok, err := tokens.Validate(raw, subject)
			if err != nil || !ok {
				log.Debug().Str("subject", subject).Msg("token failed validation, proceeding anonymous")
				return next(c)
			}

			c.Set("username", subject)
			c.Set("role", role)
			return next(c)
		}
	}
}
