package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"agriedge/internal/auth"
	"agriedge/internal/dto"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates the caller's request id or assigns a new one.
func RequestID() func(c *ginext.Context) {
	return func(c *ginext.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func LoggingMiddleware() func(c *ginext.Context) {
	return func(c *ginext.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		status := c.Writer.Status()
		event := zlog.Logger.Info()
		if status >= 500 {
			event = zlog.Logger.Error()
		} else if status >= 400 {
			event = zlog.Logger.Warn()
		}
		event.
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request handled")
	}
}

type IdentityResolver interface {
	CurrentUser(ctx context.Context, token string) (*auth.Identity, error)
}

// Authenticate attaches the identity of a valid bearer token to the request.
// Requests without a token pass through anonymously; an invalid token is
// rejected.
func Authenticate(resolver IdentityResolver) func(c *ginext.Context) {
	return func(c *ginext.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		id, err := resolver.CurrentUser(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrUnauthenticated) {
				zlog.Logger.Error().Err(err).Msg("failed to resolve current user")
			}
			dto.UnauthenticatedError(c)
			return
		}
		c.Request = c.Request.WithContext(auth.NewContext(c.Request.Context(), id))
		c.Next()
	}
}

func RequireUser() func(c *ginext.Context) {
	return func(c *ginext.Context) {
		if _, ok := auth.FromContext(c.Request.Context()); !ok {
			dto.UnauthenticatedError(c)
			return
		}
		c.Next()
	}
}

type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) bool
}

// RequireAdmin lets through signed-in identities with an admin record.
func RequireAdmin(admins AdminChecker) func(c *ginext.Context) {
	return func(c *ginext.Context) {
		id, ok := auth.FromContext(c.Request.Context())
		if !ok {
			dto.UnauthenticatedError(c)
			return
		}
		if !admins.IsAdmin(c.Request.Context(), id.Email) {
			zlog.Logger.Warn().Str("email", id.Email).Msg("admin access denied")
			dto.ForbiddenError(c)
			return
		}
		c.Next()
	}
}
