package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskvault/taskvault/internal/domain/entity"
	"github.com/taskvault/taskvault/internal/domain/repository"
	"github.com/taskvault/taskvault/pkg/response"
	"github.com/taskvault/taskvault/pkg/token"
)

// Context keys populated on successful authentication.
const (
	CtxAccountKey = "account"
	CtxTokenKey   = "token"
	CtxUserIDKey  = "userID"
)

// Auth validates the bearer token on three levels: signature and expiry via
// the token manager, subject resolution against the user store, and finally
// membership of the literal token in the account's session registry. The
// registry check is what makes logout and logout-all actually revoke access
// while the signature is still valid. Authentication failures end the
// request with 401; storage failures surface as 500.
func Auth(tokens *token.Manager, users repository.UserRepository, sessions repository.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		subject, err := tokens.Parse(raw)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		u, err := users.GetByID(c.Request.Context(), subject)
		if err != nil {
			// Only a missing account is an authentication failure; a store
			// outage must not read as a revoked session.
			if errors.Is(err, repository.ErrNotFound) {
				response.AbortError(c, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			response.AbortError(c, http.StatusInternalServerError, "internal error", nil)
			return
		}
		ok, err := sessions.Exists(c.Request.Context(), u.ID, raw)
		if err != nil {
			response.AbortError(c, http.StatusInternalServerError, "internal error", nil)
			return
		}
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}

		c.Set(CtxAccountKey, u)
		c.Set(CtxTokenKey, raw)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// Account returns the authenticated user placed in the context by Auth.
func Account(c *gin.Context) *entity.User {
	if v, ok := c.Get(CtxAccountKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}

// SessionToken returns the exact token the current request authenticated
// with; logout revokes this value, never a re-derived one.
func SessionToken(c *gin.Context) string {
	return c.GetString(CtxTokenKey)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
