package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/LiverNeZelc/vikaproject/backend/services/common/auth"
	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	UserContextKey  = "userID"
	RoleContextKey  = "role"
	EmailContextKey = "email"
)

var errNoIdentity = errors.New("no identity on request")

// TokenVerifier is satisfied by *auth.TokenManager.
type TokenVerifier interface {
	ParseAndValidateToken(tokenStr, expectedType string) (*auth.Identity, error)
}

// Authenticator resolves the caller from a bearer token or, when the service
// sits behind the gateway, from the X-User-* headers it injects.
type Authenticator struct {
	tokens       TokenVerifier
	trustGateway bool
}

func NewAuthenticator(tokens TokenVerifier, trustGateway bool) *Authenticator {
	return &Authenticator{tokens: tokens, trustGateway: trustGateway}
}

// Required aborts with 401 unless the request carries a valid identity.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.resolve(c)
		if err != nil {
			abort(c, http.StatusUnauthorized, apperrors.ReasonUnauthorized, "Unauthorized")
			return
		}
		if !setIdentity(c, id) {
			abort(c, http.StatusUnauthorized, apperrors.ReasonUnauthorized, "Invalid user ID format")
			return
		}
		c.Next()
	}
}

// Optional lets anonymous requests through but still rejects a bad token.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.resolve(c)
		switch {
		case errors.Is(err, errNoIdentity):
		case err != nil:
			abort(c, http.StatusUnauthorized, apperrors.ReasonUnauthorized, "Unauthorized")
			return
		case !setIdentity(c, id):
			abort(c, http.StatusUnauthorized, apperrors.ReasonUnauthorized, "Invalid user ID format")
			return
		}
		c.Next()
	}
}

func (a *Authenticator) resolve(c *gin.Context) (*auth.Identity, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || a.tokens == nil {
			return nil, auth.ErrInvalidToken
		}
		return a.tokens.ParseAndValidateToken(strings.TrimSpace(token), auth.TokenTypeAccess)
	}

	if a.trustGateway {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			return &auth.Identity{
				UserID: userID,
				Role:   c.GetHeader("X-User-Role"),
				Email:  c.GetHeader("X-User-Email"),
			}, nil
		}
	}
	return nil, errNoIdentity
}

func setIdentity(c *gin.Context, id *auth.Identity) bool {
	userID, err := uuid.Parse(id.UserID)
	if err != nil {
		return false
	}
	role := id.Role
	if role == "" {
		role = string(models.RoleUser)
	}
	c.Set(UserContextKey, userID)
	c.Set(RoleContextKey, role)
	c.Set(EmailContextKey, id.Email)
	return true
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			abort(c, http.StatusForbidden, apperrors.ReasonForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, reason apperrors.Reason, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "reason": reason})
}

// Helper functions for controllers

func GetUserID(c *gin.Context) (uuid.UUID, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(uuid.UUID); ok {
			return id, nil
		}
	}
	return uuid.Nil, errors.New("user ID not found in context")
}

// OptionalUserID is nil for anonymous callers.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	id, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(RoleContextKey) == string(models.RoleAdmin)
}
