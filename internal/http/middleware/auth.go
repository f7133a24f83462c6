package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bookmybus/internal/auth"
	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
	"bookmybus/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

func bearerToken(c *gin.Context) string {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return strings.TrimSpace(c.GetHeader("X-Auth-Token"))
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"message":    msg,
		"request_id": GetRequestID(c),
	})
}

// Accounts loads the user behind a token. Role changes and deletions take
// effect on the next request instead of when the token expires.
type Accounts interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
}

// resolve verifies raw and returns the caller with the role currently
// stored for the account.
func resolve(c *gin.Context, tokens auth.TokenService, users Accounts, raw string) (domain.Requester, error) {
	claims, err := tokens.Parse(raw)
	if err != nil {
		return domain.Requester{}, err
	}
	req := claims.Requester()
	u, err := users.GetByID(c.Request.Context(), req.UserID)
	if err != nil {
		return domain.Requester{}, err
	}
	req.Role = u.Role
	return req, nil
}

func setRequester(c *gin.Context, r domain.Requester) {
	c.Set(userIDKey, r.UserID)
	c.Set(userRoleKey, string(r.Role))
}

// Auth requires a valid access token for an existing account and stores the
// caller on the context. The token is read from "Authorization: Bearer" or
// "X-Auth-Token".
func Auth(tokens auth.TokenService, users Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			abortUnauthorized(c, "No token, authorization denied")
			return
		}
		req, err := resolve(c, tokens, users, raw)
		switch {
		case err == nil:
			setRequester(c, req)
			c.Next()
		case errors.Is(err, auth.ErrInvalidToken), domain.IsNotFound(err):
			abortUnauthorized(c, "Token is not valid")
		default:
			utils.LogError(GetRequestID(c), "auth", "load_user", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"message":    "Server error",
				"request_id": GetRequestID(c),
			})
		}
	}
}

// OptionalAuth records the caller when a valid token for an existing
// account is present and lets anonymous requests through.
func OptionalAuth(tokens auth.TokenService, users Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := bearerToken(c); raw != "" {
			if req, err := resolve(c, tokens, users, raw); err == nil {
				setRequester(c, req)
			}
		}
		c.Next()
	}
}

// Requester returns the authenticated caller, or the zero value.
func Requester(c *gin.Context) domain.Requester {
	return domain.Requester{
		UserID: c.GetInt64(userIDKey),
		Role:   domain.Role(c.GetString(userRoleKey)),
	}
}
