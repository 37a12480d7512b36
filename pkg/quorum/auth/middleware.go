package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/quorum/pkg/quorum/apierror"
	"github.com/mikepea/quorum/pkg/quorum/models"
)

const (
	// ContextKeyUser is the key for the authenticated user in gin context
	ContextKeyUser = "current_user"
)

// UserFinder loads the account a token refers to.
type UserFinder interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

func credentialsError() *apierror.Error {
	return apierror.Unauthenticated("Could not validate credentials")
}

// RequireUser validates the bearer token, loads its user and stores it in
// the context. Tokens for users that no longer exist are rejected.
func RequireUser(issuer *TokenIssuer, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apierror.Abort(c, apierror.Unauthenticated("Not authenticated"))
			return
		}

		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			apierror.Abort(c, apierror.Unauthenticated("Not authenticated"))
			return
		}

		claims, err := issuer.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			apierror.Abort(c, credentialsError())
			return
		}

		user, err := users.GetUserByUsername(c.Request.Context(), claims.Username())
		if err != nil {
			apierror.Abort(c, err)
			return
		}
		if user == nil {
			apierror.Abort(c, credentialsError())
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireUser.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
