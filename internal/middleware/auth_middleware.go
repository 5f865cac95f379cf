package middleware

import (
	"errors"
	"strings"

	autherrors "go-sge/internal/auth/errors"
	"go-sge/internal/shared/contextutil"
	"go-sge/internal/shared/jwtauth"
	"go-sge/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const accessTokenCookie = "access_token"

// AuthMiddleware authenticates the caller from a bearer token, or from the
// access_token cookie web clients receive at login.
func AuthMiddleware(tokens *jwtauth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			tokenString, _ = c.Cookie(accessTokenCookie)
		}

		if tokenString == "" {
			response.FromError(c, autherrors.ErrInvalidToken)
			c.Abort()
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			appErr := autherrors.ErrInvalidToken
			if errors.Is(err, jwtauth.ErrExpired) {
				appErr = autherrors.ErrTokenExpired
			}
			response.FromError(c, appErr)
			c.Abort()
			return
		}

		if claims.Subject == "" {
			response.FromError(c, autherrors.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("user_name", claims.Name)
		c.Set("email", claims.Email)
		c.Set("roles", claims.Roles)
		if claims.EmployeeID != "" {
			c.Set("employee_id", claims.EmployeeID)
		}

		ctx := contextutil.WithUserID(c.Request.Context(), claims.Subject)
		ctx = contextutil.WithLogger(ctx, contextutil.GetLogger(ctx, nil).With(zap.String("user_id", claims.Subject)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
