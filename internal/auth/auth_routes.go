package auth

import (
	"go-sge/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	group := r.Group("/auth")
	{
		group.POST("/register", middleware.RateLimitByIP(0.1, 3), handler.Register)
		group.POST("/login", middleware.RateLimitByIP(0.2, 5), handler.Login)
		group.POST("/refresh-token", middleware.RateLimitByIP(0.5, 5), handler.RefreshToken)
		group.POST("/revoke-token", auth, middleware.RateLimitByUser(1, 5), handler.RevokeToken)
		group.POST("/logout", auth, middleware.RateLimitByUser(1, 5), handler.Logout)
		group.GET("/me", auth, middleware.RateLimitByUser(2, 5), handler.Me)
	}
}
