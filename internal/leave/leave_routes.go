package leave

import (
	"go-sge/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	idempotency gin.HandlerFunc,
) {
	leaves := r.Group("/leave-requests")
	leaves.Use(auth)
	{
		leaves.GET("",
			middleware.RateLimitByUser(3, 10),
			handler.GetAll,
		)
		leaves.GET("/export", handler.Export)
		leaves.GET("/pending", handler.GetPending)
		leaves.GET("/status/:status", handler.GetByStatus)
		leaves.GET("/employee/:employeeId", handler.GetByEmployee)
		leaves.GET("/:id", handler.GetByID)
		leaves.POST("",
			middleware.RateLimitByUser(1, 5),
			idempotency,
			handler.Create,
		)
		leaves.POST("/import", idempotency, handler.Import)
		leaves.POST("/:id/approve",
			middleware.RateLimitByUser(1, 5),
			handler.Approve,
		)
		leaves.POST("/:id/reject",
			middleware.RateLimitByUser(1, 5),
			handler.Reject,
		)
		leaves.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			handler.Update,
		)
		leaves.DELETE("/:id",
			middleware.RateLimitByUser(0.2, 1),
			handler.Delete,
		)
	}
}
