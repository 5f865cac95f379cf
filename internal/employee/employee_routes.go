package employee

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
	employees := r.Group("/employees")
	employees.Use(auth)
	{
		employees.GET("",
			middleware.RateLimitByUser(3, 10),
			handler.GetAll,
		)
		employees.GET("/options",
			middleware.RateLimitByUser(5, 20),
			handler.GetOptions,
		)
		employees.GET("/export", handler.Export)
		employees.GET("/email/:email", handler.GetByEmail)
		employees.GET("/department/:departmentId", handler.GetByDepartment)
		employees.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			handler.GetByID,
		)
		employees.POST("",
			middleware.RateLimitByUser(1, 5),
			idempotency,
			handler.Create,
		)
		employees.POST("/import", idempotency, handler.Import)
		employees.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			handler.Update,
		)
		employees.DELETE("/:id",
			middleware.RateLimitByUser(0.2, 1),
			handler.Delete,
		)
	}
}
