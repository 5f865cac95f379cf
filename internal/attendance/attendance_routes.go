package attendance

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
	attendances := r.Group("/attendances")
	attendances.Use(auth)
	{
		attendances.GET("",
			middleware.RateLimitByUser(3, 10),
			handler.GetAll,
		)
		attendances.GET("/export", handler.Export)
		attendances.GET("/range", handler.GetByDateRange)
		attendances.GET("/employee/:employeeId", handler.GetByEmployee)
		attendances.GET("/employee/:employeeId/date/:date", handler.GetByEmployeeAndDate)
		attendances.GET("/:id", handler.GetByID)
		attendances.POST("",
			middleware.RateLimitByUser(1, 5),
			idempotency,
			handler.Create,
		)
		attendances.POST("/import", idempotency, handler.Import)
		attendances.POST("/clock-in",
			middleware.RateLimitByUser(0.5, 3),
			handler.ClockIn,
		)
		attendances.POST("/clock-out",
			middleware.RateLimitByUser(0.5, 3),
			handler.ClockOut,
		)
		attendances.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			handler.Update,
		)
		attendances.DELETE("/:id",
			middleware.RateLimitByUser(0.2, 1),
			handler.Delete,
		)
	}
}
