package department

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	auth gin.HandlerFunc,
	idempotency gin.HandlerFunc,
) {
	departments := r.Group("/departments")
	departments.Use(auth)
	{
		departments.GET("", h.GetAll)
		departments.GET("/export", h.Export)
		departments.GET("/:id", h.GetByID)
		departments.POST("", idempotency, h.Create)
		departments.POST("/import", idempotency, h.Import)
		departments.PUT("/:id", h.Update)
		departments.DELETE("/:id", h.Delete)
	}
}
