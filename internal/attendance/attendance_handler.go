package attendance

import (
	"bytes"
	"net/http"
	"sort"

	"go-sge/internal/shared/apperror"
	"go-sge/internal/shared/contextutil"
	"go-sge/internal/shared/response"
	"go-sge/internal/shared/spreadsheet"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := response.FromError(c, err)
	fields := []zap.Field{
		zap.String("request_id", contextutil.GetRequestID(c.Request.Context())),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	}
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("attendance request failed", append(fields, zap.Error(err))...)
		return
	}
	h.logger.Warn("attendance request rejected", append(fields, zap.String("message", httpErr.Message))...)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	actor := contextutil.ActorOrService(c.Request.Context())
	resp, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

// GetAll lists every record, newest day first.
func (h *Handler) GetAll(c *gin.Context) {
	resp, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	sort.SliceStable(resp, func(i, j int) bool { return resp[i].Date > resp[j].Date })
	response.Paginate(c, resp)
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByEmployee(c *gin.Context) {
	resp, err := h.service.GetByEmployee(c.Request.Context(), c.Param("employeeId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Paginate(c, resp)
}

func (h *Handler) GetByEmployeeAndDate(c *gin.Context) {
	resp, err := h.service.GetByEmployeeAndDate(c.Request.Context(), c.Param("employeeId"), c.Param("date"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByDateRange(c *gin.Context) {
	start, end := c.Query("start"), c.Query("end")
	if start == "" {
		h.writeServiceError(c, apperror.RequiredField("start"))
		return
	}
	if end == "" {
		h.writeServiceError(c, apperror.RequiredField("end"))
		return
	}

	resp, err := h.service.GetByDateRange(c.Request.Context(), start, end)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Paginate(c, resp)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	actor := contextutil.ActorOrService(c.Request.Context())
	resp, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) ClockIn(c *gin.Context) {
	var req ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	employeeID := h.employeeFor(c, req.EmployeeID)
	if employeeID == "" {
		h.writeServiceError(c, apperror.RequiredField("employee_id"))
		return
	}

	actor := contextutil.ActorOrService(c.Request.Context())
	resp, err := h.service.ClockIn(c.Request.Context(), actor, employeeID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ClockOut(c *gin.Context) {
	var req ClockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	employeeID := h.employeeFor(c, req.EmployeeID)
	if employeeID == "" {
		h.writeServiceError(c, apperror.RequiredField("employee_id"))
		return
	}

	actor := contextutil.ActorOrService(c.Request.Context())
	resp, err := h.service.ClockOut(c.Request.Context(), actor, employeeID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// employeeFor prefers an explicit id and falls back to the employee linked
// to the authenticated user.
func (h *Handler) employeeFor(c *gin.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return c.GetString("employee_id")
}

func (h *Handler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.writeServiceError(c, apperror.RequiredField("file"))
		return
	}
	file, err := fh.Open()
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	defer file.Close()

	actor := contextutil.ActorOrService(c.Request.Context())
	created, err := h.service.Import(c.Request.Context(), actor, file)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"imported": len(created), "items": created}, nil)
}

func (h *Handler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), &buf); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Attachment(c, "attendances.xlsx", spreadsheet.ContentType, buf.Bytes())
}
