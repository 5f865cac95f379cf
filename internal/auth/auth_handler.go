package auth

import (
	"net/http"
	"time"

	autherrors "go-sge/internal/auth/errors"
	"go-sge/internal/shared/apperror"
	"go-sge/internal/shared/contextutil"
	"go-sge/internal/shared/request"
	"go-sge/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

type Handler struct {
	service       Service
	secureCookies bool
	logger        *zap.Logger
}

// NewHandler builds the auth handler. secureCookies marks the web session
// cookies Secure and should be set outside local development.
func NewHandler(service Service, secureCookies bool, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: service, secureCookies: secureCookies, logger: l}
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
		h.logger.Error("auth request failed", append(fields, zap.Error(err))...)
		return
	}
	h.logger.Warn("auth request rejected", append(fields, zap.String("message", httpErr.Message))...)
}

func isWebClient(c *gin.Context) bool {
	return request.ResolveClientType(c.GetHeader("X-Client-Type"), c.GetHeader("User-Agent")) == request.ClientWeb
}

func (h *Handler) setSessionCookies(c *gin.Context, resp AuthResponse) {
	if !isWebClient(c) {
		return
	}
	now := time.Now()
	h.setCookie(c, AccessTokenCookie, resp.AccessToken, int(resp.AccessTokenExpiresAt.Sub(now).Seconds()))
	h.setCookie(c, RefreshTokenCookie, resp.RefreshToken, int(resp.RefreshTokenExpiresAt.Sub(now).Seconds()))
}

func (h *Handler) clearSessionCookies(c *gin.Context) {
	h.setCookie(c, AccessTokenCookie, "", -1)
	h.setCookie(c, RefreshTokenCookie, "", -1)
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.setSessionCookies(c, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.setSessionCookies(c, resp)
	response.Success(c, http.StatusOK, resp, nil)
}

// RefreshToken reads the token pair from the body, falling back to the
// session cookies for whichever value is missing.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeServiceError(c, apperror.MapValidationError(err))
			return
		}
	}
	if req.AccessToken == "" {
		req.AccessToken, _ = c.Cookie(AccessTokenCookie)
	}
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(RefreshTokenCookie)
	}
	if req.RefreshToken == "" {
		h.writeServiceError(c, autherrors.ErrMissingRefreshToken)
		return
	}

	resp, err := h.service.RefreshToken(c.Request.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.setSessionCookies(c, resp)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) RevokeToken(c *gin.Context) {
	var req RevokeTokenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeServiceError(c, apperror.MapValidationError(err))
			return
		}
	}
	if req.Token == "" {
		req.Token, _ = c.Cookie(RefreshTokenCookie)
	}

	if err := h.service.RevokeToken(c.Request.Context(), req.Token); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Token revoked"}, nil)
}

func (h *Handler) Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		h.writeServiceError(c, autherrors.ErrInvalidToken)
		return
	}

	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.clearSessionCookies(c)
	response.Success(c, http.StatusOK, gin.H{"message": "Logged out successfully"}, nil)
}

func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		h.writeServiceError(c, autherrors.ErrInvalidToken)
		return
	}

	resp, err := h.service.GetMe(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
