package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-sge/internal/middleware"
	"go-sge/internal/shared/apperror"
	"go-sge/internal/shared/contextutil"
	"go-sge/internal/shared/jwtauth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(ttl time.Duration) *jwtauth.Manager {
	return jwtauth.NewManager(jwtauth.Config{
		Secret:         []byte("0123456789abcdef0123456789abcdef"),
		Issuer:         "sge-api",
		Audience:       "sge-clients",
		AccessTokenTTL: ttl,
	})
}

func authRouter(m *jwtauth.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	apperror.Init()
	r := gin.New()
	r.GET("/whoami", middleware.AuthMiddleware(m), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetString("user_id"),
			"employee_id": c.GetString("employee_id"),
			"roles":       c.GetStringSlice("roles"),
			"ctx_user":    contextutil.GetUserID(c.Request.Context()),
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	m := newManager(time.Hour)
	token, _, err := m.Mint(jwtauth.Identity{
		UserID:     "user-1",
		UserName:   "admin",
		EmployeeID: "emp-1",
		Roles:      []string{"Admin"},
	})
	require.NoError(t, err)

	t.Run("bearer token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		authRouter(m).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"user_id":"user-1","employee_id":"emp-1","roles":["Admin"],"ctx_user":"user-1"}`,
			w.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		authRouter(m).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		authRouter(m).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), apperror.CodeUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, _, err := newManager(-time.Minute).Mint(jwtauth.Identity{UserID: "user-1"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+expired)
		authRouter(m).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Access token expired")
	})

	t.Run("garbage token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		authRouter(m).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
