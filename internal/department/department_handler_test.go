package department_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-sge/internal/department"
	departmenterrors "go-sge/internal/department/errors"
	departmentMock "go-sge/internal/department/mock"
	"go-sge/internal/shared/apperror"
	"go-sge/internal/shared/contextutil"
	"go-sge/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newHandlerTest(t *testing.T) (*department.Handler, *departmentMock.MockService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	apperror.Init()
	svc := departmentMock.NewMockService(gomock.NewController(t))
	return department.NewHandler(svc), svc
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.ApiEnvelope {
	t.Helper()
	var env response.ApiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestDepartmentHandler_Create(t *testing.T) {
	t.Run("success uses the authenticated actor", func(t *testing.T) {
		h, svc := newHandlerTest(t)
		userID := uuid.NewString()

		svc.EXPECT().
			Create(gomock.Any(), userID, department.CreateDepartmentRequest{Name: "Finance", Code: "FIN"}).
			Return(department.DepartmentResponse{ID: uuid.NewString(), Name: "Finance", Code: "FIN"}, nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req := httptest.NewRequest(http.MethodPost, "/departments", strings.NewReader(`{"name":"Finance","code":"FIN"}`))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req.WithContext(contextutil.WithUserID(req.Context(), userID))

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeEnvelope(t, w).Ok)
	})

	t.Run("binding failure lists fields", func(t *testing.T) {
		h, _ := newHandlerTest(t)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/departments", strings.NewReader(`{"name":"Fi"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, apperror.CodeValidationError, env.Error.Code)
		details, ok := env.Error.Details.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, details, "name")
		assert.Contains(t, details, "code")
	})

	t.Run("conflict", func(t *testing.T) {
		h, svc := newHandlerTest(t)
		svc.EXPECT().Create(gomock.Any(), contextutil.ServiceAccount, gomock.Any()).
			Return(department.DepartmentResponse{}, departmenterrors.ErrDuplicateDepartmentCode)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/departments", strings.NewReader(`{"name":"Finance","code":"FIN"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unexpected error is masked", func(t *testing.T) {
		h, svc := newHandlerTest(t)
		svc.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(department.DepartmentResponse{}, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/departments", strings.NewReader(`{"name":"Finance","code":"FIN"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("request_id", "rid-9")

		h.Create(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w)
		assert.NotContains(t, env.Error.Message, "10.0.0.5")
		assert.Equal(t, "rid-9", env.Error.TraceID)
	})
}

func TestDepartmentHandler_GetAll(t *testing.T) {
	h, svc := newHandlerTest(t)
	svc.EXPECT().GetAll(gomock.Any()).Return([]department.DepartmentResponse{{Name: "HR"}, {Name: "IT"}, {Name: "Ops"}}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/departments?page=1&page_size=2", nil)

	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(3), env.Meta.Total)
	assert.Len(t, env.Data, 2)
}

func TestDepartmentHandler_GetByID_NotFound(t *testing.T) {
	h, svc := newHandlerTest(t)
	id := uuid.NewString()
	svc.EXPECT().GetByID(gomock.Any(), id).Return(department.DepartmentResponse{}, departmenterrors.ErrDepartmentNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/departments/"+id, nil)
	c.Params = gin.Params{{Key: "id", Value: id}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDepartmentHandler_Delete(t *testing.T) {
	h, svc := newHandlerTest(t)
	id := uuid.NewString()
	svc.EXPECT().Delete(gomock.Any(), id).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/departments/"+id, nil)
	c.Params = gin.Params{{Key: "id", Value: id}}

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDepartmentHandler_Import(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		h, _ := newHandlerTest(t)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/departments/import", nil)

		h.Import(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("uploaded workbook reaches the service", func(t *testing.T) {
		h, svc := newHandlerTest(t)
		svc.EXPECT().Import(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, file io.Reader) ([]department.DepartmentResponse, error) {
				data, err := io.ReadAll(file)
				require.NoError(t, err)
				assert.Equal(t, "xlsx-bytes", string(data))
				return []department.DepartmentResponse{{Name: "Finance"}}, nil
			})

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "departments.xlsx")
		require.NoError(t, err)
		_, _ = part.Write([]byte("xlsx-bytes"))
		require.NoError(t, mw.Close())

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/departments/import", &body)
		c.Request.Header.Set("Content-Type", mw.FormDataContentType())

		h.Import(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"imported":1`)
	})
}

func TestDepartmentHandler_Export(t *testing.T) {
	h, svc := newHandlerTest(t)
	svc.EXPECT().Export(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w io.Writer) error {
			_, err := w.Write([]byte("workbook"))
			return err
		})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/departments/export", nil)

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "departments.xlsx")
	assert.Equal(t, "workbook", w.Body.String())
}
