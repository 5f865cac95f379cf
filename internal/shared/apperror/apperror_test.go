package apperror_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"go-sge/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP_AppError(t *testing.T) {
	notFound := apperror.New(apperror.CodeNotFound, "leave request not found", http.StatusNotFound)

	got := apperror.ToHTTP(fmt.Errorf("load: %w", notFound))

	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, apperror.CodeNotFound, got.Code)
	assert.Equal(t, "leave request not found", got.Message)
}

func TestToHTTP_UnknownErrorIsGeneric(t *testing.T) {
	got := apperror.ToHTTP(errors.New("pq: connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, apperror.CodeInternalError, got.Code)
	assert.NotContains(t, got.Message, "connection reset")
}

func TestToHTTP_DeadlineExceeded(t *testing.T) {
	got := apperror.ToHTTP(fmt.Errorf("query: %w", context.DeadlineExceeded))

	assert.Equal(t, http.StatusServiceUnavailable, got.Status)
}

func TestToHTTP_ValidationCarriesDetails(t *testing.T) {
	err := apperror.NewValidation(map[string][]string{"3": {"email is required"}})

	got := apperror.ToHTTP(err)

	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.Equal(t, apperror.CodeValidationError, got.Code)
	assert.Equal(t, map[string][]string{"3": {"email is required"}}, got.Details)
}

func TestWrap_KeepsSentinel(t *testing.T) {
	sentinel := apperror.New(apperror.CodeInvalidState, "invalid transition", http.StatusBadRequest)
	err := apperror.Wrap(sentinel, sentinel.Code, "cannot move from APPROVED to REJECTED", sentinel.HTTPStatus)

	assert.ErrorIs(t, err, sentinel)
	assert.Nil(t, apperror.Wrap(nil, "X", "y", 400))
}

type signupPayload struct {
	Email    string `json:"email" validate:"required,email"`
	UserName string `json:"user_name" validate:"required,min=3"`
}

func TestMapValidationError(t *testing.T) {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})

	err := v.Struct(signupPayload{Email: "nope", UserName: "ab"})
	mapped := apperror.MapValidationError(err)

	var appErr *apperror.AppError
	assert.ErrorAs(t, mapped, &appErr)
	fields, ok := apperror.ValidationDetails(appErr)
	assert.True(t, ok)
	assert.Equal(t, []string{"Email must be a valid email address"}, fields["email"])
	assert.Equal(t, []string{"User Name must be at least 3 characters"}, fields["user_name"])
}

func TestMapValidationError_NonValidatorError(t *testing.T) {
	mapped := apperror.MapValidationError(errors.New("unexpected EOF"))

	got := apperror.ToHTTP(mapped)
	assert.Equal(t, apperror.CodeInvalidInput, got.Code)
}
