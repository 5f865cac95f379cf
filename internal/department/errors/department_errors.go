package departmenterrors

import (
	"net/http"

	"go-sge/internal/shared/apperror"
)

var (
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Department not found",
		http.StatusNotFound,
	)
	ErrInvalidDepartmentID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid department ID",
		http.StatusBadRequest,
	)
	ErrDuplicateDepartmentName = apperror.New(
		apperror.CodeConflict,
		"A department with the same name already exists",
		http.StatusConflict,
	)
	ErrDuplicateDepartmentCode = apperror.New(
		apperror.CodeConflict,
		"A department with the same code already exists",
		http.StatusConflict,
	)
	ErrDepartmentInUse = apperror.New(
		apperror.CodeConflict,
		"Department still has employees assigned",
		http.StatusConflict,
	)
	ErrInvalidDepartmentData = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid department data",
		http.StatusBadRequest,
	)
)
