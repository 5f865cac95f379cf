package employeeerrors

import (
	"net/http"

	"go-sge/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeEmailAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with the same email already exists",
		http.StatusConflict,
	)
	ErrUniqueIDAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee unique id already exists",
		http.StatusConflict,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Department not found",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeData = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee data",
		http.StatusBadRequest,
	)
	ErrUniqueIDExhausted = apperror.Wrap(
		ErrInvalidEmployeeData,
		apperror.CodeInvalidInput,
		"Unable to generate a unique id for this employee",
		http.StatusBadRequest,
	)
	ErrEmployeeInUse = apperror.New(
		apperror.CodeConflict,
		"Employee still has attendance or leave records",
		http.StatusConflict,
	)
)
