package leaveerrors

import (
	"fmt"
	"net/http"

	"go-sge/internal/shared/apperror"
)

var (
	ErrLeaveRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidLeaveRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave request ID",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrInvalidLeaveRequestData = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave request data",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave type",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave status",
		http.StatusBadRequest,
	)
	ErrConflictingLeaveRequest = apperror.New(
		apperror.CodeConflict,
		"A leave request already exists in an overlapping period",
		http.StatusConflict,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"Invalid leave status transition",
		http.StatusBadRequest,
	)
)

// InvalidStatusTransition names both ends of a refused transition.
func InvalidStatusTransition(from, to string) error {
	return apperror.Wrap(
		ErrInvalidStatusTransition,
		apperror.CodeInvalidState,
		fmt.Sprintf("Cannot move leave request from %s to %s", from, to),
		http.StatusBadRequest,
	)
}

// ConflictingPeriod reports the requested range that overlaps an existing request.
func ConflictingPeriod(start, end string) error {
	return apperror.Wrap(
		ErrConflictingLeaveRequest,
		apperror.CodeConflict,
		fmt.Sprintf("A leave request already exists between %s and %s", start, end),
		http.StatusConflict,
	)
}
