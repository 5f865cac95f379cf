package leave

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	leaveerrors "go-sge/internal/leave/errors"
	"go-sge/internal/shared/apperror"
	"go-sge/internal/shared/dateutil"
)

const (
	TypeAnnual    = "ANNUAL"
	TypeSick      = "SICK"
	TypeUnpaid    = "UNPAID"
	TypeMaternity = "MATERNITY"
	TypePaternity = "PATERNITY"
	TypeOther     = "OTHER"
)

// LeaveTypes is ordered; spreadsheet imports may refer to a type by its index.
var LeaveTypes = []string{TypeAnnual, TypeSick, TypeUnpaid, TypeMaternity, TypePaternity, TypeOther}

// ValidateLeaveType accepts only the known leave types, matched exactly.
func ValidateLeaveType(t string) error {
	for _, known := range LeaveTypes {
		if t == known {
			return nil
		}
	}
	return leaveerrors.ErrInvalidLeaveType
}

// ValidateLeaveDates compares at day granularity: start may be today but not
// earlier, and end may equal start.
func ValidateLeaveDates(start, end, now time.Time) error {
	start, end = dateutil.StartOfDay(start), dateutil.StartOfDay(end)
	if start.Before(dateutil.StartOfDay(now)) {
		return invalidData("start date cannot be in the past")
	}
	if end.Before(start) {
		return invalidData("end date must not be before start date")
	}
	return nil
}

// DaysRequested counts both ends of the range.
func DaysRequested(start, end time.Time) int {
	return dateutil.DaysInclusive(start, end)
}

// parseLeaveType accepts a type name in any case or its index in LeaveTypes.
func parseLeaveType(v string) (string, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if i, err := strconv.Atoi(v); err == nil {
		if i < 0 || i >= len(LeaveTypes) {
			return "", leaveerrors.ErrInvalidLeaveType
		}
		return LeaveTypes[i], nil
	}
	if err := ValidateLeaveType(v); err != nil {
		return "", err
	}
	return v, nil
}

func invalidData(msg string) error {
	return apperror.Wrap(leaveerrors.ErrInvalidLeaveRequestData, apperror.CodeInvalidInput, msg, http.StatusBadRequest)
}
