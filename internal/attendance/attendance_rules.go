package attendance

import (
	"net/http"
	"time"

	attendanceerrors "go-sge/internal/attendance/errors"
	"go-sge/internal/shared/apperror"
)

// ValidateAttendanceTimes rejects a clock-out that is not strictly after the
// clock-in and a negative break. Absent values are not checked.
func ValidateAttendanceTimes(clockIn, clockOut *time.Time, breakDuration *time.Duration) error {
	if clockIn != nil && clockOut != nil && !clockOut.After(*clockIn) {
		return invalidData("clock-out must be later than clock-in")
	}
	if breakDuration != nil && *breakDuration < 0 {
		return invalidData("break duration cannot be negative")
	}
	return nil
}

func invalidData(msg string) error {
	return apperror.Wrap(attendanceerrors.ErrInvalidAttendanceData, apperror.CodeInvalidInput, msg, http.StatusBadRequest)
}
