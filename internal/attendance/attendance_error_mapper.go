package attendance

import (
	"errors"

	attendanceerrors "go-sge/internal/attendance/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrAttendanceNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == "uq_attendances_employee_date":
			return attendanceerrors.ErrDuplicateAttendance
		case pgErr.Code == "23503":
			return attendanceerrors.ErrEmployeeNotFound
		}
	}

	return err
}
