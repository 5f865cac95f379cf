package employee

import (
	"errors"

	employeeerrors "go-sge/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			switch pgErr.ConstraintName {
			case "uq_employees_email":
				return employeeerrors.ErrEmployeeEmailAlreadyExists
			case "uq_employees_unique_id":
				return employeeerrors.ErrUniqueIDAlreadyExists
			}
		case "23503":
			if pgErr.ConstraintName == "fk_employees_department" {
				return employeeerrors.ErrDepartmentNotFound
			}
			return employeeerrors.ErrEmployeeInUse
		}
	}

	return err
}
