package department

import (
	"errors"

	departmenterrors "go-sge/internal/department/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return departmenterrors.ErrDepartmentNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			switch pgErr.ConstraintName {
			case "uq_departments_name":
				return departmenterrors.ErrDuplicateDepartmentName
			case "uq_departments_code":
				return departmenterrors.ErrDuplicateDepartmentCode
			}
		case pgForeignKeyViolation:
			return departmenterrors.ErrDepartmentInUse
		}
	}

	return err
}
