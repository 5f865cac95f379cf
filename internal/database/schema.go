// Package database creates the relational schema from the gorm models.
package database

import (
	"fmt"

	"go-sge/internal/attendance"
	"go-sge/internal/auth"
	"go-sge/internal/department"
	"go-sge/internal/employee"
	"go-sge/internal/leave"
	"go-sge/internal/messaging/kafka"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&department.Department{},
		&employee.Employee{},
		&attendance.Attendance{},
		&leave.LeaveRequest{},
		&auth.Role{},
		&auth.User{},
		&auth.RefreshToken{},
		&kafka.OutboxRecord{},
	}
}

func EnsureSchema(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Named("database").Info("schema ensured", zap.Int("models", len(Models())))
	return nil
}
