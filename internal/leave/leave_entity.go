package leave

import (
	"time"

	"go-sge/internal/employee"

	"github.com/google/uuid"
)

type LeaveRequest struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey"`
	EmployeeID      uuid.UUID          `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`
	Employee        *employee.Employee `gorm:"foreignKey:EmployeeID;constraint:OnDelete:RESTRICT"`
	LeaveType       string             `gorm:"size:20;not null"`
	StartDate       time.Time          `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate         time.Time          `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	DaysRequested   int                `gorm:"not null"`
	Reason          string             `gorm:"type:text"`
	Status          string             `gorm:"size:20;not null;default:'PENDING';index"`
	ManagerComments string             `gorm:"type:text"`
	ReviewedBy      string             `gorm:"size:64"`
	ReviewedAt      *time.Time         `gorm:"type:timestamptz"`
	CreatedBy       string             `gorm:"size:64;not null"`
	UpdatedBy       string             `gorm:"size:64"`
	CreatedAt       time.Time          `gorm:"autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"autoUpdateTime"`
}
