package attendance

import (
	"time"

	"go-sge/internal/employee"

	"github.com/google/uuid"
)

// Attendance is one employee's record for one calendar day. ClockIn and
// ClockOut are instants on Date.
type Attendance struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey"`
	EmployeeID    uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:uq_attendances_employee_date,priority:1"`
	Employee      *employee.Employee `gorm:"foreignKey:EmployeeID;constraint:OnDelete:RESTRICT"`
	Date          time.Time          `gorm:"type:date;not null;uniqueIndex:uq_attendances_employee_date,priority:2;index"`
	ClockIn       *time.Time         `gorm:"type:timestamptz"`
	ClockOut      *time.Time         `gorm:"type:timestamptz"`
	BreakMinutes  *int               `gorm:"type:integer"`
	WorkedHours   float64            `gorm:"type:numeric(5,2);not null;default:0"`
	OvertimeHours float64            `gorm:"type:numeric(5,2);not null;default:0"`
	Notes         string             `gorm:"type:text"`
	CreatedBy     string             `gorm:"size:64;not null"`
	UpdatedBy     string             `gorm:"size:64"`
	CreatedAt     time.Time          `gorm:"autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"autoUpdateTime"`
}

func (a Attendance) breakDuration() *time.Duration {
	if a.BreakMinutes == nil {
		return nil
	}
	d := time.Duration(*a.BreakMinutes) * time.Minute
	return &d
}

func (a Attendance) hours() Hours {
	return Hours{Worked: a.WorkedHours, Overtime: a.OvertimeHours}
}
