package employee

import (
	"time"

	"go-sge/internal/department"

	"github.com/google/uuid"
)

const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"
)

type Employee struct {
	ID           uuid.UUID              `gorm:"type:uuid;primaryKey"`
	UniqueID     string                 `gorm:"size:32;not null;uniqueIndex:uq_employees_unique_id"`
	FirstName    string                 `gorm:"size:100;not null"`
	LastName     string                 `gorm:"size:100;not null"`
	Gender       string                 `gorm:"size:10;not null"`
	Email        string                 `gorm:"size:150;not null;uniqueIndex:uq_employees_email"`
	PhoneNumber  string                 `gorm:"size:30"`
	Address      string                 `gorm:"size:255"`
	Position     string                 `gorm:"size:100"`
	Salary       float64                `gorm:"type:numeric(12,2);not null;default:0"`
	DepartmentID uuid.UUID              `gorm:"type:uuid;not null;index"`
	Department   *department.Department `gorm:"foreignKey:DepartmentID;constraint:OnDelete:RESTRICT"`
	HireDate     time.Time              `gorm:"type:date;not null"`
	CreatedBy    string                 `gorm:"size:64;not null"`
	UpdatedBy    string                 `gorm:"size:64"`
	CreatedAt    time.Time              `gorm:"autoCreateTime"`
	UpdatedAt    time.Time              `gorm:"autoUpdateTime"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

func isValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}
