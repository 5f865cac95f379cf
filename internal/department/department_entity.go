package department

import (
	"time"

	"github.com/google/uuid"
)

type Department struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:uq_departments_name"`
	Code        string    `gorm:"size:10;not null;uniqueIndex:uq_departments_code"`
	Description string    `gorm:"type:text"`
	CreatedBy   string    `gorm:"size:64;not null"`
	UpdatedBy   string    `gorm:"size:64"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}
