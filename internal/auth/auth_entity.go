package auth

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
	RoleUser    = "User"
)

// DefaultRoles are seeded at start-up.
var DefaultRoles = []string{RoleAdmin, RoleManager, RoleUser}

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserName     string     `gorm:"size:100;not null"`
	Email        string     `gorm:"size:150;not null;uniqueIndex:uq_users_email"`
	FirstName    string     `gorm:"size:100"`
	LastName     string     `gorm:"size:100"`
	EmployeeID   *uuid.UUID `gorm:"type:uuid;index"`
	PasswordHash string     `gorm:"size:255;not null"`
	IsActive     bool       `gorm:"not null;default:true"`
	LastLoginAt  *time.Time `gorm:"type:timestamptz"`
	Roles        []Role     `gorm:"many2many:user_roles"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

func (u User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Name
	}
	return names
}

type Role struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:50;not null;uniqueIndex:uq_roles_name"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type RefreshToken struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Token           string     `gorm:"size:128;not null;uniqueIndex:uq_refresh_tokens_token"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	User            *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time  `gorm:"not null"`
	ExpiresAt       time.Time  `gorm:"not null;index"`
	RevokedAt       *time.Time `gorm:"type:timestamptz"`
	ReasonRevoked   string     `gorm:"size:100"`
	ReplacedByToken string     `gorm:"size:128"`
}

// IsActive reports whether the token is neither revoked nor expired at now.
func (t RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
