package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-sge/internal/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const adminUserName = "admin"

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// SeedIdentity makes sure the default roles and the admin account exist.
// Running it again changes nothing.
func SeedIdentity(ctx context.Context, store auth.Repository, cfg SeedConfig, logger *zap.Logger) error {
	log := logger.Named("bootstrap.seed")

	roles := make(map[string]auth.Role, len(auth.DefaultRoles))
	for _, name := range auth.DefaultRoles {
		role, err := store.FindRoleByName(ctx, name)
		switch {
		case err == nil:
			roles[name] = *role
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("find role %s: %w", name, err)
		}

		role = &auth.Role{ID: uuid.New(), Name: name}
		if err := store.CreateRole(ctx, role); err != nil {
			return fmt.Errorf("create role %s: %w", name, err)
		}
		roles[name] = *role
		log.Info("role created", zap.String("role", name))
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	_, err := store.FindUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find admin user: %w", err)
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &auth.User{
		ID:           uuid.New(),
		UserName:     adminUserName,
		Email:        email,
		FirstName:    "System",
		LastName:     "Administrator",
		PasswordHash: hash,
		IsActive:     true,
		Roles:        []auth.Role{roles[auth.RoleAdmin]},
	}
	if err := store.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	log.Info("admin user created", zap.String("email", email))
	return nil
}
