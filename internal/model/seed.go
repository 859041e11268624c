package model

import (
	"context"
	"errors"
	"meteoapi/internal/auth"
	"meteoapi/internal/config"
	"meteoapi/internal/entity"
	"meteoapi/internal/entity/db"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedAdmin ensures the admin account configured through ADMIN_* exists and is
// active. Nothing happens when no admin username is configured.
func SeedAdmin(ctx context.Context, repo Repository, cfg config.Config) error {
	if repo == nil {
		return nil
	}
	username := strings.TrimSpace(cfg.AdminUsername)
	password := strings.TrimSpace(cfg.AdminPassword)
	if username == "" || password == "" {
		return nil
	}

	existing, err := repo.GetUserByLogin(ctx, username)
	switch {
	case err == nil:
		return promoteExistingAdmin(ctx, repo, existing)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" {
		email = strings.ToLower(username) + "@localhost"
	}

	user := &db.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         db.UserRoleAdmin,
		IsActive:     true,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return err
	}
	logrus.WithField("username", username).Info("seeded admin user")
	return nil
}

func promoteExistingAdmin(ctx context.Context, repo Repository, existing *db.User) error {
	if existing == nil || (existing.Role == db.UserRoleAdmin && existing.IsActive) {
		return nil
	}
	role := db.UserRoleAdmin
	active := true
	return repo.UpdateUser(ctx, existing.ID, entity.UserUpdates{Role: &role, IsActive: &active})
}
