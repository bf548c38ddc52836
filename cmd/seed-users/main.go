// seed-users creates or updates the three default role accounts
// (admin, broker, tax specialist) so a fresh deployment is usable
// without manual account setup.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-users
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/nuamsoft/taxadmin_backend/config"
	"bitbucket.org/nuamsoft/taxadmin_backend/models"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
	"gorm.io/gorm"
)

type seedUser struct {
	Username string
	Name     string
	Password string
	Role     models.Role
	IsStaff  *bool
}

func defaultUsers() []seedUser {
	return []seedUser{
		{
			Username: envOr("SEED_ADMIN_USERNAME", "admin_nuam"),
			Name:     "Administrador",
			Password: envOr("SEED_ADMIN_PASSWORD", "admin123"),
			Role:     models.RoleAdmin,
			IsStaff:  utils.NewTrue(),
		},
		{
			Username: envOr("SEED_BROKER_USERNAME", "corredor_bolsa"),
			Name:     "Corredor de Bolsa",
			Password: envOr("SEED_BROKER_PASSWORD", "corredor123"),
			Role:     models.RoleBroker,
			IsStaff:  utils.NewFalse(),
		},
		{
			Username: envOr("SEED_TAX_USERNAME", "especialista_tributario"),
			Name:     "Especialista Tributario",
			Password: envOr("SEED_TAX_PASSWORD", "tributario123"),
			Role:     models.RoleTaxSpecialist,
			IsStaff:  utils.NewFalse(),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func seedOne(ctx context.Context, db *gorm.DB, seed seedUser) error {
	hashed, err := utils.HashPassword(seed.Password)
	if err != nil {
		return fmt.Errorf("hash password for %q: %w", seed.Username, err)
	}

	var existing models.User
	err = db.WithContext(ctx).Where("username = ?", seed.Username).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("lookup %q: %w", seed.Username, err)
		}
		user := models.User{
			Username: seed.Username,
			Name:     seed.Name,
			Password: string(hashed),
			IsStaff:  seed.IsStaff,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return fmt.Errorf("create %q: %w", seed.Username, err)
		}
		if err := models.SetRole(ctx, user.ID, seed.Role); err != nil {
			return fmt.Errorf("set role for %q: %w", seed.Username, err)
		}
		fmt.Printf("Created user: username=%q role=%s\n", seed.Username, seed.Role)
		return nil
	}

	err = db.WithContext(ctx).Model(&models.User{}).Where("username = ?", seed.Username).Updates(map[string]any{
		"password": string(hashed),
		"name":     seed.Name,
		"is_staff": seed.IsStaff,
	}).Error
	if err != nil {
		return fmt.Errorf("update %q: %w", seed.Username, err)
	}
	if err := models.SetRole(ctx, existing.ID, seed.Role); err != nil {
		return fmt.Errorf("set role for %q: %w", seed.Username, err)
	}
	_ = existing.RemoveInstanceRedis()
	fmt.Printf("Updated user: username=%q role=%s\n", seed.Username, seed.Role)
	return nil
}

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	for _, seed := range defaultUsers() {
		if err := seedOne(ctx, db, seed); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
