// server/internal/database/seeder.go
package database

import (
	"context"
	"errors"
	"log"

	"unit-supply-api-server/internal/auth"
	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/store"
)

// SeedAdmin creates the bootstrap admin account if it does not exist yet.
func SeedAdmin(ctx context.Context, st store.Store) error {
	adminEmail := "admin@example.com"

	_, err := st.GetUserByEmail(ctx, adminEmail)
	if err == nil {
		log.Println("Admin already exists. Seeding skipped.")
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	log.Println("Admin not found. Seeding...")
	hashedPassword, err := auth.HashPassword("adminpassword")
	if err != nil {
		return err
	}

	admin := &models.User{
		UserID:   "admin",
		Email:    adminEmail,
		Name:     "Administrator",
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		UnitID:   "system",
		Status:   "active",
	}
	if err := st.InsertUser(ctx, admin); err != nil {
		return err
	}

	log.Println("Admin seeded successfully.")
	return nil
}
