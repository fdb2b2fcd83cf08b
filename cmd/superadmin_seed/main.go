// Command superadmin_seed creates the initial superadmin account.
package main

import (
	"log"
	"os"

	"admitdesk/internal/config"
	"admitdesk/internal/models"
	"admitdesk/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	email := os.Getenv("SUPERADMIN_EMAIL")
	password := os.Getenv("SUPERADMIN_PASSWORD")
	name := config.GetEnv("SUPERADMIN_NAME", "Superadmin")

	if email == "" || password == "" {
		log.Fatal("SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD must be set in environment")
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer func() {
		if repositories.DB != nil {
			if sqlDB, err := repositories.DB.DB(); err == nil {
				sqlDB.Close()
			}
		}
		if repositories.CacheService != nil {
			repositories.CacheService.Close()
		}
	}()

	userRepo := repositories.NewUserRepository(repositories.DB)
	if _, err := userRepo.GetByEmail(email); err == nil {
		log.Println("Superadmin account already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	superadmin := &models.User{
		Email:        email,
		Password:     string(hashed),
		Name:         name,
		Role:         models.RoleSuperadmin,
		TokenVersion: 1,
	}
	if err := userRepo.Create(superadmin); err != nil {
		log.Fatal("Failed to create superadmin account:", err)
	}

	log.Println("Superadmin account created")
}
