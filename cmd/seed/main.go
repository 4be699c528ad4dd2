package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"deliverytrack/internal/config"
	"deliverytrack/internal/db"
	"deliverytrack/internal/model"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type seedUser struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(&model.User{}, &model.Order{}, &model.HistoryEntry{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	users := []seedUser{
		{Name: "Admin User", Email: "admin@example.com", Password: "admin123", Role: model.RoleAdmin},
		{Name: "Seller One", Email: "seller@example.com", Password: "seller123", Role: model.RoleSeller},
		{Name: "Seller Two", Email: "seller2@example.com", Password: "password123", Role: model.RoleSeller},
		{Name: "Buyer One", Email: "buyer@example.com", Password: "buyer123", Role: model.RoleBuyer},
		{Name: "Buyer Two", Email: "buyer2@example.com", Password: "password123", Role: model.RoleBuyer},
		{Name: "Buyer Three", Email: "buyer3@example.com", Password: "password123", Role: model.RoleBuyer},
	}

	created := 0
	for _, su := range users {
		var existing model.User
		err := gdb.WithContext(ctx).First(&existing, "email = ?", su.Email).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup %s: %w", su.Email, err)
		}
		u := model.User{
			ID:    uuid.NewString(),
			Name:  su.Name,
			Email: su.Email,
			Role:  su.Role,
		}
		if err := u.SetPassword(su.Password); err != nil {
			return fmt.Errorf("hash password for %s: %w", su.Email, err)
		}
		if err := gdb.WithContext(ctx).Create(&u).Error; err != nil {
			return fmt.Errorf("create %s: %w", su.Email, err)
		}
		created++
	}

	log.Printf("seed complete: %d users created, %d already present", created, len(users)-created)
	return nil
}
