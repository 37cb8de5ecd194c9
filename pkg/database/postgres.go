package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/flashframe/flashframe-backend/internal/models"
)

func NewDatabase(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return db, nil
}

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Event{},
		&models.EventMirror{},
		&models.GiftEvent{},
		&models.Handshake{},
		&models.FaceRecord{},
		&models.CreditPackage{},
	)
	if err != nil {
		return err
	}

	return seedCreditPackages(db)
}

func seedCreditPackages(db *gorm.DB) error {
	packages := []models.CreditPackage{
		{
			Name:        "100 Credits",
			Description: "100 photo credits",
			Tokens:      100,
			Price:       19.99,
			IsActive:    true,
		},
		{
			Name:        "300 Credits",
			Description: "300 photo credits",
			Tokens:      300,
			Price:       39.99,
			IsActive:    true,
		},
		{
			Name:        "500 Credits",
			Description: "500 photo credits",
			Tokens:      500,
			Price:       59.99,
			IsActive:    true,
		},
		{
			Name:        "1500 Credits",
			Description: "1500 photo credits, priority support",
			Tokens:      1500,
			Price:       149.99,
			IsActive:    true,
		},
	}

	for _, pkg := range packages {
		var count int64
		db.Model(&models.CreditPackage{}).Where("name = ?", pkg.Name).Count(&count)
		if count == 0 {
			if err := db.Create(&pkg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
