package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/flashframe/flashframe-backend/internal/models"
)

type CreditPackageRepository struct {
	db *gorm.DB
}

func NewCreditPackageRepository(db *gorm.DB) *CreditPackageRepository {
	return &CreditPackageRepository{db: db}
}

func (r *CreditPackageRepository) GetByID(id uint) (*models.CreditPackage, error) {
	var pkg models.CreditPackage
	err := r.db.First(&pkg, "id = ? AND is_active = ?", id, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *CreditPackageRepository) GetAll() ([]models.CreditPackage, error) {
	var packages []models.CreditPackage
	err := r.db.Where("is_active = ?", true).Order("tokens ASC").Find(&packages).Error
	return packages, err
}
