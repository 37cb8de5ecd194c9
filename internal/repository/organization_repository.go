package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/flashframe/flashframe-backend/internal/models"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(org *models.Organization) error {
	return r.db.Create(org).Error
}

func (r *OrganizationRepository) GetByID(id string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.First(&org, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

// DebitTokens atomically decrements the organization's token balance.
// The precondition (balance >= amount AND amount > 0) lives in the WHERE
// clause, so the balance can never go negative and a non-positive amount
// can never succeed.
func (r *OrganizationRepository) DebitTokens(orgID string, amount int) error {
	result := r.db.Exec(`
		UPDATE organizations
		SET tokens = tokens - ?, updated_at = NOW()
		WHERE id = ? AND tokens >= ? AND ? > 0`,
		amount, orgID, amount, amount,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}

