package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/flashframe/flashframe-backend/internal/models"
)

type GiftEventRepository struct {
	db *gorm.DB
}

func NewGiftEventRepository(db *gorm.DB) *GiftEventRepository {
	return &GiftEventRepository{db: db}
}

func (r *GiftEventRepository) Create(gift *models.GiftEvent) error {
	return r.db.Create(gift).Error
}

func (r *GiftEventRepository) GetByID(organizationID string, giftID uint) (*models.GiftEvent, error) {
	var gift models.GiftEvent
	err := r.db.First(&gift, "organization_id = ? AND id = ?", organizationID, giftID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &gift, nil
}

// Redeem flips an ACTIVE gift to USED and records the spent amount, in one
// conditional update. The gift must still be ACTIVE and carry at least the
// requested tokens; otherwise nothing changes and ErrConditionFailed is
// returned.
func (r *GiftEventRepository) Redeem(organizationID string, giftID uint, tokens int) error {
	result := r.db.Exec(`
		UPDATE gift_events
		SET status = ?, tokens_used = ?, updated_at = NOW()
		WHERE organization_id = ? AND id = ? AND status = ? AND tokens >= ?`,
		models.GiftUsed, tokens, organizationID, giftID, models.GiftActive, tokens,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}
