package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/flashframe/flashframe-backend/internal/models"
)

type HandshakeRepository struct {
	db *gorm.DB
}

func NewHandshakeRepository(db *gorm.DB) *HandshakeRepository {
	return &HandshakeRepository{db: db}
}

func (r *HandshakeRepository) Create(handshake *models.Handshake) error {
	return r.db.Create(handshake).Error
}

func (r *HandshakeRepository) Get(thtk string) (*models.Handshake, error) {
	var handshake models.Handshake
	err := r.db.First(&handshake, "thtk = ?", thtk).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &handshake, nil
}

func (r *HandshakeRepository) GetBySessionID(sessionID string) (*models.Handshake, error) {
	var handshake models.Handshake
	err := r.db.First(&handshake, "stripe_session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &handshake, nil
}

func (r *HandshakeRepository) SetStatus(thtk string, from, to models.HandshakeStatus) error {
	result := r.db.Model(&models.Handshake{}).
		Where("thtk = ? AND status = ?", thtk, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}

// MarkUsed consumes a ready handshake. A thtk can only be spent once.
func (r *HandshakeRepository) MarkUsed(thtk string) error {
	return r.SetStatus(thtk, models.HandshakeReady, models.HandshakeUsed)
}
