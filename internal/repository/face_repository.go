package repository

import (
	"gorm.io/gorm"

	"github.com/flashframe/flashframe-backend/internal/models"
)

type FaceRepository struct {
	db *gorm.DB
}

func NewFaceRepository(db *gorm.DB) *FaceRepository {
	return &FaceRepository{db: db}
}

func (r *FaceRepository) CreateBatch(faces []models.FaceRecord) error {
	if len(faces) == 0 {
		return nil
	}
	return r.db.Create(&faces).Error
}

func (r *FaceRepository) ListByEvent(eventID string) ([]models.FaceRecord, error) {
	var faces []models.FaceRecord
	err := r.db.Where("event_id = ?", eventID).Find(&faces).Error
	return faces, err
}

func (r *FaceRepository) DeleteByEvent(eventID string) error {
	return r.db.Delete(&models.FaceRecord{}, "event_id = ?", eventID).Error
}

func (r *FaceRepository) DeleteByImage(eventID, image string) error {
	return r.db.Delete(&models.FaceRecord{}, "event_id = ? AND image = ?", eventID, image).Error
}
