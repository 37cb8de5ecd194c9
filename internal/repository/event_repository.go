package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/flashframe/flashframe-backend/internal/models"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// CreateWithMirror inserts the event together with its mirror row. The
// mirror table carries slug uniqueness across all organizations, so a
// concurrent create with the same slug makes this transaction fail on
// the mirror's primary key and nothing is written.
func (r *EventRepository) CreateWithMirror(event *models.Event) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.EventMirror{
			ID:        event.ID,
			BelongsTo: event.OrganizationID,
		}).Error; err != nil {
			return err
		}
		return tx.Create(event).Error
	})
}

func (r *EventRepository) MirrorExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.EventMirror{}).Where("id = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *EventRepository) GetMirror(slug string) (*models.EventMirror, error) {
	var mirror models.EventMirror
	err := r.db.First(&mirror, "id = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mirror, nil
}

func (r *EventRepository) GetByID(organizationID, eventID string) (*models.Event, error) {
	var event models.Event
	err := r.db.First(&event, "organization_id = ? AND id = ?", organizationID, eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) ListByOrganization(organizationID string) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}

func (r *EventRepository) UpdateFields(organizationID, eventID string, fields map[string]interface{}) error {
	result := r.db.Model(&models.Event{}).
		Where("organization_id = ? AND id = ?", organizationID, eventID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWithMirror removes the event and its mirror row together so the
// slug becomes reusable in the same step that the event disappears.
func (r *EventRepository) DeleteWithMirror(organizationID, eventID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Event{}, "organization_id = ? AND id = ?", organizationID, eventID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Delete(&models.EventMirror{}, "id = ?", eventID).Error
	})
}

// ReserveUploadToken appends the file token to the event's upload ledger
// in one conditional update. The append succeeds only while the ledger is
// below the photo budget and the token is not already present. On a zero
// row match the event is re-read to tell the two failure modes apart.
func (r *EventRepository) ReserveUploadToken(organizationID, eventID, token string) error {
	result := r.db.Exec(`
		UPDATE events
		SET upload_tokens = upload_tokens || to_jsonb(?::text), last_updated = ?
		WHERE organization_id = ? AND id = ?
		  AND jsonb_array_length(upload_tokens) < number_of_photos
		  AND NOT (upload_tokens @> to_jsonb(?::text))`,
		token, time.Now().Unix(), organizationID, eventID, token,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	event, err := r.GetByID(organizationID, eventID)
	if err != nil {
		return err
	}
	for _, t := range event.UploadTokens {
		if t == token {
			return ErrUploadDuplicate
		}
	}
	return ErrUploadLimit
}

// AppendPhotoProcess marks a photo as uploaded-but-unprocessed. Duplicate
// S3 notifications for the same key leave the list unchanged.
func (r *EventRepository) AppendPhotoProcess(organizationID, eventID, photo string) error {
	return r.db.Exec(`
		UPDATE events
		SET photos_process = photos_process || to_jsonb(?::text), last_updated = ?
		WHERE organization_id = ? AND id = ?
		  AND NOT (photos_process @> to_jsonb(?::text))`,
		photo, time.Now().Unix(), organizationID, eventID, photo,
	).Error
}

// CompletePhotoProcess moves a processed photo out of the pending list and
// into the total count in a single statement.
func (r *EventRepository) CompletePhotoProcess(organizationID, eventID, photo string) error {
	return r.db.Exec(`
		UPDATE events
		SET photos_process = photos_process - ?::text,
		    total_photos = total_photos + 1,
		    last_updated = ?
		WHERE organization_id = ? AND id = ?
		  AND photos_process @> to_jsonb(?::text)`,
		photo, time.Now().Unix(), organizationID, eventID, photo,
	).Error
}

// FoldProcessedPhotos folds n stale pending photos into the total count
// during list reconciliation.
func (r *EventRepository) FoldProcessedPhotos(organizationID, eventID string, photos []string) error {
	for _, photo := range photos {
		if err := r.CompletePhotoProcess(organizationID, eventID, photo); err != nil {
			return err
		}
	}
	return nil
}

func (r *EventRepository) SetImagesStatus(organizationID, eventID string, status models.ImagesStatus) error {
	return r.UpdateFields(organizationID, eventID, map[string]interface{}{
		"images_status": status,
		"last_updated":  time.Now().Unix(),
	})
}

// SetSuspended records how many photos went missing and parks the event.
func (r *EventRepository) SetSuspended(organizationID, eventID string, missing int) error {
	return r.UpdateFields(organizationID, eventID, map[string]interface{}{
		"images_status":  models.ImagesSuspended,
		"missing_photos": missing,
		"last_updated":   time.Now().Unix(),
	})
}

func (r *EventRepository) UpdateFavorites(organizationID, eventID string, photos models.StringList) error {
	return r.UpdateFields(organizationID, eventID, map[string]interface{}{
		"favorite_photos": photos,
		"last_updated":    time.Now().Unix(),
	})
}

func (r *EventRepository) Touch(organizationID, eventID string) error {
	return r.UpdateFields(organizationID, eventID, map[string]interface{}{
		"last_updated": time.Now().Unix(),
	})
}
