package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/flashframe/flashframe-backend/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	err := r.db.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *UserRepository) GetByUsername(organizationID, username string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "organization_id = ? AND username = ?", organizationID, username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername looks a user up by username alone; a standalone unique
// index on the column guarantees at most one match.
func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UpdatePassword(organizationID, username, hashedPassword string) error {
	return r.db.Model(&models.User{}).
		Where("organization_id = ? AND username = ?", organizationID, username).
		Update("password", hashedPassword).Error
}

// AppendEventCreated records a new event against the user in one
// conditional update. Under the NUMBER limit policy the append only
// happens while the created-event count is below the limit; at the limit
// the update matches zero rows and ErrConditionFailed is returned with no
// side effects.
func (r *UserRepository) AppendEventCreated(organizationID, username, eventID string, enforceLimit bool) error {
	query := `
		UPDATE users
		SET events_created = events_created || to_jsonb(?::text), updated_at = NOW()
		WHERE organization_id = ? AND username = ?`
	if enforceLimit {
		query += ` AND jsonb_array_length(events_created) < events_limit`
	}

	result := r.db.Exec(query, eventID, organizationID, username)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}
