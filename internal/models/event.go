package models

import "time"

// ImagesStatus tracks the upload lifecycle of an event's photo set.
type ImagesStatus string

const (
	ImagesUploading ImagesStatus = "UPLOADING"
	ImagesSuspended ImagesStatus = "SUSPENDED"
	ImagesDone      ImagesStatus = "DONE"
)

// EventsRetentionDays is how long event data is kept before expiry.
const EventsRetentionDays = 365

type Event struct {
	ID                 string       `json:"id" gorm:"primaryKey"`
	OrganizationID     string       `json:"organization_id" gorm:"primaryKey"`
	Username           string       `json:"username" gorm:"not null"`
	Name               string       `json:"name" gorm:"not null"`
	EventDate          string       `json:"event_date"`
	Location           string       `json:"location"`
	PhotographerName   string       `json:"photographer_name"`
	Website            string       `json:"website"`
	Instagram          string       `json:"instagram"`
	Facebook           string       `json:"facebook"`
	NumberOfPhotos     int          `json:"number_of_photos" gorm:"not null;default:0"`
	TotalPhotos        int          `json:"total_photos" gorm:"not null;default:0"`
	UploadTokens       StringList   `json:"tokens" gorm:"type:jsonb;serializer:json;default:'[]'"`
	PhotosProcess      StringList   `json:"photos_process" gorm:"type:jsonb;serializer:json;default:'[]'"`
	FavoritePhotos     StringList   `json:"favorite_photos" gorm:"type:jsonb;serializer:json;default:'[]'"`
	ImagesStatus       ImagesStatus `json:"images_status" gorm:"not null;default:'UPLOADING'"`
	MissingPhotos      int          `json:"missing_photos" gorm:"default:0"`
	SelfiesTaken       int          `json:"selfies_taken" gorm:"default:0"`
	PhotosTaken        int          `json:"photos_taken" gorm:"default:0"`
	IsPublic           bool         `json:"is_public_event" gorm:"default:false"`
	CollectionID       string       `json:"-" gorm:"not null"`
	GiftID             string       `json:"gift_id"`
	GiftFields         StringList   `json:"gift_fields" gorm:"type:jsonb;serializer:json;default:'[]'"`
	Logo               bool         `json:"logo" gorm:"default:false"`
	MainImage          bool         `json:"main_image" gorm:"default:false"`
	Watermark          bool         `json:"watermark" gorm:"default:false"`
	WatermarkSize      int          `json:"event_watermark_size" gorm:"default:1"`
	WatermarkPosition  string       `json:"watermark_position"`
	NextEventPromotion string       `json:"next_event_promotion"`
	LastUpdated        int64        `json:"last_updated" gorm:"default:0"`
	ExpiresAt          time.Time    `json:"expires_at"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// EventMirror is the global slug uniqueness index: one row per event,
// keyed by slug alone, regardless of the owning organization. Created and
// deleted together with the event record.
type EventMirror struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	BelongsTo string    `json:"belongs_to" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateEventRequest struct {
	EventName              string `json:"eventName" validate:"required,max=25"`
	NameURL                string `json:"nameUrl" validate:"omitempty,max=25,slug"`
	EventDate              string `json:"eventDate" validate:"required"`
	NumberOfPhotos         int    `json:"numberOfPhotos"`
	Thtk                   string `json:"thtk"`
	CreditsToUse           int    `json:"creditsToUse"`
	GiftCreditsToUse       int    `json:"giftCreditsToUse"`
	Location               string `json:"location" validate:"max=25"`
	PhotographerName       string `json:"photographerName" validate:"max=25"`
	Website                string `json:"website" validate:"max=200"`
	Instagram              string `json:"instagram" validate:"max=200"`
	Facebook               string `json:"facebook" validate:"max=200"`
	SelectedGiftEventID    uint   `json:"selectedGiftEventId"`
	SelectedGiftEventOrgID string `json:"selectedGiftEventOrgId"`
	Watermark              bool   `json:"watermark"`
	WatermarkSize          int    `json:"eventWatermarkSize"`
	WatermarkPosition      string `json:"watermarkPosition" validate:"max=200"`
	IsPublicEvent          bool   `json:"isPublicEvent"`
}

type UpdateEventRequest struct {
	EventName        *string `json:"eventName" validate:"omitempty,max=25"`
	EventDate        *string `json:"eventDate"`
	Location         *string `json:"location" validate:"omitempty,max=25"`
	PhotographerName *string `json:"photographerName" validate:"omitempty,max=25"`
	Website          *string `json:"website" validate:"omitempty,max=200"`
	Instagram        *string `json:"instagram" validate:"omitempty,max=200"`
	Facebook         *string `json:"facebook" validate:"omitempty,max=200"`
	IsPublicEvent    *bool   `json:"isPublicEvent"`
}

type FavoritePhotosRequest struct {
	PhotosToAdd    []string `json:"photosToAdd" validate:"omitempty,max=20,dive,min=1,max=200"`
	PhotosToRemove []string `json:"photosToRemove" validate:"omitempty,max=20,dive,min=1,max=200"`
}

type AddImagesRequest struct {
	ID           string `json:"id" validate:"required"`
	Thtk         string `json:"thtk"`
	CreditsToUse int    `json:"creditsToUse"`
}

type FinishUploadRequest struct {
	EventID string `json:"eventId" validate:"required"`
}
