package models

import "time"

// FaceRecord links a face indexed by the recognition service back to the
// photo it was detected in. Deleted in bulk with the owning event.
type FaceRecord struct {
	FaceID    string    `json:"face_id" gorm:"primaryKey"`
	EventID   string    `json:"event_id" gorm:"primaryKey;index"`
	Image     string    `json:"image" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
