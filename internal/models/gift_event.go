package models

import "time"

// GiftEventStatus moves ACTIVE -> USED exactly once; INACTIVE gifts were
// revoked before redemption.
type GiftEventStatus string

const (
	GiftActive   GiftEventStatus = "ACTIVE"
	GiftUsed     GiftEventStatus = "USED"
	GiftInactive GiftEventStatus = "INACTIVE"
)

type GiftEvent struct {
	ID             uint            `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrganizationID string          `json:"organization_id" gorm:"primaryKey"`
	Root           string          `json:"root" gorm:"not null"` // issuing organization
	Tokens         int             `json:"tokens" gorm:"not null;default:0"`
	TokensUsed     int             `json:"tokens_used" gorm:"default:0"`
	Status         GiftEventStatus `json:"status" gorm:"not null;default:'ACTIVE'"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// GiftDefaults are the branding fields a gift's issuing organization
// donates to the new event. Field names listed in the event's GiftFields
// may not be overwritten by later edits.
type GiftDefaults struct {
	Name             string
	Location         string
	PhotographerName string
	Website          string
	Instagram        string
	Facebook         string
	Logo             bool
	MainImage        bool
}
