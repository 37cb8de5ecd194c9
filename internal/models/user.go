package models

import "time"

// EventsLimitType controls how many events a user may create.
type EventsLimitType string

const (
	LimitUnlimited EventsLimitType = "UNLIMITED"
	LimitNumber    EventsLimitType = "NUMBER"
)

// Permission gates state-mutating routes.
type Permission string

const (
	PermissionCreateEvents Permission = "CREATE_EVENTS"
	PermissionManageEvents Permission = "MANAGE_EVENTS"
	PermissionManageOrg    Permission = "MANAGE_ORGANIZATION"
)

// StringList is stored as a jsonb column so repositories can run
// conditional updates against its length.
type StringList []string

type User struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	OrganizationID  string          `json:"organization_id" gorm:"uniqueIndex:idx_org_username;not null"`
	Username        string          `json:"username" gorm:"uniqueIndex:idx_org_username;uniqueIndex:idx_username;not null"`
	Email           string          `json:"email" gorm:"not null"`
	Password        string          `json:"-" gorm:"not null"`
	Root            bool            `json:"root" gorm:"default:false"`
	Permissions     StringList      `json:"permissions" gorm:"type:jsonb;serializer:json;default:'[]'"`
	EventsCreated   StringList      `json:"events_created" gorm:"type:jsonb;serializer:json;default:'[]'"`
	EventsLimit     int             `json:"events_limit" gorm:"not null;default:1"`
	EventsLimitType EventsLimitType `json:"events_limit_type" gorm:"not null;default:'NUMBER'"`
	ExpiresAt       *time.Time      `json:"expires_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// HasPermission reports whether the user may perform the given action.
// Root users bypass the permission list.
func (u *User) HasPermission(p Permission) bool {
	if u.Root {
		return true
	}
	for _, have := range u.Permissions {
		if have == string(p) {
			return true
		}
	}
	return false
}

// Expired reports whether the account's custom expiration date has passed.
func (u *User) Expired(now time.Time) bool {
	return u.ExpiresAt != nil && now.After(*u.ExpiresAt)
}
