package models

import "time"

// StartingTokens is the credit balance granted to every new organization.
const StartingTokens = 1000

type Organization struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name" gorm:"not null"`
	RootUser         string    `json:"root_user" gorm:"not null"`
	Tokens           int       `json:"tokens" gorm:"not null;default:0"`
	Location         string    `json:"location"`
	PhotographerName string    `json:"photographer_name"`
	Website          string    `json:"website"`
	Instagram        string    `json:"instagram"`
	Facebook         string    `json:"facebook"`
	Logo             bool      `json:"logo" gorm:"default:false"`
	MainImage        bool      `json:"main_image" gorm:"default:false"`
	LogoVersion      int       `json:"logo_version" gorm:"default:0"`
	MainImageVersion int       `json:"main_image_version" gorm:"default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type UpdateOrganizationRequest struct {
	Name             *string `json:"name"`
	Location         *string `json:"location"`
	PhotographerName *string `json:"photographer_name"`
	Website          *string `json:"website"`
	Instagram        *string `json:"instagram"`
	Facebook         *string `json:"facebook"`
}

type OrganizationResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Tokens           int    `json:"tokens"`
	Location         string `json:"location"`
	PhotographerName string `json:"photographer_name"`
	Website          string `json:"website"`
	Instagram        string `json:"instagram"`
	Facebook         string `json:"facebook"`
	Logo             bool   `json:"logo"`
	MainImage        bool   `json:"main_image"`
}
