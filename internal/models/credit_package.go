package models

import "time"

// CreditPackage is a purchasable token bundle.
type CreditPackage struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Tokens      int       `json:"tokens" gorm:"not null"`
	Price       float64   `json:"price" gorm:"not null"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
