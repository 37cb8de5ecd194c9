package models

import "time"

// HandshakeStatus tracks a payment confirmation token. The Stripe webhook
// flips pending -> ready; event creation consumes ready -> used.
type HandshakeStatus string

const (
	HandshakePending HandshakeStatus = "pending"
	HandshakeReady   HandshakeStatus = "ready"
	HandshakeUsed    HandshakeStatus = "used"
	HandshakeFailed  HandshakeStatus = "failed"
	HandshakeExpired HandshakeStatus = "expired"
)

type Handshake struct {
	Thtk            string          `json:"thtk" gorm:"primaryKey"`
	OrganizationID  string          `json:"organization_id" gorm:"not null"`
	Tokens          int             `json:"tokens" gorm:"not null"`
	Status          HandshakeStatus `json:"status" gorm:"not null;default:'pending'"`
	StripeSessionID string          `json:"stripe_session_id" gorm:"uniqueIndex"`
	PackageID       uint            `json:"package_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type CheckoutSession struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Thtk string `json:"thtk"`
}
