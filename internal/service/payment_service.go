package service

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/repository"
)

type packageStore interface {
	GetByID(id uint) (*models.CreditPackage, error)
	GetAll() ([]models.CreditPackage, error)
}

type handshakeLedger interface {
	Create(handshake *models.Handshake) error
	GetBySessionID(sessionID string) (*models.Handshake, error)
	SetStatus(thtk string, from, to models.HandshakeStatus) error
}

type checkoutProvider interface {
	CreateCheckoutSession(email, name string, amountCents int64, metadata map[string]string) (*stripe.CheckoutSession, error)
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

type PaymentService struct {
	packages   packageStore
	handshakes handshakeLedger
	stripe     checkoutProvider
	logger     *zap.Logger
}

func NewPaymentService(packages packageStore, handshakes handshakeLedger, stripe checkoutProvider, logger *zap.Logger) *PaymentService {
	return &PaymentService{packages: packages, handshakes: handshakes, stripe: stripe, logger: logger}
}

func (s *PaymentService) ListPackages() ([]models.CreditPackage, error) {
	return s.packages.GetAll()
}

// Checkout opens a Stripe checkout session for a credit package and
// records a pending handshake. The handshake token (thtk) is what event
// creation later presents as proof of payment; it only becomes spendable
// once the webhook confirms the session.
func (s *PaymentService) Checkout(organizationID, email string, packageID uint) (*models.CheckoutSession, error) {
	pkg, err := s.packages.GetByID(packageID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(400, "package not found")
	}
	if err != nil {
		return nil, err
	}

	thtk := uuid.New().String()
	amountCents := int64(pkg.Price * 100)
	session, err := s.stripe.CreateCheckoutSession(email, pkg.Name, amountCents, map[string]string{
		"thtk":         thtk,
		"organization": organizationID,
	})
	if err != nil {
		s.logger.Error("checkout session failed", zap.String("organization", organizationID), zap.Error(err))
		return nil, NewError(502, "could not start checkout")
	}

	if err := s.handshakes.Create(&models.Handshake{
		Thtk:            thtk,
		OrganizationID:  organizationID,
		Tokens:          pkg.Tokens,
		Status:          models.HandshakePending,
		StripeSessionID: session.ID,
		PackageID:       packageID,
	}); err != nil {
		return nil, err
	}

	return &models.CheckoutSession{
		ID:   session.ID,
		URL:  session.URL,
		Thtk: thtk,
	}, nil
}

// HandleWebhook settles handshakes from Stripe events. A completed
// session moves pending -> ready; an expired one moves pending -> failed.
// Unknown sessions and repeated deliveries are ignored.
func (s *PaymentService) HandleWebhook(payload []byte, signature string) error {
	event, err := s.stripe.ConstructEvent(payload, signature)
	if err != nil {
		return NewError(400, "invalid webhook signature")
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.settle(event, models.HandshakeReady)
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		return s.settle(event, models.HandshakeFailed)
	}
	return nil
}

func (s *PaymentService) settle(event stripe.Event, to models.HandshakeStatus) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return NewError(400, "malformed webhook payload")
	}

	handshake, err := s.handshakes.GetBySessionID(session.ID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("webhook for unknown session", zap.String("session", session.ID))
		return nil
	}
	if err != nil {
		return err
	}

	err = s.handshakes.SetStatus(handshake.Thtk, models.HandshakePending, to)
	if errors.Is(err, repository.ErrConditionFailed) {
		// Already settled; webhook retries are expected.
		return nil
	}
	return err
}
