package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/repository"
)

type fakePackageStore struct {
	packages map[uint]*models.CreditPackage
}

func (f *fakePackageStore) GetByID(id uint) (*models.CreditPackage, error) {
	pkg, ok := f.packages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return pkg, nil
}

func (f *fakePackageStore) GetAll() ([]models.CreditPackage, error) {
	var out []models.CreditPackage
	for _, pkg := range f.packages {
		out = append(out, *pkg)
	}
	return out, nil
}

type fakeHandshakeLedger struct {
	handshakes map[string]*models.Handshake // thtk -> handshake
	bySession  map[string]string            // session id -> thtk
}

func newFakeHandshakeLedger() *fakeHandshakeLedger {
	return &fakeHandshakeLedger{
		handshakes: map[string]*models.Handshake{},
		bySession:  map[string]string{},
	}
}

func (f *fakeHandshakeLedger) Create(h *models.Handshake) error {
	f.handshakes[h.Thtk] = h
	f.bySession[h.StripeSessionID] = h.Thtk
	return nil
}

func (f *fakeHandshakeLedger) GetBySessionID(sessionID string) (*models.Handshake, error) {
	thtk, ok := f.bySession[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.handshakes[thtk], nil
}

func (f *fakeHandshakeLedger) SetStatus(thtk string, from, to models.HandshakeStatus) error {
	h, ok := f.handshakes[thtk]
	if !ok || h.Status != from {
		return repository.ErrConditionFailed
	}
	h.Status = to
	return nil
}

type fakeCheckout struct {
	event stripe.Event
}

func (f *fakeCheckout) CreateCheckoutSession(_, _ string, _ int64, _ map[string]string) (*stripe.CheckoutSession, error) {
	return &stripe.CheckoutSession{ID: "cs_123", URL: "https://checkout.example.com/cs_123"}, nil
}

func (f *fakeCheckout) ConstructEvent(_ []byte, _ string) (stripe.Event, error) {
	return f.event, nil
}

func webhookEvent(t *testing.T, eventType, sessionID string) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]string{"id": sessionID})
	require.NoError(t, err)
	return stripe.Event{
		Type: eventType,
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func newPaymentFixture() (*PaymentService, *fakeHandshakeLedger, *fakeCheckout) {
	packages := &fakePackageStore{packages: map[uint]*models.CreditPackage{
		1: {ID: 1, Name: "Starter", Tokens: 100, Price: 19.90, IsActive: true},
	}}
	ledger := newFakeHandshakeLedger()
	checkout := &fakeCheckout{}
	return NewPaymentService(packages, ledger, checkout, zap.NewNop()), ledger, checkout
}

func TestCheckoutCreatesPendingHandshake(t *testing.T) {
	svc, ledger, _ := newPaymentFixture()

	session, err := svc.Checkout("org-1", "alice@example.com", 1)
	require.NoError(t, err)
	assert.Equal(t, "cs_123", session.ID)
	assert.NotEmpty(t, session.Thtk)

	h := ledger.handshakes[session.Thtk]
	require.NotNil(t, h)
	assert.Equal(t, models.HandshakePending, h.Status)
	assert.Equal(t, 100, h.Tokens)
	assert.Equal(t, "org-1", h.OrganizationID)
}

func TestCheckoutUnknownPackage(t *testing.T) {
	svc, _, _ := newPaymentFixture()

	_, err := svc.Checkout("org-1", "alice@example.com", 99)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 400, svcErr.Status)
}

func TestWebhookCompletedMarksHandshakeReady(t *testing.T) {
	svc, ledger, checkout := newPaymentFixture()
	session, err := svc.Checkout("org-1", "alice@example.com", 1)
	require.NoError(t, err)

	checkout.event = webhookEvent(t, "checkout.session.completed", "cs_123")
	require.NoError(t, svc.HandleWebhook([]byte("{}"), "sig"))
	assert.Equal(t, models.HandshakeReady, ledger.handshakes[session.Thtk].Status)
}

func TestWebhookExpiredMarksHandshakeFailed(t *testing.T) {
	svc, ledger, checkout := newPaymentFixture()
	session, err := svc.Checkout("org-1", "alice@example.com", 1)
	require.NoError(t, err)

	checkout.event = webhookEvent(t, "checkout.session.expired", "cs_123")
	require.NoError(t, svc.HandleWebhook([]byte("{}"), "sig"))
	assert.Equal(t, models.HandshakeFailed, ledger.handshakes[session.Thtk].Status)
}

func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
	svc, ledger, checkout := newPaymentFixture()
	session, err := svc.Checkout("org-1", "alice@example.com", 1)
	require.NoError(t, err)

	checkout.event = webhookEvent(t, "checkout.session.completed", "cs_123")
	require.NoError(t, svc.HandleWebhook([]byte("{}"), "sig"))
	require.NoError(t, svc.HandleWebhook([]byte("{}"), "sig"))
	assert.Equal(t, models.HandshakeReady, ledger.handshakes[session.Thtk].Status)
}

func TestWebhookUnknownSessionIgnored(t *testing.T) {
	svc, _, checkout := newPaymentFixture()

	checkout.event = webhookEvent(t, "checkout.session.completed", "cs_unknown")
	assert.NoError(t, svc.HandleWebhook([]byte("{}"), "sig"))
}
