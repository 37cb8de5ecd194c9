package payment

import (
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/webhook"
)

type StripeService struct {
	secretKey     string
	webhookSecret string
	successURL    string
	cancelURL     string
}

func NewStripeService(secretKey, webhookSecret, frontendURL string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		successURL:    frontendURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:     frontendURL + "/payment/cancel",
	}
}

// CreateCheckoutSession opens a Stripe checkout for a token bundle. The
// handshake token rides along in the metadata so the webhook can
// correlate the completed payment.
func (s *StripeService) CreateCheckoutSession(email, name string, amountCents int64, metadata map[string]string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	return session.New(params)
}

// ConstructEvent verifies the webhook signature and parses the event.
func (s *StripeService) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, s.webhookSecret)
}
