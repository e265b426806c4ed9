package gateway

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/aniket-manhas-git/aasra-sewa/internal/service"
)

// Stripe creates payment intents and verifies webhook signatures.
type Stripe struct {
	api           *client.API
	currency      string
	webhookSecret string
}

func NewStripe(secretKey, webhookSecret, currency string) *Stripe {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Stripe{api: api, currency: currency, webhookSecret: webhookSecret}
}

func (s *Stripe) CreateIntent(ctx context.Context, amountMinor int64, metadata map[string]string) (*service.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(s.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "stripe: create payment intent")
	}
	return &service.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ParseWebhook authenticates the raw request body against the
// Stripe-Signature header and extracts the payment intent it refers to.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (*service.PaymentEvent, error) {
	if s.webhookSecret == "" {
		return nil, errors.Wrap(service.ErrSignature, "webhook secret not configured")
	}
	evt, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, errors.Wrap(service.ErrSignature, err.Error())
	}

	out := &service.PaymentEvent{Type: string(evt.Type)}
	if evt.Data == nil || len(evt.Data.Raw) == 0 {
		return out, nil
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
		return nil, errors.Wrap(err, "stripe: decoding event object")
	}
	out.IntentID = pi.ID
	return out, nil
}
