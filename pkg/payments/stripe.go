package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway creates card payment intents and verifies webhooks.
type StripeGateway struct {
	api            *client.API
	webhookSecret  string
	PublishableKey string
}

// NewStripeGateway builds a gateway. apiURL overrides the Stripe endpoint
// and is empty in production.
func NewStripeGateway(secretKey, publishableKey, webhookSecret, apiURL string) *StripeGateway {
	// GetBackendWithConfig fills in defaults on the config it is given, so
	// every backend gets its own.
	cfg := func(url string) *stripe.BackendConfig {
		c := &stripe.BackendConfig{MaxNetworkRetries: stripe.Int64(1)}
		if url != "" {
			c.URL = stripe.String(url)
		}
		return c
	}
	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, cfg(apiURL)),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, cfg("")),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, cfg("")),
	})
	return &StripeGateway{api: api, webhookSecret: webhookSecret, PublishableKey: publishableKey}
}

// Intent is the subset of a payment intent the API hands to clients.
type Intent struct {
	ID           string
	ClientSecret string
}

// ToMinorUnits converts an amount to cents, rounding to the nearest unit.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateIntent creates a card-only payment intent.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(ToMinorUnits(amount)),
		Currency:           stripe.String(strings.ToLower(currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.HTTPStatusCode > 0 && serr.HTTPStatusCode < 500 {
			return nil, fmt.Errorf("stripe: %s", serr.Msg)
		}
		return nil, fmt.Errorf("%w: stripe: %v", ErrTransport, err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// IntentEvent is a verified payment intent webhook.
type IntentEvent struct {
	Type     string
	IntentID string
	ChargeID string
}

const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

func (e *IntentEvent) Succeeded() bool { return e.Type == EventIntentSucceeded }
func (e *IntentEvent) Failed() bool    { return e.Type == EventIntentFailed }

// ParseWebhook verifies the Stripe-Signature header and decodes payment
// intent events. Other event types are returned with an empty IntentID.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*IntentEvent, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}
	out := &IntentEvent{Type: string(evt.Type)}
	if !strings.HasPrefix(out.Type, "payment_intent.") || evt.Data == nil {
		return out, nil
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
		return nil, err
	}
	out.IntentID = pi.ID
	if pi.LatestCharge != nil {
		out.ChargeID = pi.LatestCharge.ID
	}
	return out, nil
}
