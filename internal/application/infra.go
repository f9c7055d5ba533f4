package application

import (
	"context"
	"io"

	"github.com/kenfuse/kenfuse-api/pkg/payments"
)

// ObjectStore persists uploaded files and returns their public URL.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// Publisher puts a message on the async queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// MobileMoneyGateway prompts an M-Pesa STK push.
type MobileMoneyGateway interface {
	STKPush(ctx context.Context, in payments.STKPushRequest) (*payments.STKPushResponse, error)
}

// CardGateway creates card payment intents and verifies their webhooks.
type CardGateway interface {
	CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*payments.Intent, error)
	ParseWebhook(payload []byte, signature string) (*payments.IntentEvent, error)
}
