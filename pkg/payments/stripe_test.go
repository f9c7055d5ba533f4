package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestCreateIntent(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret_abc","amount":150050,"currency":"kes"}`))
	}))
	defer srv.Close()

	g := NewStripeGateway("sk_test_x", "pk_test_x", testWebhookSecret, srv.URL)
	intent, err := g.CreateIntent(context.Background(), 1500.5, "KES", map[string]string{"payment_id": "p1", "user_id": "u1"})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)

	assert.Equal(t, "150050", form.Get("amount"))
	assert.Equal(t, "kes", form.Get("currency"))
	assert.Equal(t, "card", form.Get("payment_method_types[0]"))
	assert.Equal(t, "p1", form.Get("metadata[payment_id]"))
}

func TestCreateIntentDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Amount must be at least 50 cents"}}`))
	}))
	defer srv.Close()

	g := NewStripeGateway("sk_test_x", "pk_test_x", testWebhookSecret, srv.URL)
	_, err := g.CreateIntent(context.Background(), 0.1, "kes", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "Amount must be at least 50 cents")
}

func TestParseWebhook(t *testing.T) {
	g := NewStripeGateway("sk_test_x", "pk_test_x", testWebhookSecret, "")
	payload := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","object":"payment_intent","latest_charge":"ch_9"}}}`)

	evt, err := g.ParseWebhook(payload, signPayload(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.True(t, evt.Succeeded())
	assert.Equal(t, "pi_123", evt.IntentID)
	assert.Equal(t, "ch_9", evt.ChargeID)

	_, err = g.ParseWebhook(payload, signPayload(payload, "whsec_other"))
	assert.ErrorIs(t, err, ErrSignature)
}

func TestParseWebhookFailedAndOtherEvents(t *testing.T) {
	g := NewStripeGateway("sk_test_x", "pk_test_x", testWebhookSecret, "")
	failed := []byte(`{"id":"evt_2","object":"event","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_9","object":"payment_intent"}}}`)
	evt, err := g.ParseWebhook(failed, signPayload(failed, testWebhookSecret))
	require.NoError(t, err)
	assert.True(t, evt.Failed())
	assert.Equal(t, "pi_9", evt.IntentID)

	other := []byte(`{"id":"evt_3","object":"event","type":"customer.created","data":{"object":{"id":"cus_1","object":"customer"}}}`)
	evt, err = g.ParseWebhook(other, signPayload(other, testWebhookSecret))
	require.NoError(t, err)
	assert.Empty(t, evt.IntentID)
}

func TestToMinorUnits(t *testing.T) {
	assert.EqualValues(t, 1999, ToMinorUnits(19.99))
	assert.EqualValues(t, 100, ToMinorUnits(1))
}
