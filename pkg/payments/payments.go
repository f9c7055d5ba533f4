// Package payments holds the outbound gateway clients: Safaricom Daraja for
// M-Pesa STK push and Stripe for card payment intents.
package payments

import "errors"

// ErrTransport marks failures to reach a gateway or to read its reply.
var ErrTransport = errors.New("payment gateway unavailable")

// ErrSignature is returned when a webhook payload fails verification.
var ErrSignature = errors.New("invalid webhook signature")
