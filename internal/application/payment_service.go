package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
	"github.com/kenfuse/kenfuse-api/pkg/payments"
)

const (
	defaultPaymentDescription = "KENFUSE Payment"
	accountReferencePrefix    = "KENFUSE"
)

type PaymentService struct {
	Payments repo.PaymentRepository
	Mpesa    MobileMoneyGateway
	Card     CardGateway
	Logger   *logrus.Logger

	DefaultCurrency string
}

func NewPaymentService(payments repo.PaymentRepository, mpesa MobileMoneyGateway, card CardGateway, logger *logrus.Logger, currency string) *PaymentService {
	return &PaymentService{Payments: payments, Mpesa: mpesa, Card: card, Logger: logger, DefaultCurrency: currency}
}

type MpesaInput struct {
	Phone       string
	Amount      float64
	Description string
}

type CardInput struct {
	Amount      float64
	Description string
	Metadata    map[string]string
}

// CardCheckout is what a client needs to confirm a card payment.
type CardCheckout struct {
	Payment *entity.Payment
	Intent  *payments.Intent
}

func accountReference(paymentID string) string {
	ref := strings.ReplaceAll(paymentID, "-", "")
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return accountReferencePrefix + strings.ToUpper(ref)
}

func describe(d string) string {
	if d = strings.TrimSpace(d); d != "" {
		return d
	}
	return defaultPaymentDescription
}

// InitiateMpesa records a pending payment and prompts the customer's handset.
func (s *PaymentService) InitiateMpesa(ctx context.Context, userID string, in MpesaInput) (*entity.Payment, error) {
	if s.Mpesa == nil {
		return nil, ErrMpesaDisabled
	}
	if in.Amount <= 0 {
		return nil, invalid("amount must be greater than zero")
	}
	phone := payments.NormalizePhone(in.Phone)
	p := &entity.Payment{
		UserID:      userID,
		Amount:      roundMoney(in.Amount),
		Currency:    s.DefaultCurrency,
		Method:      entity.MethodMpesa,
		Status:      entity.PaymentPending,
		Description: describe(in.Description),
		Metadata:    map[string]any{"phone_number": phone},
	}
	if err := s.Payments.Create(ctx, p); err != nil {
		return nil, err
	}

	res, err := s.Mpesa.STKPush(ctx, payments.STKPushRequest{
		Phone:       phone,
		Amount:      p.Amount,
		Reference:   accountReference(p.ID),
		Description: p.Description,
	})
	if err != nil {
		helpers.LogError(s.Logger, "mpesa stk push failed", err, logrus.Fields{"payment_id": p.ID})
		p.Metadata["error"] = err.Error()
		s.fail(ctx, p)
		return nil, newErr(ErrGateway, "could not reach M-Pesa, try again later")
	}
	p.Metadata["merchant_request_id"] = res.MerchantRequestID
	p.Metadata["checkout_request_id"] = res.CheckoutRequestID
	p.Metadata["response_code"] = res.ResponseCode
	p.Metadata["response_description"] = res.ResponseDescription
	if res.CustomerMessage != "" {
		p.Metadata["customer_message"] = res.CustomerMessage
	}
	if !res.Accepted() {
		s.fail(ctx, p)
		msg := res.ResponseDescription
		if msg == "" {
			msg = "M-Pesa declined the request"
		}
		return nil, newErr(ErrPaymentDeclined, "%s", msg)
	}
	if err := s.Payments.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// InitiateCard records a pending payment and opens a Stripe payment intent
// for it.
func (s *PaymentService) InitiateCard(ctx context.Context, userID string, in CardInput) (*CardCheckout, error) {
	if s.Card == nil {
		return nil, ErrCardDisabled
	}
	if in.Amount <= 0 {
		return nil, invalid("amount must be greater than zero")
	}
	meta := make(map[string]any, len(in.Metadata))
	for k, v := range in.Metadata {
		meta[k] = v
	}
	p := &entity.Payment{
		UserID:      userID,
		Amount:      roundMoney(in.Amount),
		Currency:    s.DefaultCurrency,
		Method:      entity.MethodCard,
		Status:      entity.PaymentPending,
		Description: describe(in.Description),
		Metadata:    meta,
	}
	if err := s.Payments.Create(ctx, p); err != nil {
		return nil, err
	}

	stripeMeta := map[string]string{"payment_id": p.ID, "user_id": userID}
	for k, v := range in.Metadata {
		if _, reserved := stripeMeta[k]; !reserved {
			stripeMeta[k] = v
		}
	}
	intent, err := s.Card.CreateIntent(ctx, p.Amount, p.Currency, stripeMeta)
	if err != nil {
		helpers.LogError(s.Logger, "stripe create intent failed", err, logrus.Fields{"payment_id": p.ID})
		p.Metadata["error"] = err.Error()
		s.fail(ctx, p)
		if errors.Is(err, payments.ErrTransport) {
			return nil, newErr(ErrGateway, "could not reach the card processor, try again later")
		}
		return nil, newErr(ErrPaymentDeclined, "%s", err.Error())
	}
	p.StripePaymentIntent = intent.ID
	if err := s.Payments.Update(ctx, p); err != nil {
		return nil, err
	}
	return &CardCheckout{Payment: p, Intent: intent}, nil
}

func (s *PaymentService) fail(ctx context.Context, p *entity.Payment) {
	p.Status = entity.PaymentFailed
	if err := s.Payments.Update(ctx, p); err != nil {
		helpers.LogError(s.Logger, "mark payment failed", err, logrus.Fields{"payment_id": p.ID})
	}
}

// settle applies a gateway outcome. It reports false when a concurrent
// delivery of the same event settled p first.
func (s *PaymentService) settle(ctx context.Context, p *entity.Payment) (bool, error) {
	err := s.Payments.Settle(ctx, p)
	if errors.Is(err, repo.ErrConditionFailed) {
		helpers.LogInfo(s.Logger, "payment already settled", logrus.Fields{"payment_id": p.ID})
		return false, nil
	}
	return err == nil, err
}

// HandleMpesaCallback settles the payment named in a Daraja STK callback.
// Unknown or already settled payments are ignored so Daraja retries stop.
func (s *PaymentService) HandleMpesaCallback(ctx context.Context, body []byte) error {
	cb, err := payments.ParseSTKCallback(body)
	if err != nil {
		return ErrInvalidCallback
	}
	p, err := s.Payments.GetByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if errors.Is(err, repo.ErrNotFound) {
		helpers.LogWarn(s.Logger, "mpesa callback for unknown payment", nil, logrus.Fields{"checkout_request_id": cb.CheckoutRequestID})
		return nil
	}
	if err != nil {
		return err
	}
	if p.Status != entity.PaymentPending {
		return nil
	}
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	p.Metadata["result_code"] = cb.ResultCode
	p.Metadata["result_description"] = cb.ResultDesc
	if cb.Succeeded() {
		p.Status = entity.PaymentCompleted
		p.MpesaReceipt = cb.Receipt
		p.TransactionID = cb.Receipt
	} else {
		p.Status = entity.PaymentFailed
	}
	if ok, err := s.settle(ctx, p); err != nil || !ok {
		return err
	}
	helpers.LogInfo(s.Logger, "mpesa payment settled", logrus.Fields{"payment_id": p.ID, "status": p.Status})
	return nil
}

// HandleStripeWebhook verifies and applies a payment intent event.
func (s *PaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.Card == nil {
		return ErrCardDisabled
	}
	ev, err := s.Card.ParseWebhook(payload, signature)
	if err != nil {
		helpers.LogWarn(s.Logger, "stripe webhook rejected", err, nil)
		return ErrInvalidSignature
	}
	if !ev.Succeeded() && !ev.Failed() {
		return nil
	}
	p, err := s.Payments.GetByStripeIntent(ctx, ev.IntentID)
	if errors.Is(err, repo.ErrNotFound) {
		helpers.LogWarn(s.Logger, "stripe event for unknown payment", nil, logrus.Fields{"intent_id": ev.IntentID})
		return nil
	}
	if err != nil {
		return err
	}
	if p.Status != entity.PaymentPending {
		return nil
	}
	if ev.Succeeded() {
		p.Status = entity.PaymentCompleted
		p.TransactionID = ev.ChargeID
		if p.TransactionID == "" {
			p.TransactionID = ev.IntentID
		}
	} else {
		p.Status = entity.PaymentFailed
	}
	if ok, err := s.settle(ctx, p); err != nil || !ok {
		return err
	}
	helpers.LogInfo(s.Logger, "card payment settled", logrus.Fields{"payment_id": p.ID, "status": p.Status})
	return nil
}

// VerifyMpesa reports the stored state of an STK push. It does not query
// Daraja.
func (s *PaymentService) VerifyMpesa(ctx context.Context, userID, checkoutRequestID string) (*entity.Payment, error) {
	p, err := s.Payments.GetByCheckoutRequestID(ctx, checkoutRequestID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && p.UserID != userID) {
		return nil, ErrPaymentNotFound
	}
	return p, err
}

func (s *PaymentService) List(ctx context.Context, userID string) ([]entity.Payment, error) {
	return s.Payments.ListByUser(ctx, userID)
}

func (s *PaymentService) Get(ctx context.Context, userID, id string) (*entity.Payment, error) {
	p, err := s.Payments.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && p.UserID != userID) {
		return nil, ErrPaymentNotFound
	}
	return p, err
}
