package templates

import (
	"time"

	"github.com/kenfuse/kenfuse-api/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithAmount(amount float64, currency string) Option {
	return func(d *EmailData) {
		d.Amount = amount
		d.Currency = currency
	}
}

func WithNotes(notes string) Option { return func(d *EmailData) { d.Notes = notes } }

// NewBaseEmailData fills the common fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ string, name, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		RecipientEmail: recipient,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		PrivacyURL:     cfg.PrivacyURL,
		UnsubscribeURL: cfg.UnsubscribeURL,
		DashboardURL:   cfg.DashboardURL,
	}
	WithTime(time.Now())(&d)
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, name, email, role string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, Welcome, name, email, opts...)
	d.Role = role
	return ToMap(d)
}

func NewDonationReceiptData(cfg *config.Config, donorName, email, fundraiserTitle, transactionID string, amount float64, currency string, opts ...Option) map[string]any {
	opts = append([]Option{WithAmount(amount, currency)}, opts...)
	d := NewBaseEmailData(cfg, DonationReceipt, donorName, email, opts...)
	d.FundraiserTitle = fundraiserTitle
	d.TransactionID = transactionID
	return ToMap(d)
}

func NewBookingRequestData(cfg *config.Config, businessName, email, customerName, serviceName string, bookingDate time.Time, amount float64, currency string, opts ...Option) map[string]any {
	opts = append([]Option{WithAmount(amount, currency)}, opts...)
	d := NewBaseEmailData(cfg, BookingRequest, businessName, email, opts...)
	d.BusinessName = businessName
	d.CustomerName = customerName
	d.ServiceName = serviceName
	d.BookingDate = bookingDate.UTC().Format("02 January 2006, 15:04")
	return ToMap(d)
}

func NewBookingStatusData(cfg *config.Config, customerName, email, businessName, serviceName, status string, bookingDate time.Time, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, BookingStatus, customerName, email, opts...)
	d.BusinessName = businessName
	d.ServiceName = serviceName
	d.BookingStatus = status
	d.BookingDate = bookingDate.UTC().Format("02 January 2006, 15:04")
	return ToMap(d)
}
