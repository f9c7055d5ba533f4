package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kenfuse/kenfuse-api/config"
	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
	"github.com/kenfuse/kenfuse-api/pkg/mailer"
	mailtpl "github.com/kenfuse/kenfuse-api/pkg/mailer/templates"
)

// Notifier enqueues transactional emails. A nil Notifier, a nil publisher or
// MailSendEnabled=false turn every call into a no-op. Publish failures are
// logged and never fail the caller.
type Notifier struct {
	pub    Publisher
	cfg    *config.Config
	logger *logrus.Logger
}

func NewNotifier(pub Publisher, cfg *config.Config, logger *logrus.Logger) *Notifier {
	return &Notifier{pub: pub, cfg: cfg, logger: logger}
}

func (n *Notifier) enabled() bool {
	return n != nil && n.pub != nil && n.cfg != nil && n.cfg.MailSendEnabled
}

func (n *Notifier) enqueue(ctx context.Context, to, template string, data map[string]any) {
	if !n.enabled() || to == "" {
		return
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	job := mailer.EmailJob{To: to, Template: template, Data: data}
	if err := n.pub.PublishJSON(c, job); err != nil {
		helpers.LogWarn(n.logger, "enqueue email failed", err, logrus.Fields{"template": template, "to": to})
	}
}

func (n *Notifier) Welcome(ctx context.Context, u *entity.User) {
	if !n.enabled() {
		return
	}
	n.enqueue(ctx, u.Email, mailtpl.Welcome, mailtpl.NewWelcomeData(n.cfg, u.FullName(), u.Email, string(u.Role)))
}

func (n *Notifier) DonationReceipt(ctx context.Context, d *entity.Donation, f *entity.Fundraiser) {
	if !n.enabled() || d.DonorEmail == "" {
		return
	}
	n.enqueue(ctx, d.DonorEmail, mailtpl.DonationReceipt,
		mailtpl.NewDonationReceiptData(n.cfg, d.DonorName, d.DonorEmail, f.Title, d.TransactionID, d.Amount, d.Currency))
}

func (n *Notifier) BookingRequest(ctx context.Context, v *entity.VendorProfile, customer *entity.User, s *entity.VendorService, b *entity.VendorBooking) {
	if !n.enabled() || v.Email == "" {
		return
	}
	n.enqueue(ctx, v.Email, mailtpl.BookingRequest,
		mailtpl.NewBookingRequestData(n.cfg, v.BusinessName, v.Email, customer.FullName(), s.Name, b.BookingDate, b.Amount, s.Currency, mailtpl.WithNotes(b.Notes)))
}

func (n *Notifier) BookingStatus(ctx context.Context, customer *entity.User, v *entity.VendorProfile, s *entity.VendorService, b *entity.VendorBooking) {
	if !n.enabled() {
		return
	}
	n.enqueue(ctx, customer.Email, mailtpl.BookingStatus,
		mailtpl.NewBookingStatusData(n.cfg, customer.FullName(), customer.Email, v.BusinessName, s.Name, string(b.Status), b.BookingDate))
}

// Send enqueues an ad-hoc job. It reports false without error when sending
// is disabled, and unlike the transactional helpers it returns publish
// failures to the caller.
func (n *Notifier) Send(ctx context.Context, job mailer.EmailJob) (bool, error) {
	if !n.enabled() {
		return false, nil
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := n.pub.PublishJSON(c, job); err != nil {
		return false, err
	}
	return true, nil
}
