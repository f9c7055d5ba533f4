package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

const recentDonations = 10

type FundraiserService struct {
	Fundraisers repo.FundraiserRepository
	Memorials   repo.MemorialRepository
	Users       repo.UserRepository
	Notifier    *Notifier
	Logger      *logrus.Logger
	Now         func() time.Time

	DefaultCurrency string
	PlatformFee     float64
}

func NewFundraiserService(fundraisers repo.FundraiserRepository, memorials repo.MemorialRepository, users repo.UserRepository, notifier *Notifier, logger *logrus.Logger, currency string, platformFee float64) *FundraiserService {
	return &FundraiserService{
		Fundraisers:     fundraisers,
		Memorials:       memorials,
		Users:           users,
		Notifier:        notifier,
		Logger:          logger,
		Now:             time.Now,
		DefaultCurrency: currency,
		PlatformFee:     platformFee,
	}
}

type FundraiserInput struct {
	Title        *string
	Description  *string
	TargetAmount *float64
	EndDate      *time.Time
	MemorialID   *string
	Currency     *string
	CoverImage   *string
	Status       *entity.FundraiserStatus
}

type DonationInput struct {
	Amount        float64
	DonorName     string
	DonorEmail    string
	DonorPhone    string
	PaymentMethod entity.PaymentMethod
	Message       string
	IsAnonymous   bool
}

// FundraiserDetail is a fundraiser with its latest donations.
type FundraiserDetail struct {
	Fundraiser      *entity.Fundraiser
	RecentDonations []entity.Donation
}

// NewTransactionID returns a TXN-prefixed id that sorts by creation time.
func NewTransactionID(now time.Time) string {
	return fmt.Sprintf("TXN%s%s", now.UTC().Format("20060102150405"), strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]))
}

func roundMoney(v float64) float64 { return math.Round(v*100) / 100 }

func (s *FundraiserService) Create(ctx context.Context, userID string, in FundraiserInput) (*entity.Fundraiser, error) {
	if isBlank(in.Title) || isBlank(in.Description) || in.TargetAmount == nil || in.EndDate == nil {
		return nil, invalid("title, description, target_amount and end_date are required")
	}
	now := nowOr(s.Now)
	plan, err := currentPlan(ctx, s.Users, userID, now)
	if err != nil {
		return nil, err
	}
	if !plan.CanFundraise() {
		return nil, ErrFundraisingPlan
	}

	f := &entity.Fundraiser{
		UserID:   userID,
		Currency: s.DefaultCurrency,
		Status:   entity.FundraiserActive,
	}
	if in.Status != nil && *in.Status != entity.FundraiserDraft && *in.Status != entity.FundraiserActive {
		return nil, invalid("a new fundraiser must be draft or active")
	}
	if err := s.apply(ctx, userID, f, in, now); err != nil {
		return nil, err
	}
	if err := s.Fundraisers.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FundraiserService) apply(ctx context.Context, userID string, f *entity.Fundraiser, in FundraiserInput, now time.Time) error {
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return invalid("title cannot be empty")
		}
		f.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		f.Description = *in.Description
	}
	if in.TargetAmount != nil {
		if *in.TargetAmount <= 0 {
			return invalid("target_amount must be greater than zero")
		}
		f.TargetAmount = roundMoney(*in.TargetAmount)
	}
	if in.EndDate != nil {
		if !in.EndDate.After(now) {
			return invalid("end_date must be in the future")
		}
		f.EndDate = in.EndDate.UTC()
	}
	if in.MemorialID != nil {
		id := strings.TrimSpace(*in.MemorialID)
		if id != "" {
			if _, err := s.Memorials.GetForUser(ctx, id, userID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return ErrMemorialNotFound
				}
				return err
			}
		}
		f.MemorialID = id
	}
	if in.Currency != nil && strings.TrimSpace(*in.Currency) != "" {
		f.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	if in.CoverImage != nil {
		f.CoverImage = strings.TrimSpace(*in.CoverImage)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return invalid("invalid status %q", *in.Status)
		}
		f.Status = *in.Status
	}
	return nil
}

// List returns public fundraisers. status "" means active and "all" lifts
// the status filter.
func (s *FundraiserService) List(ctx context.Context, status string, verifiedOnly bool, page repo.Page) ([]entity.Fundraiser, int, error) {
	filter := repo.FundraiserFilter{VerifiedOnly: verifiedOnly, Page: page}
	switch status {
	case "":
		filter.Status = entity.FundraiserActive
	case "all":
	default:
		st := entity.FundraiserStatus(status)
		if !st.Valid() {
			return nil, 0, invalid("invalid status %q", status)
		}
		filter.Status = st
	}
	return s.Fundraisers.List(ctx, filter)
}

func (s *FundraiserService) ListMine(ctx context.Context, userID string) ([]entity.Fundraiser, error) {
	return s.Fundraisers.ListByUser(ctx, userID)
}

func (s *FundraiserService) get(ctx context.Context, id string) (*entity.Fundraiser, error) {
	f, err := s.Fundraisers.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrFundraiserNotFound
	}
	return f, err
}

func (s *FundraiserService) Get(ctx context.Context, id string) (*FundraiserDetail, error) {
	f, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	recent, err := s.Fundraisers.RecentDonations(ctx, id, recentDonations)
	if err != nil {
		return nil, err
	}
	return &FundraiserDetail{Fundraiser: f, RecentDonations: recent}, nil
}

func (s *FundraiserService) Update(ctx context.Context, userID, id string, in FundraiserInput) (*entity.Fundraiser, error) {
	f, err := s.Fundraisers.GetForUser(ctx, id, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrFundraiserNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, userID, f, in, nowOr(s.Now)); err != nil {
		return nil, err
	}
	if err := s.Fundraisers.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Donate records a donation with its pending payment. donorID is empty for
// guests.
func (s *FundraiserService) Donate(ctx context.Context, donorID, fundraiserID string, in DonationInput) (*entity.Donation, *entity.Payment, error) {
	if in.Amount <= 0 {
		return nil, nil, invalid("amount must be greater than zero")
	}
	if strings.TrimSpace(in.DonorName) == "" || strings.TrimSpace(in.DonorPhone) == "" {
		return nil, nil, invalid("donor_name and donor_phone are required")
	}
	if !in.PaymentMethod.Valid() {
		return nil, nil, invalid("payment_method must be one of mpesa, card, bank")
	}
	f, err := s.get(ctx, fundraiserID)
	if err != nil {
		return nil, nil, err
	}
	if f.Status != entity.FundraiserActive {
		return nil, nil, ErrFundraiserInactive
	}

	amount := roundMoney(in.Amount)
	d := &entity.Donation{
		FundraiserID:  f.ID,
		DonorID:       donorID,
		Amount:        amount,
		Currency:      f.Currency,
		PaymentMethod: in.PaymentMethod,
		TransactionID: NewTransactionID(nowOr(s.Now)),
		DonorName:     strings.TrimSpace(in.DonorName),
		DonorEmail:    strings.ToLower(strings.TrimSpace(in.DonorEmail)),
		DonorPhone:    strings.TrimSpace(in.DonorPhone),
		Message:       strings.TrimSpace(in.Message),
		IsAnonymous:   in.IsAnonymous,
	}
	p := &entity.Payment{
		UserID:      donorID,
		Amount:      amount,
		Currency:    f.Currency,
		Method:      in.PaymentMethod,
		Status:      entity.PaymentPending,
		Description: "Donation to " + f.Title,
		Metadata: map[string]any{
			"fundraiser_id": f.ID,
			"donor_name":    d.DonorName,
			"donor_phone":   d.DonorPhone,
			"platform_fee":  roundMoney(amount * s.PlatformFee),
		},
	}
	updated, err := s.Fundraisers.Donate(ctx, d, p)
	switch {
	case errors.Is(err, repo.ErrConditionFailed):
		return nil, nil, ErrFundraiserInactive
	case errors.Is(err, repo.ErrNotFound):
		return nil, nil, ErrFundraiserNotFound
	case err != nil:
		return nil, nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"fundraiser_id":  updated.ID,
			"donation_id":    d.ID,
			"amount":         amount,
			"current_amount": updated.CurrentAmount,
			"status":         updated.Status,
		}).Info("donation recorded")
	}
	s.Notifier.DonationReceipt(ctx, d, updated)
	return d, p, nil
}

func (s *FundraiserService) ListDonations(ctx context.Context, fundraiserID string, page repo.Page) ([]entity.Donation, int, error) {
	if _, err := s.get(ctx, fundraiserID); err != nil {
		return nil, 0, err
	}
	return s.Fundraisers.ListDonations(ctx, fundraiserID, page)
}
