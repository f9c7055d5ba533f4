package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

type VendorService struct {
	Vendors  repo.VendorRepository
	Users    repo.UserRepository
	Search   *SearchIndex
	Notifier *Notifier
	Logger   *logrus.Logger
	Now      func() time.Time

	DefaultCurrency string
	CommissionRate  float64
}

func NewVendorService(vendors repo.VendorRepository, users repo.UserRepository, search *SearchIndex, notifier *Notifier, logger *logrus.Logger, currency string, commission float64) *VendorService {
	return &VendorService{
		Vendors:         vendors,
		Users:           users,
		Search:          search,
		Notifier:        notifier,
		Logger:          logger,
		Now:             time.Now,
		DefaultCurrency: currency,
		CommissionRate:  commission,
	}
}

type VendorProfileInput struct {
	BusinessName         *string
	BusinessRegistration *string
	Category             *entity.VendorCategory
	Description          *string
	YearsInOperation     *int
	County               *string
	Town                 *string
	Address              *string
	Phone                *string
	Email                *string
	Website              *string
	LogoURL              *string
	CoverImage           *string
}

type ServiceInput struct {
	Name        *string
	Description *string
	Price       *float64
	Currency    *string
	Duration    *string
	IsAvailable *bool
}

type BookingInput struct {
	ServiceID   string
	BookingDate time.Time
	Notes       string
}

type ReviewInput struct {
	Rating  int
	Comment string
}

// VendorDetail is a public profile with its bookable services.
type VendorDetail struct {
	Profile  *entity.VendorProfile
	Services []entity.VendorService
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func (in VendorProfileInput) apply(v *entity.VendorProfile) error {
	if in.BusinessName != nil {
		if trimmed(in.BusinessName) == "" {
			return invalid("business_name cannot be empty")
		}
		v.BusinessName = trimmed(in.BusinessName)
	}
	if in.BusinessRegistration != nil {
		v.BusinessRegistration = trimmed(in.BusinessRegistration)
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return invalid("invalid category %q", *in.Category)
		}
		v.Category = *in.Category
	}
	if in.YearsInOperation != nil {
		if *in.YearsInOperation < 0 {
			return invalid("years_in_operation cannot be negative")
		}
		v.YearsInOperation = *in.YearsInOperation
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	for dst, src := range map[*string]*string{
		&v.County: in.County, &v.Town: in.Town, &v.Address: in.Address, &v.Phone: in.Phone,
		&v.Website: in.Website, &v.LogoURL: in.LogoURL, &v.CoverImage: in.CoverImage,
	} {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	if in.Email != nil {
		v.Email = normalizeEmail(*in.Email)
	}
	return nil
}

// Register creates the caller's vendor profile in pending status.
func (s *VendorService) Register(ctx context.Context, user *entity.User, in VendorProfileInput) (*entity.VendorProfile, error) {
	if user.Role != entity.RoleVendor {
		return nil, ErrNotVendor
	}
	if isBlank(in.BusinessName) || in.Category == nil {
		return nil, invalid("business_name and category are required")
	}
	if _, err := s.Vendors.GetProfileByUser(ctx, user.ID); err == nil {
		return nil, ErrVendorExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	v := &entity.VendorProfile{
		UserID:         user.ID,
		Phone:          user.Phone,
		Email:          user.Email,
		Status:         entity.VendorPending,
		CommissionRate: s.CommissionRate,
	}
	if err := in.apply(v); err != nil {
		return nil, err
	}
	if err := s.Vendors.CreateProfile(ctx, v); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrVendorExists
		}
		return nil, err
	}
	return v, nil
}

// Profile returns the caller's own vendor profile.
func (s *VendorService) Profile(ctx context.Context, userID string) (*entity.VendorProfile, error) {
	v, err := s.Vendors.GetProfileByUser(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrVendorNotFound
	}
	return v, err
}

func (s *VendorService) UpdateProfile(ctx context.Context, userID string, in VendorProfileInput) (*entity.VendorProfile, error) {
	v, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(v); err != nil {
		return nil, err
	}
	if err := s.Vendors.UpdateProfile(ctx, v); err != nil {
		return nil, err
	}
	s.Search.SyncVendor(ctx, v)
	return v, nil
}

// Marketplace lists verified vendors, featured first and then by rating. A
// text query goes through the search index when it is reachable.
func (s *VendorService) Marketplace(ctx context.Context, f repo.VendorFilter) ([]entity.VendorProfile, int, error) {
	if f.Category != "" && !f.Category.Valid() {
		return nil, 0, invalid("invalid category %q", f.Category)
	}
	f.Query = strings.TrimSpace(f.Query)
	if f.Query != "" {
		if ids, total, ok := s.Search.SearchVendors(ctx, f); ok {
			items, err := s.Vendors.ListByIDs(ctx, ids)
			if err != nil {
				return nil, 0, err
			}
			verified := items[:0]
			for _, v := range items {
				if v.Status == entity.VendorVerified {
					verified = append(verified, v)
				}
			}
			return verified, total, nil
		}
	}
	return s.Vendors.ListMarketplace(ctx, f)
}

// visibleProfile loads a vendor that the viewer may see: verified vendors
// are public, others only to their owner and admins.
func (s *VendorService) visibleProfile(ctx context.Context, viewerID string, viewerRole entity.Role, id string) (*entity.VendorProfile, error) {
	v, err := s.Vendors.GetProfile(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, err
	}
	if v.Status != entity.VendorVerified && v.UserID != viewerID && viewerRole != entity.RoleAdmin {
		return nil, ErrVendorNotFound
	}
	return v, nil
}

func (s *VendorService) Get(ctx context.Context, viewerID string, viewerRole entity.Role, id string) (*VendorDetail, error) {
	v, err := s.visibleProfile(ctx, viewerID, viewerRole, id)
	if err != nil {
		return nil, err
	}
	services, err := s.Vendors.ListServices(ctx, v.ID, true)
	if err != nil {
		return nil, err
	}
	return &VendorDetail{Profile: v, Services: services}, nil
}

func (s *VendorService) ListServices(ctx context.Context, viewerID string, viewerRole entity.Role, vendorID string) ([]entity.VendorService, error) {
	v, err := s.visibleProfile(ctx, viewerID, viewerRole, vendorID)
	if err != nil {
		return nil, err
	}
	return s.Vendors.ListServices(ctx, v.ID, v.UserID != viewerID)
}

func (s *VendorService) CreateService(ctx context.Context, userID string, in ServiceInput) (*entity.VendorService, error) {
	if isBlank(in.Name) || in.Price == nil {
		return nil, invalid("name and price are required")
	}
	v, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	svc := &entity.VendorService{VendorID: v.ID, Currency: s.DefaultCurrency, IsAvailable: true}
	if err := in.apply(svc); err != nil {
		return nil, err
	}
	if err := s.Vendors.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (in ServiceInput) apply(svc *entity.VendorService) error {
	if in.Name != nil {
		if trimmed(in.Name) == "" {
			return invalid("name cannot be empty")
		}
		svc.Name = trimmed(in.Name)
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return invalid("price cannot be negative")
		}
		svc.Price = roundMoney(*in.Price)
	}
	if in.Description != nil {
		svc.Description = *in.Description
	}
	if in.Currency != nil && trimmed(in.Currency) != "" {
		svc.Currency = strings.ToUpper(trimmed(in.Currency))
	}
	if in.Duration != nil {
		svc.Duration = trimmed(in.Duration)
	}
	if in.IsAvailable != nil {
		svc.IsAvailable = *in.IsAvailable
	}
	return nil
}

func (s *VendorService) ownedService(ctx context.Context, userID, serviceID string) (*entity.VendorProfile, *entity.VendorService, error) {
	v, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	svc, err := s.Vendors.GetService(ctx, serviceID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && svc.VendorID != v.ID) {
		return nil, nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return v, svc, nil
}

func (s *VendorService) UpdateService(ctx context.Context, userID, serviceID string, in ServiceInput) (*entity.VendorService, error) {
	_, svc, err := s.ownedService(ctx, userID, serviceID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(svc); err != nil {
		return nil, err
	}
	if err := s.Vendors.UpdateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *VendorService) DeleteService(ctx context.Context, userID, serviceID string) error {
	v, _, err := s.ownedService(ctx, userID, serviceID)
	if err != nil {
		return err
	}
	err = s.Vendors.DeleteService(ctx, serviceID, v.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrServiceNotFound
	}
	return err
}

// Book reserves one of a verified vendor's services for a future date. The
// price is copied from the service and the platform commission is computed
// from the vendor's rate.
func (s *VendorService) Book(ctx context.Context, customer *entity.User, vendorID string, in BookingInput) (*entity.VendorBooking, error) {
	if strings.TrimSpace(in.ServiceID) == "" || in.BookingDate.IsZero() {
		return nil, invalid("service_id and booking_date are required")
	}
	if !in.BookingDate.After(nowOr(s.Now)) {
		return nil, invalid("booking_date must be in the future")
	}
	v, err := s.Vendors.GetProfile(ctx, vendorID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && v.Status != entity.VendorVerified) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, err
	}
	if v.UserID == customer.ID {
		return nil, newErr(ErrForbidden, "vendors cannot book their own services")
	}
	svc, err := s.Vendors.GetService(ctx, in.ServiceID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && svc.VendorID != v.ID) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	if !svc.IsAvailable {
		return nil, ErrServiceUnavail
	}

	b := &entity.VendorBooking{
		VendorID:    v.ID,
		UserID:      customer.ID,
		ServiceID:   svc.ID,
		BookingDate: in.BookingDate.UTC(),
		Amount:      svc.Price,
		Commission:  roundMoney(svc.Price * v.CommissionRate),
		Status:      entity.BookingPending,
		Notes:       strings.TrimSpace(in.Notes),
	}
	if err := s.Vendors.CreateBooking(ctx, b); err != nil {
		return nil, err
	}
	s.Notifier.BookingRequest(ctx, v, customer, svc, b)
	return b, nil
}

func (s *VendorService) CustomerBookings(ctx context.Context, userID string) ([]entity.VendorBooking, error) {
	return s.Vendors.ListBookingsByUser(ctx, userID)
}

func (s *VendorService) VendorBookings(ctx context.Context, userID string) ([]entity.VendorBooking, error) {
	v, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Vendors.ListBookingsByVendor(ctx, v.ID)
}

// SetBookingStatus moves one of the vendor's bookings along its lifecycle.
func (s *VendorService) SetBookingStatus(ctx context.Context, userID, bookingID string, next entity.BookingStatus) (*entity.VendorBooking, error) {
	if !next.Valid() {
		return nil, invalid("invalid status %q", next)
	}
	v, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	b, err := s.Vendors.GetBooking(ctx, bookingID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && b.VendorID != v.ID) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	updated, err := s.transition(ctx, b, next)
	if err != nil {
		return nil, err
	}
	s.notifyCustomer(ctx, v, updated)
	return updated, nil
}

// CancelBooking lets the customer withdraw a pending or confirmed booking.
func (s *VendorService) CancelBooking(ctx context.Context, userID, bookingID string) (*entity.VendorBooking, error) {
	b, err := s.Vendors.GetBooking(ctx, bookingID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && b.UserID != userID) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, b, entity.BookingCancelled)
}

func (s *VendorService) transition(ctx context.Context, b *entity.VendorBooking, next entity.BookingStatus) (*entity.VendorBooking, error) {
	if !b.Status.CanTransitionTo(next) {
		return nil, newErr(ErrConflict, "cannot change booking from %s to %s", b.Status, next)
	}
	updated, err := s.Vendors.UpdateBookingStatus(ctx, b.ID, b.Status, next)
	if errors.Is(err, repo.ErrConditionFailed) {
		return nil, newErr(ErrConflict, "booking status changed, reload and try again")
	}
	return updated, err
}

func (s *VendorService) notifyCustomer(ctx context.Context, v *entity.VendorProfile, b *entity.VendorBooking) {
	customer, err := s.Users.GetByID(ctx, b.UserID)
	if err != nil {
		return
	}
	svc, err := s.Vendors.GetService(ctx, b.ServiceID)
	if err != nil {
		return
	}
	s.Notifier.BookingStatus(ctx, customer, v, svc, b)
}

// Review rates a verified vendor. The vendor's rating and review count are
// recomputed with the insert.
func (s *VendorService) Review(ctx context.Context, userID, vendorID string, in ReviewInput) (*entity.VendorReview, *entity.VendorProfile, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, nil, invalid("rating must be between 1 and 5")
	}
	v, err := s.Vendors.GetProfile(ctx, vendorID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && v.Status != entity.VendorVerified) {
		return nil, nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if v.UserID == userID {
		return nil, nil, ErrSelfReview
	}
	r := &entity.VendorReview{VendorID: v.ID, UserID: userID, Rating: in.Rating, Comment: strings.TrimSpace(in.Comment)}
	updated, err := s.Vendors.CreateReview(ctx, r)
	if errors.Is(err, repo.ErrConflict) {
		return nil, nil, ErrReviewExists
	}
	if err != nil {
		return nil, nil, err
	}
	s.Search.SyncVendor(ctx, updated)
	return r, updated, nil
}

func (s *VendorService) Reviews(ctx context.Context, viewerID string, viewerRole entity.Role, vendorID string) ([]entity.VendorReview, error) {
	v, err := s.visibleProfile(ctx, viewerID, viewerRole, vendorID)
	if err != nil {
		return nil, err
	}
	return s.Vendors.ListReviews(ctx, v.ID)
}
