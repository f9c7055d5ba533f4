package repository

import (
	"context"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
)

// VendorFilter narrows the marketplace listing to verified vendors.
type VendorFilter struct {
	Category entity.VendorCategory
	County   string
	Query    string
	Page     Page
}

type VendorRepository interface {
	CreateProfile(ctx context.Context, v *entity.VendorProfile) error
	GetProfile(ctx context.Context, id string) (*entity.VendorProfile, error)
	GetProfileByUser(ctx context.Context, userID string) (*entity.VendorProfile, error)
	UpdateProfile(ctx context.Context, v *entity.VendorProfile) error
	SetStatus(ctx context.Context, id string, status entity.VendorStatus) (*entity.VendorProfile, error)
	ListMarketplace(ctx context.Context, f VendorFilter) ([]entity.VendorProfile, int, error)
	ListByIDs(ctx context.Context, ids []string) ([]entity.VendorProfile, error)

	CreateService(ctx context.Context, s *entity.VendorService) error
	GetService(ctx context.Context, id string) (*entity.VendorService, error)
	ListServices(ctx context.Context, vendorID string, availableOnly bool) ([]entity.VendorService, error)
	UpdateService(ctx context.Context, s *entity.VendorService) error
	DeleteService(ctx context.Context, id, vendorID string) error

	CreateBooking(ctx context.Context, b *entity.VendorBooking) error
	GetBooking(ctx context.Context, id string) (*entity.VendorBooking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]entity.VendorBooking, error)
	ListBookingsByVendor(ctx context.Context, vendorID string) ([]entity.VendorBooking, error)
	// UpdateBookingStatus moves a booking from one status to another and
	// returns ErrConditionFailed if the booking is no longer in from.
	UpdateBookingStatus(ctx context.Context, id string, from, to entity.BookingStatus) (*entity.VendorBooking, error)

	// CreateReview inserts the review and recomputes the vendor's rating and
	// review count in the same transaction. Returns ErrConflict when the user
	// already reviewed the vendor.
	CreateReview(ctx context.Context, r *entity.VendorReview) (*entity.VendorProfile, error)
	ListReviews(ctx context.Context, vendorID string) ([]entity.VendorReview, error)
}
