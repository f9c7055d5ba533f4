package entity

import "time"

type VendorCategory string

const (
	CategoryFuneralHome VendorCategory = "funeral_home"
	CategoryCasket      VendorCategory = "casket"
	CategoryFlorist     VendorCategory = "florist"
	CategoryCatering    VendorCategory = "catering"
	CategoryTransport   VendorCategory = "transport"
	CategoryVenue       VendorCategory = "venue"
	CategoryLegal       VendorCategory = "legal"
	CategoryOther       VendorCategory = "other"
)

func (c VendorCategory) Valid() bool {
	switch c {
	case CategoryFuneralHome, CategoryCasket, CategoryFlorist, CategoryCatering,
		CategoryTransport, CategoryVenue, CategoryLegal, CategoryOther:
		return true
	}
	return false
}

type VendorStatus string

const (
	VendorPending   VendorStatus = "pending"
	VendorVerified  VendorStatus = "verified"
	VendorSuspended VendorStatus = "suspended"
	VendorRejected  VendorStatus = "rejected"
)

func (s VendorStatus) Valid() bool {
	switch s {
	case VendorPending, VendorVerified, VendorSuspended, VendorRejected:
		return true
	}
	return false
}

// VendorProfile is the marketplace listing owned by a vendor account.
type VendorProfile struct {
	ID                   string
	UserID               string
	BusinessName         string
	BusinessRegistration string
	Category             VendorCategory
	Description          string
	YearsInOperation     int
	County               string
	Town                 string
	Address              string
	Phone                string
	Email                string
	Website              string
	LogoURL              string
	CoverImage           string
	Status               VendorStatus
	IsFeatured           bool
	Rating               float64
	ReviewCount          int
	CommissionRate       float64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type VendorService struct {
	ID          string
	VendorID    string
	Name        string
	Description string
	Price       float64
	Currency    string
	Duration    string
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// CanTransitionTo encodes the booking lifecycle:
// pending -> confirmed|cancelled, confirmed -> completed|cancelled.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCompleted || next == BookingCancelled
	}
	return false
}

type VendorBooking struct {
	ID          string
	VendorID    string
	UserID      string
	ServiceID   string
	BookingDate time.Time
	Amount      float64
	Commission  float64
	Status      BookingStatus
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type VendorReview struct {
	ID        string
	VendorID  string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
