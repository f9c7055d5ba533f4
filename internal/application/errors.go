package application

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to status codes.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrPaymentDeclined = errors.New("payment declined")
	ErrGateway         = errors.New("payment gateway error")
	ErrUnavailable     = errors.New("service unavailable")
)

// Error is a client-facing failure: Message is safe to return, Kind picks
// the status code.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func newErr(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidCredentials = newErr(ErrUnauthorized, "invalid email or password")
	ErrInvalidSession     = newErr(ErrUnauthorized, "session expired or revoked")
	ErrWrongPassword      = newErr(ErrUnauthorized, "current password is incorrect")
	ErrLoginRequired      = newErr(ErrUnauthorized, "authentication required")
	ErrAccountDisabled    = newErr(ErrForbidden, "account is disabled")
	ErrEmailTaken         = newErr(ErrConflict, "email already registered")
	ErrPhoneTaken         = newErr(ErrConflict, "phone number already registered")
	ErrUserNotFound       = newErr(ErrNotFound, "user not found")

	ErrWillNotFound = newErr(ErrNotFound, "will not found")

	ErrMemorialNotFound = newErr(ErrNotFound, "memorial not found")
	ErrMemorialPrivate  = newErr(ErrForbidden, "this memorial is private")
	ErrMediaNotFound    = newErr(ErrNotFound, "media not found")

	ErrFundraiserNotFound = newErr(ErrNotFound, "fundraiser not found")
	ErrFundraiserInactive = newErr(ErrInvalidInput, "fundraiser is not active")
	ErrFundraisingPlan    = newErr(ErrForbidden, "fundraising requires a standard or premium subscription")

	ErrVendorNotFound    = newErr(ErrNotFound, "vendor not found")
	ErrVendorExists      = newErr(ErrConflict, "vendor profile already exists")
	ErrNotVendor         = newErr(ErrForbidden, "vendor account required")
	ErrServiceNotFound   = newErr(ErrNotFound, "service not found")
	ErrServiceUnavail    = newErr(ErrInvalidInput, "service is not available")
	ErrBookingNotFound   = newErr(ErrNotFound, "booking not found")
	ErrReviewExists      = newErr(ErrConflict, "you have already reviewed this vendor")
	ErrSelfReview        = newErr(ErrForbidden, "vendors cannot review themselves")
	ErrPaymentNotFound   = newErr(ErrNotFound, "payment not found")
	ErrStorageDisabled   = newErr(ErrUnavailable, "file storage is not configured")
	ErrMpesaDisabled     = newErr(ErrUnavailable, "M-Pesa payments are not configured")
	ErrCardDisabled      = newErr(ErrUnavailable, "card payments are not configured")
	ErrInvalidSignature  = newErr(ErrInvalidInput, "invalid webhook signature")
	ErrInvalidCallback   = newErr(ErrInvalidInput, "invalid callback payload")
)

func invalid(format string, args ...any) *Error { return newErr(ErrInvalidInput, format, args...) }
