package entity

import (
	"math"
	"time"
)

type FundraiserStatus string

const (
	FundraiserDraft     FundraiserStatus = "draft"
	FundraiserActive    FundraiserStatus = "active"
	FundraiserCompleted FundraiserStatus = "completed"
	FundraiserCancelled FundraiserStatus = "cancelled"
)

func (s FundraiserStatus) Valid() bool {
	switch s {
	case FundraiserDraft, FundraiserActive, FundraiserCompleted, FundraiserCancelled:
		return true
	}
	return false
}

type Fundraiser struct {
	ID            string
	UserID        string
	MemorialID    string
	Title         string
	Description   string
	TargetAmount  float64
	CurrentAmount float64
	Currency      string
	Status        FundraiserStatus
	CoverImage    string
	EndDate       time.Time
	IsVerified    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProgressPercentage is capped at 100 and is zero for a non-positive target.
func (f *Fundraiser) ProgressPercentage() float64 {
	if f.TargetAmount <= 0 {
		return 0
	}
	return math.Min(100, f.CurrentAmount/f.TargetAmount*100)
}

// TargetReached reports whether accumulated donations meet the target.
func (f *Fundraiser) TargetReached() bool {
	return f.TargetAmount > 0 && f.CurrentAmount >= f.TargetAmount
}

// Donation is a contribution to a fundraiser. DonorID is empty for guests.
type Donation struct {
	ID            string
	FundraiserID  string
	DonorID       string
	Amount        float64
	Currency      string
	PaymentMethod PaymentMethod
	TransactionID string
	DonorName     string
	DonorEmail    string
	DonorPhone    string
	Message       string
	IsAnonymous   bool
	CreatedAt     time.Time
}
