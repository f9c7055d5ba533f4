package entity

// DashboardStats is the admin overview.
type DashboardStats struct {
	UsersByRole         map[string]int
	Wills               int
	Memorials           int
	FundraisersByStatus map[string]int
	DonationsTotal      float64
	DonationsCount      int
	VendorsByStatus     map[string]int
	PaymentsByStatus    map[string]int
	BookingsByStatus    map[string]int
}
