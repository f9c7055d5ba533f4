package memory

import (
	"context"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

type StatsRepository struct{ s *Store }

var _ repository.StatsRepository = (*StatsRepository)(nil)

func (r *StatsRepository) Dashboard(_ context.Context) (*entity.DashboardStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := &entity.DashboardStats{
		UsersByRole:         map[string]int{},
		Wills:               len(r.s.wills),
		Memorials:           len(r.s.memorials),
		FundraisersByStatus: map[string]int{},
		DonationsCount:      len(r.s.donations),
		VendorsByStatus:     map[string]int{},
		PaymentsByStatus:    map[string]int{},
		BookingsByStatus:    map[string]int{},
	}
	for _, u := range r.s.users {
		st.UsersByRole[string(u.Role)]++
	}
	for _, f := range r.s.fundraisers {
		st.FundraisersByStatus[string(f.Status)]++
	}
	for _, d := range r.s.donations {
		st.DonationsTotal += d.Amount
	}
	for _, v := range r.s.vendors {
		st.VendorsByStatus[string(v.Status)]++
	}
	for _, p := range r.s.payments {
		st.PaymentsByStatus[string(p.Status)]++
	}
	for _, b := range r.s.bookings {
		st.BookingsByStatus[string(b.Status)]++
	}
	return st, nil
}
