package memory

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

type VendorRepository struct{ s *Store }

var _ repository.VendorRepository = (*VendorRepository)(nil)

func (r *VendorRepository) CreateProfile(_ context.Context, v *entity.VendorProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.vendors {
		if o.UserID == v.UserID {
			return repository.ErrConflict
		}
	}
	if v.Status == "" {
		v.Status = entity.VendorPending
	}
	r.s.stamp(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	r.s.vendors[v.ID] = *v
	return nil
}

func (r *VendorRepository) GetProfile(_ context.Context, id string) (*entity.VendorProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vendors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (r *VendorRepository) GetProfileByUser(_ context.Context, userID string) (*entity.VendorProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.vendors {
		if v.UserID == userID {
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

// UpdateProfile leaves moderation and rating fields alone.
func (r *VendorRepository) UpdateProfile(_ context.Context, v *entity.VendorProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.vendors[v.ID]
	if !ok {
		return repository.ErrNotFound
	}
	v.Status, v.IsFeatured, v.Rating, v.ReviewCount, v.CommissionRate = cur.Status, cur.IsFeatured, cur.Rating, cur.ReviewCount, cur.CommissionRate
	v.CreatedAt = cur.CreatedAt
	v.UpdatedAt = r.s.now().UTC()
	r.s.vendors[v.ID] = *v
	return nil
}

func (r *VendorRepository) SetStatus(_ context.Context, id string, status entity.VendorStatus) (*entity.VendorProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vendors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v.Status = status
	v.UpdatedAt = r.s.now().UTC()
	r.s.vendors[id] = v
	return &v, nil
}

func (r *VendorRepository) ListMarketplace(_ context.Context, f repository.VendorFilter) ([]entity.VendorProfile, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := []entity.VendorProfile{}
	for _, v := range r.s.vendors {
		if v.Status != entity.VendorVerified {
			continue
		}
		if f.Category != "" && v.Category != f.Category {
			continue
		}
		if f.County != "" && !strings.EqualFold(v.County, f.County) {
			continue
		}
		if f.Query != "" && !containsFold(v.BusinessName, f.Query) && !containsFold(v.Description, f.Query) && !containsFold(v.Town, f.Query) {
			continue
		}
		all = append(all, v)
	}
	all = newestFirst(r.s, all, func(v entity.VendorProfile) string { return v.ID })
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].IsFeatured != all[j].IsFeatured {
			return all[i].IsFeatured
		}
		return all[i].Rating > all[j].Rating
	})
	return paginate(all, f.Page), len(all), nil
}

func (r *VendorRepository) ListByIDs(_ context.Context, ids []string) ([]entity.VendorProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.VendorProfile{}
	for _, id := range ids {
		if v, ok := r.s.vendors[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *VendorRepository) CreateService(_ context.Context, svc *entity.VendorService) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.vendors[svc.VendorID]; !ok {
		return repository.ErrNotFound
	}
	r.s.stamp(&svc.ID, &svc.CreatedAt, &svc.UpdatedAt)
	r.s.services[svc.ID] = *svc
	return nil
}

func (r *VendorRepository) GetService(_ context.Context, id string) (*entity.VendorService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &svc, nil
}

func (r *VendorRepository) ListServices(_ context.Context, vendorID string, availableOnly bool) ([]entity.VendorService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.VendorService{}
	for _, svc := range r.s.services {
		if svc.VendorID == vendorID && (!availableOnly || svc.IsAvailable) {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.s.created[out[i].ID] < r.s.created[out[j].ID] })
	return out, nil
}

func (r *VendorRepository) UpdateService(_ context.Context, svc *entity.VendorService) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.services[svc.ID]
	if !ok || cur.VendorID != svc.VendorID {
		return repository.ErrNotFound
	}
	svc.CreatedAt = cur.CreatedAt
	svc.UpdatedAt = r.s.now().UTC()
	r.s.services[svc.ID] = *svc
	return nil
}

// DeleteService cascades to the service's bookings.
func (r *VendorRepository) DeleteService(_ context.Context, id, vendorID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[id]
	if !ok || svc.VendorID != vendorID {
		return repository.ErrNotFound
	}
	delete(r.s.services, id)
	for k, b := range r.s.bookings {
		if b.ServiceID == id {
			delete(r.s.bookings, k)
		}
	}
	return nil
}

func (r *VendorRepository) CreateBooking(_ context.Context, b *entity.VendorBooking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.Status == "" {
		b.Status = entity.BookingPending
	}
	r.s.stamp(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	r.s.bookings[b.ID] = *b
	return nil
}

func (r *VendorRepository) GetBooking(_ context.Context, id string) (*entity.VendorBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *VendorRepository) bookingsWhere(match func(entity.VendorBooking) bool) []entity.VendorBooking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.VendorBooking{}
	for _, b := range r.s.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingDate.After(out[j].BookingDate) })
	return out
}

func (r *VendorRepository) ListBookingsByUser(_ context.Context, userID string) ([]entity.VendorBooking, error) {
	return r.bookingsWhere(func(b entity.VendorBooking) bool { return b.UserID == userID }), nil
}

func (r *VendorRepository) ListBookingsByVendor(_ context.Context, vendorID string) ([]entity.VendorBooking, error) {
	return r.bookingsWhere(func(b entity.VendorBooking) bool { return b.VendorID == vendorID }), nil
}

func (r *VendorRepository) UpdateBookingStatus(_ context.Context, id string, from, to entity.BookingStatus) (*entity.VendorBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok || b.Status != from {
		return nil, repository.ErrConditionFailed
	}
	b.Status = to
	b.UpdatedAt = r.s.now().UTC()
	r.s.bookings[id] = b
	return &b, nil
}

func (r *VendorRepository) CreateReview(_ context.Context, rv *entity.VendorReview) (*entity.VendorProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vendors[rv.VendorID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	sum, n := rv.Rating, 1
	for _, o := range r.s.reviews {
		if o.VendorID != rv.VendorID {
			continue
		}
		if o.UserID == rv.UserID {
			return nil, repository.ErrConflict
		}
		sum += o.Rating
		n++
	}
	r.s.stamp(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
	r.s.reviews[rv.ID] = *rv

	v.Rating = math.Round(float64(sum)/float64(n)*100) / 100
	v.ReviewCount = n
	v.UpdatedAt = r.s.now().UTC()
	r.s.vendors[v.ID] = v
	return &v, nil
}

func (r *VendorRepository) ListReviews(_ context.Context, vendorID string) ([]entity.VendorReview, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.VendorReview{}
	for _, rv := range r.s.reviews {
		if rv.VendorID == vendorID {
			out = append(out, rv)
		}
	}
	return newestFirst(r.s, out, func(rv entity.VendorReview) string { return rv.ID }), nil
}

// Feature flags a vendor as featured. Featuring is managed outside the API,
// so only tests and seed data need it.
func (s *Store) Feature(vendorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.vendors[vendorID]; ok {
		v.IsFeatured = true
		s.vendors[vendorID] = v
	}
}
