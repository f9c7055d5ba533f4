// Package memory implements the domain repositories on in-process maps. It
// backs service and handler tests.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

// Store holds every table. One mutex guards all of them so multi-table
// operations are atomic like their SQL counterparts.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users       map[string]entity.User
	wills       map[string]entity.Will
	memorials   map[string]entity.Memorial
	tributes    map[string]entity.Tribute
	media       map[string]entity.MemorialMedia
	fundraisers map[string]entity.Fundraiser
	donations   map[string]entity.Donation
	payments    map[string]entity.Payment
	vendors     map[string]entity.VendorProfile
	services    map[string]entity.VendorService
	bookings    map[string]entity.VendorBooking
	reviews     map[string]entity.VendorReview

	// seq orders rows created within the same clock tick.
	seq     int64
	created map[string]int64
}

func NewStore() *Store {
	return &Store{
		now:         time.Now,
		users:       map[string]entity.User{},
		wills:       map[string]entity.Will{},
		memorials:   map[string]entity.Memorial{},
		tributes:    map[string]entity.Tribute{},
		media:       map[string]entity.MemorialMedia{},
		fundraisers: map[string]entity.Fundraiser{},
		donations:   map[string]entity.Donation{},
		payments:    map[string]entity.Payment{},
		vendors:     map[string]entity.VendorProfile{},
		services:    map[string]entity.VendorService{},
		bookings:    map[string]entity.VendorBooking{},
		reviews:     map[string]entity.VendorReview{},
		created:     map[string]int64{},
	}
}

// stamp assigns an id when missing and sets both timestamps.
func (s *Store) stamp(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := s.now().UTC()
	*createdAt, *updatedAt = now, now
	s.seq++
	s.created[*id] = s.seq
}

// stampCreated is stamp for insert-only rows.
func (s *Store) stampCreated(id *string, createdAt *time.Time) {
	var updated time.Time
	s.stamp(id, createdAt, &updated)
}

// newestFirst sorts by insertion order, latest first.
func newestFirst[T any](s *Store, items []T, id func(T) string) []T {
	sort.SliceStable(items, func(i, j int) bool { return s.created[id(items[i])] > s.created[id(items[j])] })
	return items
}

func paginate[T any](items []T, p repository.Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Repositories bundles the store's views, one per domain repository.
type Repositories struct {
	Store       *Store
	Users       *UserRepository
	Wills       *WillRepository
	Memorials   *MemorialRepository
	Fundraisers *FundraiserRepository
	Payments    *PaymentRepository
	Vendors     *VendorRepository
	Stats       *StatsRepository
}

func NewRepositories() *Repositories {
	s := NewStore()
	return &Repositories{
		Store:       s,
		Users:       &UserRepository{s},
		Wills:       &WillRepository{s},
		Memorials:   &MemorialRepository{s},
		Fundraisers: &FundraiserRepository{s},
		Payments:    &PaymentRepository{s},
		Vendors:     &VendorRepository{s},
		Stats:       &StatsRepository{s},
	}
}
