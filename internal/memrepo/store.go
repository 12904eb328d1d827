// Package memrepo provides in-memory implementations of the domain
// repositories. They mirror the PostgreSQL semantics (unique keys,
// conditional updates, ordering) closely enough to back unit and
// integration tests without a database.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"donatello/internal/domain"
)

// Store holds all entities behind a single lock so cross-entity reads
// (applicant joins) stay consistent.
type Store struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	listings  map[string]domain.Listing
	donations map[string]domain.Donation
	seq       map[string]int64
	nextSeq   int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]domain.User),
		listings:  make(map[string]domain.Listing),
		donations: make(map[string]domain.Donation),
		seq:       make(map[string]int64),
	}
}

// Users returns the user repository view.
func (s *Store) Users() domain.UserRepository { return (*userRepo)(s) }

// Listings returns the listing repository view.
func (s *Store) Listings() domain.ListingRepository { return (*listingRepo)(s) }

// Donations returns the donation repository view.
func (s *Store) Donations() domain.DonationRepository { return (*donationRepo)(s) }

func (s *Store) stamp(id string) {
	s.nextSeq++
	s.seq[id] = s.nextSeq
}

type userRepo Store

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrConflict
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = *user
	s.stamp(user.ID)
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *userRepo) UpdateProfile(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	s.users[id] = u
	return &u, nil
}

type listingRepo Store

func (r *listingRepo) Create(_ context.Context, listing *domain.Listing) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = time.Now()
	}
	if listing.Status == "" {
		listing.Status = domain.ListingActive
	}
	s.listings[listing.ID] = *listing
	s.stamp(listing.ID)
	return nil
}

func (r *listingRepo) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r *listingRepo) List(_ context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Listing
	for _, l := range s.listings {
		if filter.Type != "" && l.Type != filter.Type {
			continue
		}
		if filter.Category != "" && !containsFold(l.Category, filter.Category) {
			continue
		}
		if filter.Location != "" && !containsFold(l.Location, filter.Location) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return s.newer(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt) })
	return out, nil
}

func (r *listingRepo) Update(_ context.Context, id string, patch domain.ListingPatch) (*domain.Listing, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		l.Title = *patch.Title
	}
	if patch.Description != nil {
		l.Description = *patch.Description
	}
	if patch.Category != nil {
		l.Category = *patch.Category
	}
	if patch.Quantity != nil {
		l.Quantity = *patch.Quantity
	}
	if patch.Location != nil {
		l.Location = *patch.Location
	}
	if patch.Photos != nil {
		l.Photos = append([]string(nil), (*patch.Photos)...)
	}
	if patch.Status != nil {
		l.Status = *patch.Status
	}
	s.listings[id] = l
	return &l, nil
}

func (r *listingRepo) Delete(_ context.Context, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.listings, id)
	return nil
}

type donationRepo Store

func (r *donationRepo) UpsertProposal(_ context.Context, donation *domain.Donation) (*domain.Donation, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.donations {
		if d.ListingID == donation.ListingID && d.DonorID == donation.DonorID && d.ReceiverID == donation.ReceiverID {
			d.ProposedByID = donation.ProposedByID
			s.donations[id] = d
			return &d, nil
		}
	}
	d := *donation
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	d.Status = domain.DonationProposed
	s.donations[d.ID] = d
	s.stamp(d.ID)
	return &d, nil
}

func (r *donationRepo) GetByID(_ context.Context, id string) (*domain.Donation, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.donations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (r *donationRepo) UpdateStatusIf(_ context.Context, id string, from, to domain.DonationStatus) (*domain.Donation, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok || d.Status != from {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	d.Status = to
	switch to {
	case domain.DonationAccepted:
		d.AcceptedAt = &now
	case domain.DonationDelivered:
		d.DeliveredAt = &now
	}
	s.donations[id] = d
	return &d, nil
}

func (r *donationRepo) Delete(_ context.Context, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.donations, id)
	return nil
}

func (r *donationRepo) ListForUser(_ context.Context, userID string) ([]domain.DonationWithListing, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.DonationWithListing
	for _, d := range s.donations {
		if d.DonorID != userID && d.ReceiverID != userID {
			continue
		}
		item := domain.DonationWithListing{Donation: d}
		if l, ok := s.listings[d.ListingID]; ok {
			item.ListingTitle = l.Title
			item.ListingType = l.Type
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return s.newer(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt) })
	return out, nil
}

func (r *donationRepo) ListApplicants(_ context.Context, listingID string) ([]domain.Applicant, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	listing, ok := s.listings[listingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	var out []domain.Applicant
	for _, d := range s.donations {
		if d.ListingID != listingID || d.Status != domain.DonationProposed {
			continue
		}
		counterpartID := d.ReceiverID
		if listing.Type == domain.ListingNeed {
			counterpartID = d.DonorID
		}
		a := domain.Applicant{Donation: d}
		if u, ok := s.users[counterpartID]; ok {
			a.Name = u.Name
			a.Email = u.Email
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return s.newer(out[j].ID, out[j].CreatedAt, out[i].ID, out[i].CreatedAt) })
	return out, nil
}

// newer orders by creation time, newest first, with insertion order as
// the tie breaker so tests with equal timestamps stay deterministic.
func (s *Store) newer(idA string, a time.Time, idB string, b time.Time) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return s.seq[idA] > s.seq[idB]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
