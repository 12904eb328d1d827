package client

import (
	"context"
	"sync"
)

// Confirmer is asked before any mutating action. A negative answer turns
// the action into a local no-op: nothing is sent to the server.
type Confirmer interface {
	Confirm(action string) bool
}

// ConfirmFunc adapts a plain function to the Confirmer interface.
type ConfirmFunc func(action string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(action string) bool { return f(action) }

// State mirrors server-side state for a UI: the signed-in user, a
// listings cache, the user's donations, and per-listing applicant
// counts. It is an injected container, constructed per app instance and
// reset on logout, never a process-wide singleton.
type State struct {
	api     *Client
	confirm Confirmer

	mu              sync.RWMutex
	user            *User
	token           string
	listings        []Listing
	donations       []DonationWithListing
	applicantCounts map[string]int
	toast           string
}

// NewState wires a state container to an API client. A nil confirmer
// approves every action.
func NewState(api *Client, confirm Confirmer) *State {
	if confirm == nil {
		confirm = ConfirmFunc(func(string) bool { return true })
	}
	return &State{
		api:             api,
		confirm:         confirm,
		applicantCounts: make(map[string]int),
	}
}

// Login authenticates and installs the session token on the client, so
// every later call carries it.
func (s *State) Login(ctx context.Context, email, password string) error {
	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.api.SetToken(result.Token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &result.User
	s.token = result.Token
	return nil
}

// Logout clears the session. Reset semantics: everything cached is
// dropped, including the client's token.
func (s *State) Logout() { s.Reset() }

// Reset returns the container to its initial, signed-out shape.
func (s *State) Reset() {
	s.api.SetToken("")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	s.listings = nil
	s.donations = nil
	s.applicantCounts = make(map[string]int)
	s.toast = ""
}

// User returns the signed-in profile, or nil when signed out.
func (s *State) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Listings returns the cached listings from the last refresh.
func (s *State) Listings() []Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listings
}

// Donations returns the cached donations from the last refresh.
func (s *State) Donations() []DonationWithListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.donations
}

// ApplicantCount returns the cached distinct-applicant count for a
// listing; zero when never prefetched or when the prefetch failed.
func (s *State) ApplicantCount(listingID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applicantCounts[listingID]
}

// LastToast returns the most recent user-facing notification.
func (s *State) LastToast() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toast
}

func (s *State) setToast(msg string) {
	s.mu.Lock()
	s.toast = msg
	s.mu.Unlock()
}

// RefreshListings reloads the listings cache and, for listings owned by
// the signed-in user, prefetches applicant counts. Count prefetch is
// best-effort: a failed lookup leaves that listing at zero rather than
// failing the refresh.
func (s *State) RefreshListings(ctx context.Context, q ListingQuery) error {
	listings, err := s.api.Listings(ctx, q)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listings = listings
	userID := ""
	if s.user != nil {
		userID = s.user.ID
	}
	s.mu.Unlock()

	counts := make(map[string]int)
	for _, l := range listings {
		if l.AuthorID != userID {
			continue
		}
		applicants, err := s.api.Applicants(ctx, l.ID)
		if err != nil {
			counts[l.ID] = 0
			continue
		}
		counts[l.ID] = distinctReceivers(applicants)
	}

	s.mu.Lock()
	s.applicantCounts = counts
	s.mu.Unlock()
	return nil
}

// RefreshDonations reloads the user's donations cache.
func (s *State) RefreshDonations(ctx context.Context) error {
	donations, err := s.api.Donations(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.donations = donations
	s.mu.Unlock()
	return nil
}

// distinctReceivers counts unique receiver ids, not rows, so a badge
// never double-counts the same applicant.
func distinctReceivers(applicants []Applicant) int {
	seen := make(map[string]struct{}, len(applicants))
	for _, a := range applicants {
		seen[a.ReceiverID] = struct{}{}
	}
	return len(seen)
}

// Propose asks for confirmation and submits a proposal on the listing.
// A declined confirmation returns (nil, nil) without touching the server.
func (s *State) Propose(ctx context.Context, listingID string) (*Donation, error) {
	if !s.confirm.Confirm("propose") {
		return nil, nil
	}
	donation, err := s.api.Propose(ctx, listingID)
	if err != nil {
		return nil, err
	}
	s.setToast("Propuesta enviada")
	return donation, s.RefreshDonations(ctx)
}

// Accept confirms and accepts a proposed donation, then refreshes the
// donations cache. A declined confirmation is a no-op.
func (s *State) Accept(ctx context.Context, donationID string) error {
	if !s.confirm.Confirm("accept") {
		return nil
	}
	if _, err := s.api.Accept(ctx, donationID); err != nil {
		return err
	}
	s.setToast("Donación aceptada")
	return s.RefreshDonations(ctx)
}

// Deliver confirms and marks an accepted donation delivered, then
// refreshes the donations cache. A declined confirmation is a no-op.
func (s *State) Deliver(ctx context.Context, donationID string) error {
	if !s.confirm.Confirm("deliver") {
		return nil
	}
	if _, err := s.api.Deliver(ctx, donationID); err != nil {
		return err
	}
	s.setToast("Donación entregada")
	return s.RefreshDonations(ctx)
}

// Withdraw confirms and deletes a donation, then refreshes the
// donations cache. A declined confirmation is a no-op.
func (s *State) Withdraw(ctx context.Context, donationID string) error {
	if !s.confirm.Confirm("withdraw") {
		return nil
	}
	if err := s.api.Withdraw(ctx, donationID); err != nil {
		return err
	}
	s.setToast("Propuesta retirada")
	return s.RefreshDonations(ctx)
}

// DeleteListing confirms and removes an owned listing from the server
// and from the local cache. A declined confirmation is a no-op.
func (s *State) DeleteListing(ctx context.Context, listingID string) error {
	if !s.confirm.Confirm("delete_listing") {
		return nil
	}
	if err := s.api.DeleteListing(ctx, listingID); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.listings[:0]
	for _, l := range s.listings {
		if l.ID != listingID {
			kept = append(kept, l)
		}
	}
	s.listings = kept
	delete(s.applicantCounts, listingID)
	s.mu.Unlock()

	s.setToast("Publicación eliminada")
	return nil
}
