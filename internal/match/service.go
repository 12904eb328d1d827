// Package match implements the donation matching workflow: proposing a
// match against a listing, moving it through proposed → accepted →
// delivered, and aggregating outstanding proposals for listing owners.
package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"donatello/internal/domain"
)

// Service coordinates listings, users and donations to run the matching
// workflow. It is stateless; every call is request-scoped.
type Service struct {
	listings  domain.ListingRepository
	donations domain.DonationRepository
}

// New creates a matching service.
func New(listings domain.ListingRepository, donations domain.DonationRepository) *Service {
	return &Service{listings: listings, donations: donations}
}

// Propose creates or refreshes the donation for a listing and proposer.
// The listing author is the donor on offers and the receiver on needs;
// the proposer takes the other side. Proposing is idempotent: repeating
// it for the same resulting triple updates proposed_by only, leaving any
// progress past "proposed" untouched.
func (s *Service) Propose(ctx context.Context, listingID, proposerID string) (*domain.Donation, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	if listing.AuthorID == proposerID {
		return nil, fmt.Errorf("%w: cannot propose on your own listing", domain.ErrInvalidOperation)
	}

	donorID, receiverID := listing.AuthorID, proposerID
	if listing.Type == domain.ListingNeed {
		donorID, receiverID = proposerID, listing.AuthorID
	}

	donation := &domain.Donation{
		ID:           uuid.NewString(),
		ListingID:    listing.ID,
		DonorID:      donorID,
		ReceiverID:   receiverID,
		ProposedByID: proposerID,
		Status:       domain.DonationProposed,
	}
	saved, err := s.donations.UpsertProposal(ctx, donation)
	if err != nil {
		return nil, fmt.Errorf("upsert proposal: %w", err)
	}
	return saved, nil
}

// Withdraw deletes a donation regardless of status. Either party may do
// it; it doubles as rejecting or cancelling an accepted donation.
func (s *Service) Withdraw(ctx context.Context, donationID, actorID string) error {
	donation, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		return fmt.Errorf("get donation: %w", err)
	}
	if !donation.Party(actorID) {
		return domain.ErrForbidden
	}
	if err := s.donations.Delete(ctx, donationID); err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}
	return nil
}

// Accept moves a donation from proposed to accepted. Only the receiver
// may accept: they are the party confirming willingness to receive.
func (s *Service) Accept(ctx context.Context, donationID, actorID string) (*domain.Donation, error) {
	return s.transition(ctx, donationID, actorID, domain.DonationProposed, domain.DonationAccepted, receiverActs)
}

// Deliver moves a donation from accepted to delivered. Only the donor
// may confirm delivery: they are the party with first-hand knowledge of
// the handoff.
func (s *Service) Deliver(ctx context.Context, donationID, actorID string) (*domain.Donation, error) {
	return s.transition(ctx, donationID, actorID, domain.DonationAccepted, domain.DonationDelivered, donorActs)
}

type actorRole int

const (
	receiverActs actorRole = iota
	donorActs
)

func (s *Service) transition(ctx context.Context, donationID, actorID string, from, to domain.DonationStatus, role actorRole) (*domain.Donation, error) {
	donation, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		return nil, fmt.Errorf("get donation: %w", err)
	}
	allowed := donation.ReceiverID
	if role == donorActs {
		allowed = donation.DonorID
	}
	if actorID != allowed {
		return nil, domain.ErrForbidden
	}
	if donation.Status != from {
		return nil, fmt.Errorf("%w: donation is %s", domain.ErrInvalidState, donation.Status)
	}

	updated, err := s.donations.UpdateStatusIf(ctx, donationID, from, to)
	if err != nil {
		// Zero rows here means another transition won the race after the
		// read above; report it the same as a stale status.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: donation is no longer %s", domain.ErrInvalidState, from)
		}
		return nil, fmt.Errorf("update status: %w", err)
	}
	return updated, nil
}

// Applicants returns the outstanding proposals for a listing, earliest
// first, joined with each applicant's public identity. Only the listing
// owner may call it.
func (s *Service) Applicants(ctx context.Context, listingID, requesterID string) ([]domain.Applicant, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	if err := domain.RequireOwner(listing, requesterID); err != nil {
		return nil, err
	}
	applicants, err := s.donations.ListApplicants(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	return applicants, nil
}

// DonationsFor returns every donation where the user is donor or
// receiver, newest first, joined with listing headline fields.
func (s *Service) DonationsFor(ctx context.Context, userID string) ([]domain.DonationWithListing, error) {
	items, err := s.donations.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return items, nil
}
