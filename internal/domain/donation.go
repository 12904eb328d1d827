package domain

import "time"

// DonationStatus enumerates the donation workflow states.
type DonationStatus string

const (
	DonationProposed  DonationStatus = "proposed"
	DonationAccepted  DonationStatus = "accepted"
	DonationDelivered DonationStatus = "delivered"
)

// Valid reports whether the status is one of the closed set.
func (s DonationStatus) Valid() bool {
	switch s {
	case DonationProposed, DonationAccepted, DonationDelivered:
		return true
	}
	return false
}

// Donation is the match record between a listing, a donor and a receiver.
// At most one donation exists per (listing, donor, receiver) triple;
// re-proposing the same triple refreshes ProposedByID only.
type Donation struct {
	ID           string
	ListingID    string
	DonorID      string
	ReceiverID   string
	ProposedByID string
	Status       DonationStatus
	AcceptedAt   *time.Time
	DeliveredAt  *time.Time
	CreatedAt    time.Time
}

// Party reports whether the user is the donor or the receiver.
func (d *Donation) Party(userID string) bool {
	return d.DonorID == userID || d.ReceiverID == userID
}

// DonationWithListing joins a donation with its listing's headline fields
// for the per-user donations view.
type DonationWithListing struct {
	Donation
	ListingTitle string
	ListingType  ListingType
}

// Applicant pairs an outstanding proposal with the public identity of the
// listing counterparty, for the owner's review.
type Applicant struct {
	Donation
	Name  string
	Email string
}
