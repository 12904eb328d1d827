package domain

import "context"

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id string, patch UserPatch) (*User, error)
}

// ListingRepository defines persistence for listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	GetByID(ctx context.Context, id string) (*Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]Listing, error)
	Update(ctx context.Context, id string, patch ListingPatch) (*Listing, error)
	Delete(ctx context.Context, id string) error
}

// DonationRepository handles donation persistence. UpsertProposal must be
// atomic on the (listing_id, donor_id, receiver_id) unique key, and
// UpdateStatusIf must perform the status check and write as a single
// conditional update, returning ErrNotFound when no row matched.
type DonationRepository interface {
	UpsertProposal(ctx context.Context, donation *Donation) (*Donation, error)
	GetByID(ctx context.Context, id string) (*Donation, error)
	UpdateStatusIf(ctx context.Context, id string, from, to DonationStatus) (*Donation, error)
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string) ([]DonationWithListing, error)
	ListApplicants(ctx context.Context, listingID string) ([]Applicant, error)
}
