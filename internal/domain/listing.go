package domain

import "time"

// ListingType enumerates the two kinds of posts.
type ListingType string

const (
	ListingOffer ListingType = "offer"
	ListingNeed  ListingType = "need"
)

// Valid reports whether the type is one of the closed set.
func (t ListingType) Valid() bool {
	return t == ListingOffer || t == ListingNeed
}

// ListingStatus enumerates the listing lifecycle. The matcher does not
// gate on it; it only affects what owners choose to show.
type ListingStatus string

const (
	ListingActive ListingStatus = "active"
	ListingClosed ListingStatus = "closed"
)

// Valid reports whether the status is one of the closed set.
func (s ListingStatus) Valid() bool {
	return s == ListingActive || s == ListingClosed
}

// Listing is a post of something offered or needed, owned by its author.
type Listing struct {
	ID          string
	AuthorID    string
	Type        ListingType
	Title       string
	Description string
	Category    string
	Quantity    int
	Location    string
	Photos      []string
	Status      ListingStatus
	CreatedAt   time.Time
}

// ListingFilter narrows public listing queries.
type ListingFilter struct {
	Type     ListingType
	Category string
	Location string
}

// ListingPatch carries the mutable listing fields. Nil means "leave as
// is"; the set of fields here is the full allow-list of mutable columns.
type ListingPatch struct {
	Title       *string
	Description *string
	Category    *string
	Quantity    *int
	Location    *string
	Photos      *[]string
	Status      *ListingStatus
}

// Empty reports whether the patch changes nothing.
func (p ListingPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.Quantity == nil && p.Location == nil && p.Photos == nil && p.Status == nil
}

// RequireOwner fails with ErrNotFound when the listing is absent and with
// ErrForbidden when the actor is not its author. Existence is checked
// first so a missing record never leaks as "forbidden".
func RequireOwner(l *Listing, actorID string) error {
	if l == nil {
		return ErrNotFound
	}
	if l.AuthorID != actorID {
		return ErrForbidden
	}
	return nil
}
