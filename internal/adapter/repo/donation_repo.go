package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"donatello/internal/domain"
)

// DonationRepositoryPG implements domain.DonationRepository using PostgreSQL.
type DonationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(pool *pgxpool.Pool) *DonationRepositoryPG {
	return &DonationRepositoryPG{pool: pool}
}

const donationColumns = `id, listing_id, donor_id, receiver_id, proposed_by_id, status, accepted_at, delivered_at, created_at`

// UpsertProposal inserts a donation in proposed status or, when the
// (listing, donor, receiver) triple already exists, refreshes only its
// proposed_by_id. The ON CONFLICT clause is what makes concurrent
// proposals for the same triple converge on a single row.
func (r *DonationRepositoryPG) UpsertProposal(ctx context.Context, donation *domain.Donation) (*domain.Donation, error) {
	query := `
INSERT INTO donations (id, listing_id, donor_id, receiver_id, proposed_by_id, status)
VALUES ($1, $2, $3, $4, $5, 'proposed')
ON CONFLICT (listing_id, donor_id, receiver_id) DO UPDATE
SET proposed_by_id = EXCLUDED.proposed_by_id
RETURNING ` + donationColumns + `;
`
	row := r.pool.QueryRow(ctx, query,
		donation.ID,
		donation.ListingID,
		donation.DonorID,
		donation.ReceiverID,
		donation.ProposedByID,
	)
	return scanDonation(row)
}

// GetByID fetches a donation by its identifier.
func (r *DonationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = $1`, id)
	return scanDonation(row)
}

// UpdateStatusIf advances the status only when the current status still
// matches "from", stamping accepted_at or delivered_at as appropriate.
// Zero rows (gone, or already past "from") returns ErrNotFound; the
// caller decides how to report it.
func (r *DonationRepositoryPG) UpdateStatusIf(ctx context.Context, id string, from, to domain.DonationStatus) (*domain.Donation, error) {
	query := `
UPDATE donations
SET status = $3,
    accepted_at  = CASE WHEN $3 = 'accepted'  THEN NOW() ELSE accepted_at END,
    delivered_at = CASE WHEN $3 = 'delivered' THEN NOW() ELSE delivered_at END
WHERE id = $1 AND status = $2
RETURNING ` + donationColumns + `;
`
	row := r.pool.QueryRow(ctx, query, id, from, to)
	return scanDonation(row)
}

// Delete removes a donation.
func (r *DonationRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM donations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListForUser returns donations where the user is donor or receiver,
// newest first, joined with the listing headline fields.
func (r *DonationRepositoryPG) ListForUser(ctx context.Context, userID string) ([]domain.DonationWithListing, error) {
	query := `
SELECT d.id, d.listing_id, d.donor_id, d.receiver_id, d.proposed_by_id, d.status, d.accepted_at, d.delivered_at, d.created_at,
       l.title, l.type
FROM donations d
JOIN listings l ON l.id = d.listing_id
WHERE d.donor_id = $1 OR d.receiver_id = $1
ORDER BY d.created_at DESC;
`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.DonationWithListing
	for rows.Next() {
		var item domain.DonationWithListing
		if err := rows.Scan(
			&item.ID,
			&item.ListingID,
			&item.DonorID,
			&item.ReceiverID,
			&item.ProposedByID,
			&item.Status,
			&item.AcceptedAt,
			&item.DeliveredAt,
			&item.CreatedAt,
			&item.ListingTitle,
			&item.ListingType,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListApplicants returns outstanding proposals for a listing joined with
// the counterparty's public identity, earliest first. The counterparty
// is the receiver on offers and the donor on needs, i.e. whoever is not
// the listing author.
func (r *DonationRepositoryPG) ListApplicants(ctx context.Context, listingID string) ([]domain.Applicant, error) {
	query := `
SELECT d.id, d.listing_id, d.donor_id, d.receiver_id, d.proposed_by_id, d.status, d.accepted_at, d.delivered_at, d.created_at,
       u.name, u.email
FROM donations d
JOIN listings l ON l.id = d.listing_id
JOIN users u ON u.id = CASE WHEN l.type = 'offer' THEN d.receiver_id ELSE d.donor_id END
WHERE d.listing_id = $1 AND d.status = 'proposed'
ORDER BY d.created_at ASC;
`
	rows, err := r.pool.Query(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Applicant
	for rows.Next() {
		var a domain.Applicant
		if err := rows.Scan(
			&a.ID,
			&a.ListingID,
			&a.DonorID,
			&a.ReceiverID,
			&a.ProposedByID,
			&a.Status,
			&a.AcceptedAt,
			&a.DeliveredAt,
			&a.CreatedAt,
			&a.Name,
			&a.Email,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanDonation(row pgx.Row) (*domain.Donation, error) {
	var d domain.Donation
	if err := row.Scan(
		&d.ID,
		&d.ListingID,
		&d.DonorID,
		&d.ReceiverID,
		&d.ProposedByID,
		&d.Status,
		&d.AcceptedAt,
		&d.DeliveredAt,
		&d.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
