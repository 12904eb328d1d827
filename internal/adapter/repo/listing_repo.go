package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"donatello/internal/domain"
)

// ListingRepositoryPG implements domain.ListingRepository backed by PostgreSQL.
type ListingRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewListingRepository creates a new listing repository.
func NewListingRepository(pool *pgxpool.Pool) *ListingRepositoryPG {
	return &ListingRepositoryPG{pool: pool}
}

const listingColumns = `id, author_id, type, title, description, category, quantity, location, photos, status, created_at`

// Create inserts a new listing record.
func (r *ListingRepositoryPG) Create(ctx context.Context, listing *domain.Listing) error {
	query := `
INSERT INTO listings (id, author_id, type, title, description, category, quantity, location, photos, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at;
`
	row := r.pool.QueryRow(ctx, query,
		listing.ID,
		listing.AuthorID,
		listing.Type,
		listing.Title,
		listing.Description,
		listing.Category,
		listing.Quantity,
		listing.Location,
		listing.Photos,
		listing.Status,
	)
	return row.Scan(&listing.CreatedAt)
}

// GetByID fetches a listing by its identifier.
func (r *ListingRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	return scanListing(row)
}

// List returns listings matching the filter, newest first. Category and
// location match as case-insensitive substrings.
func (r *ListingRepositoryPG) List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings`
	var conds []string
	var args []any
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, "%"+filter.Category+"%")
		conds = append(conds, fmt.Sprintf("category ILIKE $%d", len(args)))
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		conds = append(conds, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies the patch and returns the updated row. Only the
// allow-listed columns carried by the patch struct can ever change.
func (r *ListingRepositoryPG) Update(ctx context.Context, id string, patch domain.ListingPatch) (*domain.Listing, error) {
	query := `
UPDATE listings
SET title       = COALESCE($2, title),
    description = COALESCE($3, description),
    category    = COALESCE($4, category),
    quantity    = COALESCE($5, quantity),
    location    = COALESCE($6, location),
    photos      = COALESCE($7, photos),
    status      = COALESCE($8, status)
WHERE id = $1
RETURNING ` + listingColumns + `;
`
	row := r.pool.QueryRow(ctx, query, id,
		patch.Title,
		patch.Description,
		patch.Category,
		patch.Quantity,
		patch.Location,
		patch.Photos,
		(*string)(patch.Status),
	)
	return scanListing(row)
}

// Delete removes a listing and, via cascade, its donations.
func (r *ListingRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	if err := row.Scan(
		&l.ID,
		&l.AuthorID,
		&l.Type,
		&l.Title,
		&l.Description,
		&l.Category,
		&l.Quantity,
		&l.Location,
		&l.Photos,
		&l.Status,
		&l.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}
