package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"donatello/internal/domain"
	"donatello/internal/middleware"
)

type listingDTO struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	Location    string    `json:"location"`
	Photos      []string  `json:"photos"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toListingDTO(l *domain.Listing) listingDTO {
	photos := l.Photos
	if photos == nil {
		photos = []string{}
	}
	return listingDTO{
		ID:          l.ID,
		AuthorID:    l.AuthorID,
		Type:        string(l.Type),
		Title:       l.Title,
		Description: l.Description,
		Category:    l.Category,
		Quantity:    l.Quantity,
		Location:    l.Location,
		Photos:      photos,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
	}
}

type createListingRequest struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Quantity    int      `json:"quantity"`
	Location    string   `json:"location"`
	Photos      []string `json:"photos"`
}

type updateListingRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Quantity    *int      `json:"quantity"`
	Location    *string   `json:"location"`
	Photos      *[]string `json:"photos"`
	Status      *string   `json:"status"`
}

// ListingsList is public: anyone can browse, optionally filtered.
func (a *App) ListingsList(w http.ResponseWriter, r *http.Request) {
	filter := domain.ListingFilter{
		Category: r.URL.Query().Get("category"),
		Location: r.URL.Query().Get("location"),
	}
	if t := r.URL.Query().Get("type"); t != "" {
		typ := domain.ListingType(t)
		if !typ.Valid() {
			a.error(w, r, http.StatusBadRequest, "bad_request")
			return
		}
		filter.Type = typ
	}

	listings, err := a.Listings.List(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]listingDTO, 0, len(listings))
	for i := range listings {
		out = append(out, toListingDTO(&listings[i]))
	}
	a.json(w, http.StatusOK, out)
}

func (a *App) ListingsCreate(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request")
		return
	}
	typ := domain.ListingType(req.Type)
	if !typ.Valid() || req.Title == "" {
		a.error(w, r, http.StatusBadRequest, "missing_fields")
		return
	}

	location := req.Location
	if location == "" && a.GeoCountry != nil {
		// Best-effort hint; a failed lookup just leaves location empty.
		if country, err := a.GeoCountry(middleware.ClientIP(r)); err == nil {
			location = country
		}
	}

	listing := &domain.Listing{
		ID:          uuid.NewString(),
		AuthorID:    a.currentUserID(r),
		Type:        typ,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Quantity:    req.Quantity,
		Location:    location,
		Photos:      req.Photos,
		Status:      domain.ListingActive,
	}
	if err := a.Listings.Create(r.Context(), listing); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toListingDTO(listing))
}

func (a *App) ListingsGet(w http.ResponseWriter, r *http.Request) {
	listing, err := a.Listings.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toListingDTO(listing))
}

func (a *App) ListingsUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	listing, err := a.Listings.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := domain.RequireOwner(listing, a.currentUserID(r)); err != nil {
		a.fail(w, r, err)
		return
	}

	var req updateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request")
		return
	}
	patch := domain.ListingPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Quantity:    req.Quantity,
		Location:    req.Location,
		Photos:      req.Photos,
	}
	if req.Title != nil && *req.Title == "" {
		a.error(w, r, http.StatusBadRequest, "missing_fields")
		return
	}
	if req.Status != nil {
		status := domain.ListingStatus(*req.Status)
		if !status.Valid() {
			a.error(w, r, http.StatusBadRequest, "bad_request")
			return
		}
		patch.Status = &status
	}
	if patch.Empty() {
		a.error(w, r, http.StatusBadRequest, "nothing_to_update")
		return
	}

	updated, err := a.Listings.Update(r.Context(), id, patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toListingDTO(updated))
}

func (a *App) ListingsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	listing, err := a.Listings.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := domain.RequireOwner(listing, a.currentUserID(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Listings.Delete(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListingsMatch proposes the authenticated user as counterparty for the
// listing; repeated calls refresh the existing proposal.
func (a *App) ListingsMatch(w http.ResponseWriter, r *http.Request) {
	donation, err := a.Match.Propose(r.Context(), chi.URLParam(r, "id"), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toDonationDTO(donation))
}

type applicantDTO struct {
	donationDTO
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ListingsApplicants returns outstanding proposals for the listing owner.
func (a *App) ListingsApplicants(w http.ResponseWriter, r *http.Request) {
	applicants, err := a.Match.Applicants(r.Context(), chi.URLParam(r, "id"), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]applicantDTO, 0, len(applicants))
	for i := range applicants {
		out = append(out, applicantDTO{
			donationDTO: toDonationDTO(&applicants[i].Donation),
			Name:        applicants[i].Name,
			Email:       applicants[i].Email,
		})
	}
	a.json(w, http.StatusOK, out)
}
