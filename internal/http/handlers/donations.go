package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"donatello/internal/domain"
)

type donationDTO struct {
	ID           string     `json:"id"`
	ListingID    string     `json:"listing_id"`
	DonorID      string     `json:"donor_id"`
	ReceiverID   string     `json:"receiver_id"`
	ProposedByID string     `json:"proposed_by_id"`
	Status       string     `json:"status"`
	AcceptedAt   *time.Time `json:"accepted_at"`
	DeliveredAt  *time.Time `json:"delivered_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toDonationDTO(d *domain.Donation) donationDTO {
	return donationDTO{
		ID:           d.ID,
		ListingID:    d.ListingID,
		DonorID:      d.DonorID,
		ReceiverID:   d.ReceiverID,
		ProposedByID: d.ProposedByID,
		Status:       string(d.Status),
		AcceptedAt:   d.AcceptedAt,
		DeliveredAt:  d.DeliveredAt,
		CreatedAt:    d.CreatedAt,
	}
}

type donationWithListingDTO struct {
	donationDTO
	Title string `json:"title"`
	Type  string `json:"type"`
}

// DonationsList returns every donation where the caller is donor or
// receiver, newest first.
func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Match.DonationsFor(r.Context(), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]donationWithListingDTO, 0, len(items))
	for i := range items {
		out = append(out, donationWithListingDTO{
			donationDTO: toDonationDTO(&items[i].Donation),
			Title:       items[i].ListingTitle,
			Type:        string(items[i].ListingType),
		})
	}
	a.json(w, http.StatusOK, out)
}

// DonationsAccept moves a proposed donation to accepted. Receiver only.
func (a *App) DonationsAccept(w http.ResponseWriter, r *http.Request) {
	donation, err := a.Match.Accept(r.Context(), chi.URLParam(r, "id"), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toDonationDTO(donation))
}

// DonationsDeliver moves an accepted donation to delivered. Donor only.
func (a *App) DonationsDeliver(w http.ResponseWriter, r *http.Request) {
	donation, err := a.Match.Deliver(r.Context(), chi.URLParam(r, "id"), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toDonationDTO(donation))
}

// DonationsWithdraw deletes a donation on behalf of either party.
func (a *App) DonationsWithdraw(w http.ResponseWriter, r *http.Request) {
	if err := a.Match.Withdraw(r.Context(), chi.URLParam(r, "id"), a.currentUserID(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
