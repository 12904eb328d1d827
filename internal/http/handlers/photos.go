package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"donatello/internal/domain"
	"donatello/internal/storage"
)

// ListingsPhotoUpload accepts a multipart "photo" file, stores it under
// the listing's directory and appends its public URL to the listing.
// Owner only.
func (a *App) ListingsPhotoUpload(w http.ResponseWriter, r *http.Request) {
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
	if a.Photos == nil {
		a.error(w, r, http.StatusBadRequest, "bad_request")
		return
	}

	if err := r.ParseMultipartForm(storage.MaxPhotoBytes); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request")
		return
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		a.error(w, r, http.StatusBadRequest, "missing_fields")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxPhotoBytes+1))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if len(data) == 0 || len(data) > storage.MaxPhotoBytes {
		a.error(w, r, http.StatusBadRequest, "bad_request")
		return
	}

	// Trust the bytes, not the client-supplied content type.
	ext, err := storage.ExtensionFor(http.DetectContentType(data))
	if err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request")
		return
	}

	key, err := a.Photos.Write(r.Context(), "listings/"+id+"/"+uuid.NewString()+ext, data)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	url := a.PhotoBaseURL + "/" + key

	photos := append(append([]string(nil), listing.Photos...), url)
	updated, err := a.Listings.Update(r.Context(), id, domain.ListingPatch{Photos: &photos})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"url":     url,
		"listing": toListingDTO(updated),
	})
}
