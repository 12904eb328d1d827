package handlers

import (
	"encoding/json"
	"net/http"

	"donatello/internal/domain"
)

type profileUpdateRequest struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	user, err := a.Users.GetByID(r.Context(), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toUserDTO(user))
}

func (a *App) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request")
		return
	}

	patch := domain.UserPatch{Name: req.Name}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		if !role.Valid() {
			a.error(w, r, http.StatusBadRequest, "bad_request")
			return
		}
		patch.Role = &role
	}
	if patch.Empty() {
		a.error(w, r, http.StatusBadRequest, "nothing_to_update")
		return
	}

	user, err := a.Users.UpdateProfile(r.Context(), a.currentUserID(r), patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toUserDTO(user))
}
