package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"donatello/internal/domain"
	"donatello/internal/middleware"
)

const bcryptCost = 10

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type userDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role), CreatedAt: u.CreatedAt}
}

func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		a.error(w, r, http.StatusBadRequest, "missing_fields")
		return
	}
	role := domain.Role(req.Role)
	if req.Role == "" {
		role = domain.RoleDonor
	}
	if !role.Valid() {
		a.error(w, r, http.StatusBadRequest, "bad_request")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := a.Users.Create(r.Context(), user); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toUserDTO(user))
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request")
		return
	}
	if req.Email == "" || req.Password == "" {
		a.error(w, r, http.StatusBadRequest, "missing_fields")
		return
	}

	user, err := a.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		// Unknown email and wrong password answer identically.
		a.error(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		a.error(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	token, err := middleware.SignJWT(a.JWTSecret, user.ID, string(user.Role), a.TokenTTL)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, loginResponse{Token: token, User: toUserDTO(user)})
}
