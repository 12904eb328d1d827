package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"donatello/internal/domain"
	"donatello/internal/match"
	"donatello/internal/memrepo"
	"donatello/internal/middleware"
)

func newTestApp(t *testing.T) (*App, *memrepo.Store) {
	t.Helper()
	store := memrepo.NewStore()
	app := &App{
		Users:        store.Users(),
		Listings:     store.Listings(),
		Match:        match.New(store.Listings(), store.Donations()),
		PhotoBaseURL: "http://localhost:4000/static",
		Logger:       zerolog.Nop(),
		JWTSecret:    "test-secret",
		TokenTTL:     time.Hour,
	}
	return app, store
}

func seedUser(t *testing.T, store *memrepo.Store, id, name, email string, role domain.Role) {
	t.Helper()
	err := store.Users().Create(context.Background(), &domain.User{
		ID: id, Name: name, Email: email, PasswordHash: "x", Role: role,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func seedListing(t *testing.T, store *memrepo.Store, id, authorID string, typ domain.ListingType, title string) {
	t.Helper()
	err := store.Listings().Create(context.Background(), &domain.Listing{
		ID: id, AuthorID: authorID, Type: typ, Title: title, Status: domain.ListingActive,
	})
	if err != nil {
		t.Fatalf("seed listing %s: %v", id, err)
	}
}

// asUser injects an authenticated actor and optional route params the
// way the middleware and chi would on a live server.
func asUser(req *http.Request, userID string, params map[string]string) *http.Request {
	ctx := req.Context()
	if userID != "" {
		ctx = middleware.ContextWithUser(ctx, userID, string(domain.RoleDonor))
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, body io.Reader, v any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func wantStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rr.Code, want, rr.Body.String())
	}
}
