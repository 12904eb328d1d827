package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"donatello/internal/domain"
)

func TestListingsCreateAndGet(t *testing.T) {
	app, store := newTestApp(t)
	seedUser(t, store, "u1", "Ana", "ana@example.org", domain.RoleDonor)

	body := `{"type":"offer","title":"Winter coats","description":"Ten coats","category":"clothing","quantity":10,"location":"Madrid"}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(body)), "u1", nil)
	rr := httptest.NewRecorder()
	app.ListingsCreate(rr, req)
	wantStatus(t, rr, http.StatusCreated)

	var created listingDTO
	decodeBody(t, rr.Body, &created)
	if created.ID == "" || created.AuthorID != "u1" || created.Status != "active" {
		t.Fatalf("created listing = %+v", created)
	}
	if created.Photos == nil {
		t.Fatal("photos should serialize as an empty array, not null")
	}

	req = asUser(httptest.NewRequest(http.MethodGet, "/listings/"+created.ID, nil), "", map[string]string{"id": created.ID})
	rr = httptest.NewRecorder()
	app.ListingsGet(rr, req)
	wantStatus(t, rr, http.StatusOK)

	var got listingDTO
	decodeBody(t, rr.Body, &got)
	if got.Title != "Winter coats" || got.Quantity != 10 {
		t.Fatalf("fetched listing = %+v", got)
	}
}

func TestListingsCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `{"type":"offer"}`},
		{name: "missing type", body: `{"title":"Coats"}`},
		{name: "unknown type", body: `{"type":"loan","title":"Coats"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, store := newTestApp(t)
			seedUser(t, store, "u1", "Ana", "ana@example.org", domain.RoleDonor)
			req := asUser(httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(tc.body)), "u1", nil)
			rr := httptest.NewRecorder()
			app.ListingsCreate(rr, req)
			wantStatus(t, rr, http.StatusBadRequest)
		})
	}
}

func TestListingsCreateGeoLocationDefault(t *testing.T) {
	app, store := newTestApp(t)
	seedUser(t, store, "u1", "Ana", "ana@example.org", domain.RoleDonor)
	app.GeoCountry = func(ip string) (string, error) { return "ES", nil }

	req := asUser(httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(`{"type":"offer","title":"Coats"}`)), "u1", nil)
	rr := httptest.NewRecorder()
	app.ListingsCreate(rr, req)
	wantStatus(t, rr, http.StatusCreated)

	var created listingDTO
	decodeBody(t, rr.Body, &created)
	if created.Location != "ES" {
		t.Fatalf("location = %q, want geo default ES", created.Location)
	}

	// An explicit location always wins over the lookup.
	req = asUser(httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(`{"type":"offer","title":"Coats","location":"Valencia"}`)), "u1", nil)
	rr = httptest.NewRecorder()
	app.ListingsCreate(rr, req)
	wantStatus(t, rr, http.StatusCreated)
	decodeBody(t, rr.Body, &created)
	if created.Location != "Valencia" {
		t.Fatalf("location = %q, want Valencia", created.Location)
	}
}

func TestListingsListFilters(t *testing.T) {
	app, store := newTestApp(t)
	seedUser(t, store, "u1", "Ana", "ana@example.org", domain.RoleDonor)
	if err := store.Listings().Create(context.Background(), &domain.Listing{
		ID: "l1", AuthorID: "u1", Type: domain.ListingOffer, Title: "Coats", Category: "Clothing", Location: "Madrid",
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Listings().Create(context.Background(), &domain.Listing{
		ID: "l2", AuthorID: "u1", Type: domain.ListingNeed, Title: "Books", Category: "Education", Location: "Sevilla",
	}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{name: "no filter", query: "", wantIDs: []string{"l2", "l1"}},
		{name: "by type", query: "?type=need", wantIDs: []string{"l2"}},
		{name: "by category fold", query: "?category=cloth", wantIDs: []string{"l1"}},
		{name: "by location", query: "?location=sevilla", wantIDs: []string{"l2"}},
		{name: "no match", query: "?category=toys", wantIDs: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/listings"+tc.query, nil)
			rr := httptest.NewRecorder()
			app.ListingsList(rr, req)
			wantStatus(t, rr, http.StatusOK)

			var got []listingDTO
			decodeBody(t, rr.Body, &got)
			if len(got) != len(tc.wantIDs) {
				t.Fatalf("got %d listings, want %d", len(got), len(tc.wantIDs))
			}
			for i, id := range tc.wantIDs {
				if got[i].ID != id {
					t.Fatalf("listing[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestListingsListRejectsUnknownType(t *testing.T) {
	app, _ := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/listings?type=loan", nil)
	rr := httptest.NewRecorder()
	app.ListingsList(rr, req)
	wantStatus(t, rr, http.StatusBadRequest)
}

func TestListingsUpdate(t *testing.T) {
	app, store := newTestApp(t)
	seedUser(t, store, "owner", "Ana", "ana@example.org", domain.RoleDonor)
	seedListing(t, store, "l1", "owner", domain.ListingOffer, "Coats")

	body := `{"title":"Warm coats","quantity":5,"status":"closed"}`
	req := asUser(httptest.NewRequest(http.MethodPut, "/listings/l1", strings.NewReader(body)), "owner", map[string]string{"id": "l1"})
	rr := httptest.NewRecorder()
	app.ListingsUpdate(rr, req)
	wantStatus(t, rr, http.StatusOK)

	var updated listingDTO
	decodeBody(t, rr.Body, &updated)
	if updated.Title != "Warm coats" || updated.Quantity != 5 || updated.Status != "closed" {
		t.Fatalf("updated listing = %+v", updated)
	}
}

func TestListingsUpdateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty title", body: `{"title":""}`},
		{name: "unknown status", body: `{"status":"archived"}`},
		{name: "empty patch", body: `{}`},
		{name: "malformed json", body: `{`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, store := newTestApp(t)
			seedUser(t, store, "owner", "Ana", "ana@example.org", domain.RoleDonor)
			seedListing(t, store, "l1", "owner", domain.ListingOffer, "Coats")

			req := asUser(httptest.NewRequest(http.MethodPut, "/listings/l1", strings.NewReader(tc.body)), "owner", map[string]string{"id": "l1"})
			rr := httptest.NewRecorder()
			app.ListingsUpdate(rr, req)
			wantStatus(t, rr, http.StatusBadRequest)
		})
	}
}

func TestListingsOwnership(t *testing.T) {
	app, store := newTestApp(t)
	seedUser(t, store, "owner", "Ana", "ana@example.org", domain.RoleDonor)
	seedUser(t, store, "other", "Luis", "luis@example.org", domain.RoleDonor)
	seedListing(t, store, "l1", "owner", domain.ListingOffer, "Coats")

	calls := []struct {
		name string
		do   func(w http.ResponseWriter, r *http.Request)
		req  func(listingID string) *http.Request
	}{
		{
			name: "update",
			do:   app.ListingsUpdate,
			req: func(id string) *http.Request {
				return httptest.NewRequest(http.MethodPut, "/listings/"+id, strings.NewReader(`{"title":"x"}`))
			},
		},
		{
			name: "delete",
			do:   app.ListingsDelete,
			req: func(id string) *http.Request {
				return httptest.NewRequest(http.MethodDelete, "/listings/"+id, nil)
			},
		},
		{
			name: "applicants",
			do:   app.ListingsApplicants,
			req: func(id string) *http.Request {
				return httptest.NewRequest(http.MethodGet, "/listings/"+id+"/applicants", nil)
			},
		},
	}
	for _, tc := range calls {
		t.Run(tc.name+" by non-owner", func(t *testing.T) {
			rr := httptest.NewRecorder()
			tc.do(rr, asUser(tc.req("l1"), "other", map[string]string{"id": "l1"}))
			wantStatus(t, rr, http.StatusForbidden)
		})
		// Existence is not revealed to non-owners of missing rows.
		t.Run(tc.name+" missing listing", func(t *testing.T) {
			rr := httptest.NewRecorder()
			tc.do(rr, asUser(tc.req("ghost"), "other", map[string]string{"id": "ghost"}))
			wantStatus(t, rr, http.StatusNotFound)
		})
	}
}

func TestListingsDelete(t *testing.T) {
	app, store := newTestApp(t)
	seedUser(t, store, "owner", "Ana", "ana@example.org", domain.RoleDonor)
	seedListing(t, store, "l1", "owner", domain.ListingOffer, "Coats")

	req := asUser(httptest.NewRequest(http.MethodDelete, "/listings/l1", nil), "owner", map[string]string{"id": "l1"})
	rr := httptest.NewRecorder()
	app.ListingsDelete(rr, req)
	wantStatus(t, rr, http.StatusNoContent)

	if _, err := store.Listings().GetByID(context.Background(), "l1"); err != domain.ErrNotFound {
		t.Fatalf("listing still present after delete: %v", err)
	}
}

func TestListingsMatchEndpoint(t *testing.T) {
	app, store := newTestApp(t)
	seedUser(t, store, "owner", "Ana", "ana@example.org", domain.RoleDonor)
	seedUser(t, store, "applicant", "Luis", "luis@example.org", domain.RoleInstitution)
	seedListing(t, store, "l1", "owner", domain.ListingOffer, "Coats")

	req := asUser(httptest.NewRequest(http.MethodPost, "/listings/l1/match", nil), "applicant", map[string]string{"id": "l1"})
	rr := httptest.NewRecorder()
	app.ListingsMatch(rr, req)
	wantStatus(t, rr, http.StatusCreated)

	var donation donationDTO
	decodeBody(t, rr.Body, &donation)
	if donation.DonorID != "owner" || donation.ReceiverID != "applicant" || donation.Status != "proposed" {
		t.Fatalf("donation = %+v", donation)
	}

	// Self-proposal is rejected with the dedicated code.
	req = asUser(httptest.NewRequest(http.MethodPost, "/listings/l1/match", nil), "owner", map[string]string{"id": "l1"})
	rr = httptest.NewRecorder()
	app.ListingsMatch(rr, req)
	wantStatus(t, rr, http.StatusBadRequest)

	var resp errorResponse
	decodeBody(t, rr.Body, &resp)
	if resp.Code != "self_proposal" {
		t.Fatalf("error code = %q, want self_proposal", resp.Code)
	}
}

func TestListingsApplicantsEndpoint(t *testing.T) {
	app, store := newTestApp(t)
	seedUser(t, store, "owner", "Ana", "ana@example.org", domain.RoleDonor)
	seedUser(t, store, "first", "Luis", "luis@example.org", domain.RoleInstitution)
	seedUser(t, store, "second", "Marta", "marta@example.org", domain.RoleInstitution)
	seedListing(t, store, "l1", "owner", domain.ListingOffer, "Coats")

	for _, applicant := range []string{"first", "second"} {
		if _, err := app.Match.Propose(context.Background(), "l1", applicant); err != nil {
			t.Fatalf("propose %s: %v", applicant, err)
		}
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/listings/l1/applicants", nil), "owner", map[string]string{"id": "l1"})
	rr := httptest.NewRecorder()
	app.ListingsApplicants(rr, req)
	wantStatus(t, rr, http.StatusOK)

	var got []applicantDTO
	decodeBody(t, rr.Body, &got)
	if len(got) != 2 {
		t.Fatalf("got %d applicants, want 2", len(got))
	}
	if got[0].Email != "luis@example.org" || got[1].Email != "marta@example.org" {
		t.Fatalf("applicants out of order: %q then %q", got[0].Email, got[1].Email)
	}
}
