// Package client is the Go client for the donation marketplace API: a
// typed HTTP client plus a State container that mirrors server-side
// listing and donation state for UI consumers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// User mirrors the server's user payload.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Listing mirrors the server's listing payload.
type Listing struct {
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

// Donation mirrors the server's donation payload.
type Donation struct {
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

// DonationWithListing is a donation joined with its listing headline.
type DonationWithListing struct {
	Donation
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Applicant is a proposed donation joined with the counterparty identity.
type Applicant struct {
	Donation
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResult is the token plus profile returned on login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterInput is the payload for account creation. Role defaults to
// donor server-side when empty.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// ListingInput is the payload for listing creation.
type ListingInput struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Quantity    int      `json:"quantity,omitempty"`
	Location    string   `json:"location,omitempty"`
	Photos      []string `json:"photos,omitempty"`
}

// ListingUpdate is a partial listing update. Nil fields are left as is.
type ListingUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Quantity    *int      `json:"quantity,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Photos      *[]string `json:"photos,omitempty"`
	Status      *string   `json:"status,omitempty"`
}

// ProfileUpdate is a partial profile update. Nil fields are left as is.
type ProfileUpdate struct {
	Name *string `json:"name,omitempty"`
	Role *string `json:"role,omitempty"`
}

// ListingQuery narrows GET /listings.
type ListingQuery struct {
	Type     string
	Category string
	Location string
}

// Client is a typed HTTP client for the API. All methods are safe for
// concurrent use once the token is set.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	locale  string
}

// New creates a client for the given base URL, e.g. "http://localhost:4000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the currently installed bearer token.
func (c *Client) Token() string { return c.token }

// SetLocale sets the X-Locale header sent with every request.
func (c *Client) SetLocale(locale string) { c.locale = locale }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Buffer
	if in != nil {
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.locale != "" {
		req.Header.Set("X-Locale", c.locale)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Error
			apiErr.Code = payload.Code
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/register", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token. The token is NOT installed on
// the client automatically; State does that on successful login.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	in := map[string]string{"email": email, "password": password}
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me fetches the authenticated profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, "/users/me", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Listings fetches listings matching the query, newest first.
func (c *Client) Listings(ctx context.Context, q ListingQuery) ([]Listing, error) {
	params := url.Values{}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	path := "/listings"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out []Listing
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Listing fetches a single listing.
func (c *Client) Listing(ctx context.Context, id string) (*Listing, error) {
	var out Listing
	if err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateListing publishes a new listing.
func (c *Client) CreateListing(ctx context.Context, in ListingInput) (*Listing, error) {
	var out Listing
	if err := c.do(ctx, http.MethodPost, "/listings", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateListing applies a partial update to an owned listing.
func (c *Client) UpdateListing(ctx context.Context, id string, in ListingUpdate) (*Listing, error) {
	var out Listing
	if err := c.do(ctx, http.MethodPut, "/listings/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteListing removes an owned listing.
func (c *Client) DeleteListing(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/listings/"+url.PathEscape(id), nil, nil)
}

// Propose offers or requests the listed goods as the authenticated user.
func (c *Client) Propose(ctx context.Context, listingID string) (*Donation, error) {
	var out Donation
	if err := c.do(ctx, http.MethodPost, "/listings/"+url.PathEscape(listingID)+"/match", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Applicants lists outstanding proposals on an owned listing, earliest
// proposer first.
func (c *Client) Applicants(ctx context.Context, listingID string) ([]Applicant, error) {
	var out []Applicant
	if err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(listingID)+"/applicants", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Donations lists the authenticated user's donations, newest first.
func (c *Client) Donations(ctx context.Context) ([]DonationWithListing, error) {
	var out []DonationWithListing
	if err := c.do(ctx, http.MethodGet, "/donations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Accept confirms a proposed donation as its receiver.
func (c *Client) Accept(ctx context.Context, donationID string) (*Donation, error) {
	var out Donation
	if err := c.do(ctx, http.MethodPatch, "/donations/"+url.PathEscape(donationID)+"/accept", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Deliver confirms the handoff of an accepted donation as its donor.
func (c *Client) Deliver(ctx context.Context, donationID string) (*Donation, error) {
	var out Donation
	if err := c.do(ctx, http.MethodPatch, "/donations/"+url.PathEscape(donationID)+"/deliver", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Withdraw deletes a donation the user is party to.
func (c *Client) Withdraw(ctx context.Context, donationID string) error {
	return c.do(ctx, http.MethodDelete, "/donations/"+url.PathEscape(donationID), nil, nil)
}
