package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignAndVerifyJWT(t *testing.T) {
	token, err := SignJWT("secret", "user-1", "donor", time.Hour)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	claims, err := VerifyJWT("secret", token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "donor" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestVerifyJWTRejectsWrongSecret(t *testing.T) {
	token, err := SignJWT("secret", "user-1", "donor", time.Hour)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	if _, err := VerifyJWT("other", token); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestVerifyJWTRejectsExpired(t *testing.T) {
	token, err := SignJWT("secret", "user-1", "donor", -time.Minute)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	if _, err := VerifyJWT("secret", token); err == nil {
		t.Fatalf("expected verification failure for expired token")
	}
}

func TestAuthJWTMiddleware(t *testing.T) {
	token, err := SignJWT("secret", "user-1", "institution", time.Hour)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	var gotID, gotRole string
	h := AuthJWT("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "valid bearer", authHeader: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "garbage token", authHeader: "Bearer not-a-token", wantStatus: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
		})
	}

	if gotID != "user-1" || gotRole != "institution" {
		t.Fatalf("context identity = %q/%q", gotID, gotRole)
	}
}
