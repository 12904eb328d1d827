package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	spanish := func(code string) bool { return code == "AR" || code == "ES" }
	argentina := func(ip string) (string, error) { return "AR", nil }
	france := func(ip string) (string, error) { return "FR", nil }

	tests := []struct {
		name     string
		xLocale  string
		accept   string
		lookup   CountryLookup
		fallback string
		want     string
	}{
		{name: "x-locale wins", xLocale: "es", accept: "en-US", want: "es"},
		{name: "x-locale english", xLocale: "en-GB", accept: "es-AR", want: "en"},
		{name: "accept language spanish", accept: "es-AR,es;q=0.9", want: "es"},
		{name: "accept language english", accept: "en-US,en;q=0.8", want: "en"},
		{name: "accept language regional variant", accept: "es-MX", want: "es"},
		{name: "unsupported language falls through to fallback", accept: "fr-FR", fallback: "es", want: "es"},
		{name: "geo hint spanish country", lookup: argentina, fallback: "en", want: "es"},
		{name: "geo hint other country", lookup: france, fallback: "es", want: "en"},
		{name: "fallback default", fallback: "es", want: "es"},
		{name: "fallback normalizes unknown", fallback: "de", want: "en"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.9:1234"
			if tc.xLocale != "" {
				req.Header.Set("X-Locale", tc.xLocale)
			}
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			got := detectLocale(req, tc.fallback, tc.lookup, spanish)
			if got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLocaleMiddlewareStoresContextValue(t *testing.T) {
	var got string
	h := Locale("es", nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "en" {
		t.Fatalf("locale in context = %q, want en", got)
	}
}
