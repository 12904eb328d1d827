package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// LocaleKey is the context key holding the negotiated locale.
var LocaleKey = localeContextKey{}

// CountryLookup resolves ISO country codes for an IP address. A nil
// lookup disables the geo hint.
type CountryLookup func(ip string) (string, error)

// SpanishCountry reports whether a country code should default to "es".
type SpanishCountry func(code string) bool

var supported = []language.Tag{
	language.Spanish, // default order matters: original UI is Spanish
	language.English,
}

var matcher = language.NewMatcher(supported)

// Locale negotiates en/es for each request: an explicit X-Locale header
// wins, then Accept-Language, then a country lookup on the client IP,
// then the configured default.
func Locale(defaultLocale string, lookup CountryLookup, spanish SpanishCountry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale, lookup, spanish)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string, lookup CountryLookup, spanish SpanishCountry) string {
	if v := r.Header.Get("X-Locale"); v != "" {
		return normalizeLocale(v)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			tag, _, conf := matcher.Match(tags...)
			if conf > language.No {
				base, _ := tag.Base()
				return normalizeLocale(base.String())
			}
		}
	}
	if lookup != nil && spanish != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				if spanish(country) {
					return "es"
				}
				return "en"
			}
		}
	}
	return normalizeLocale(fallback)
}

func normalizeLocale(locale string) string {
	if strings.HasPrefix(strings.ToLower(locale), "es") {
		return "es"
	}
	return "en"
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ContextWithLocale injects a locale directly, for tests.
func ContextWithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, LocaleKey, normalizeLocale(locale))
}

// LocaleFromContext returns the negotiated locale, defaulting to "es".
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "es"
}
