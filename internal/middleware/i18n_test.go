package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func localeProbe(t *testing.T, lookup CountryLookup, prepare func(*http.Request)) (string, string) {
	t.Helper()
	var locale, country string
	handler := I18N("en", lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if prepare != nil {
		prepare(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return locale, country
}

func TestI18NAcceptLanguageNegotiation(t *testing.T) {
	locale, _ := localeProbe(t, nil, func(r *http.Request) {
		r.Header.Set("Accept-Language", "es-MX,es;q=0.9,en;q=0.5")
	})
	if locale != "es" {
		t.Fatalf("locale = %q, want es", locale)
	}
}

func TestI18NExplicitLocaleHeaderWins(t *testing.T) {
	locale, _ := localeProbe(t, nil, func(r *http.Request) {
		r.Header.Set("Accept-Language", "es")
		r.Header.Set("X-Locale", "id")
	})
	if locale != "id" {
		t.Fatalf("locale = %q, want id", locale)
	}
}

func TestI18NUnsupportedLanguageFallsBack(t *testing.T) {
	locale, _ := localeProbe(t, nil, func(r *http.Request) {
		r.Header.Set("Accept-Language", "zz-ZZ")
	})
	if locale != "en" {
		t.Fatalf("locale = %q, want en fallback", locale)
	}
}

func TestI18NCountryHeaderDrivesLocale(t *testing.T) {
	locale, country := localeProbe(t, nil, func(r *http.Request) {
		r.Header.Set("CF-IPCountry", "mx")
	})
	if country != "MX" {
		t.Fatalf("country = %q, want MX", country)
	}
	if locale != "es" {
		t.Fatalf("locale = %q, want es via country mapping", locale)
	}
}

func TestI18NGeoIPLookupDrivesLocale(t *testing.T) {
	lookup := func(ip string) (string, error) {
		if ip == "" {
			t.Fatal("lookup called with empty IP")
		}
		return "ID", nil
	}
	locale, country := localeProbe(t, lookup, func(r *http.Request) {
		r.RemoteAddr = "203.0.113.10:1234"
	})
	if country != "ID" || locale != "id" {
		t.Fatalf("country/locale = %q/%q, want ID/id", country, locale)
	}
}

func TestI18NLookupFailureIsSilent(t *testing.T) {
	lookup := func(string) (string, error) { return "", errors.New("db offline") }
	locale, country := localeProbe(t, lookup, nil)
	if country != "" || locale != "en" {
		t.Fatalf("country/locale = %q/%q, want empty/en", country, locale)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := ClientIP(req); got != "198.51.100.7" {
		t.Fatalf("ClientIP = %q", got)
	}
	req.Header.Del("X-Forwarded-For")
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Fatalf("ClientIP = %q", got)
	}
}
