package httpserver

import (
	"net/http"
	"time"
)

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "refresh_token"

// CookieConfig controls the refresh cookie attributes.
type CookieConfig struct {
	SameSite http.SameSite
	Secure   bool
	// MaxAge defaults to the refresh token lifetime of 7 days.
	MaxAge time.Duration
}

func (c CookieConfig) maxAgeSeconds() int {
	if c.MaxAge <= 0 {
		return int((7 * 24 * time.Hour).Seconds())
	}
	return int(c.MaxAge.Seconds())
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   s.cookies.maxAgeSeconds(),
		HttpOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: s.cookies.SameSite,
	})
}

// clearRefreshCookie expires the cookie on the client.
func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: s.cookies.SameSite,
	})
}

func refreshCookie(r *http.Request) string {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
