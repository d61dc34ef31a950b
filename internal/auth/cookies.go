package auth

import (
	"net/http"
	"time"
)

// Cookie names carrying the session tokens. Tokens travel only as HttpOnly
// cookies, never in request bodies.
const (
	AccessCookieName  = "authToken"
	RefreshCookieName = "refreshToken"
)

// CookieWriter sets and clears the session cookies with a consistent policy.
type CookieWriter struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SetSession attaches both session cookies to the response.
func (c CookieWriter) SetSession(w http.ResponseWriter, accessToken, refreshToken string) {
	c.SetAccess(w, accessToken)
	http.SetCookie(w, c.sessionCookie(RefreshCookieName, refreshToken, c.RefreshTTL))
}

// SetAccess attaches only the access-token cookie, leaving any refresh
// cookie untouched. Used during silent renewal.
func (c CookieWriter) SetAccess(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, c.sessionCookie(AccessCookieName, accessToken, c.AccessTTL))
}

// Clear expires both session cookies.
func (c CookieWriter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.sessionCookie(AccessCookieName, "", -time.Second))
	http.SetCookie(w, c.sessionCookie(RefreshCookieName, "", -time.Second))
}

func (c CookieWriter) sessionCookie(name, value string, ttl time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(ttl / time.Second)
	}
	return cookie
}
