package webui

import (
	"errors"
	"net/http"
	"time"

	"imagestudio/core"
)

// Cookie configuration defaults
const (
	// SessionCookieName is the cookie that carries the studio session token
	SessionCookieName = "studio_session"

	// DefaultCookiePath is the path for which the cookie is valid
	DefaultCookiePath = "/"
)

// ErrNoCookie is returned when the request carries no usable session cookie.
var ErrNoCookie = errors.New("session cookie not found")

// ErrEmptySessionID is returned when attempting to create a cookie with an empty token.
var ErrEmptySessionID = errors.New("session ID cannot be empty")

// CookieConfig holds the attributes of the session cookie.
type CookieConfig struct {
	Name     string
	MaxAge   time.Duration
	Secure   bool // only send over HTTPS
	SameSite http.SameSite
	Path     string
}

// DefaultCookieConfig returns a CookieConfig whose lifetime matches ttl.
//
// SameSite is Lax so that following a link to the studio from elsewhere
// still resumes the existing session.
func DefaultCookieConfig(ttl time.Duration) CookieConfig {
	return CookieConfig{
		Name:     SessionCookieName,
		MaxAge:   ttl,
		SameSite: http.SameSiteLaxMode,
		Path:     DefaultCookiePath,
	}
}

// NewSessionCookie creates the session cookie for token. The cookie is
// always HttpOnly.
func NewSessionCookie(token string, cfg CookieConfig) (*http.Cookie, error) {
	if token == "" {
		return nil, ErrEmptySessionID
	}
	name := cfg.Name
	if name == "" {
		name = SessionCookieName
	}
	path := cfg.Path
	if path == "" {
		path = DefaultCookiePath
	}

	return &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     path,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	}, nil
}

// ParseSessionCookie extracts the session token from r. Tokens that were
// not produced by core.GenerateSessionID are treated as absent.
func ParseSessionCookie(r *http.Request, name string) (string, error) {
	if name == "" {
		name = SessionCookieName
	}
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", ErrNoCookie
	}
	if !core.IsValidSessionID(cookie.Value) {
		return "", ErrNoCookie
	}
	return cookie.Value, nil
}
