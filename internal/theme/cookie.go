package theme

import (
	"net/http"
	"time"
)

// CookieMaxAge keeps the preference for a year.
const CookieMaxAge = 365 * 24 * time.Hour

// CookieStore backs Store with browser cookies for a single request.
// Values written with Set are visible to later Get calls on the same store.
type CookieStore struct {
	w       http.ResponseWriter
	r       *http.Request
	secure  bool
	written map[string]string
}

// NewCookieStore returns a Store reading from r and writing to w.
func NewCookieStore(w http.ResponseWriter, r *http.Request, secure bool) *CookieStore {
	return &CookieStore{w: w, r: r, secure: secure, written: make(map[string]string)}
}

// Get implements Store.
func (c *CookieStore) Get(key string) (string, error) {
	if v, ok := c.written[key]; ok {
		return v, nil
	}
	cookie, err := c.r.Cookie(key)
	if err != nil {
		return "", ErrNotSet
	}
	return cookie.Value, nil
}

// Set implements Store.
func (c *CookieStore) Set(key, value string) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		MaxAge:   int(CookieMaxAge / time.Second),
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.written[key] = value
	return nil
}

// MapStore is an in-memory Store.
type MapStore map[string]string

// Get implements Store.
func (m MapStore) Get(key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", ErrNotSet
	}
	return v, nil
}

// Set implements Store.
func (m MapStore) Set(key, value string) error {
	m[key] = value
	return nil
}
