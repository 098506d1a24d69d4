package storage

import (
	"encoding/base64"
	"net/http"
	"sync"
	"time"
)

// persistentCookieAge is how long "local storage" cookies live
const persistentCookieAge = 365 * 24 * time.Hour

// CookieOptions controls how a CookieStore writes its cookies
type CookieOptions struct {
	// Persistent cookies survive the browser session. Session cookies
	// carry no expiry and are dropped when the browser closes.
	Persistent bool
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

// LocalStorage returns options mirroring a browser's local storage
func LocalStorage(secure bool) CookieOptions {
	return CookieOptions{Persistent: true, Secure: secure, SameSite: http.SameSiteLaxMode, Path: "/"}
}

// SessionStorage returns options mirroring a browser's session storage
func SessionStorage(secure bool) CookieOptions {
	return CookieOptions{HTTPOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode, Path: "/"}
}

// CookieStore is a request-scoped Store backed by cookies. Values are
// base64 encoded so JSON survives cookie value rules.
type CookieStore struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	r       *http.Request
	opts    CookieOptions
	pending map[string]*string
}

// NewCookieStore creates a store reading from r and writing to w
func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &CookieStore{w: w, r: r, opts: opts, pending: make(map[string]*string)}
}

// Get returns the value written during this request, or the one the
// browser sent.
func (s *CookieStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.pending[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}

	c, err := s.r.Cookie(key)
	if err != nil {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// Set writes the cookie for key
func (s *CookieStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cookie(key, base64.RawURLEncoding.EncodeToString([]byte(value)))
	if s.opts.Persistent {
		c.MaxAge = int(persistentCookieAge.Seconds())
	}
	http.SetCookie(s.w, c)
	s.pending[key] = &value
	return nil
}

// Remove expires the cookie for key
func (s *CookieStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cookie(key, "")
	c.MaxAge = -1
	http.SetCookie(s.w, c)
	s.pending[key] = nil
	return nil
}

func (s *CookieStore) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     s.opts.Path,
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	}
}
