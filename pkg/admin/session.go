// Package admin holds the time-boxed moderator session and the dashboard
// operations run with its credential.
package admin

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"game-catalog/pkg/storage"
)

const (
	// KeyStorageKey holds the admin credential
	KeyStorageKey = "pineapple_admin_key"
	// StartStorageKey holds the login time in milliseconds since the epoch
	StartStorageKey = "pineapple_admin_session_start"
	// SessionTimeout is how long a login stays valid
	SessionTimeout = 2 * time.Hour
)

// ErrLoggedOut is returned by dashboard calls without a valid session
var ErrLoggedOut = errors.New("not logged in")

// Session is the loggedOut → loggedIn → loggedOut state machine over a
// session store
type Session struct {
	store storage.Store
	now   func() time.Time
}

// NewSession creates a session. A nil now uses time.Now.
func NewSession(store storage.Store, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{store: store, now: now}
}

// Current returns the stored key while the session is valid. A missing
// piece or an expired start clears whatever is left; an empty store is
// not touched.
func (s *Session) Current() (string, bool) {
	key, okKey := s.store.Get(KeyStorageKey)
	raw, okStart := s.store.Get(StartStorageKey)
	if okKey && key != "" && okStart {
		if start, err := strconv.ParseInt(raw, 10, 64); err == nil {
			if s.now().Sub(time.UnixMilli(start)) < SessionTimeout {
				return key, true
			}
		}
	}
	if okKey || okStart {
		_ = s.Logout()
	}
	return "", false
}

// LoggedIn reports whether Current would return a key
func (s *Session) LoggedIn() bool {
	_, ok := s.Current()
	return ok
}

// Login stores key with the current time. An empty key is ignored and
// reported as false.
func (s *Session) Login(key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	if err := s.store.Set(KeyStorageKey, key); err != nil {
		return false, fmt.Errorf("store admin key: %w", err)
	}
	start := strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.store.Set(StartStorageKey, start); err != nil {
		return false, fmt.Errorf("store session start: %w", err)
	}
	return true, nil
}

// Logout clears both stored values. It is safe to call repeatedly.
func (s *Session) Logout() error {
	return errors.Join(s.store.Remove(KeyStorageKey), s.store.Remove(StartStorageKey))
}
