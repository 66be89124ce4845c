package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Keys held per client.
const (
	KeyToken    = "token"
	KeyUserData = "userData"
	KeyToast    = "toast"
	KeyNavState = "navState"

	cooldownPrefix = "cooldown:"
)

const defaultClientTTL = 30 * 24 * time.Hour

// Toast variants.
const (
	ToastSuccess = "success"
	ToastError   = "error"
)

// Profile is the user data persisted alongside the token.
type Profile struct {
	FirstName            string `json:"firstName,omitempty"`
	LastName             string `json:"lastName,omitempty"`
	Email                string `json:"email,omitempty"`
	EmailVerified        bool   `json:"emailVerified"`
	ReceiveNotifications bool   `json:"receiveNotifications,omitempty"`
}

// Toast is a one-shot notification shown on the next render.
type Toast struct {
	Variant string `json:"variant"`
	Message string `json:"message"`
}

// NavState carries data across a redirect. It is bound to the destination path.
type NavState struct {
	Path       string `json:"path"`
	Email      string `json:"email,omitempty"`
	FromSignup bool   `json:"fromSignup,omitempty"`
	Message    string `json:"message,omitempty"`
	Submitted  bool   `json:"submitted,omitempty"`
}

// ClientStorage is a typed view over a Store scoped by client identifier.
type ClientStorage struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// ClientOption customises ClientStorage.
type ClientOption func(*ClientStorage)

// WithEntryTTL bounds how long token and profile entries live.
func WithEntryTTL(ttl time.Duration) ClientOption {
	return func(s *ClientStorage) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ClientOption {
	return func(s *ClientStorage) {
		if now != nil {
			s.now = now
		}
	}
}

// NewClientStorage wraps store.
func NewClientStorage(store Store, opts ...ClientOption) (*ClientStorage, error) {
	if store == nil {
		return nil, errors.New("storage: store is required")
	}
	s := &ClientStorage{store: store, ttl: defaultClientTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func clientKey(clientID, name string) string {
	return "client:" + strings.TrimSpace(clientID) + ":" + name
}

// Token returns the stored token or an empty string.
func (s *ClientStorage) Token(ctx context.Context, clientID string) (string, error) {
	raw, ok, err := s.store.Get(ctx, clientKey(clientID, KeyToken))
	if err != nil || !ok {
		return "", err
	}
	return string(raw), nil
}

// SetToken overwrites the stored token.
func (s *ClientStorage) SetToken(ctx context.Context, clientID, token string) error {
	return s.store.Set(ctx, clientKey(clientID, KeyToken), []byte(token), s.ttl)
}

// Profile returns the stored user data, or nil when absent.
func (s *ClientStorage) Profile(ctx context.Context, clientID string) (*Profile, error) {
	var profile Profile
	ok, err := s.getJSON(ctx, clientKey(clientID, KeyUserData), &profile)
	if err != nil || !ok {
		return nil, err
	}
	return &profile, nil
}

// SetProfile overwrites the stored user data.
func (s *ClientStorage) SetProfile(ctx context.Context, clientID string, profile Profile) error {
	return s.setJSON(ctx, clientKey(clientID, KeyUserData), profile, s.ttl)
}

// UpdateProfile applies fn to the stored user data and saves it when fn reports a change.
// Without stored user data it does nothing.
func (s *ClientStorage) UpdateProfile(ctx context.Context, clientID string, fn func(*Profile) bool) error {
	current, err := s.Profile(ctx, clientID)
	if err != nil || current == nil {
		return err
	}
	if !fn(current) {
		return nil
	}
	return s.SetProfile(ctx, clientID, *current)
}

// ClearAuth removes the token and user data.
func (s *ClientStorage) ClearAuth(ctx context.Context, clientID string) error {
	return s.store.Delete(ctx, clientKey(clientID, KeyToken), clientKey(clientID, KeyUserData))
}

// PushToast replaces the pending toast.
func (s *ClientStorage) PushToast(ctx context.Context, clientID string, toast Toast) error {
	return s.setJSON(ctx, clientKey(clientID, KeyToast), toast, s.ttl)
}

// PopToast returns and clears the pending toast.
func (s *ClientStorage) PopToast(ctx context.Context, clientID string) (*Toast, error) {
	key := clientKey(clientID, KeyToast)
	var toast Toast
	ok, err := s.getJSON(ctx, key, &toast)
	if err != nil || !ok {
		return nil, err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return nil, err
	}
	return &toast, nil
}

// SetNavState stores navigation state for the next page.
func (s *ClientStorage) SetNavState(ctx context.Context, clientID string, state NavState) error {
	return s.setJSON(ctx, clientKey(clientID, KeyNavState), state, s.ttl)
}

// NavState returns the navigation state when it targets path. State for another path is ignored.
func (s *ClientStorage) NavState(ctx context.Context, clientID, path string) (*NavState, error) {
	var state NavState
	ok, err := s.getJSON(ctx, clientKey(clientID, KeyNavState), &state)
	if err != nil || !ok {
		return nil, err
	}
	if state.Path != "" && path != "" && state.Path != path {
		return nil, nil
	}
	return &state, nil
}

// ClearNavState drops any navigation state.
func (s *ClientStorage) ClearNavState(ctx context.Context, clientID string) error {
	return s.store.Delete(ctx, clientKey(clientID, KeyNavState))
}

// StartCooldown blocks the named action for d.
func (s *ClientStorage) StartCooldown(ctx context.Context, clientID, name string, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	until := s.now().Add(d).UnixMilli()
	return s.store.Set(ctx, clientKey(clientID, cooldownPrefix+name), []byte(strconv.FormatInt(until, 10)), d)
}

// CooldownRemaining reports the time left on the named cooldown, or zero.
func (s *ClientStorage) CooldownRemaining(ctx context.Context, clientID, name string) (time.Duration, error) {
	raw, ok, err := s.store.Get(ctx, clientKey(clientID, cooldownPrefix+name))
	if err != nil || !ok {
		return 0, err
	}
	until, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, nil
	}
	remaining := time.UnixMilli(until).Sub(s.now())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

func (s *ClientStorage) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, key, raw, ttl)
}

func (s *ClientStorage) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// unreadable entries are treated as absent
		return false, nil
	}
	return true, nil
}
