// Package account connects the local identity to the optional remote account
// API. Everything else works without it: when the API is not configured or not
// reachable, calls fail with ErrUnavailable and the local state is left alone.
package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mrlokans/readworld/internal/achievements"
	"github.com/mrlokans/readworld/internal/crypto"
	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/notify"
	"github.com/mrlokans/readworld/internal/state"
	"github.com/mrlokans/readworld/internal/storage"
	"github.com/mrlokans/readworld/internal/validation"
)

// API is the remote side of the account flow.
type API interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Upgrade(ctx context.Context, token string) (*AuthResponse, error)
	Downgrade(ctx context.Context, token string) (*AuthResponse, error)
}

// AccountRecorder receives one entry per account action.
type AccountRecorder interface {
	LogAccount(userID, action string, err error)
}

// TokenSealer protects the session token at rest.
type TokenSealer interface {
	Seal(plaintext string) (string, error)
	Open(value string) (string, error)
}

type Service struct {
	api          API
	records      storage.Backend
	store        *state.Store
	achievements *achievements.Engine
	notifier     notify.Notifier
	recorder     AccountRecorder
	sealer       TokenSealer
	validator    *validation.Validator
}

// NewService wires the account flow. api may be nil when no API is configured.
func NewService(api API, records storage.Backend, store *state.Store, engine *achievements.Engine, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Service{
		api:          api,
		records:      records,
		store:        store,
		achievements: engine,
		notifier:     notifier,
		validator:    validation.New(),
	}
}

func (s *Service) SetRecorder(r AccountRecorder) {
	s.recorder = r
}

// SetTokenSealer encrypts tokens written from now on. Tokens stored in plain
// text earlier are still accepted.
func (s *Service) SetTokenSealer(sealer TokenSealer) {
	s.sealer = sealer
}

// Available reports whether an API is configured.
func (s *Service) Available() bool {
	return s.api != nil
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, "register", func(api API) (*AuthResponse, error) {
		return api.Register(ctx, req)
	})
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, "login", func(api API) (*AuthResponse, error) {
		return api.Login(ctx, req)
	})
}

func (s *Service) authenticate(ctx context.Context, action string, call func(API) (*AuthResponse, error)) (*User, error) {
	resp, err := s.call(ctx, action, call)
	if err != nil {
		return nil, err
	}
	user := s.apply(ctx, resp, entities.PlanFree)
	return user, nil
}

// Logout forgets the session and returns the plan to free. It works offline.
func (s *Service) Logout(ctx context.Context) error {
	for _, key := range []string{entities.RecordKeyToken, entities.RecordKeyUser} {
		if err := s.records.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Account: failed to remove %s: %v", key, err)
		}
	}
	err := s.store.Mutate(ctx, func(st *entities.UserState) error {
		st.Plan = entities.PlanFree
		return nil
	})
	s.notifier.Notify(notify.LevelInfo, "Logged out successfully")
	s.log(ctx, "logout", err)
	return err
}

// Upgrade moves the logged-in account to premium and unlocks the premium achievement.
func (s *Service) Upgrade(ctx context.Context) (*User, error) {
	user, err := s.changePlan(ctx, "upgrade", API.Upgrade)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(notify.LevelSuccess, "🎉 Upgraded to Premium!")
	if _, err := s.achievements.Check(ctx, achievements.Premium); err != nil {
		return user, err
	}
	return user, nil
}

func (s *Service) Downgrade(ctx context.Context) (*User, error) {
	user, err := s.changePlan(ctx, "downgrade", API.Downgrade)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(notify.LevelInfo, "Downgraded to Free plan")
	return user, nil
}

func (s *Service) changePlan(ctx context.Context, action string, fn func(API, context.Context, string) (*AuthResponse, error)) (*User, error) {
	token := s.token(ctx)
	if token == "" {
		s.log(ctx, action, ErrNotLoggedIn)
		return nil, ErrNotLoggedIn
	}

	var current entities.Plan
	s.store.View(func(st *entities.UserState) { current = st.Plan })

	resp, err := s.call(ctx, action, func(api API) (*AuthResponse, error) {
		return fn(api, ctx, token)
	})
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, resp, current), nil
}

func (s *Service) storeToken(ctx context.Context, token string) error {
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(token)
		if err != nil {
			return err
		}
		token = sealed
	}
	return s.records.Set(ctx, entities.RecordKeyToken, token)
}

// token returns the stored session token, or "" when there is none or it
// cannot be opened with the configured key.
func (s *Service) token(ctx context.Context) string {
	stored, err := s.records.Get(ctx, entities.RecordKeyToken)
	if err != nil || stored == "" {
		return ""
	}
	if !crypto.IsSealed(stored) {
		return stored
	}
	if s.sealer == nil {
		log.Printf("Account: stored token is encrypted but ACCOUNT_TOKEN_KEY is not set")
		return ""
	}
	token, err := s.sealer.Open(stored)
	if err != nil {
		log.Printf("Account: failed to open stored token: %v", err)
		return ""
	}
	return token
}

// call runs one API request, turning its failure into a notification and an activity entry.
func (s *Service) call(ctx context.Context, action string, fn func(API) (*AuthResponse, error)) (*AuthResponse, error) {
	if s.api == nil {
		s.notifier.Notify(notify.LevelWarning, "Account service is not available.")
		s.log(ctx, action, ErrUnavailable)
		return nil, ErrUnavailable
	}

	resp, err := fn(s.api)
	if err != nil {
		log.Printf("Account: %s failed: %v", action, err)
		s.notifier.Notify(notify.LevelError, failureMessage(action, err))
		s.log(ctx, action, err)
		return nil, err
	}
	s.log(ctx, action, nil)
	return resp, nil
}

// apply stores the token and user from resp and copies the plan into the state.
// fallback is used when the response carries no plan.
func (s *Service) apply(ctx context.Context, resp *AuthResponse, fallback entities.Plan) *User {
	if resp.Token != "" {
		if err := s.storeToken(ctx, resp.Token); err != nil {
			log.Printf("Account: failed to store token: %v", err)
		}
	}
	if resp.User == nil {
		return nil
	}

	if raw, err := json.Marshal(resp.User); err == nil {
		if err := s.records.Set(ctx, entities.RecordKeyUser, string(raw)); err != nil {
			log.Printf("Account: failed to store user: %v", err)
		}
	}

	plan := fallback
	switch entities.Plan(resp.User.Plan) {
	case entities.PlanPremium, entities.PlanFree:
		plan = entities.Plan(resp.User.Plan)
	}
	_ = s.store.Mutate(ctx, func(st *entities.UserState) error {
		st.Plan = plan
		return nil
	})
	return resp.User
}

// Current returns the stored account user, if any.
func (s *Service) Current(ctx context.Context) (*User, bool) {
	raw, err := s.records.Get(ctx, entities.RecordKeyUser)
	if err != nil {
		return nil, false
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		log.Printf("Account: ignoring unreadable user record: %v", err)
		return nil, false
	}
	return &u, true
}

func (s *Service) log(ctx context.Context, action string, err error) {
	if s.recorder != nil {
		s.recorder.LogAccount(s.store.UserID(ctx), action, err)
	}
}

func failureMessage(action string, err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrUnavailable) {
		return "Account service is not available."
	}
	return fmt.Sprintf("%s failed", strings.ToUpper(action[:1])+action[1:])
}
