// Package session is the dashboard's session context: the backend bearer token plus a
// few identity and display attributes, kept in a SessionRepository as flat string keys.
//
// Nothing is cached in memory. Every accessor reads storage again, so a value removed by
// a logout in another request is never trusted afterwards.
package session

import (
	"context"
	"strconv"
	"sync"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/common/security"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/domain/repository"
	"tecrank_admin/internal/platform/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	KeyToken        = "token"
	KeyUserName     = "userName"
	KeyEmail        = "email"
	KeyRole         = "role"
	KeySectorID     = "sectorId"
	KeyIDIxc        = "idIxc"
	KeyDarkMode     = "darkMode"
	KeySelectedDate = "selectedDate"
)

type Manager struct {
	repo repository.SessionRepository
	key  [32]byte
}

func NewManager(repo repository.SessionRepository, sealKey [32]byte) *Manager {
	return &Manager{repo: repo, key: sealKey}
}

// New starts a session with a fresh id. Nothing is written until Set.
func (m *Manager) New() *Session {
	return m.Open(uuid.NewString())
}

// Open returns a handle on an existing session id.
func (m *Manager) Open(sid string) *Session {
	return &Session{id: sid, repo: m.repo, key: &m.key}
}

// Session is one handle on a stored session. A handle is shared by everything serving
// one screen flow; Expire acts once per handle.
type Session struct {
	id   string
	repo repository.SessionRepository
	key  *[32]byte

	mu      sync.Mutex
	expired bool
}

func (s *Session) ID() string { return s.id }

// Init checks the stored state and drops a token that can no longer be opened.
func (s *Session) Init(ctx context.Context) error {
	values, err := s.repo.GetAll(ctx, s.id)
	if err != nil {
		return common.Errorf("loading session: %w", err)
	}
	sealed := values[KeyToken]
	if sealed == "" {
		return nil
	}
	if _, err := security.Open(s.key, sealed); err != nil {
		logger.Log.Warn("dropping unreadable session token", zap.String("sid", s.id), zap.Error(err))
		return s.repo.Delete(ctx, s.id, KeyToken)
	}
	return nil
}

// Set is login: it writes the identity and the sealed token.
func (s *Session) Set(ctx context.Context, id model.Identity) error {
	if id.Token == "" {
		return common.Errorf("session: refusing to store an identity without token: %w", common.ErrBadRequest)
	}
	sealed, err := security.Seal(s.key, id.Token)
	if err != nil {
		return common.Errorf("sealing token: %w", err)
	}
	values := map[string]string{
		KeyToken:    sealed,
		KeyUserName: id.UserName,
		KeyEmail:    id.Email,
		KeyRole:     id.Role,
		KeySectorID: strconv.Itoa(id.SectorID),
		KeyIDIxc:    id.IDIxc,
	}
	if err := s.repo.Set(ctx, s.id, values); err != nil {
		return common.Errorf("storing session: %w", err)
	}
	s.mu.Lock()
	s.expired = false
	s.mu.Unlock()
	return nil
}

// Clear is logout: every key goes, preferences included.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx, s.id); err != nil {
		return common.Errorf("clearing session: %w", err)
	}
	return nil
}

// Expire clears the session after the backend rejected its token. Only the first call
// on a handle does anything and returns true.
func (s *Session) Expire(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expired {
		return false
	}
	s.expired = true
	if err := s.repo.Clear(context.WithoutCancel(ctx), s.id); err != nil {
		logger.Log.Error("failed to clear expired session", zap.String("sid", s.id), zap.Error(err))
	}
	logger.Log.Info("session expired", zap.String("sid", s.id))
	return true
}

// Expired reports whether Expire ran on this handle.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}

// Token returns the backend token, or "" when the session is not authenticated.
func (s *Session) Token(ctx context.Context) string {
	if s.Expired() {
		return ""
	}
	sealed, err := s.repo.Get(ctx, s.id, KeyToken)
	if err != nil {
		logger.Log.Warn("reading session token", zap.String("sid", s.id), zap.Error(err))
		return ""
	}
	if sealed == "" {
		return ""
	}
	token, err := security.Open(s.key, sealed)
	if err != nil {
		return ""
	}
	return token
}

func (s *Session) IsLoggedIn(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// User returns the stored identity, or nil when not logged in.
func (s *Session) User(ctx context.Context) (*model.Identity, error) {
	token := s.Token(ctx)
	if token == "" {
		return nil, nil
	}
	values, err := s.repo.GetAll(ctx, s.id)
	if err != nil {
		return nil, common.Errorf("reading session: %w", err)
	}
	sectorID, _ := strconv.Atoi(values[KeySectorID])
	return &model.Identity{
		Token:    token,
		UserName: values[KeyUserName],
		Email:    values[KeyEmail],
		Role:     values[KeyRole],
		SectorID: sectorID,
		IDIxc:    values[KeyIDIxc],
	}, nil
}

func (s *Session) Preferences(ctx context.Context) (model.Preferences, error) {
	values, err := s.repo.GetAll(ctx, s.id)
	if err != nil {
		return model.Preferences{}, common.Errorf("reading preferences: %w", err)
	}
	dark, _ := strconv.ParseBool(values[KeyDarkMode])
	return model.Preferences{DarkMode: dark, SelectedDate: values[KeySelectedDate]}, nil
}

func (s *Session) SetDarkMode(ctx context.Context, on bool) error {
	return s.repo.Set(ctx, s.id, map[string]string{KeyDarkMode: strconv.FormatBool(on)})
}

// ToggleDarkMode flips the theme flag and returns the new value.
func (s *Session) ToggleDarkMode(ctx context.Context) (bool, error) {
	prefs, err := s.Preferences(ctx)
	if err != nil {
		return false, err
	}
	return !prefs.DarkMode, s.SetDarkMode(ctx, !prefs.DarkMode)
}

// SetSelectedDate caches the last date picked on a ranking or report screen; "" forgets it.
func (s *Session) SetSelectedDate(ctx context.Context, date string) error {
	if date == "" {
		return s.repo.Delete(ctx, s.id, KeySelectedDate)
	}
	return s.repo.Set(ctx, s.id, map[string]string{KeySelectedDate: date})
}
