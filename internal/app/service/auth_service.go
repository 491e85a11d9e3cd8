package service

import (
	"context"
	"strings"
	"sync"
	"tecrank_admin/internal/app/session"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/domain/repository"
	"tecrank_admin/internal/platform/logger"
	"unicode"

	"go.uber.org/zap"
)

const (
	MsgInvalidEmail    = "Informe um e-mail válido."
	MsgInvalidPassword = "A senha deve ter ao menos 6 caracteres, com letras e números."
)

type AuthService struct {
	authRepo repository.AuthRepository
	sessions *session.Manager

	mu       sync.Mutex
	onLogout []func(sid string)
}

func NewAuthService(authRepo repository.AuthRepository, sessions *session.Manager) *AuthService {
	return &AuthService{authRepo: authRepo, sessions: sessions}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Session  *session.Session `json:"-"`
	User     *model.Identity  `json:"user"`
	Redirect string           `json:"redirect"`
}

// ValidateCredentials runs the form checks that must pass before any network call.
func ValidateCredentials(req LoginRequest) error {
	v := common.NewValidationError()
	if !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		v.Add("email", MsgInvalidEmail)
	}
	if !strongEnough(req.Password) {
		v.Add("password", MsgInvalidPassword)
	}
	return v.OrNil()
}

func strongEnough(p string) bool {
	if len([]rune(p)) < 6 {
		return false
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// Login exchanges the credentials for a backend token and stores it in a new session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := ValidateCredentials(req); err != nil {
		return nil, err
	}
	resp, err := s.authRepo.Login(ctx, model.Credentials{Email: strings.TrimSpace(req.Email), Password: req.Password})
	if err != nil {
		return nil, common.Errorf("login: %w", err)
	}

	identity := model.Identity{
		Token:    resp.AccessToken,
		UserName: resp.Nome,
		Email:    resp.Email,
		Role:     resp.Role,
		SectorID: resp.SectorID,
		IDIxc:    string(resp.IDIxc),
	}
	if identity.Role == "" {
		identity.Role = model.RoleViewer
	}
	if identity.UserName == "" {
		identity.UserName = identity.Email
	}

	sess := s.sessions.New()
	if err := sess.Set(ctx, identity); err != nil {
		return nil, common.Errorf("login: %w", err)
	}
	logger.Log.Info("user logged in", zap.String("sid", sess.ID()), zap.String("email", identity.Email))
	s.retire(ctx, sess.ID())
	return &LoginResult{Session: sess, User: &identity, Redirect: HomeRoute}, nil
}

// retire ends the session bound to ctx, if any, once a login replaced it.
func (s *AuthService) retire(ctx context.Context, current string) {
	old, ok := session.FromContext(ctx)
	if !ok || old.ID() == current {
		return
	}
	if err := old.Clear(ctx); err != nil {
		logger.Log.Warn("clearing replaced session", zap.String("sid", old.ID()), zap.Error(err))
	}
	s.forget(old.ID())
}

// Logout clears the session and everything screens kept for it.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return nil
	}
	if err := sess.Clear(ctx); err != nil {
		return err
	}
	s.forget(sess.ID())
	return nil
}

// OnLogout registers a callback run with the session id on logout and on expiry.
func (s *AuthService) OnLogout(fn func(sid string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Expired is called once a session was cleared after a backend 401.
func (s *AuthService) Expired(sid string) {
	s.forget(sid)
}

func (s *AuthService) forget(sid string) {
	s.mu.Lock()
	hooks := append([]func(string){}, s.onLogout...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(sid)
	}
}
