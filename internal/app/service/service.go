package service

import (
	"context"
	"regexp"
	"strings"
	"tecrank_admin/internal/app/screen"
	"tecrank_admin/internal/app/session"
	"tecrank_admin/internal/common"
	"time"
)

const (
	HomeRoute  = "/"
	LoginRoute = "/login"

	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// tokenFrom returns the bearer token of the session bound to ctx. The backend client
// falls back to the same source, the explicit value keeps repository calls testable.
func tokenFrom(ctx context.Context) string {
	if s, ok := session.FromContext(ctx); ok {
		return s.Token(ctx)
	}
	return ""
}

func sessionID(ctx context.Context) string {
	if s, ok := session.FromContext(ctx); ok {
		return s.ID()
	}
	return ""
}

func validDate(v string) bool {
	_, err := time.Parse(dateLayout, v)
	return err == nil
}

func validMonth(v string) bool {
	_, err := time.Parse(monthLayout, v)
	return err == nil
}

func blank(v string) bool { return strings.TrimSpace(v) == "" }

// rejected is the result of a mutation stopped before any network call.
func rejected(err error) screen.Result {
	return screen.Result{State: screen.StateReady, Notice: common.UserMessage(err), Err: err}
}

// requireConfirmed blocks a delete that was not confirmed through its prompt.
func requireConfirmed(ctx context.Context, kind string, id int, token string) error {
	if id <= 0 {
		v := common.NewValidationError()
		v.Add("id", "Registro inválido.")
		return v
	}
	if !screen.Confirmed(sessionID(ctx), kind, id, token) {
		v := common.NewValidationError()
		v.Add("confirmacao", "Confirme a exclusão antes de continuar.")
		return v
	}
	return nil
}

func find[T any](items []T, id int, idOf func(T) int) (T, bool) {
	for _, it := range items {
		if idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}
