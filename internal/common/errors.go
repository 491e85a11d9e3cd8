package common

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict")
	ErrInternalServer     = errors.New("internal server error")
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrMalformedResponse  = errors.New("malformed backend response")
	ErrBadGateway         = errors.New("backend request failed")
)

// ErrorKind tags every failure coming out of the backend boundary.
type ErrorKind string

const (
	KindAuth       ErrorKind = "auth"
	KindMalformed  ErrorKind = "malformed"
	KindNetwork    ErrorKind = "network"
	KindServer     ErrorKind = "server"
	KindValidation ErrorKind = "validation"
)

const (
	MsgSessionExpired = "Sua sessão expirou. Faça login novamente."
	MsgNetwork        = "Falha de conexão. Verifique sua internet."
	MsgMalformed      = "Resposta inesperada do servidor."
)

// APIError is the single error shape screens see for backend failures.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is lets errors.Is match an APIError against the package sentinels.
func (e *APIError) Is(target error) bool {
	switch e.Kind {
	case KindAuth:
		return target == ErrUnauthorized
	case KindMalformed:
		return target == ErrMalformedResponse
	case KindNetwork:
		return target == ErrServiceUnavailable
	case KindValidation:
		return target == ErrValidation
	case KindServer:
		switch e.Status {
		case http.StatusUnauthorized:
			return target == ErrUnauthorized
		case http.StatusNotFound:
			return target == ErrNotFound
		case http.StatusForbidden:
			return target == ErrForbidden
		case http.StatusConflict:
			return target == ErrConflict
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return target == ErrBadRequest
		}
		return target == ErrBadGateway
	}
	return false
}

func NewAuthError(status int) *APIError {
	return &APIError{Kind: KindAuth, Status: status, Message: MsgSessionExpired}
}

func NewMalformedError(format string, args ...any) *APIError {
	return &APIError{Kind: KindMalformed, Message: MsgMalformed, Err: fmt.Errorf(format, args...)}
}

func NewNetworkError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: MsgNetwork, Err: err}
}

func NewServerError(status int, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("Erro inesperado no servidor (status %d)", status)
	}
	return &APIError{Kind: KindServer, Status: status, Message: message}
}

// KindOf returns the tag of err, or "" when err did not cross the backend boundary.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return KindValidation
	}
	return ""
}

// IsAuth reports whether err means the backend rejected the session.
func IsAuth(err error) bool { return KindOf(err) == KindAuth }

// UserMessage is the text a screen shows for err.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Summary()
	}
	return "Não foi possível concluir a operação."
}

// ValidationError carries per-field messages; it is raised before any network call.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// OrNil returns nil when no field failed, so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range e.keys() {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Summary joins the field messages for a single notice line.
func (e *ValidationError) Summary() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range e.keys() {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, " ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrServiceUnavailable) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrBadGateway) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
