package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorMapsToSentinels(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		target error
		status int
	}{
		{"auth", NewAuthError(401), ErrUnauthorized, http.StatusUnauthorized},
		{"malformed", NewMalformedError("registros missing"), ErrMalformedResponse, http.StatusBadGateway},
		{"network", NewNetworkError(errors.New("dial tcp: refused")), ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"server 404", NewServerError(404, "Colaborador não encontrado"), ErrNotFound, http.StatusNotFound},
		{"server 500", NewServerError(500, ""), ErrBadGateway, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("loading screen: %w", tc.err)
			assert.ErrorIs(t, wrapped, tc.target)
			assert.Equal(t, tc.status, HTTPStatusFromError(wrapped))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, MsgSessionExpired, UserMessage(NewAuthError(401)))
	assert.Equal(t, MsgNetwork, UserMessage(fmt.Errorf("x: %w", NewNetworkError(errors.New("eof")))))
	assert.Equal(t, "Erro inesperado no servidor (status 503)", UserMessage(NewServerError(503, "")))
	assert.Equal(t, "Setor duplicado", UserMessage(NewServerError(409, "Setor duplicado")))

	v := NewValidationError()
	v.Add("nome", "Informe o nome.")
	v.Add("email", "E-mail inválido.")
	assert.Equal(t, "E-mail inválido. Informe o nome.", UserMessage(v))
}

func TestValidationError(t *testing.T) {
	v := NewValidationError()
	assert.NoError(t, v.OrNil())

	v.Add("email", "E-mail inválido")
	v.Add("email", "ignored second message")
	v.Add("password", "Senha fraca")

	err := v.OrNil()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "validation failed: email: E-mail inválido; password: Senha fraca", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatusFromError(err))
}
