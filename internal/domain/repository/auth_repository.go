package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/platform/backend"
)

type AuthRepository interface {
	Login(ctx context.Context, creds model.Credentials) (*model.LoginResponse, error)
}

type apiAuthRepository struct {
	apiBase
}

func NewApiAuthRepository(client *backend.Client) AuthRepository {
	return &apiAuthRepository{apiBase{client: client}}
}

// Login exchanges credentials for a backend token. A 401 here means wrong credentials,
// so it is reported as a server error with the backend's message instead of an expiry.
func (r *apiAuthRepository) Login(ctx context.Context, creds model.Credentials) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	err := r.client.DoJSON(backend.WithoutSession(ctx), backend.Request{Method: http.MethodPost, Path: "/login", JSON: creds}, &resp)
	if err != nil {
		if common.IsAuth(err) {
			return nil, common.NewServerError(http.StatusUnauthorized, "E-mail ou senha inválidos.")
		}
		return nil, fmt.Errorf("apiAuthRepository.Login: %w", err)
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		return nil, common.NewMalformedError("login response without access_token")
	}
	return &resp, nil
}
