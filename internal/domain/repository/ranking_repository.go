package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/platform/backend"
	"time"
)

type RankingRepository interface {
	Daily(ctx context.Context, token, date string) ([]model.RankingEntry, error)
	Monthly(ctx context.Context, token, month string) ([]model.RankingEntry, error)
}

// apiRankingRepository calls the two aggregation endpoints, which are much slower than
// everything else and get their own timeout.
type apiRankingRepository struct {
	apiBase
	slowTimeout time.Duration
}

func NewApiRankingRepository(client *backend.Client, slowTimeout time.Duration) RankingRepository {
	return &apiRankingRepository{apiBase: apiBase{client: client}, slowTimeout: slowTimeout}
}

func (r *apiRankingRepository) fetch(ctx context.Context, token, path, param, value string) ([]model.RankingEntry, error) {
	q := url.Values{}
	q.Set(param, value)
	resp, err := r.client.Do(ctx, backend.Request{
		Method:  http.MethodGet,
		Path:    path,
		Query:   q,
		Token:   token,
		Timeout: r.slowTimeout,
	})
	if err != nil {
		return nil, err
	}
	return backend.DecodeList[model.RankingEntry](resp.Body)
}

func (r *apiRankingRepository) Daily(ctx context.Context, token, date string) ([]model.RankingEntry, error) {
	entries, err := r.fetch(ctx, token, "/ranking/diario", "data", date)
	if err != nil {
		return nil, fmt.Errorf("apiRankingRepository.Daily: %w", err)
	}
	return entries, nil
}

func (r *apiRankingRepository) Monthly(ctx context.Context, token, month string) ([]model.RankingEntry, error) {
	entries, err := r.fetch(ctx, token, "/ranking/mensal", "mes", month)
	if err != nil {
		return nil, fmt.Errorf("apiRankingRepository.Monthly: %w", err)
	}
	return entries, nil
}
