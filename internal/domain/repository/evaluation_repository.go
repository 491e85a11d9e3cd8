package repository

import (
	"context"
	"fmt"
	"net/url"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/platform/backend"
)

type EvaluationRepository interface {
	Submit(ctx context.Context, token string, variant model.EvaluationVariant, payload model.EvaluationPayload) error
	Report(ctx context.Context, token string, subjectID int, date string) ([]model.ReportRow, error)
}

type apiEvaluationRepository struct {
	apiBase
}

func NewApiEvaluationRepository(client *backend.Client) EvaluationRepository {
	return &apiEvaluationRepository{apiBase{client: client}}
}

func (r *apiEvaluationRepository) Submit(ctx context.Context, token string, variant model.EvaluationVariant, payload model.EvaluationPayload) error {
	if _, err := r.post(ctx, token, "/avaliacoes/"+string(variant), payload, nil); err != nil {
		return fmt.Errorf("apiEvaluationRepository.Submit(%s): %w", variant, err)
	}
	return nil
}

func (r *apiEvaluationRepository) Report(ctx context.Context, token string, subjectID int, date string) ([]model.ReportRow, error) {
	q := url.Values{}
	q.Set("id_assunto", itoa(subjectID))
	q.Set("data", date)
	body, err := r.list(ctx, token, "/avaliacoes/relatorio", q)
	if err != nil {
		return nil, fmt.Errorf("apiEvaluationRepository.Report: %w", err)
	}
	return backend.DecodeList[model.ReportRow](body)
}
