package repository

import (
	"context"
	"fmt"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/platform/backend"
)

type SectorRepository interface {
	List(ctx context.Context, token string) ([]model.Sector, error)
	Save(ctx context.Context, token string, sector model.Sector) (*model.Sector, error)
	Delete(ctx context.Context, token string, id int) error
}

type apiSectorRepository struct {
	apiBase
}

func NewApiSectorRepository(client *backend.Client) SectorRepository {
	return &apiSectorRepository{apiBase{client: client}}
}

func (r *apiSectorRepository) List(ctx context.Context, token string) ([]model.Sector, error) {
	body, err := r.list(ctx, token, "/setores", nil)
	if err != nil {
		return nil, fmt.Errorf("apiSectorRepository.List: %w", err)
	}
	return backend.DecodeList[model.Sector](body)
}

func (r *apiSectorRepository) Save(ctx context.Context, token string, sector model.Sector) (*model.Sector, error) {
	payload := map[string]any{"nome": sector.Nome}
	if sector.ID != 0 {
		payload["id"] = sector.ID
	}
	body, err := r.post(ctx, token, "/setores", payload, nil)
	if err != nil {
		return nil, fmt.Errorf("apiSectorRepository.Save: %w", err)
	}
	return decodeSaved[model.Sector](body)
}

func (r *apiSectorRepository) Delete(ctx context.Context, token string, id int) error {
	if err := r.deleteByID(ctx, token, "/setores", id); err != nil {
		return fmt.Errorf("apiSectorRepository.Delete: %w", err)
	}
	return nil
}
