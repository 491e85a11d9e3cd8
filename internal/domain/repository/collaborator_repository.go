package repository

import (
	"context"
	"fmt"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/platform/backend"
)

type CollaboratorRepository interface {
	List(ctx context.Context, token string) ([]model.Collaborator, error)
	Get(ctx context.Context, token string, id int) (*model.Collaborator, error)
	// Save creates when in.ID is zero and updates otherwise; both go through the shared post endpoint.
	Save(ctx context.Context, token string, in model.CollaboratorInput) (*model.Collaborator, error)
	Delete(ctx context.Context, token string, id int) error
	History(ctx context.Context, token string, id int) ([]model.HistoryEntry, error)
}

type apiCollaboratorRepository struct {
	apiBase
}

func NewApiCollaboratorRepository(client *backend.Client) CollaboratorRepository {
	return &apiCollaboratorRepository{apiBase{client: client}}
}

func (r *apiCollaboratorRepository) List(ctx context.Context, token string) ([]model.Collaborator, error) {
	body, err := r.list(ctx, token, "/colaboradores", nil)
	if err != nil {
		return nil, fmt.Errorf("apiCollaboratorRepository.List: %w", err)
	}
	return backend.DecodeList[model.Collaborator](body)
}

func (r *apiCollaboratorRepository) Get(ctx context.Context, token string, id int) (*model.Collaborator, error) {
	body, err := r.list(ctx, token, "/colaboradores/"+itoa(id), nil)
	if err != nil {
		return nil, fmt.Errorf("apiCollaboratorRepository.Get: %w", err)
	}
	return backend.DecodeOne[model.Collaborator](body)
}

func (r *apiCollaboratorRepository) Save(ctx context.Context, token string, in model.CollaboratorInput) (*model.Collaborator, error) {
	form := &backend.MultipartForm{}
	if in.ID != 0 {
		form.Set("id", itoa(in.ID))
	}
	form.Set("nome", in.Nome)
	form.Set("id_setor", itoa(in.SectorID))
	attachUpload(form, in.Image, "imagem")

	body, err := r.post(ctx, token, "/colaboradores", nil, form)
	if err != nil {
		return nil, fmt.Errorf("apiCollaboratorRepository.Save: %w", err)
	}
	return decodeSaved[model.Collaborator](body)
}

func (r *apiCollaboratorRepository) Delete(ctx context.Context, token string, id int) error {
	if err := r.deleteByID(ctx, token, "/colaboradores", id); err != nil {
		return fmt.Errorf("apiCollaboratorRepository.Delete: %w", err)
	}
	return nil
}

func (r *apiCollaboratorRepository) History(ctx context.Context, token string, id int) ([]model.HistoryEntry, error) {
	body, err := r.list(ctx, token, "/colaboradores/"+itoa(id)+"/historico", nil)
	if err != nil {
		return nil, fmt.Errorf("apiCollaboratorRepository.History: %w", err)
	}
	return backend.DecodeList[model.HistoryEntry](body)
}
