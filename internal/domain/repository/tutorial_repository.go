package repository

import (
	"context"
	"fmt"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/platform/backend"
)

type TutorialRepository interface {
	List(ctx context.Context, token string) ([]model.Tutorial, error)
	Save(ctx context.Context, token string, in model.TutorialInput) error
	Delete(ctx context.Context, token string, id int) error
}

type apiTutorialRepository struct {
	apiBase
}

func NewApiTutorialRepository(client *backend.Client) TutorialRepository {
	return &apiTutorialRepository{apiBase{client: client}}
}

func (r *apiTutorialRepository) List(ctx context.Context, token string) ([]model.Tutorial, error) {
	body, err := r.list(ctx, token, "/tutoriais", nil)
	if err != nil {
		return nil, fmt.Errorf("apiTutorialRepository.List: %w", err)
	}
	return backend.DecodeList[model.Tutorial](body)
}

func (r *apiTutorialRepository) Save(ctx context.Context, token string, in model.TutorialInput) error {
	form := &backend.MultipartForm{}
	if in.ID != 0 {
		form.Set("id", itoa(in.ID))
	}
	form.Set("titulo", in.Titulo)
	form.Set("descricao", in.Descricao)
	form.Set("url_visualizacao", in.URLView)
	form.Set("url_download", in.URLDownload)
	form.Set("autor", in.Autor)
	form.Set("icone", in.Icone)
	attachUpload(form, in.Thumbnail, "miniatura")

	if _, err := r.post(ctx, token, "/tutoriais", nil, form); err != nil {
		return fmt.Errorf("apiTutorialRepository.Save: %w", err)
	}
	return nil
}

func (r *apiTutorialRepository) Delete(ctx context.Context, token string, id int) error {
	if err := r.deleteByID(ctx, token, "/tutoriais", id); err != nil {
		return fmt.Errorf("apiTutorialRepository.Delete: %w", err)
	}
	return nil
}
