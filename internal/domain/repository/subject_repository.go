package repository

import (
	"context"
	"fmt"
	"strconv"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/platform/backend"
)

// SubjectRepository covers subjects and the checklist fields they own.
type SubjectRepository interface {
	List(ctx context.Context, token string) ([]model.Subject, error)
	Save(ctx context.Context, token string, in model.SubjectInput) (*model.Subject, error)
	Delete(ctx context.Context, token string, id int) error

	ListFields(ctx context.Context, token string, subjectID int) ([]model.ChecklistField, error)
	SaveField(ctx context.Context, token string, in model.ChecklistFieldInput) error
	DeleteField(ctx context.Context, token string, id int) error
}

type apiSubjectRepository struct {
	apiBase
}

func NewApiSubjectRepository(client *backend.Client) SubjectRepository {
	return &apiSubjectRepository{apiBase{client: client}}
}

func (r *apiSubjectRepository) List(ctx context.Context, token string) ([]model.Subject, error) {
	body, err := r.list(ctx, token, "/assuntos", nil)
	if err != nil {
		return nil, fmt.Errorf("apiSubjectRepository.List: %w", err)
	}
	return backend.DecodeList[model.Subject](body)
}

func (r *apiSubjectRepository) Save(ctx context.Context, token string, in model.SubjectInput) (*model.Subject, error) {
	form := &backend.MultipartForm{}
	if in.ID != 0 {
		form.Set("id", itoa(in.ID))
	}
	form.Set("nome", in.Nome)
	attachUpload(form, in.Icon, "icone")

	body, err := r.post(ctx, token, "/assuntos", nil, form)
	if err != nil {
		return nil, fmt.Errorf("apiSubjectRepository.Save: %w", err)
	}
	return decodeSaved[model.Subject](body)
}

func (r *apiSubjectRepository) Delete(ctx context.Context, token string, id int) error {
	if err := r.deleteByID(ctx, token, "/assuntos", id); err != nil {
		return fmt.Errorf("apiSubjectRepository.Delete: %w", err)
	}
	return nil
}

func (r *apiSubjectRepository) ListFields(ctx context.Context, token string, subjectID int) ([]model.ChecklistField, error) {
	body, err := r.list(ctx, token, "/assuntos/"+itoa(subjectID)+"/checklist", nil)
	if err != nil {
		return nil, fmt.Errorf("apiSubjectRepository.ListFields: %w", err)
	}
	return backend.DecodeList[model.ChecklistField](body)
}

// SaveField does not decode the answer: field lists are always refetched after a mutation.
func (r *apiSubjectRepository) SaveField(ctx context.Context, token string, in model.ChecklistFieldInput) error {
	form := &backend.MultipartForm{}
	if in.ID != 0 {
		form.Set("id", itoa(in.ID))
	}
	form.Set("id_assunto", itoa(in.SubjectID))
	form.Set("label", in.Label)
	form.Set("tipo", in.Tipo)
	form.Set("pontuacao_maxima", strconv.FormatFloat(in.MaxScore, 'f', -1, 64))

	if _, err := r.post(ctx, token, "/checklist", nil, form); err != nil {
		return fmt.Errorf("apiSubjectRepository.SaveField: %w", err)
	}
	return nil
}

func (r *apiSubjectRepository) DeleteField(ctx context.Context, token string, id int) error {
	if err := r.deleteByID(ctx, token, "/checklist", id); err != nil {
		return fmt.Errorf("apiSubjectRepository.DeleteField: %w", err)
	}
	return nil
}
