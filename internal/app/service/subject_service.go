package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"tecrank_admin/internal/app/screen"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/domain/repository"
	"time"
)

const (
	KindSubject = "o assunto"
	KindField   = "o campo"
)

type subjectScreens struct {
	list *screen.Collection[model.Subject]

	mu     sync.Mutex
	fields map[int]*screen.Collection[model.ChecklistField]
}

type SubjectService struct {
	subjectRepo repository.SubjectRepository
	screens     *screen.Registry[subjectScreens]
}

func NewSubjectService(subjectRepo repository.SubjectRepository) *SubjectService {
	s := &SubjectService{subjectRepo: subjectRepo}
	s.screens = screen.NewRegistry(func() *subjectScreens {
		return &subjectScreens{
			list: screen.NewCollection(subjectID, func(ctx context.Context) ([]model.Subject, error) {
				return s.subjectRepo.List(ctx, tokenFrom(ctx))
			}),
			fields: make(map[int]*screen.Collection[model.ChecklistField]),
		}
	})
	return s
}

func subjectID(s model.Subject) int      { return s.ID }
func fieldID(f model.ChecklistField) int { return f.ID }

func (s *SubjectService) fieldsOf(ctx context.Context, subject int) *screen.Collection[model.ChecklistField] {
	st := s.screens.For(sessionID(ctx))
	st.mu.Lock()
	defer st.mu.Unlock()
	col, ok := st.fields[subject]
	if !ok {
		col = screen.NewCollection(fieldID, func(ctx context.Context) ([]model.ChecklistField, error) {
			return s.subjectRepo.ListFields(ctx, tokenFrom(ctx), subject)
		})
		st.fields[subject] = col
	}
	return col
}

var subjectSpec = screen.Spec[model.Subject]{
	Fields: []func(model.Subject) string{func(s model.Subject) string { return s.Nome }},
	SortKeys: map[string]func(a, b model.Subject) int{
		"nome": screen.ByString(func(s model.Subject) string { return s.Nome }),
		"id":   screen.By(subjectID),
	},
	DefaultSort: "nome",
}

var fieldSpec = screen.Spec[model.ChecklistField]{
	Fields: []func(model.ChecklistField) string{func(f model.ChecklistField) string { return f.Label }},
	Status: func(f model.ChecklistField) string { return f.Tipo },
	SortKeys: map[string]func(a, b model.ChecklistField) int{
		"id":     screen.By(fieldID),
		"label":  screen.ByString(func(f model.ChecklistField) string { return f.Label }),
		"pontos": screen.By(func(f model.ChecklistField) float64 { return f.MaxScore }),
	},
	DefaultSort: "id",
}

type SubjectScreen struct {
	Outcome screen.Outcome             `json:"-"`
	View    screen.View[model.Subject] `json:"assuntos"`
}

func (s *SubjectService) List(ctx context.Context, q screen.Query) SubjectScreen {
	col := s.screens.For(sessionID(ctx)).list
	out := screen.Load(ctx, col.Fetcher())
	res := SubjectScreen{Outcome: out}
	if out.Ready() {
		res.View = screen.Project(col.Items(), q, subjectSpec)
	}
	return res
}

type ChecklistScreen struct {
	Outcome screen.Outcome                    `json:"-"`
	Subject model.Subject                     `json:"assunto"`
	View    screen.View[model.ChecklistField] `json:"campos"`
}

// Checklist loads the subject list and the subject's fields in parallel.
// q.Status filters by field type.
func (s *SubjectService) Checklist(ctx context.Context, subject int, q screen.Query) ChecklistScreen {
	list := s.screens.For(sessionID(ctx)).list
	fields := s.fieldsOf(ctx, subject)
	out := screen.Load(ctx, list.Fetcher(), fields.Fetcher())
	res := ChecklistScreen{Outcome: out}
	if !out.Ready() {
		return res
	}
	subj, ok := find(list.Items(), subject, subjectID)
	if !ok {
		err := common.Errorf("subject %d: %w", subject, common.ErrNotFound)
		res.Outcome = screen.Outcome{State: screen.StateError, Message: "Assunto não encontrado.", Err: err}
		return res
	}
	res.Subject = subj
	res.View = screen.Project(fields.Items(), q, fieldSpec)
	return res
}

// Save refetches the subject list after a create or update.
func (s *SubjectService) Save(ctx context.Context, in model.SubjectInput) screen.Result {
	in.Nome = strings.TrimSpace(in.Nome)
	if in.Nome == "" {
		v := common.NewValidationError()
		v.Add("nome", "Informe o nome do assunto.")
		return rejected(v)
	}
	col := s.screens.For(sessionID(ctx)).list
	return col.Apply(ctx, screen.Mutation[model.Subject]{
		Policy: screen.PolicyRefetch,
		Do: func(ctx context.Context) (*model.Subject, error) {
			return s.subjectRepo.Save(ctx, tokenFrom(ctx), in)
		},
	})
}

func (s *SubjectService) ConfirmDelete(ctx context.Context, id int) (screen.Confirmation, error) {
	col := s.screens.For(sessionID(ctx)).list
	if _, ok := find(col.Items(), id, subjectID); !ok {
		if out := screen.Load(ctx, col.Fetcher()); !out.Ready() {
			return screen.Confirmation{}, out.Err
		}
	}
	subj, ok := find(col.Items(), id, subjectID)
	if !ok {
		return screen.Confirmation{}, common.Errorf("subject %d: %w", id, common.ErrNotFound)
	}
	return screen.Confirm(sessionID(ctx), KindSubject, id, subj.Nome), nil
}

func (s *SubjectService) Delete(ctx context.Context, id int, confirmation string) screen.Result {
	if err := requireConfirmed(ctx, KindSubject, id, confirmation); err != nil {
		return rejected(err)
	}
	st := s.screens.For(sessionID(ctx))
	res := st.list.Apply(ctx, screen.Mutation[model.Subject]{
		Policy:  screen.PolicySplice,
		Removes: id,
		Do: func(ctx context.Context) (*model.Subject, error) {
			return nil, s.subjectRepo.Delete(ctx, tokenFrom(ctx), id)
		},
	})
	if res.OK() {
		st.mu.Lock()
		delete(st.fields, id)
		st.mu.Unlock()
	}
	return res
}

func validateField(in model.ChecklistFieldInput) error {
	v := common.NewValidationError()
	if in.SubjectID <= 0 {
		v.Add("id_assunto", "Assunto inválido.")
	}
	if blank(in.Label) {
		v.Add("label", "Informe o texto do campo.")
	}
	if in.Tipo != model.FieldTypeBoolean && in.Tipo != model.FieldTypeText {
		v.Add("tipo", "Tipo deve ser boolean ou texto.")
	}
	if in.MaxScore <= 0 {
		v.Add("pontuacao_maxima", "A pontuação máxima deve ser maior que zero.")
	}
	return v.OrNil()
}

// SaveField refetches the subject's fields; the checklist is never patched locally.
func (s *SubjectService) SaveField(ctx context.Context, in model.ChecklistFieldInput) screen.Result {
	in.Label = strings.TrimSpace(in.Label)
	if err := validateField(in); err != nil {
		return rejected(err)
	}
	return s.fieldsOf(ctx, in.SubjectID).Apply(ctx, screen.Mutation[model.ChecklistField]{
		Policy: screen.PolicyRefetch,
		Do: func(ctx context.Context) (*model.ChecklistField, error) {
			return nil, s.subjectRepo.SaveField(ctx, tokenFrom(ctx), in)
		},
	})
}

func (s *SubjectService) ConfirmDeleteField(ctx context.Context, subject, id int) (screen.Confirmation, error) {
	col := s.fieldsOf(ctx, subject)
	if _, ok := find(col.Items(), id, fieldID); !ok {
		if out := screen.Load(ctx, col.Fetcher()); !out.Ready() {
			return screen.Confirmation{}, out.Err
		}
	}
	f, ok := find(col.Items(), id, fieldID)
	if !ok {
		return screen.Confirmation{}, common.Errorf("checklist field %d: %w", id, common.ErrNotFound)
	}
	return screen.Confirm(sessionID(ctx), KindField, id, f.Label), nil
}

func (s *SubjectService) DeleteField(ctx context.Context, subject, id int, confirmation string) screen.Result {
	if err := requireConfirmed(ctx, KindField, id, confirmation); err != nil {
		return rejected(err)
	}
	return s.fieldsOf(ctx, subject).Apply(ctx, screen.Mutation[model.ChecklistField]{
		Policy: screen.PolicyRefetch,
		Do: func(ctx context.Context) (*model.ChecklistField, error) {
			return nil, s.subjectRepo.DeleteField(ctx, tokenFrom(ctx), id)
		},
	})
}

func (s *SubjectService) Items(ctx context.Context) []model.Subject {
	return s.screens.For(sessionID(ctx)).list.Items()
}

func (s *SubjectService) Fields(ctx context.Context, subject int) []model.ChecklistField {
	return s.fieldsOf(ctx, subject).Items()
}

// ParseFieldType accepts the two field types, case-insensitively.
func ParseFieldType(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case model.FieldTypeBoolean, "bool", "booleano":
		return model.FieldTypeBoolean
	case model.FieldTypeText, "text":
		return model.FieldTypeText
	}
	return v
}

// ParseScore reads a max score typed with either decimal separator.
func ParseScore(v string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", "."), 64)
	if err != nil {
		return 0
	}
	return f
}

func (s *SubjectService) Forget(sid string) { s.screens.Drop(sid) }

// ForgetIdle releases the screen state of sessions unused for d.
func (s *SubjectService) ForgetIdle(d time.Duration) { s.screens.SetIdleTTL(d) }
