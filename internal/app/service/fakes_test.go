package service

import (
	"context"
	"sync"
	"tecrank_admin/internal/app/session"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/domain/repository"
	"testing"
)

func newTestSession(t *testing.T) (context.Context, *session.Manager, *session.Session) {
	t.Helper()
	var key [32]byte
	copy(key[:], "service-test-key-service-test-ke")
	mgr := session.NewManager(repository.NewMemorySessionRepository(), key)
	s := mgr.New()
	if err := s.Set(context.Background(), model.Identity{Token: "tok", UserName: "Ana"}); err != nil {
		t.Fatal(err)
	}
	return session.WithSession(context.Background(), s), mgr, s
}

type fakeAuthRepo struct {
	calls int
	resp  *model.LoginResponse
	err   error
	got   model.Credentials
}

func (f *fakeAuthRepo) Login(ctx context.Context, creds model.Credentials) (*model.LoginResponse, error) {
	f.calls++
	f.got = creds
	return f.resp, f.err
}

type fakeCollaboratorRepo struct {
	mu      sync.Mutex
	items   []model.Collaborator
	history map[int][]model.HistoryEntry
	lists   int
	tokens  []string
	gate    map[int]chan struct{}
	saveErr error
	saved   []model.CollaboratorInput
	deleted []int
	nextID  int
}

func (f *fakeCollaboratorRepo) List(ctx context.Context, token string) ([]model.Collaborator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	f.tokens = append(f.tokens, token)
	return append([]model.Collaborator(nil), f.items...), nil
}

func (f *fakeCollaboratorRepo) Get(ctx context.Context, token string, id int) (*model.Collaborator, error) {
	f.mu.Lock()
	gate := f.gate[id]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.items {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, common.NewServerError(404, "Colaborador não encontrado")
}

func (f *fakeCollaboratorRepo) Save(ctx context.Context, token string, in model.CollaboratorInput) (*model.Collaborator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, in)
	if in.ID == 0 {
		f.nextID++
		in.ID = 100 + f.nextID
	}
	c := model.Collaborator{ID: in.ID, Nome: in.Nome, SectorID: in.SectorID}
	f.items = append(f.items, c)
	return &c, nil
}

func (f *fakeCollaboratorRepo) Delete(ctx context.Context, token string, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCollaboratorRepo) History(ctx context.Context, token string, id int) ([]model.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history[id], nil
}

type fakeSectorRepo struct {
	mu    sync.Mutex
	items []model.Sector
	err   error
	lists int
}

func (f *fakeSectorRepo) List(ctx context.Context, token string) ([]model.Sector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Sector(nil), f.items...), nil
}

func (f *fakeSectorRepo) Save(ctx context.Context, token string, s model.Sector) (*model.Sector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == 0 {
		s.ID = len(f.items) + 10
	}
	return &s, nil
}

func (f *fakeSectorRepo) Delete(ctx context.Context, token string, id int) error { return f.err }

type fakeSubjectRepo struct {
	subjects   []model.Subject
	fields     map[int][]model.ChecklistField
	fieldLists int
	savedField []model.ChecklistFieldInput
}

func (f *fakeSubjectRepo) List(ctx context.Context, token string) ([]model.Subject, error) {
	return append([]model.Subject(nil), f.subjects...), nil
}

func (f *fakeSubjectRepo) Save(ctx context.Context, token string, in model.SubjectInput) (*model.Subject, error) {
	s := model.Subject{ID: len(f.subjects) + 1, Nome: in.Nome}
	f.subjects = append(f.subjects, s)
	return &s, nil
}

func (f *fakeSubjectRepo) Delete(ctx context.Context, token string, id int) error { return nil }

func (f *fakeSubjectRepo) ListFields(ctx context.Context, token string, subjectID int) ([]model.ChecklistField, error) {
	f.fieldLists++
	return append([]model.ChecklistField(nil), f.fields[subjectID]...), nil
}

func (f *fakeSubjectRepo) SaveField(ctx context.Context, token string, in model.ChecklistFieldInput) error {
	f.savedField = append(f.savedField, in)
	f.fields[in.SubjectID] = append(f.fields[in.SubjectID], model.ChecklistField{ID: 50, SubjectID: in.SubjectID, Label: in.Label, Tipo: in.Tipo, MaxScore: in.MaxScore})
	return nil
}

func (f *fakeSubjectRepo) DeleteField(ctx context.Context, token string, id int) error { return nil }

type fakeTutorialRepo struct {
	items []model.Tutorial
	saves int
}

func (f *fakeTutorialRepo) List(ctx context.Context, token string) ([]model.Tutorial, error) {
	return append([]model.Tutorial(nil), f.items...), nil
}

func (f *fakeTutorialRepo) Save(ctx context.Context, token string, in model.TutorialInput) error {
	f.saves++
	return nil
}

func (f *fakeTutorialRepo) Delete(ctx context.Context, token string, id int) error { return nil }

type fakeEvaluationRepo struct {
	variant model.EvaluationVariant
	payload *model.EvaluationPayload
	rows    []model.ReportRow
}

func (f *fakeEvaluationRepo) Submit(ctx context.Context, token string, variant model.EvaluationVariant, payload model.EvaluationPayload) error {
	f.variant = variant
	f.payload = &payload
	return nil
}

func (f *fakeEvaluationRepo) Report(ctx context.Context, token string, subjectID int, date string) ([]model.ReportRow, error) {
	return f.rows, nil
}

type fakeRankingRepo struct {
	entries []model.RankingEntry
	periods []string
}

func (f *fakeRankingRepo) Daily(ctx context.Context, token, date string) ([]model.RankingEntry, error) {
	f.periods = append(f.periods, date)
	return f.entries, nil
}

func (f *fakeRankingRepo) Monthly(ctx context.Context, token, month string) ([]model.RankingEntry, error) {
	f.periods = append(f.periods, month)
	return f.entries, nil
}
