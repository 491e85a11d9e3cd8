package service

import (
	"context"
	"tecrank_admin/internal/app/screen"
	"tecrank_admin/internal/app/session"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/export"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresTokenAndGoesHome(t *testing.T) {
	_, mgr, _ := newTestSession(t)
	repo := &fakeAuthRepo{resp: &model.LoginResponse{AccessToken: "jwt-abc", Email: "a@b.com", Nome: "Ana Souza", IDIxc: "42"}}
	svc := NewAuthService(repo, mgr)

	res, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, HomeRoute, res.Redirect)
	assert.Equal(t, model.Credentials{Email: "a@b.com", Password: "secret1"}, repo.got)

	user, err := res.Session.User(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "jwt-abc", user.Token)
	assert.Equal(t, "Ana Souza", user.UserName)
	assert.Equal(t, model.RoleViewer, user.Role)
	assert.Equal(t, "42", user.IDIxc)
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	_, mgr, _ := newTestSession(t)
	repo := &fakeAuthRepo{}
	svc := NewAuthService(repo, mgr)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "not-an-email", Password: "abc"})
	require.ErrorIs(t, err, common.ErrValidation)
	var v *common.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, MsgInvalidEmail, v.Fields["email"])
	assert.Equal(t, MsgInvalidPassword, v.Fields["password"])
	assert.Zero(t, repo.calls)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "somenteletras"})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, repo.calls)
}

func TestLoginRejectedByBackend(t *testing.T) {
	_, mgr, _ := newTestSession(t)
	svc := NewAuthService(&fakeAuthRepo{err: common.NewServerError(401, "E-mail ou senha inválidos.")}, mgr)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, "E-mail ou senha inválidos.", common.UserMessage(err))
}

func TestLogoutRunsHooks(t *testing.T) {
	ctx, mgr, s := newTestSession(t)
	svc := NewAuthService(&fakeAuthRepo{}, mgr)
	var forgotten []string
	svc.OnLogout(func(sid string) { forgotten = append(forgotten, sid) })

	require.NoError(t, svc.Logout(ctx, s))
	assert.False(t, s.IsLoggedIn(ctx))
	assert.Equal(t, []string{s.ID()}, forgotten)
}

func TestLoginReplacesBoundSession(t *testing.T) {
	ctx, mgr, old := newTestSession(t)
	sectors := NewSectorService(&fakeSectorRepo{items: []model.Sector{{ID: 1, Nome: "Suporte"}}})
	require.True(t, sectors.List(ctx, screen.Query{}).Outcome.Ready())
	require.Equal(t, 1, sectors.screens.Len())

	svc := NewAuthService(&fakeAuthRepo{resp: &model.LoginResponse{AccessToken: "jwt-new", Email: "a@b.com"}}, mgr)
	svc.OnLogout(sectors.Forget)

	res, err := svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEqual(t, old.ID(), res.Session.ID())
	assert.True(t, res.Session.IsLoggedIn(ctx))
	assert.False(t, old.IsLoggedIn(ctx), "replaced session is cleared from storage")
	assert.Zero(t, sectors.screens.Len(), "replaced session's screens are forgotten")
}

func TestFailedLoginKeepsBoundSession(t *testing.T) {
	ctx, mgr, old := newTestSession(t)
	svc := NewAuthService(&fakeAuthRepo{err: common.NewServerError(401, "E-mail ou senha inválidos.")}, mgr)
	_, err := svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, old.IsLoggedIn(ctx))
}

func TestIdleScreensAreForgotten(t *testing.T) {
	ctx, mgr, _ := newTestSession(t)
	sectors := NewSectorService(&fakeSectorRepo{items: []model.Sector{{ID: 1, Nome: "Suporte"}}})
	sectors.ForgetIdle(time.Millisecond)

	for i := 0; i < 50; i++ {
		s := mgr.New()
		require.NoError(t, s.Set(ctx, model.Identity{Token: "tok"}))
		sctx := session.WithSession(context.Background(), s)
		require.True(t, sectors.List(sctx, screen.Query{}).Outcome.Ready())
		require.NoError(t, s.Clear(sctx))
	}
	time.Sleep(10 * time.Millisecond)

	require.True(t, sectors.List(ctx, screen.Query{}).Outcome.Ready())
	assert.Equal(t, 1, sectors.screens.Len(), "only the session still in use is kept")
}

func TestConfirmationBelongsToSession(t *testing.T) {
	ctx, mgr, _ := newTestSession(t)
	repo := &fakeSectorRepo{items: []model.Sector{{ID: 1, Nome: "Suporte"}}}
	svc := NewSectorService(repo)
	c, err := svc.ConfirmDelete(ctx, 1)
	require.NoError(t, err)

	other := mgr.New()
	require.NoError(t, other.Set(ctx, model.Identity{Token: "tok"}))
	octx := session.WithSession(context.Background(), other)
	res := svc.Delete(octx, 1, c.Token)
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, common.ErrValidation)

	assert.True(t, svc.Delete(ctx, 1, c.Token).OK())
}

func newCollaboratorFixture() (*fakeCollaboratorRepo, *fakeSectorRepo) {
	return &fakeCollaboratorRepo{
			items: []model.Collaborator{
				{ID: 1, Nome: "Ana Souza", SectorID: 1},
				{ID: 2, Nome: "Bruno Lima", SectorID: 2},
				{ID: 3, Nome: "Carla Dias", SectorID: 1},
			},
			history: map[int][]model.HistoryEntry{1: {{ID: 9, Tipo: "geral", Pontuacao: 2}}},
		}, &fakeSectorRepo{
			items: []model.Sector{{ID: 1, Nome: "Suporte"}, {ID: 2, Nome: "Campo"}},
		}
}

func TestCollaboratorListLoadsBothAndProjects(t *testing.T) {
	ctx, _, _ := newTestSession(t)
	collabs, sectors := newCollaboratorFixture()
	svc := NewCollaboratorService(collabs, sectors)

	scr := svc.List(ctx, screen.Query{Term: "SOUZA"})
	require.True(t, scr.Outcome.Ready())
	require.Len(t, scr.View.Items, 1)
	assert.Equal(t, "Suporte", scr.View.Items[0].Setor)
	assert.Len(t, scr.Sectors, 2)
	assert.Equal(t, []string{"tok"}, collabs.tokens)

	scr = svc.List(ctx, screen.Query{Status: "1", Desc: true})
	require.Len(t, scr.View.Items, 2)
	assert.Equal(t, "Carla Dias", scr.View.Items[0].Nome)

	scr = svc.List(ctx, screen.Query{Term: "zzz"})
	assert.Equal(t, `Nenhum resultado para "zzz".`, scr.View.Empty)
}

func TestCollaboratorListFailsWhenSectorsFail(t *testing.T) {
	ctx, _, _ := newTestSession(t)
	collabs, sectors := newCollaboratorFixture()
	sectors.err = common.NewServerError(500, "")
	scr := NewCollaboratorService(collabs, sectors).List(ctx, screen.Query{})
	assert.Equal(t, screen.StateError, scr.Outcome.State)
	assert.Equal(t, 1, collabs.lists)
	assert.Empty(t, scr.View.Items)
}

func TestCollaboratorMutations(t *testing.T) {
	ctx, _, _ := newTestSession(t)
	collabs, sectors := newCollaboratorFixture()
	svc := NewCollaboratorService(collabs, sectors)
	require.True(t, svc.List(ctx, screen.Query{}).Outcome.Ready())

	res := svc.Save(ctx, model.CollaboratorInput{Nome: "  "})
	require.ErrorIs(t, res.Err, common.ErrValidation)
	assert.Empty(t, collabs.saved)

	res = svc.Save(ctx, model.CollaboratorInput{Nome: "Diego", SectorID: 2})
	require.True(t, res.OK())
	assert.Equal(t, 2, collabs.lists, "save refetches")
	assert.Len(t, svc.Items(ctx), 4)

	res = svc.Delete(ctx, 2, "")
	require.ErrorIs(t, res.Err, common.ErrValidation)
	assert.Empty(t, collabs.deleted)

	c, err := svc.ConfirmDelete(ctx, 2)
	require.NoError(t, err)
	assert.Contains(t, c.Prompt, "Bruno Lima")
	res = svc.Delete(ctx, 2, c.Token)
	require.True(t, res.OK())
	assert.Equal(t, []int{2}, collabs.deleted)
	assert.Equal(t, 2, collabs.lists, "delete splices")
	assert.Len(t, svc.Items(ctx), 3)
}

func TestCollaboratorDetailDropsStaleResult(t *testing.T) {
	ctx, _, _ := newTestSession(t)
	collabs, sectors := newCollaboratorFixture()
	gate := make(chan struct{})
	collabs.gate = map[int]chan struct{}{1: gate}
	svc := NewCollaboratorService(collabs, sectors)

	first := make(chan error, 1)
	go func() {
		_, err := svc.Detail(ctx, 1)
		first <- err
	}()
	require.Eventually(t, func() bool {
		st := svc.screens.For(sessionID(ctx))
		k, _, _ := st.detail.Current()
		return k == 1
	}, time.Second, time.Millisecond)

	d, err := svc.Detail(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Carla Dias", d.Collaborator.Nome)

	close(gate)
	assert.ErrorIs(t, <-first, screen.ErrStale)

	_, cur, _ := svc.screens.For(sessionID(ctx)).detail.Current()
	assert.Equal(t, 3, cur.Collaborator.ID)
}

func TestCollaboratorExpandRowFlags(t *testing.T) {
	ctx, _, _ := newTestSession(t)
	collabs, sectors := newCollaboratorFixture()
	svc := NewCollaboratorService(collabs, sectors)

	h, err := svc.Expand(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, h, 1)
	assert.False(t, svc.RowLoading(ctx, 1))

	st := svc.screens.For(sessionID(ctx))
	require.True(t, st.rows.Begin("2"))
	_, err = svc.Expand(ctx, 2)
	assert.ErrorIs(t, err, common.ErrConflict)
	_, err = svc.Expand(ctx, 1)
	assert.NoError(t, err, "other rows are not blocked")
}

func TestSectorSaveSplices(t *testing.T) {
	ctx, _, _ := newTestSession(t)
	repo := &fakeSectorRepo{items: []model.Sector{{ID: 1, Nome: "Suporte"}}}
	svc := NewSectorService(repo)
	require.True(t, svc.List(ctx, screen.Query{}).Outcome.Ready())

	res := svc.Save(ctx, model.Sector{Nome: " Estoque "})
	require.True(t, res.OK())
	assert.Equal(t, 1, repo.lists)
	names := []string{}
	for _, s := range svc.Items(ctx) {
		names = append(names, s.Nome)
	}
	assert.Equal(t, []string{"Suporte", "Estoque"}, names)

	c, err := svc.ConfirmDelete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, `Tem certeza que deseja excluir o setor "Suporte"?`, c.Prompt)

	repo.err = common.NewNetworkError(assert.AnError)
	res = svc.Delete(ctx, 1, c.Token)
	assert.False(t, res.OK())
	assert.Equal(t, common.MsgNetwork, res.Notice)
	assert.Len(t, svc.Items(ctx), 2, "failed delete keeps data")
}

func TestChecklistFieldsAlwaysRefetch(t *testing.T) {
	ctx, _, _ := newTestSession(t)
	repo := &fakeSubjectRepo{
		subjects: []model.Subject{{ID: 7, Nome: "Instalação"}},
		fields:   map[int][]model.ChecklistField{7: {{ID: 1, SubjectID: 7, Label: "Usou EPI", Tipo: model.FieldTypeBoolean, MaxScore: 1}}},
	}
	svc := NewSubjectService(repo)

	scr := svc.Checklist(ctx, 7, screen.Query{})
	require.True(t, scr.Outcome.Ready())
	assert.Equal(t, "Instalação", scr.Subject.Nome)
	assert.Len(t, scr.View.Items, 1)

	res := svc.SaveField(ctx, model.ChecklistFieldInput{SubjectID: 7, Label: "Obs", Tipo: "xml", MaxScore: 0})
	var v *common.ValidationError
	require.ErrorAs(t, res.Err, &v)
	assert.Contains(t, v.Fields, "tipo")
	assert.Contains(t, v.Fields, "pontuacao_maxima")

	res = svc.SaveField(ctx, model.ChecklistFieldInput{SubjectID: 7, Label: "Obs", Tipo: ParseFieldType("Texto"), MaxScore: ParseScore("2,5")})
	require.True(t, res.OK())
	assert.Equal(t, 2, repo.fieldLists)
	assert.Len(t, svc.Fields(ctx, 7), 2)
	assert.Equal(t, 2.5, repo.savedField[0].MaxScore)

	scr = svc.Checklist(ctx, 99, screen.Query{})
	assert.Equal(t, screen.StateError, scr.Outcome.State)
}

func TestTutorialRequiresDriveLinks(t *testing.T) {
	ctx, _, _ := newTestSession(t)
	repo := &fakeTutorialRepo{}
	svc := NewTutorialService(repo)

	in := model.TutorialInput{Titulo: "Fibra", Autor: "Ana", URLView: "https://example.com/x", URLDownload: "https://drive.google.com/uc?export=download&id=abc_123"}
	res := svc.Save(ctx, in)
	var v *common.ValidationError
	require.ErrorAs(t, res.Err, &v)
	assert.Equal(t, MsgInvalidLink, v.Fields["url_visualizacao"])
	assert.NotContains(t, v.Fields, "url_download")
	assert.Zero(t, repo.saves)

	in.URLView = "https://drive.google.com/file/d/1AbC-xyz/view?usp=sharing"
	res = svc.Save(ctx, in)
	require.True(t, res.OK())
	assert.Equal(t, 1, repo.saves)
}

func TestValidDriveURL(t *testing.T) {
	assert.True(t, ValidDriveURL("https://drive.google.com/file/d/abc/preview"))
	assert.True(t, ValidDriveURL("https://drive.google.com/uc?id=abc"))
	assert.False(t, ValidDriveURL("http://drive.google.com/file/d/abc/view"))
	assert.False(t, ValidDriveURL("https://drive.google.com.evil.io/file/d/abc"))
	assert.False(t, ValidDriveURL(""))
}

func TestEvaluationSubmitFiltersFlags(t *testing.T) {
	ctx, _, _ := newTestSession(t)
	repo := &fakeEvaluationRepo{}
	svc := NewEvaluationService(repo)

	_, err := svc.Submit(ctx, model.Evaluation{Variant: "x", Date: "19/10/2026"})
	var v *common.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Len(t, v.Fields, 4)
	assert.Nil(t, repo.payload)

	payload, err := svc.Submit(ctx, model.Evaluation{
		Variant: model.EvaluationN2, CollaboratorID: 3, Evaluator: "Bruno", Date: "2026-10-19",
		Flags: map[string]bool{"pontualidade_add": true, "atraso_sub": false, "uniforme_sub": true, "outro": true},
	})
	require.NoError(t, err)
	assert.Equal(t, model.EvaluationN2, repo.variant)
	assert.Equal(t, []string{"pontualidade_add", "uniforme_sub"}, payload.FlagNames())
}

func TestDailyRankingDefaultsDate(t *testing.T) {
	ctx, _, s := newTestSession(t)
	repo := &fakeRankingRepo{entries: []model.RankingEntry{
		{Nome: "B", Colocacao: 2, Setores: []model.SectorScore{{Setor: "Suporte", Media: 7, Avaliacoes: 2}}},
		{Nome: "A", Colocacao: 1, Setores: []model.SectorScore{{Setor: "Suporte", Media: 9, Avaliacoes: 3}, {Setor: "Campo", Media: 8, Avaliacoes: 1}}},
	}}
	svc := NewRankingService(repo)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }

	scr := svc.Daily(ctx, "", screen.Query{})
	require.True(t, scr.Outcome.Ready())
	assert.Equal(t, "2026-10-19", scr.Period)
	assert.Equal(t, "A", scr.View.Items[0].Nome)
	assert.Equal(t, []model.SectorTotal{{Setor: "Campo", Avaliacoes: 1, Soma: 8}, {Setor: "Suporte", Avaliacoes: 5, Soma: 16}}, scr.Sectors)

	require.NoError(t, s.SetSelectedDate(ctx, "2026-10-01"))
	scr = svc.Daily(ctx, "", screen.Query{})
	assert.Equal(t, "2026-10-01", scr.Period)

	scr = svc.Daily(ctx, "2026-09-30", screen.Query{})
	assert.Equal(t, "2026-09-30", scr.Period)
	prefs, _ := s.Preferences(ctx)
	assert.Equal(t, "2026-09-30", prefs.SelectedDate)

	scr = svc.Daily(ctx, "ontem", screen.Query{})
	assert.Equal(t, screen.StateError, scr.Outcome.State)
	assert.Equal(t, []string{"2026-10-19", "2026-10-01", "2026-09-30"}, repo.periods)

	scr = svc.Monthly(ctx, "", screen.Query{})
	assert.Equal(t, "2026-10", scr.Period)
}

func TestExportReport(t *testing.T) {
	ctx, _, _ := newTestSession(t)
	evals := &fakeEvaluationRepo{rows: []model.ReportRow{{Colaborador: "Ana", Observacao: "atrasou, mas\nresolveu"}}}
	subjects := &fakeSubjectRepo{subjects: []model.Subject{{ID: 4, Nome: "Troca de Roteador"}}}
	svc := NewExportService(evals, subjects)

	rep, err := svc.Report(ctx, 4, "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, "avaliacoes-troca-de-roteador-2026-10-19.csv", rep.Filename)
	assert.Equal(t, 1, rep.Rows)
	records, err := export.Parse(string(rep.Data))
	require.NoError(t, err)
	assert.Equal(t, "atrasou, mas\nresolveu", records[1][5])

	_, err = svc.Report(ctx, 5, "2026-10-19")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.Report(ctx, 0, "x")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestTokenFromSession(t *testing.T) {
	assert.Empty(t, tokenFrom(context.Background()))
	assert.Empty(t, sessionID(context.Background()))
	ctx, _, s := newTestSession(t)
	assert.Equal(t, "tok", tokenFrom(ctx))
	assert.Equal(t, s.ID(), sessionID(ctx))
}
