package service

import (
	"context"
	"strconv"
	"strings"
	"tecrank_admin/internal/app/screen"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/domain/repository"
	"time"
)

const KindCollaborator = "o colaborador"

type collaboratorScreens struct {
	list   *screen.Collection[model.Collaborator]
	detail screen.Detail[int, model.CollaboratorDetail]
	rows   screen.Rows
}

type CollaboratorService struct {
	collabRepo repository.CollaboratorRepository
	sectorRepo repository.SectorRepository
	screens    *screen.Registry[collaboratorScreens]
}

func NewCollaboratorService(collabRepo repository.CollaboratorRepository, sectorRepo repository.SectorRepository) *CollaboratorService {
	s := &CollaboratorService{collabRepo: collabRepo, sectorRepo: sectorRepo}
	s.screens = screen.NewRegistry(func() *collaboratorScreens {
		return &collaboratorScreens{
			list: screen.NewCollection(collaboratorID, func(ctx context.Context) ([]model.Collaborator, error) {
				return s.collabRepo.List(ctx, tokenFrom(ctx))
			}),
		}
	})
	return s
}

func collaboratorID(c model.Collaborator) int { return c.ID }

var collaboratorSpec = screen.Spec[model.Collaborator]{
	Fields: []func(model.Collaborator) string{
		func(c model.Collaborator) string { return c.Nome },
	},
	Status: func(c model.Collaborator) string { return strconv.Itoa(c.SectorID) },
	SortKeys: map[string]func(a, b model.Collaborator) int{
		"nome":  screen.ByString(func(c model.Collaborator) string { return c.Nome }),
		"setor": screen.ByString(func(c model.Collaborator) string { return c.Setor }),
		"id":    screen.By(collaboratorID),
	},
	DefaultSort: "nome",
}

type CollaboratorScreen struct {
	Outcome screen.Outcome                  `json:"-"`
	Sectors []model.Sector                  `json:"setores"`
	View    screen.View[model.Collaborator] `json:"colaboradores"`
}

// List loads collaborators and sectors together. q.Status filters by sector id.
func (s *CollaboratorService) List(ctx context.Context, q screen.Query) CollaboratorScreen {
	st := s.screens.For(sessionID(ctx))
	var sectors []model.Sector
	out := screen.Load(ctx,
		st.list.Fetcher(),
		screen.Into(&sectors, func(ctx context.Context) ([]model.Sector, error) {
			return s.sectorRepo.List(ctx, tokenFrom(ctx))
		}),
	)
	res := CollaboratorScreen{Outcome: out}
	if !out.Ready() {
		return res
	}
	res.Sectors = sectors
	res.View = screen.Project(withSectorNames(st.list.Items(), sectors), q, collaboratorSpec)
	return res
}

func withSectorNames(items []model.Collaborator, sectors []model.Sector) []model.Collaborator {
	names := make(map[int]string, len(sectors))
	for _, sec := range sectors {
		names[sec.ID] = sec.Nome
	}
	for i := range items {
		if items[i].Setor == "" {
			items[i].Setor = names[items[i].SectorID]
		}
	}
	return items
}

// Detail fetches the collaborator and then its history. When a newer Detail call for
// the same session started meanwhile, the result is dropped with screen.ErrStale.
func (s *CollaboratorService) Detail(ctx context.Context, id int) (*model.CollaboratorDetail, error) {
	st := s.screens.For(sessionID(ctx))
	return st.detail.Show(ctx, id, func(ctx context.Context) (*model.CollaboratorDetail, error) {
		var c *model.Collaborator
		var history []model.HistoryEntry
		out := screen.Sequence(ctx,
			screen.Into(&c, func(ctx context.Context) (*model.Collaborator, error) {
				return s.collabRepo.Get(ctx, tokenFrom(ctx), id)
			}),
			screen.Into(&history, func(ctx context.Context) ([]model.HistoryEntry, error) {
				return s.collabRepo.History(ctx, tokenFrom(ctx), id)
			}),
		)
		if !out.Ready() {
			return nil, out.Err
		}
		if c == nil {
			return nil, common.NewMalformedError("collaborator %d: empty record", id)
		}
		return &model.CollaboratorDetail{Collaborator: *c, History: history}, nil
	})
}

// Expand loads one row's history without blocking other rows. A second request for a
// row that is still loading is refused with common.ErrConflict.
func (s *CollaboratorService) Expand(ctx context.Context, id int) ([]model.HistoryEntry, error) {
	st := s.screens.For(sessionID(ctx))
	key := strconv.Itoa(id)
	if !st.rows.Begin(key) {
		return nil, common.Errorf("row %d is already loading: %w", id, common.ErrConflict)
	}
	defer st.rows.End(key)
	return s.collabRepo.History(ctx, tokenFrom(ctx), id)
}

// RowLoading reports whether Expand is running for id in the caller's session.
func (s *CollaboratorService) RowLoading(ctx context.Context, id int) bool {
	return s.screens.For(sessionID(ctx)).rows.Loading(strconv.Itoa(id))
}

func validateCollaborator(in model.CollaboratorInput) error {
	v := common.NewValidationError()
	if blank(in.Nome) {
		v.Add("nome", "Informe o nome do colaborador.")
	}
	if in.SectorID <= 0 {
		v.Add("id_setor", "Selecione um setor.")
	}
	if in.Image != nil && len(in.Image.Data) > 0 && !strings.HasPrefix(in.Image.ContentType, "image/") {
		v.Add("imagem", "A foto deve ser uma imagem.")
	}
	return v.OrNil()
}

// Save creates or updates a collaborator and refetches the list, since the server
// assigns the stored image URL.
func (s *CollaboratorService) Save(ctx context.Context, in model.CollaboratorInput) screen.Result {
	in.Nome = strings.TrimSpace(in.Nome)
	if err := validateCollaborator(in); err != nil {
		return rejected(err)
	}
	st := s.screens.For(sessionID(ctx))
	return st.list.Apply(ctx, screen.Mutation[model.Collaborator]{
		Policy: screen.PolicyRefetch,
		Do: func(ctx context.Context) (*model.Collaborator, error) {
			return s.collabRepo.Save(ctx, tokenFrom(ctx), in)
		},
	})
}

// ConfirmDelete builds the prompt shown before Delete.
func (s *CollaboratorService) ConfirmDelete(ctx context.Context, id int) (screen.Confirmation, error) {
	st := s.screens.For(sessionID(ctx))
	if c, ok := find(st.list.Items(), id, collaboratorID); ok {
		return screen.Confirm(sessionID(ctx), KindCollaborator, id, c.Nome), nil
	}
	c, err := s.collabRepo.Get(ctx, tokenFrom(ctx), id)
	if err != nil {
		return screen.Confirmation{}, err
	}
	return screen.Confirm(sessionID(ctx), KindCollaborator, id, c.Nome), nil
}

func (s *CollaboratorService) Delete(ctx context.Context, id int, confirmation string) screen.Result {
	if err := requireConfirmed(ctx, KindCollaborator, id, confirmation); err != nil {
		return rejected(err)
	}
	st := s.screens.For(sessionID(ctx))
	return st.list.Apply(ctx, screen.Mutation[model.Collaborator]{
		Policy:  screen.PolicySplice,
		Removes: id,
		Do: func(ctx context.Context) (*model.Collaborator, error) {
			return nil, s.collabRepo.Delete(ctx, tokenFrom(ctx), id)
		},
	})
}

// Items is the session's loaded list after a mutation.
func (s *CollaboratorService) Items(ctx context.Context) []model.Collaborator {
	return s.screens.For(sessionID(ctx)).list.Items()
}

func (s *CollaboratorService) Forget(sid string) { s.screens.Drop(sid) }

// ForgetIdle releases the screen state of sessions unused for d.
func (s *CollaboratorService) ForgetIdle(d time.Duration) { s.screens.SetIdleTTL(d) }
