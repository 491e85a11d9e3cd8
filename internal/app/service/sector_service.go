package service

import (
	"context"
	"strings"
	"tecrank_admin/internal/app/screen"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/domain/repository"
	"time"
)

const KindSector = "o setor"

type SectorService struct {
	sectorRepo repository.SectorRepository
	screens    *screen.Registry[screen.Collection[model.Sector]]
}

func NewSectorService(sectorRepo repository.SectorRepository) *SectorService {
	s := &SectorService{sectorRepo: sectorRepo}
	s.screens = screen.NewRegistry(func() *screen.Collection[model.Sector] {
		return screen.NewCollection(sectorID, func(ctx context.Context) ([]model.Sector, error) {
			return s.sectorRepo.List(ctx, tokenFrom(ctx))
		})
	})
	return s
}

func sectorID(s model.Sector) int { return s.ID }

var sectorSpec = screen.Spec[model.Sector]{
	Fields: []func(model.Sector) string{func(s model.Sector) string { return s.Nome }},
	SortKeys: map[string]func(a, b model.Sector) int{
		"nome": screen.ByString(func(s model.Sector) string { return s.Nome }),
		"id":   screen.By(sectorID),
	},
	DefaultSort: "nome",
}

type SectorScreen struct {
	Outcome screen.Outcome            `json:"-"`
	View    screen.View[model.Sector] `json:"setores"`
}

func (s *SectorService) List(ctx context.Context, q screen.Query) SectorScreen {
	col := s.screens.For(sessionID(ctx))
	out := screen.Load(ctx, col.Fetcher())
	res := SectorScreen{Outcome: out}
	if out.Ready() {
		res.View = screen.Project(col.Items(), q, sectorSpec)
	}
	return res
}

// Save splices the answer into the list; the backend returns the full {id, nome} record.
func (s *SectorService) Save(ctx context.Context, sector model.Sector) screen.Result {
	sector.Nome = strings.TrimSpace(sector.Nome)
	if sector.Nome == "" {
		v := common.NewValidationError()
		v.Add("nome", "Informe o nome do setor.")
		return rejected(v)
	}
	col := s.screens.For(sessionID(ctx))
	return col.Apply(ctx, screen.Mutation[model.Sector]{
		Policy: screen.PolicySplice,
		Do: func(ctx context.Context) (*model.Sector, error) {
			saved, err := s.sectorRepo.Save(ctx, tokenFrom(ctx), sector)
			if err != nil {
				return nil, err
			}
			if saved == nil || saved.ID == 0 {
				return nil, common.NewMalformedError("sector save answered without a record")
			}
			return saved, nil
		},
	})
}

func (s *SectorService) ConfirmDelete(ctx context.Context, id int) (screen.Confirmation, error) {
	col := s.screens.For(sessionID(ctx))
	if _, ok := find(col.Items(), id, sectorID); !ok {
		if out := screen.Load(ctx, col.Fetcher()); !out.Ready() {
			return screen.Confirmation{}, out.Err
		}
	}
	sec, ok := find(col.Items(), id, sectorID)
	if !ok {
		return screen.Confirmation{}, common.Errorf("sector %d: %w", id, common.ErrNotFound)
	}
	return screen.Confirm(sessionID(ctx), KindSector, id, sec.Nome), nil
}

func (s *SectorService) Delete(ctx context.Context, id int, confirmation string) screen.Result {
	if err := requireConfirmed(ctx, KindSector, id, confirmation); err != nil {
		return rejected(err)
	}
	col := s.screens.For(sessionID(ctx))
	return col.Apply(ctx, screen.Mutation[model.Sector]{
		Policy:  screen.PolicySplice,
		Removes: id,
		Do: func(ctx context.Context) (*model.Sector, error) {
			return nil, s.sectorRepo.Delete(ctx, tokenFrom(ctx), id)
		},
	})
}

func (s *SectorService) Items(ctx context.Context) []model.Sector {
	return s.screens.For(sessionID(ctx)).Items()
}

func (s *SectorService) Forget(sid string) { s.screens.Drop(sid) }

// ForgetIdle releases the screen state of sessions unused for d.
func (s *SectorService) ForgetIdle(d time.Duration) { s.screens.SetIdleTTL(d) }
