package service

import (
	"cmp"
	"context"
	"slices"
	"tecrank_admin/internal/app/screen"
	"tecrank_admin/internal/app/session"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/domain/repository"
	"tecrank_admin/internal/platform/logger"
	"time"

	"go.uber.org/zap"
)

type RankingService struct {
	rankingRepo repository.RankingRepository
	now         func() time.Time
}

func NewRankingService(rankingRepo repository.RankingRepository) *RankingService {
	return &RankingService{rankingRepo: rankingRepo, now: time.Now}
}

type RankingScreen struct {
	Outcome screen.Outcome                  `json:"-"`
	Period  string                          `json:"periodo"`
	View    screen.View[model.RankingEntry] `json:"ranking"`
	Sectors []model.SectorTotal             `json:"setores"`
}

var rankingSpec = screen.Spec[model.RankingEntry]{
	Fields: []func(model.RankingEntry) string{func(e model.RankingEntry) string { return e.Nome }},
	SortKeys: map[string]func(a, b model.RankingEntry) int{
		"colocacao": screen.By(func(e model.RankingEntry) int { return e.Colocacao }),
		"media":     screen.By(func(e model.RankingEntry) float64 { return e.Media }),
		"nome":      screen.ByString(func(e model.RankingEntry) string { return e.Nome }),
	},
	DefaultSort: "colocacao",
}

// Daily loads the ranking for date. An empty date falls back to the date last picked
// in this session, then to today. A valid date is remembered for the next visit.
func (s *RankingService) Daily(ctx context.Context, date string, q screen.Query) RankingScreen {
	sess, _ := session.FromContext(ctx)
	if date == "" && sess != nil {
		if prefs, err := sess.Preferences(ctx); err == nil {
			date = prefs.SelectedDate
		}
	}
	if date == "" {
		date = s.now().Format(dateLayout)
	}
	if !validDate(date) {
		return s.invalidPeriod(date, "data", "Informe a data no formato AAAA-MM-DD.")
	}
	if sess != nil {
		if err := sess.SetSelectedDate(ctx, date); err != nil {
			logger.Log.Warn("could not remember selected date", zap.String("sid", sess.ID()), zap.Error(err))
		}
	}
	return s.load(ctx, date, q, s.rankingRepo.Daily)
}

// Monthly loads the ranking for month (YYYY-MM), defaulting to the current month.
func (s *RankingService) Monthly(ctx context.Context, month string, q screen.Query) RankingScreen {
	if month == "" {
		month = s.now().Format(monthLayout)
	}
	if !validMonth(month) {
		return s.invalidPeriod(month, "mes", "Informe o mês no formato AAAA-MM.")
	}
	return s.load(ctx, month, q, s.rankingRepo.Monthly)
}

func (s *RankingService) invalidPeriod(period, field, msg string) RankingScreen {
	v := common.NewValidationError()
	v.Add(field, msg)
	return RankingScreen{Period: period, Outcome: screen.Outcome{State: screen.StateError, Message: msg, Err: v}}
}

func (s *RankingService) load(ctx context.Context, period string, q screen.Query, fetch func(ctx context.Context, token, period string) ([]model.RankingEntry, error)) RankingScreen {
	var entries []model.RankingEntry
	out := screen.Load(ctx, screen.Into(&entries, func(ctx context.Context) ([]model.RankingEntry, error) {
		return fetch(ctx, tokenFrom(ctx), period)
	}))
	res := RankingScreen{Outcome: out, Period: period}
	if !out.Ready() {
		return res
	}
	res.View = screen.Project(entries, q, rankingSpec)
	res.Sectors = SectorTotals(entries)
	return res
}

// SectorTotals groups the per-sector breakdown of every entry into one chart series:
// evaluation counts and averages summed per sector, ordered by sector name.
func SectorTotals(entries []model.RankingEntry) []model.SectorTotal {
	idx := make(map[string]int)
	var out []model.SectorTotal
	for _, e := range entries {
		for _, sc := range e.Setores {
			i, ok := idx[sc.Setor]
			if !ok {
				i = len(out)
				idx[sc.Setor] = i
				out = append(out, model.SectorTotal{Setor: sc.Setor})
			}
			out[i].Avaliacoes += sc.Avaliacoes
			out[i].Soma += sc.Media
		}
	}
	slices.SortFunc(out, func(a, b model.SectorTotal) int { return cmp.Compare(a.Setor, b.Setor) })
	return out
}

// SelectDate remembers date as the session's default for the daily ranking.
func (s *RankingService) SelectDate(ctx context.Context, date string) error {
	if !validDate(date) {
		v := common.NewValidationError()
		v.Add("data", "Informe a data no formato AAAA-MM-DD.")
		return v
	}
	sess, ok := session.FromContext(ctx)
	if !ok {
		return common.NewAuthError(401)
	}
	return sess.SetSelectedDate(ctx, date)
}
