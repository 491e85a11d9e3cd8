package handler

import (
	"net/http"
	"net/url"
	"strings"
	"tecrank_admin/internal/app/service"
	"tecrank_admin/internal/app/session"
	"tecrank_admin/internal/common"

	"github.com/go-chi/chi/v5"
)

const (
	rankingDaily   = "diario"
	rankingMonthly = "mensal"
)

type RankingHandler struct {
	rd      *Renderer
	service *service.RankingService
}

func NewRankingHandler(rd *Renderer, rs *service.RankingService) *RankingHandler {
	return &RankingHandler{rd: rd, service: rs}
}

func (h *RankingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.daily)
	r.Get("/ranking/diario", h.daily)
	r.Get("/ranking/mensal", h.monthly)
	r.Post("/preferencias/data", h.selectDate)
	r.Post("/preferencias/tema", h.toggleTheme)
}

type rankingPage struct {
	Kind   string                `json:"tipo"`
	Screen service.RankingScreen `json:"ranking"`
}

func (h *RankingHandler) daily(w http.ResponseWriter, r *http.Request) {
	res := h.service.Daily(r.Context(), r.URL.Query().Get("data"), queryFrom(r))
	if h.rd.outcome(w, r, res.Outcome) {
		return
	}
	h.rd.respond(w, r, "ranking", "Ranking diário", rankingPage{Kind: rankingDaily, Screen: res})
}

func (h *RankingHandler) monthly(w http.ResponseWriter, r *http.Request) {
	res := h.service.Monthly(r.Context(), r.URL.Query().Get("mes"), queryFrom(r))
	if h.rd.outcome(w, r, res.Outcome) {
		return
	}
	h.rd.respond(w, r, "ranking", "Ranking mensal", rankingPage{Kind: rankingMonthly, Screen: res})
}

func (h *RankingHandler) selectDate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data string `json:"data"`
	}
	err := bind(r, &body, func(get func(string) string) { body.Data = get("data") })
	if err == nil {
		err = h.service.SelectDate(r.Context(), body.Data)
	}
	h.rd.mutation(w, r, resultOf(err), service.HomeRoute, "Data selecionada.", map[string]string{"selectedDate": body.Data})
}

func (h *RankingHandler) toggleTheme(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.rd.expired(w, r)
		return
	}
	dark, err := sess.ToggleDarkMode(r.Context())
	if err != nil {
		h.rd.mutation(w, r, resultOf(common.Errorf("toggling theme: %w", err)), service.HomeRoute, "", nil)
		return
	}
	h.rd.mutation(w, r, resultOf(nil), sameSiteReferer(r), "Tema atualizado.", map[string]bool{"darkMode": dark})
}

// sameSiteReferer is the local path the request came from, or the home route.
func sameSiteReferer(r *http.Request) string {
	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return service.HomeRoute
	}
	if ref.Host != "" && ref.Host != r.Host {
		return service.HomeRoute
	}
	return ref.RequestURI()
}
