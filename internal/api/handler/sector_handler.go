package handler

import (
	"net/http"
	"tecrank_admin/internal/app/service"
	"tecrank_admin/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

const sectorsRoute = "/setores"

type SectorHandler struct {
	rd      *Renderer
	service *service.SectorService
}

func NewSectorHandler(rd *Renderer, ss *service.SectorService) *SectorHandler {
	return &SectorHandler{rd: rd, service: ss}
}

func (h *SectorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.save)
	r.Post("/{id}", h.save)
	r.Get("/{id}/excluir", h.confirmDelete)
	r.Post("/{id}/excluir", h.delete)
}

func (h *SectorHandler) list(w http.ResponseWriter, r *http.Request) {
	res := h.service.List(r.Context(), queryFrom(r))
	if h.rd.outcome(w, r, res.Outcome) {
		return
	}
	h.rd.respond(w, r, "sectors", "Setores", res)
}

func (h *SectorHandler) save(w http.ResponseWriter, r *http.Request) {
	var sector model.Sector
	if err := bind(r, &sector, func(get func(string) string) { sector.Nome = get("nome") }); err != nil {
		h.rd.saved(w, r, resultOf(err), h.list, sectorsRoute, "", nil)
		return
	}
	sector.ID = 0
	if id, ok := pathID(r, "id"); ok {
		sector.ID = id
	}
	res := h.service.Save(r.Context(), sector)
	h.rd.saved(w, r, res, h.list, sectorsRoute, "Setor salvo.", map[string]any{"setores": h.service.Items(r.Context())})
}

func (h *SectorHandler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w)
		return
	}
	c, err := h.service.ConfirmDelete(r.Context(), id)
	h.rd.confirmDelete(w, r, c, err, r.URL.Path, sectorsRoute)
}

func (h *SectorHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w)
		return
	}
	token, err := confirmationOf(r)
	if err != nil {
		h.rd.mutation(w, r, resultOf(err), sectorsRoute, "", nil)
		return
	}
	res := h.service.Delete(r.Context(), id, token)
	h.rd.mutation(w, r, res, sectorsRoute, "Setor excluído.", map[string]any{"setores": h.service.Items(r.Context())})
}
