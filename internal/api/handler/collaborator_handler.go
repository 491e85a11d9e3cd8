package handler

import (
	"net/http"
	"strconv"
	"tecrank_admin/internal/api/middleware"
	"tecrank_admin/internal/app/service"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

const collaboratorsRoute = "/colaboradores"

type CollaboratorHandler struct {
	rd      *Renderer
	service *service.CollaboratorService
}

func NewCollaboratorHandler(rd *Renderer, cs *service.CollaboratorService) *CollaboratorHandler {
	return &CollaboratorHandler{rd: rd, service: cs}
}

func (h *CollaboratorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.save)
	r.Get("/{id}", h.detail)
	r.Post("/{id}", h.save)
	r.Get("/{id}/expandir", h.expand)
	r.Get("/{id}/excluir", h.confirmDelete)
	r.Post("/{id}/excluir", h.delete)
}

func (h *CollaboratorHandler) list(w http.ResponseWriter, r *http.Request) {
	res := h.service.List(r.Context(), queryFrom(r))
	if h.rd.outcome(w, r, res.Outcome) {
		return
	}
	h.rd.respond(w, r, "collaborators", "Colaboradores", res)
}

func (h *CollaboratorHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w)
		return
	}
	d, err := h.service.Detail(r.Context(), id)
	if err != nil {
		h.rd.fail(w, r, err)
		return
	}
	h.rd.respond(w, r, "collaborator", d.Collaborator.Nome, d)
}

type expandResponse struct {
	ID      int                  `json:"id"`
	History []model.HistoryEntry `json:"historico"`
}

func (h *CollaboratorHandler) expand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w)
		return
	}
	if middleware.IsHTMLRequest(r) {
		http.Redirect(w, r, collaboratorsRoute+"/"+strconv.Itoa(id), http.StatusSeeOther)
		return
	}
	history, err := h.service.Expand(r.Context(), id)
	if err != nil {
		if common.IsAuth(err) {
			h.rd.expired(w, r)
			return
		}
		common.RespondWithAPIError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, expandResponse{ID: id, History: history})
}

type collaboratorRequest struct {
	Nome     string `json:"nome"`
	SectorID int    `json:"id_setor"`
}

func (h *CollaboratorHandler) save(w http.ResponseWriter, r *http.Request) {
	var in model.CollaboratorInput
	if id, ok := pathID(r, "id"); ok {
		in.ID = id
	}
	var req collaboratorRequest
	err := bind(r, &req, func(get func(string) string) {
		req.Nome = get("nome")
		req.SectorID = atoi(get("id_setor"))
	})
	if err == nil {
		in.Image, err = readUpload(r, "imagem")
	}
	if err != nil {
		h.rd.saved(w, r, resultOf(err), h.list, collaboratorsRoute, "", nil)
		return
	}
	in.Nome, in.SectorID = req.Nome, req.SectorID

	res := h.service.Save(r.Context(), in)
	h.rd.saved(w, r, res, h.list, collaboratorsRoute, "Colaborador salvo.", map[string]any{"colaboradores": h.service.Items(r.Context())})
}

func (h *CollaboratorHandler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w)
		return
	}
	c, err := h.service.ConfirmDelete(r.Context(), id)
	h.rd.confirmDelete(w, r, c, err, r.URL.Path, collaboratorsRoute)
}

func (h *CollaboratorHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w)
		return
	}
	token, err := confirmationOf(r)
	if err != nil {
		h.rd.mutation(w, r, resultOf(err), collaboratorsRoute, "", nil)
		return
	}
	res := h.service.Delete(r.Context(), id, token)
	h.rd.mutation(w, r, res, collaboratorsRoute, "Colaborador excluído.", map[string]any{"colaboradores": h.service.Items(r.Context())})
}
