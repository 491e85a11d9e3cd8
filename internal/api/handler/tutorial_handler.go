package handler

import (
	"net/http"
	"tecrank_admin/internal/app/service"
	"tecrank_admin/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

const tutorialsRoute = "/tutoriais"

type TutorialHandler struct {
	rd      *Renderer
	service *service.TutorialService
}

func NewTutorialHandler(rd *Renderer, ts *service.TutorialService) *TutorialHandler {
	return &TutorialHandler{rd: rd, service: ts}
}

func (h *TutorialHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.save)
	r.Post("/{id}", h.save)
	r.Get("/{id}/excluir", h.confirmDelete)
	r.Post("/{id}/excluir", h.delete)
}

func (h *TutorialHandler) list(w http.ResponseWriter, r *http.Request) {
	res := h.service.List(r.Context(), queryFrom(r))
	if h.rd.outcome(w, r, res.Outcome) {
		return
	}
	h.rd.respond(w, r, "tutorials", "Tutoriais", res)
}

type tutorialRequest struct {
	Titulo      string `json:"titulo"`
	Descricao   string `json:"descricao"`
	URLView     string `json:"url_visualizacao"`
	URLDownload string `json:"url_download"`
	Autor       string `json:"autor"`
	Icone       string `json:"icone"`
}

func (h *TutorialHandler) save(w http.ResponseWriter, r *http.Request) {
	var req tutorialRequest
	err := bind(r, &req, func(get func(string) string) {
		req.Titulo = get("titulo")
		req.Descricao = get("descricao")
		req.URLView = get("url_visualizacao")
		req.URLDownload = get("url_download")
		req.Autor = get("autor")
		req.Icone = get("icone")
	})
	in := model.TutorialInput{
		Titulo:      req.Titulo,
		Descricao:   req.Descricao,
		URLView:     req.URLView,
		URLDownload: req.URLDownload,
		Autor:       req.Autor,
		Icone:       req.Icone,
	}
	if err == nil {
		in.Thumbnail, err = readUpload(r, "miniatura")
	}
	if err != nil {
		h.rd.saved(w, r, resultOf(err), h.list, tutorialsRoute, "", nil)
		return
	}
	if id, ok := pathID(r, "id"); ok {
		in.ID = id
	}

	res := h.service.Save(r.Context(), in)
	h.rd.saved(w, r, res, h.list, tutorialsRoute, "Tutorial salvo.", map[string]any{"tutoriais": h.service.Items(r.Context())})
}

func (h *TutorialHandler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w)
		return
	}
	c, err := h.service.ConfirmDelete(r.Context(), id)
	h.rd.confirmDelete(w, r, c, err, r.URL.Path, tutorialsRoute)
}

func (h *TutorialHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w)
		return
	}
	token, err := confirmationOf(r)
	if err != nil {
		h.rd.mutation(w, r, resultOf(err), tutorialsRoute, "", nil)
		return
	}
	res := h.service.Delete(r.Context(), id, token)
	h.rd.mutation(w, r, res, tutorialsRoute, "Tutorial excluído.", map[string]any{"tutoriais": h.service.Items(r.Context())})
}
