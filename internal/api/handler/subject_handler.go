package handler

import (
	"net/http"
	"strconv"
	"tecrank_admin/internal/app/service"
	"tecrank_admin/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

const subjectsRoute = "/assuntos"

type SubjectHandler struct {
	rd      *Renderer
	service *service.SubjectService
}

func NewSubjectHandler(rd *Renderer, ss *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{rd: rd, service: ss}
}

func (h *SubjectHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.save)
	r.Post("/{id}", h.save)
	r.Get("/{id}/excluir", h.confirmDelete)
	r.Post("/{id}/excluir", h.delete)

	r.Route("/{id}/checklist", func(cr chi.Router) {
		cr.Get("/", h.checklist)
		cr.Post("/", h.saveField)
		cr.Post("/{field}", h.saveField)
		cr.Get("/{field}/excluir", h.confirmDeleteField)
		cr.Post("/{field}/excluir", h.deleteField)
	})
}

func checklistRoute(subject int) string {
	return subjectsRoute + "/" + strconv.Itoa(subject) + "/checklist"
}

func (h *SubjectHandler) list(w http.ResponseWriter, r *http.Request) {
	res := h.service.List(r.Context(), queryFrom(r))
	if h.rd.outcome(w, r, res.Outcome) {
		return
	}
	h.rd.respond(w, r, "subjects", "Assuntos", res)
}

type subjectRequest struct {
	Nome string `json:"nome"`
}

func (h *SubjectHandler) save(w http.ResponseWriter, r *http.Request) {
	var in model.SubjectInput
	if id, ok := pathID(r, "id"); ok {
		in.ID = id
	}
	var req subjectRequest
	err := bind(r, &req, func(get func(string) string) { req.Nome = get("nome") })
	if err == nil {
		in.Icon, err = readUpload(r, "icone")
	}
	if err != nil {
		h.rd.saved(w, r, resultOf(err), h.list, subjectsRoute, "", nil)
		return
	}
	in.Nome = req.Nome

	res := h.service.Save(r.Context(), in)
	h.rd.saved(w, r, res, h.list, subjectsRoute, "Assunto salvo.", map[string]any{"assuntos": h.service.Items(r.Context())})
}

func (h *SubjectHandler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w)
		return
	}
	c, err := h.service.ConfirmDelete(r.Context(), id)
	h.rd.confirmDelete(w, r, c, err, r.URL.Path, subjectsRoute)
}

func (h *SubjectHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w)
		return
	}
	token, err := confirmationOf(r)
	if err != nil {
		h.rd.mutation(w, r, resultOf(err), subjectsRoute, "", nil)
		return
	}
	res := h.service.Delete(r.Context(), id, token)
	h.rd.mutation(w, r, res, subjectsRoute, "Assunto excluído.", map[string]any{"assuntos": h.service.Items(r.Context())})
}

func (h *SubjectHandler) checklist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w)
		return
	}
	res := h.service.Checklist(r.Context(), id, queryFrom(r))
	if h.rd.outcome(w, r, res.Outcome) {
		return
	}
	h.rd.respond(w, r, "checklist", "Checklist "+res.Subject.Nome, res)
}

type fieldRequest struct {
	Label    string  `json:"label"`
	Tipo     string  `json:"tipo"`
	MaxScore float64 `json:"pontuacao_maxima"`
}

func (h *SubjectHandler) saveField(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(r, "id")
	if !ok {
		badID(w)
		return
	}
	back := checklistRoute(subject)
	var req fieldRequest
	if err := bind(r, &req, func(get func(string) string) {
		req.Label = get("label")
		req.Tipo = get("tipo")
		req.MaxScore = service.ParseScore(get("pontuacao_maxima"))
	}); err != nil {
		h.rd.saved(w, r, resultOf(err), h.checklist, back, "", nil)
		return
	}
	in := model.ChecklistFieldInput{SubjectID: subject, Label: req.Label, Tipo: service.ParseFieldType(req.Tipo), MaxScore: req.MaxScore}
	if id, ok := pathID(r, "field"); ok {
		in.ID = id
	}
	res := h.service.SaveField(r.Context(), in)
	h.rd.saved(w, r, res, h.checklist, back, "Campo salvo.", map[string]any{"campos": h.service.Fields(r.Context(), subject)})
}

func (h *SubjectHandler) confirmDeleteField(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(r, "id")
	field, ok2 := pathID(r, "field")
	if !ok || !ok2 {
		badID(w)
		return
	}
	c, err := h.service.ConfirmDeleteField(r.Context(), subject, field)
	h.rd.confirmDelete(w, r, c, err, r.URL.Path, checklistRoute(subject))
}

func (h *SubjectHandler) deleteField(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(r, "id")
	field, ok2 := pathID(r, "field")
	if !ok || !ok2 {
		badID(w)
		return
	}
	back := checklistRoute(subject)
	token, err := confirmationOf(r)
	if err != nil {
		h.rd.mutation(w, r, resultOf(err), back, "", nil)
		return
	}
	res := h.service.DeleteField(r.Context(), subject, field, token)
	h.rd.mutation(w, r, res, back, "Campo excluído.", map[string]any{"campos": h.service.Fields(r.Context(), subject)})
}
