package handler

import (
	"net/http"
	"strings"
	"tecrank_admin/internal/app/service"
	"tecrank_admin/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type EvaluationHandler struct {
	rd      *Renderer
	service *service.EvaluationService
}

func NewEvaluationHandler(rd *Renderer, es *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{rd: rd, service: es}
}

func (h *EvaluationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{variant}", h.submit)
}

type evaluationRequest struct {
	CollaboratorID int             `json:"id_colaborador"`
	Evaluator      string          `json:"avaliador"`
	Date           string          `json:"data"`
	Note           string          `json:"observacao"`
	Points         map[string]bool `json:"pontos"`
}

func checked(v string) bool {
	switch strings.ToLower(v) {
	case "on", "true", "1", "sim":
		return true
	}
	return false
}

func (h *EvaluationHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req evaluationRequest
	err := bind(r, &req, func(get func(string) string) {
		req.CollaboratorID = atoi(get("id_colaborador"))
		req.Evaluator = get("avaliador")
		req.Date = get("data")
		req.Note = get("observacao")
		req.Points = make(map[string]bool)
		for name := range r.Form {
			if strings.HasSuffix(name, "_add") || strings.HasSuffix(name, "_sub") {
				req.Points[name] = checked(get(name))
			}
		}
	})
	if err != nil {
		h.rd.mutation(w, r, resultOf(err), service.HomeRoute, "", nil)
		return
	}

	payload, err := h.service.Submit(r.Context(), model.Evaluation{
		Variant:        model.EvaluationVariant(chi.URLParam(r, "variant")),
		CollaboratorID: req.CollaboratorID,
		Evaluator:      req.Evaluator,
		Date:           req.Date,
		Note:           req.Note,
		Flags:          req.Points,
	})
	h.rd.mutation(w, r, resultOf(err), service.HomeRoute, "Avaliação registrada.", payload)
}
