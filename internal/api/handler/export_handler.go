package handler

import (
	"net/http"
	"strconv"
	"tecrank_admin/internal/api/middleware"
	"tecrank_admin/internal/app/service"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/export"
	"tecrank_admin/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ExportHandler struct {
	rd      *Renderer
	service *service.ExportService
}

func NewExportHandler(rd *Renderer, es *service.ExportService) *ExportHandler {
	return &ExportHandler{rd: rd, service: es}
}

func (h *ExportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/exportar", h.export)
}

func (h *ExportHandler) export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.service.Report(r.Context(), atoi(q.Get("id_assunto")), q.Get("data"))
	if err != nil {
		if middleware.IsHTMLRequest(r) && !common.IsAuth(err) {
			h.rd.flash(w, r, common.UserMessage(err))
			http.Redirect(w, r, subjectsRoute, http.StatusSeeOther)
			return
		}
		if common.IsAuth(err) {
			h.rd.expired(w, r)
			return
		}
		common.RespondWithAPIError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.Data); err != nil {
		logger.Log.Warn("writing report", zap.String("file", report.Filename), zap.Error(err))
	}
}
