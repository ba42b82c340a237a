package http

import (
	"log/slog"
	"net/http"

	"github.com/castrogabe/antiquepox/pkg/httputil"

	"github.com/castrogabe/antiquepox/internal/service"
)

// ReportHandler handles HTTP requests for admin reporting endpoints.
type ReportHandler struct {
	service *service.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report HTTP handler.
func NewReportHandler(svc *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		logger:  logger,
	}
}

// Summary handles GET /api/orders/summary (admin)
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}
