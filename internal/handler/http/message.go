package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/castrogabe/antiquepox/pkg/httputil"
	"github.com/castrogabe/antiquepox/pkg/pagination"
	"github.com/castrogabe/antiquepox/pkg/validator"

	"github.com/castrogabe/antiquepox/internal/service"
)

// MessageHandler handles HTTP requests for contact-form endpoints.
type MessageHandler struct {
	service *service.MessageService
	logger  *slog.Logger
}

// NewMessageHandler creates a new message HTTP handler.
func NewMessageHandler(svc *service.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		service: svc,
		logger:  logger,
	}
}

// SubmitMessageRequest is the JSON request body for a contact-form submission.
type SubmitMessageRequest struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Subject  string `json:"subject" validate:"max=200"`
	Body     string `json:"body" validate:"required,max=5000"`
}

// SubmitMessage handles POST /api/messages
func (h *MessageHandler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SubmitMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	msg, err := h.service.SubmitMessage(r.Context(), &service.SubmitMessageInput{
		FullName: req.FullName,
		Email:    req.Email,
		Subject:  req.Subject,
		Body:     req.Body,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: msg})
}

// ListMessages handles GET /api/messages (admin)
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	messages, total, err := h.service.ListMessages(r.Context(), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(messages, total, params.Page, params.PerPage))
}
