package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/castrogabe/antiquepox/pkg/httputil"

	"github.com/castrogabe/antiquepox/internal/storage"
)

// maxUploadSize caps product image uploads at 10MB.
const maxUploadSize = 10 << 20

// allowedImageTypes maps accepted content types to file extensions.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadHandler handles product image uploads.
type UploadHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewUploadHandler creates a new upload HTTP handler.
func NewUploadHandler(store storage.Storage, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		storage: store,
		logger:  logger,
	}
}

// Upload handles POST /api/upload (admin). The image arrives as the "image"
// field of a multipart form.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid multipart form: " + err.Error()},
		})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "image file is required"},
		})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		// Fall back to the filename extension when the part has no usable type.
		ext = strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".webp" && ext != ".gif" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: fmt.Sprintf("unsupported image type %q", contentType)},
			})
			return
		}
	}

	key := uuid.New().String() + ext
	result, err := h.storage.Upload(r.Context(), &storage.UploadInput{
		Key:         key,
		ContentType: contentType,
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "image uploaded",
		slog.String("key", result.Key),
		slog.Int64("size", header.Size),
	)

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: map[string]string{
		"key": result.Key,
		"url": result.URL,
	}})
}
