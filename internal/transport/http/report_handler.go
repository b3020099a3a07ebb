// Package http exposes the report pipeline over HTTP.
package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"breakupscli/pkg/contracts/domain"
)

// ReportGenerator runs the pipeline for one uploaded workbook.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, data []byte, clientName string) domain.RunResult
}

// ReportHandler serves workbook uploads and report generation.
type ReportHandler struct {
	logger         *slog.Logger
	service        ReportGenerator
	validate       *validator.Validate
	maxUploadBytes int64
}

// NewReportHandler creates the handler. maxUploadBytes bounds the multipart
// body; zero means 25 MiB.
func NewReportHandler(logger *slog.Logger, service ReportGenerator, maxUploadBytes int64) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 25 << 20
	}
	return &ReportHandler{
		logger:         logger.With(slog.String("handler", "report")),
		service:        service,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes mounts the report endpoints.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Generate)
	return r
}

// uploadRequest is the validated multipart form.
type uploadRequest struct {
	ClientName string `validate:"required,min=1,max=120"`
}

// Generate accepts a multipart form with a `workbook` file and a
// `client_name` field and runs the full pipeline synchronously.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.writeFailure(w, r, http.StatusBadRequest, "invalid multipart upload: "+err.Error())
		return
	}

	req := uploadRequest{ClientName: strings.TrimSpace(r.FormValue("client_name"))}
	if err := h.validate.Struct(req); err != nil {
		h.writeFailure(w, r, http.StatusBadRequest, "client_name is required")
		return
	}

	file, header, err := r.FormFile("workbook")
	if err != nil {
		h.writeFailure(w, r, http.StatusBadRequest, "workbook file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeFailure(w, r, http.StatusBadRequest, "failed to read workbook upload: "+err.Error())
		return
	}

	h.logger.InfoContext(ctx, "report requested",
		slog.String("client", req.ClientName),
		slog.String("file", header.Filename),
		slog.Int("bytes", len(data)))

	result := h.service.GenerateReport(ctx, data, req.ClientName)
	if !result.Success {
		status := http.StatusInternalServerError
		if strings.Contains(result.Error, "ingestion") {
			status = http.StatusUnprocessableEntity
		}
		render.Status(r, status)
		render.JSON(w, r, result)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}

func (h *ReportHandler) writeFailure(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, domain.RunResult{Success: false, Error: msg})
}
