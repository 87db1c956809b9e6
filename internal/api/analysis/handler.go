package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/datasleuth/analyst-backend/internal/config"
	"github.com/datasleuth/analyst-backend/internal/entity"
	"github.com/datasleuth/analyst-backend/internal/pkg/formatter"
	"github.com/datasleuth/analyst-backend/internal/pkg/logger"
	"github.com/datasleuth/analyst-backend/internal/pkg/response"
	"github.com/datasleuth/analyst-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   AnalysisUsecase
	artifacts ArtifactResolver
	validator *validator.Validator
	formats   *formatter.Factory
	uploadCfg config.FileUploadConfig
}

func NewHandler(
	usecase AnalysisUsecase,
	artifacts ArtifactResolver,
	validator *validator.Validator,
	uploadCfg config.FileUploadConfig,
) *Handler {
	return &Handler{
		usecase:   usecase,
		artifacts: artifacts,
		validator: validator,
		formats:   formatter.NewFactory(),
		uploadCfg: uploadCfg,
	}
}

// Analyze handles POST /api/v1/analysis - run one upload-and-ask request
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Analyze")

	r.Body = http.MaxBytesReader(w, r.Body, h.uploadCfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.uploadCfg.MaxUploadSize); err != nil {
		ctxzap.Error(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	req := &entity.AnalysisRequest{
		Prompt: r.FormValue("prompt"),
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()

		if err := h.validator.ValidateDatasetFile(header); err != nil {
			ctxzap.Error(ctx, "upload validation failed", zap.Error(err))
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		tmpPath, err := saveUpload(file, header.Filename)
		if err != nil {
			ctxzap.Error(ctx, "failed to store upload", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, "failed to store uploaded file")
			return
		}
		defer os.Remove(tmpPath)

		req.DatasetPath = tmpPath
		req.DatasetName = header.Filename

	case errors.Is(err, http.ErrMissingFile):
		// Absence is reported by the usecase in the contract's
		// validation order, not here.

	default:
		ctxzap.Error(ctx, "failed to read uploaded file", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid file upload")
		return
	}

	ctxzap.Info(ctx, "analysis request received",
		zap.String("dataset", req.DatasetName),
		zap.Int("prompt_length", len(req.Prompt)),
	)

	result, err := h.usecase.Analyze(ctx, req)
	if err != nil {
		h.respondAnalysisError(ctx, w, err)
		return
	}

	resp := entity.AnalysisResponse{Answer: result.Answer}
	if result.HasChart() {
		resp.ChartID = result.ChartID
		resp.ChartURL = "/artifacts/" + result.ChartID
	}

	response.Success(w, resp)
}

// ServeArtifact handles GET /artifacts/{id} - serve a generated chart
func (h *Handler) ServeArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	path, ok := h.artifacts.Resolve(id)
	if !ok {
		response.Error(w, http.StatusNotFound, entity.ErrArtifactNotFound.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

// ExportReport handles POST /api/v1/report/export - render an answer as a document
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ExportReport")

	var req entity.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateExport(&req); err != nil {
		ctxzap.Error(ctx, "export validation failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Title == "" {
		req.Title = formatter.DefaultTitle
	}

	f, err := h.formats.Create(req.Format)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := f.Format(req.Title, req.Content)
	if err != nil {
		ctxzap.Error(ctx, "failed to format report", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to format report")
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "analysis-report"+f.FileExtension()))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// respondAnalysisError maps the usecase's closed error set onto statuses.
// The body always carries the canonical user-facing message, so the UI
// renders failures through the same path as answers.
func (h *Handler) respondAnalysisError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrDatasetRequired), errors.Is(err, entity.ErrPromptRequired):
		ctxzap.Info(ctx, "analysis request rejected", zap.Error(err))
		response.Error(w, http.StatusBadRequest, entity.UserMessage(err))
	case errors.Is(err, entity.ErrAPIKeyMissing):
		ctxzap.Error(ctx, "analysis rejected: credential not configured", zap.Error(err))
		response.Error(w, http.StatusServiceUnavailable, entity.UserMessage(err))
	default:
		ctxzap.Error(ctx, "analysis failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, entity.UserMessage(err))
	}
}

func saveUpload(file io.Reader, name string) (string, error) {
	tmp, err := os.CreateTemp("", "dataset-*.csv")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write upload %q: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return tmp.Name(), nil
}
