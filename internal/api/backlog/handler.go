package backlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/visionhq/backlog-backend/internal/entity"
	"github.com/visionhq/backlog-backend/internal/pkg/logger"
	"github.com/visionhq/backlog-backend/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	usecase BacklogUsecase
}

func NewHandler(usecase BacklogUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// SubmitJob handles POST /api/v1/backlog/jobs - Submit a new backlog job
func (h *Handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SubmitJob")

	var req entity.SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	job, err := h.usecase.SubmitJob(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "backlog job accepted", zap.String("job_id", job.ID))
	response.JSON(w, http.StatusAccepted, job)
}

// GetJob handles GET /api/v1/backlog/jobs/{id} - Get job status
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("job_id", jobID),
		zap.String("action", "GetJob"),
	)

	job, err := h.usecase.GetJob(ctx, jobID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, job)
}

// GetWorkItems handles GET /api/v1/backlog/jobs/{id}/items - Get the item tree
func (h *Handler) GetWorkItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("job_id", jobID),
		zap.String("action", "GetWorkItems"),
	)

	items, err := h.usecase.GetWorkItems(ctx, jobID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, map[string]any{
		"job_id": jobID,
		"count":  len(items),
		"items":  toItemTree(items),
	})
}

// ExportBacklog handles GET /api/v1/backlog/jobs/{id}/export - Download the backlog
func (h *Handler) ExportBacklog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("job_id", jobID),
		zap.String("action", "ExportBacklog"),
	)

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = string(entity.FormatMarkdown)
	}

	content, contentType, filename, err := h.usecase.ExportBacklog(ctx, jobID, entity.ResultFormat(formatParam))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "backlog exported", zap.String("format", formatParam), zap.Int("size_bytes", len(content)))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// SyncJob handles POST /api/v1/backlog/jobs/{id}/sync - Upload to Azure DevOps
func (h *Handler) SyncJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("job_id", jobID),
		zap.String("action", "SyncJob"),
	)

	var req entity.SyncJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.usecase.SyncToAzureDevOps(ctx, jobID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, result)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	response.JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrJobNotFound) || errors.Is(err, entity.ErrWorkItemNotFound) {
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	} else if errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrMissingField) || errors.Is(err, entity.ErrInvalidJob) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	} else if errors.Is(err, entity.ErrJobNotFinished) {
		h.respondError(ctx, w, http.StatusConflict, "job is not finished", err)
	} else {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
