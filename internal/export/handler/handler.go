package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"annexops/internal/export"
	dErrors "annexops/pkg/domain-errors"
	"annexops/pkg/platform/httputil"
	"annexops/pkg/requestcontext"
)

// Service defines the interface for export operations.
type Service interface {
	Generate(ctx context.Context, orgID uuid.UUID, orgName string, params export.GenerateParams, actor uuid.UUID) (*export.Export, error)
	Get(ctx context.Context, orgID, exportID uuid.UUID) (*export.Export, error)
	List(ctx context.Context, orgID, versionID uuid.UUID) ([]*export.Export, error)
	DownloadURL(ctx context.Context, orgID, exportID uuid.UUID) (string, error)
}

// Handler wires export endpoints to the export service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts export endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/versions/{versionID}/exports", h.HandleGenerate)
	r.Get("/versions/{versionID}/exports", h.HandleList)
	r.Get("/exports/{exportID}", h.HandleGet)
	r.Get("/exports/{exportID}/download-url", h.HandleDownloadURL)
}

type generateRequest struct {
	IncludeDiff      bool    `json:"include_diff"`
	CompareVersionID *string `json:"compare_version_id"`
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	versionID, ok := pathUUID(w, r, "versionID")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[generateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	params := export.GenerateParams{
		VersionID:   versionID,
		IncludeDiff: req.IncludeDiff,
	}
	if req.CompareVersionID != nil {
		compareID, err := uuid.Parse(*req.CompareVersionID)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid compare_version_id"))
			return
		}
		params.CompareVersionID = &compareID
	}

	e, err := h.service.Generate(ctx, requestcontext.OrgID(ctx), requestcontext.OrgName(ctx), params, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "export generation failed",
			"request_id", requestID,
			"version_id", versionID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "export generated",
		"request_id", requestID,
		"export_id", e.ID.String(),
		"snapshot_hash", e.SnapshotHash,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	versionID, ok := pathUUID(w, r, "versionID")
	if !ok {
		return
	}
	exports, err := h.service.List(ctx, requestcontext.OrgID(ctx), versionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if exports == nil {
		exports = []*export.Export{}
	}
	httputil.WriteJSON(w, http.StatusOK, exports)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	exportID, ok := pathUUID(w, r, "exportID")
	if !ok {
		return
	}
	e, err := h.service.Get(ctx, requestcontext.OrgID(ctx), exportID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) HandleDownloadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	exportID, ok := pathUUID(w, r, "exportID")
	if !ok {
		return
	}
	url, err := h.service.DownloadURL(ctx, requestcontext.OrgID(ctx), exportID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"download_url": url})
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
