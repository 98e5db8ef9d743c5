package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"annexops/internal/diff"
	"annexops/internal/version"
	"annexops/internal/workflow"
	dErrors "annexops/pkg/domain-errors"
	"annexops/pkg/platform/httputil"
	"annexops/pkg/requestcontext"
)

// Service defines the interface for version lifecycle operations.
type Service interface {
	Create(ctx context.Context, orgID, systemID uuid.UUID, label string, notes *string, createdBy uuid.UUID) (*version.Version, error)
	Get(ctx context.Context, orgID, versionID uuid.UUID) (*version.Version, error)
	List(ctx context.Context, orgID, systemID uuid.UUID) ([]*version.Version, error)
	ChangeStatus(ctx context.Context, orgID, versionID uuid.UUID, target workflow.Status, actor uuid.UUID) (*version.Version, error)
	Diff(ctx context.Context, orgID, fromID, toID uuid.UUID) (*diff.Result, error)
	Delete(ctx context.Context, orgID, versionID uuid.UUID) error
}

// Handler wires version endpoints to the version service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts version endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/systems/{systemID}/versions", h.HandleCreate)
	r.Get("/systems/{systemID}/versions", h.HandleList)
	r.Get("/versions/{versionID}", h.HandleGet)
	r.Post("/versions/{versionID}/status", h.HandleChangeStatus)
	r.Get("/versions/{versionID}/diff/{compareID}", h.HandleDiff)
	r.Delete("/versions/{versionID}", h.HandleDelete)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	systemID, ok := pathUUID(w, r, "systemID")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	v, err := h.service.Create(ctx, requestcontext.OrgID(ctx), systemID, req.Label, req.Notes, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "version created",
		"request_id", requestID,
		"version_id", v.ID.String(),
		"label", v.Label,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	systemID, ok := pathUUID(w, r, "systemID")
	if !ok {
		return
	}
	versions, err := h.service.List(ctx, requestcontext.OrgID(ctx), systemID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if versions == nil {
		versions = []*version.Version{}
	}
	httputil.WriteJSON(w, http.StatusOK, versions)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	versionID, ok := pathUUID(w, r, "versionID")
	if !ok {
		return
	}
	v, err := h.service.Get(ctx, requestcontext.OrgID(ctx), versionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	versionID, ok := pathUUID(w, r, "versionID")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[statusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	v, err := h.service.ChangeStatus(ctx, requestcontext.OrgID(ctx), versionID, workflow.Status(req.Status), requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "version status changed",
		"request_id", requestID,
		"version_id", v.ID.String(),
		"status", string(v.Status),
	)
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) HandleDiff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	versionID, ok := pathUUID(w, r, "versionID")
	if !ok {
		return
	}
	compareID, ok := pathUUID(w, r, "compareID")
	if !ok {
		return
	}

	result, err := h.service.Diff(ctx, requestcontext.OrgID(ctx), compareID, versionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	versionID, ok := pathUUID(w, r, "versionID")
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, requestcontext.OrgID(ctx), versionID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
