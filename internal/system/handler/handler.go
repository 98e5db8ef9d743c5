package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"annexops/internal/system"
	dErrors "annexops/pkg/domain-errors"
	"annexops/pkg/platform/httputil"
	"annexops/pkg/requestcontext"
)

// Service defines the interface for system operations.
type Service interface {
	Create(ctx context.Context, orgID uuid.UUID, name, intendedPurpose string) (*system.System, error)
	Get(ctx context.Context, orgID, systemID uuid.UUID) (*system.System, error)
	List(ctx context.Context, orgID uuid.UUID) ([]*system.System, error)
}

// Handler wires system endpoints to the system service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts system endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/systems", h.HandleCreate)
	r.Get("/systems", h.HandleList)
	r.Get("/systems/{systemID}", h.HandleGet)
}

type createRequest struct {
	Name            string `json:"name"`
	IntendedPurpose string `json:"intended_purpose"`
}

func (r createRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sys, err := h.service.Create(ctx, requestcontext.OrgID(ctx), req.Name, req.IntendedPurpose)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sys)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	systems, err := h.service.List(ctx, requestcontext.OrgID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if systems == nil {
		systems = []*system.System{}
	}
	httputil.WriteJSON(w, http.StatusOK, systems)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	systemID, err := uuid.Parse(chi.URLParam(r, "systemID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid system id"))
		return
	}

	sys, err := h.service.Get(ctx, requestcontext.OrgID(ctx), systemID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sys)
}
