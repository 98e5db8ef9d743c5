package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"annexops/internal/completeness"
	"annexops/internal/section"
	dErrors "annexops/pkg/domain-errors"
	"annexops/pkg/platform/httputil"
	"annexops/pkg/requestcontext"
)

// Service defines the interface for section content operations.
type Service interface {
	ListForVersion(ctx context.Context, orgID, versionID uuid.UUID) ([]*section.Section, error)
	Get(ctx context.Context, orgID, versionID uuid.UUID, key string) (*section.Section, error)
	UpdateContent(ctx context.Context, orgID, versionID uuid.UUID, key string, content map[string]any, evidenceRefs []string, llmAssisted bool, editor uuid.UUID) (*section.Section, error)
	Report(ctx context.Context, orgID, versionID uuid.UUID) (*completeness.Report, error)
}

// Handler wires section endpoints to the section service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts section endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/versions/{versionID}/sections", h.HandleList)
	r.Get("/versions/{versionID}/sections/{sectionKey}", h.HandleGet)
	r.Put("/versions/{versionID}/sections/{sectionKey}", h.HandleUpdate)
	r.Get("/versions/{versionID}/completeness", h.HandleCompleteness)
}

type updateRequest struct {
	Content      map[string]any `json:"content"`
	EvidenceRefs []string       `json:"evidence_refs"`
	LLMAssisted  bool           `json:"llm_assisted"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	versionID, ok := pathUUID(w, r, "versionID")
	if !ok {
		return
	}
	sections, err := h.service.ListForVersion(ctx, requestcontext.OrgID(ctx), versionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sections)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	versionID, ok := pathUUID(w, r, "versionID")
	if !ok {
		return
	}
	sec, err := h.service.Get(ctx, requestcontext.OrgID(ctx), versionID, chi.URLParam(r, "sectionKey"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sec)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	versionID, ok := pathUUID(w, r, "versionID")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[updateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sec, err := h.service.UpdateContent(ctx, requestcontext.OrgID(ctx), versionID,
		chi.URLParam(r, "sectionKey"), req.Content, req.EvidenceRefs, req.LLMAssisted,
		requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "section updated",
		"request_id", requestID,
		"version_id", versionID.String(),
		"section_key", sec.SectionKey,
		"completeness_score", sec.CompletenessScore,
	)
	httputil.WriteJSON(w, http.StatusOK, sec)
}

func (h *Handler) HandleCompleteness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	versionID, ok := pathUUID(w, r, "versionID")
	if !ok {
		return
	}
	report, err := h.service.Report(ctx, requestcontext.OrgID(ctx), versionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
