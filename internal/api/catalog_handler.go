package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dcastillo/tasktrail-api/internal/api/shared"
	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/service"
)

// CatalogHandler handles tag and task template API requests.
type CatalogHandler struct {
	catalog service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler with the given dependencies.
func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// CreateTag handles POST /tags.
func (h *CatalogHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	tag, err := h.catalog.CreateTag(r.Context(), req.Name, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create tag")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, tag)
}

// GetTag handles GET /tags/{id}.
func (h *CatalogHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tag, err := h.catalog.GetTag(r.Context(), tagID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tag")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tag)
}

// ListTags handles GET /tags.
func (h *CatalogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.ListTags(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tags")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tags)
}

// CreateTemplate handles POST /templates.
func (h *CatalogHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	template, err := domain.NewTaskTemplate(
		req.Name,
		req.Description,
		domain.TaskPriority(req.DefaultPriority),
		req.DefaultEstimatedHours,
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if len(req.Metadata) > 0 {
		template.Metadata = req.Metadata
	}

	if err := h.catalog.CreateTemplate(r.Context(), template); err != nil {
		HandleAPIError(w, r, err, "Failed to create template")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, template)
}

// GetTemplate handles GET /templates/{name}.
func (h *CatalogHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Template name is required")
		return
	}

	template, err := h.catalog.GetTemplate(r.Context(), name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve template")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, template)
}

// ListTemplates handles GET /templates.
func (h *CatalogHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.catalog.ListTemplates(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list templates")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, templates)
}
