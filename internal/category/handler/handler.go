// Package handler wires category endpoints to the category service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventhub/internal/category/models"
	id "eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/httputil"
	"eventhub/pkg/requestcontext"
)

// Service defines the interface for category operations.
type Service interface {
	Create(ctx context.Context, name string) (*models.Category, error)
	Get(ctx context.Context, categoryID id.CategoryID) (*models.Category, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Category, error)
	Activate(ctx context.Context, categoryID id.CategoryID) (*models.Category, error)
	Deactivate(ctx context.Context, categoryID id.CategoryID) (*models.Category, error)
	UpdateAppearance(ctx context.Context, categoryID id.CategoryID, description, color, icon string, sortOrder int) (*models.Category, error)
}

// Handler wires category endpoints to the category service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a category handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts category endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{categoryID}", h.HandleGet)
		r.Post("/{categoryID}/activate", h.HandleActivate)
		r.Post("/{categoryID}/deactivate", h.HandleDeactivate)
		r.Put("/{categoryID}/appearance", h.HandleUpdateAppearance)
	})
}

type createRequest struct {
	Name string `json:"name"`
}

type appearanceRequest struct {
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	SortOrder   int    `json:"sort_order"`
}

// HandleCreate handles POST /categories requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	category, err := h.service.Create(ctx, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "category creation failed",
			"request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, category)
}

// HandleList handles GET /categories requests. With ?active=true only
// active categories are returned.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	categories, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	httputil.WriteJSON(w, http.StatusOK, categories)
}

// HandleGet handles GET /categories/{categoryID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	categoryID, err := id.ParseCategoryID(chi.URLParam(r, "categoryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	category, err := h.service.Get(r.Context(), categoryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, category)
}

// HandleActivate handles POST /categories/{categoryID}/activate requests.
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.Activate)
}

// HandleDeactivate handles POST /categories/{categoryID}/deactivate requests.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.Deactivate)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, op func(context.Context, id.CategoryID) (*models.Category, error)) {
	categoryID, err := id.ParseCategoryID(chi.URLParam(r, "categoryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	category, err := op(r.Context(), categoryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, category)
}

// HandleUpdateAppearance handles PUT /categories/{categoryID}/appearance requests.
func (h *Handler) HandleUpdateAppearance(w http.ResponseWriter, r *http.Request) {
	categoryID, err := id.ParseCategoryID(chi.URLParam(r, "categoryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req appearanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	category, err := h.service.UpdateAppearance(r.Context(), categoryID, req.Description, req.Color, req.Icon, req.SortOrder)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, category)
}
