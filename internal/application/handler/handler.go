// Package handler wires registration workflow endpoints to the application
// service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventhub/internal/application/models"
	id "eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/httputil"
	"eventhub/pkg/requestcontext"
)

// Service defines the interface for registration workflow operations.
type Service interface {
	Apply(ctx context.Context, eventID id.EventID, contactInfo map[string]any, message string) (*models.Application, error)
	Approve(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	Reject(ctx context.Context, appID id.ApplicationID, comment string) (*models.Application, error)
	Cancel(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	Get(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Application, error)
	ListByApplicant(ctx context.Context, userID id.UserID) ([]*models.Application, error)
}

// Handler wires registration endpoints to the application service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an application handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts registration endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events/{eventID}/applications", h.HandleApply)
	r.Get("/events/{eventID}/applications", h.HandleListByEvent)
	r.Get("/users/me/applications", h.HandleListMine)

	r.Route("/applications", func(r chi.Router) {
		r.Get("/{applicationID}", h.HandleGet)
		r.Post("/{applicationID}/approve", h.HandleApprove)
		r.Post("/{applicationID}/reject", h.HandleReject)
		r.Post("/{applicationID}/cancel", h.HandleCancel)
	})
}

type applyRequest struct {
	ContactInfo map[string]any `json:"contact_info"`
	Message     string         `json:"message"`
}

type rejectRequest struct {
	Comment string `json:"comment"`
}

// HandleApply handles POST /events/{eventID}/applications requests. The
// caller becomes the applicant.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !requestcontext.ActorID(ctx).Valid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "caller identity required"))
		return
	}
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req applyRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
			return
		}
	}

	app, err := h.service.Apply(ctx, eventID, req.ContactInfo, req.Message)
	if err != nil {
		h.logger.WarnContext(ctx, "application submission failed",
			"request_id", requestcontext.RequestID(ctx), "event_id", eventID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, app)
}

// HandleListByEvent handles GET /events/{eventID}/applications requests.
func (h *Handler) HandleListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	apps, err := h.service.ListByEvent(r.Context(), eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeApplications(w, apps)
}

// HandleListMine handles GET /users/me/applications requests.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	actorID := requestcontext.ActorID(r.Context())
	if !actorID.Valid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "caller identity required"))
		return
	}

	apps, err := h.service.ListByApplicant(r.Context(), actorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeApplications(w, apps)
}

// HandleGet handles GET /applications/{applicationID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Get(r.Context(), appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

// HandleApprove handles POST /applications/{applicationID}/approve requests.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, func(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
		return h.service.Approve(ctx, appID)
	})
}

// HandleReject handles POST /applications/{applicationID}/reject requests.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
			return
		}
	}
	h.review(w, r, func(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
		return h.service.Reject(ctx, appID, req.Comment)
	})
}

// HandleCancel handles POST /applications/{applicationID}/cancel requests.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, func(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
		return h.service.Cancel(ctx, appID)
	})
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, op func(context.Context, id.ApplicationID) (*models.Application, error)) {
	ctx := r.Context()

	if !requestcontext.ActorID(ctx).Valid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "caller identity required"))
		return
	}
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := op(ctx, appID)
	if err != nil {
		h.logger.WarnContext(ctx, "application operation failed",
			"request_id", requestcontext.RequestID(ctx), "application_id", appID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func writeApplications(w http.ResponseWriter, apps []*models.Application) {
	if apps == nil {
		apps = []*models.Application{}
	}
	httputil.WriteJSON(w, http.StatusOK, apps)
}
