// Package handler wires event endpoints to the event service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eventhub/internal/event/models"
	"eventhub/internal/event/service"
	id "eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/httputil"
	"eventhub/pkg/requestcontext"
)

// Service defines the interface for event operations.
type Service interface {
	Create(ctx context.Context, input service.CreateInput) (*models.Event, error)
	Get(ctx context.Context, eventID id.EventID) (*models.Event, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Event, error)
	Publish(ctx context.Context, eventID id.EventID) (*models.Event, error)
	Cancel(ctx context.Context, eventID id.EventID) (*models.Event, error)
	Complete(ctx context.Context, eventID id.EventID) (*models.Event, error)
	UpdateSchedule(ctx context.Context, eventID id.EventID, schedule models.Schedule) (*models.Event, error)
	UpdateLocation(ctx context.Context, eventID id.EventID, location models.Location) (*models.Event, error)
	UpdateMode(ctx context.Context, eventID id.EventID, mode models.Mode) (*models.Event, error)
	SetMaxParticipants(ctx context.Context, eventID id.EventID, max int) (*models.Event, error)
}

// Handler wires event endpoints to the event service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an event handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts event endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{eventID}", h.HandleGet)
		r.Post("/{eventID}/publish", h.transition(func(ctx context.Context, eventID id.EventID) (*models.Event, error) {
			return h.service.Publish(ctx, eventID)
		}))
		r.Post("/{eventID}/cancel", h.transition(func(ctx context.Context, eventID id.EventID) (*models.Event, error) {
			return h.service.Cancel(ctx, eventID)
		}))
		r.Post("/{eventID}/complete", h.transition(func(ctx context.Context, eventID id.EventID) (*models.Event, error) {
			return h.service.Complete(ctx, eventID)
		}))
		r.Put("/{eventID}/schedule", h.HandleUpdateSchedule)
		r.Put("/{eventID}/location", h.HandleUpdateLocation)
		r.Put("/{eventID}/mode", h.HandleUpdateMode)
		r.Put("/{eventID}/capacity", h.HandleSetCapacity)
	})
}

// HandleCreate handles POST /events requests. The caller becomes the event's
// author.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !requestcontext.ActorID(ctx).Valid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "caller identity required"))
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	input, err := req.toInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	event, err := h.service.Create(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "event creation failed",
			"request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, event)
}

// HandleList handles GET /events requests with optional status, mode,
// category_id, author_id, featured, upcoming, q, limit and offset query
// filters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

// HandleGet handles GET /events/{eventID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	event, err := h.service.Get(r.Context(), eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) transition(op func(context.Context, id.EventID) (*models.Event, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		event, err := op(r.Context(), eventID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, event)
	}
}

// HandleUpdateSchedule handles PUT /events/{eventID}/schedule requests.
func (h *Handler) HandleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	updateBody(w, r, func(ctx context.Context, eventID id.EventID, req scheduleRequest) (*models.Event, error) {
		schedule, err := req.toSchedule()
		if err != nil {
			return nil, err
		}
		return h.service.UpdateSchedule(ctx, eventID, schedule)
	})
}

// HandleUpdateLocation handles PUT /events/{eventID}/location requests.
func (h *Handler) HandleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	updateBody(w, r, func(ctx context.Context, eventID id.EventID, req locationRequest) (*models.Event, error) {
		location, err := req.toLocation()
		if err != nil {
			return nil, err
		}
		return h.service.UpdateLocation(ctx, eventID, location)
	})
}

// HandleUpdateMode handles PUT /events/{eventID}/mode requests.
func (h *Handler) HandleUpdateMode(w http.ResponseWriter, r *http.Request) {
	updateBody(w, r, func(ctx context.Context, eventID id.EventID, req modeRequest) (*models.Event, error) {
		mode, err := models.ParseMode(req.Mode)
		if err != nil {
			return nil, err
		}
		return h.service.UpdateMode(ctx, eventID, mode)
	})
}

// HandleSetCapacity handles PUT /events/{eventID}/capacity requests.
func (h *Handler) HandleSetCapacity(w http.ResponseWriter, r *http.Request) {
	updateBody(w, r, func(ctx context.Context, eventID id.EventID, req capacityRequest) (*models.Event, error) {
		return h.service.SetMaxParticipants(ctx, eventID, req.MaxParticipants)
	})
}

func updateBody[T any](w http.ResponseWriter, r *http.Request, op func(context.Context, id.EventID, T) (*models.Event, error)) {
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	event, err := op(r.Context(), eventID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}

func filterFromQuery(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	var filter models.Filter

	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.Status = status
	}
	if raw := q.Get("mode"); raw != "" {
		mode, err := models.ParseMode(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.Mode = mode
	}
	if raw := q.Get("category_id"); raw != "" {
		categoryID, err := id.ParseCategoryID(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.CategoryID = categoryID
	}
	if raw := q.Get("author_id"); raw != "" {
		authorID, err := id.ParseUserID(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.AuthorID = authorID
	}
	if raw := q.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return models.Filter{}, dErrors.New(dErrors.CodeValidation, "featured must be a boolean")
		}
		filter.Featured = &featured
	}
	if raw := q.Get("upcoming"); raw != "" {
		upcoming, err := strconv.ParseBool(raw)
		if err != nil {
			return models.Filter{}, dErrors.New(dErrors.CodeValidation, "upcoming must be a boolean")
		}
		if upcoming {
			now := requestcontext.Now(r.Context())
			filter.UpcomingAfter = &now
		}
	}
	filter.Search = q.Get("q")

	var err error
	if filter.Limit, err = positiveQueryInt(q.Get("limit")); err != nil {
		return models.Filter{}, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer")
	}
	if filter.Offset, err = positiveQueryInt(q.Get("offset")); err != nil {
		return models.Filter{}, dErrors.New(dErrors.CodeValidation, "offset must be a positive integer")
	}
	return filter, nil
}

func positiveQueryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "must be a positive integer")
	}
	return n, nil
}
