package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"serviprox/internal/middleware"
	"serviprox/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PublishRequest represents a publish submission payload
type PublishRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
	Price       string `json:"price"`

	Days      []string `json:"days,omitempty"`
	StartTime string   `json:"start_time,omitempty"`
	EndTime   string   `json:"end_time,omitempty"`

	Country      string `json:"country,omitempty"`
	Department   string `json:"department,omitempty"`
	City         string `json:"city,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	Address      string `json:"address,omitempty"`

	Images []service.ImageUpload `json:"images,omitempty"`
}

func (req PublishRequest) toForm() service.PublishForm {
	return service.PublishForm{
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		Price:        req.Price,
		Days:         req.Days,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Country:      req.Country,
		Department:   req.Department,
		City:         req.City,
		Neighborhood: req.Neighborhood,
		Address:      req.Address,
		Images:       req.Images,
	}
}

// PublishHandler handles HTTP requests for user-authored listings
type PublishHandler struct {
	publisher service.PublisherService
	logger    *zap.Logger
}

// NewPublishHandler creates a new PublishHandler
func NewPublishHandler(publisher service.PublisherService, logger *zap.Logger) *PublishHandler {
	return &PublishHandler{
		publisher: publisher,
		logger:    logger,
	}
}

// RegisterRoutes registers all publication routes
func (h *PublishHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/publications", func(r chi.Router) {
		r.Get("/", h.ListPublications)
		r.Post("/", h.Publish)
		r.Delete("/{id}", h.Unpublish)
	})
}

// Publish runs a submission through the publish flow: edit, validate,
// persist. Every failing field is reported in one response.
func (h *PublishHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("Publish decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flow := service.NewPublishFlow(h.publisher)
	if err := flow.Edit(req.toForm()); err != nil {
		h.logger.Error("Publish flow rejected edit", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to publish service")
		return
	}

	if err := flow.Submit(); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			middleware.RespondWithValidationErrors(w, toValidationErrors(verr))
			return
		}
		h.logger.Error("Publish submit failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to publish service")
		return
	}

	if err := flow.Persist(r.Context()); err != nil {
		h.logger.Error("Publish persist failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to publish service")
		return
	}

	record := flow.Record()
	h.logger.Info("Service published", zap.String("id", record.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, record)
}

// ListPublications returns the user's stored records, newest first
func (h *PublishHandler) ListPublications(w http.ResponseWriter, r *http.Request) {
	pubs, err := h.publisher.Publications(r.Context())
	if err != nil {
		h.logger.Error("Failed to list publications", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list publications")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, pubs)
}

// Unpublish removes a user-authored listing; removing an unknown id succeeds
func (h *PublishHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing publication id")
		return
	}

	if err := h.publisher.Unpublish(r.Context(), id); err != nil {
		h.logger.Error("Failed to remove publication", zap.String("id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove publication")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "publication removed"})
}

func toValidationErrors(verr *service.ValidationError) []middleware.ValidationError {
	out := make([]middleware.ValidationError, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, middleware.ValidationError{Field: f.Field, Message: f.Message})
	}
	return out
}
