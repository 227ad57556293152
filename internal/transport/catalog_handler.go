package transport

import (
	"net/http"
	"strconv"

	"serviprox/internal/middleware"
	"serviprox/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler handles HTTP requests for catalog browsing and favorites
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/services", h.ListServices)
	r.Get("/api/favorites", h.ListFavorites)
	r.Post("/api/services/{id}/favorite", h.ToggleFavorite)
}

// ServicesResponse wraps the filtered catalog
type ServicesResponse struct {
	Services []service.CatalogEntry `json:"services"`
	Total    int                    `json:"total"`
}

// FavoritesResponse wraps the favorite id set
type FavoritesResponse struct {
	Favorites []string `json:"favorites"`
}

// ListCategories returns the fixed category set
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.Categories())
}

// ListServices returns the merged catalog restricted by the query filters:
// category, q (free text), location, min_rating, max_price.
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	spec, err := filterSpecFromQuery(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.catalog.Browse(r.Context(), spec)
	if err != nil {
		h.logger.Error("Failed to browse catalog", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load services")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ServicesResponse{
		Services: entries,
		Total:    len(entries),
	})
}

// ListFavorites returns the favorited listing ids
func (h *CatalogHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := h.catalog.Favorites(r.Context())
	if err != nil {
		h.logger.Error("Failed to load favorites", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load favorites")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, FavoritesResponse{Favorites: ids})
}

// ToggleFavorite flips the favorite state of a listing id
func (h *CatalogHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing listing id")
		return
	}

	ids, err := h.catalog.ToggleFavorite(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to toggle favorite", zap.String("listing_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to toggle favorite")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, FavoritesResponse{Favorites: ids})
}

func filterSpecFromQuery(r *http.Request) (service.FilterSpec, error) {
	q := r.URL.Query()

	spec := service.FilterSpec{
		CategoryID:        q.Get("category"),
		FreeText:          q.Get("q"),
		LocationText:      q.Get("location"),
		MaxPriceInclusive: service.DefaultMaxPrice,
	}

	if raw := q.Get("min_rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return service.FilterSpec{}, errInvalidQueryParam("min_rating")
		}
		spec.MinRating = rating
	}

	if raw := q.Get("max_price"); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return service.FilterSpec{}, errInvalidQueryParam("max_price")
		}
		spec.MaxPriceInclusive = price
	}

	return spec, nil
}

type queryParamError string

func errInvalidQueryParam(name string) error {
	return queryParamError(name)
}

func (e queryParamError) Error() string {
	return "invalid query parameter: " + string(e)
}
