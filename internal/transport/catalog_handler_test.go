package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"serviprox/internal/domain"
	"serviprox/internal/repository"
	"serviprox/internal/service"
	"serviprox/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newCatalogRouter(t *testing.T) chi.Router {
	t.Helper()

	kv := store.NewMemoryStore()
	mutator := store.NewMutator(kv)
	logger := zap.NewNop()

	listings := repository.NewListingRepository(kv, mutator, domain.StaticListings(), logger)
	favorites := repository.NewFavoritesRepository(kv, mutator, logger)
	catalog := service.NewCatalogService(listings, favorites, logger)
	publisher := service.NewPublisherService(listings, logger)

	r := chi.NewRouter()
	NewCatalogHandler(catalog, logger).RegisterRoutes(r)
	NewPublishHandler(publisher, logger).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCatalogHandler_ListCategories(t *testing.T) {
	router := newCatalogRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/categories", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var cats []domain.Category
	if err := json.Unmarshal(w.Body.Bytes(), &cats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(cats) != len(domain.Categories) || cats[0].ID != "all" {
		t.Fatalf("unexpected categories %+v", cats)
	}
}

func TestCatalogHandler_ListServicesWithFilters(t *testing.T) {
	router := newCatalogRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/services?category=tecno_diseno", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp ServicesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 1 || resp.Services[0].ID != "s1" {
		t.Fatalf("expected exactly s1, got %+v", resp)
	}

	w = doJSON(t, router, http.MethodGet, "/api/services?min_rating=4.8", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 1 || resp.Services[0].ID != "s2" {
		t.Fatalf("expected exactly s2, got %+v", resp)
	}
}

func TestCatalogHandler_RejectsMalformedQueryParams(t *testing.T) {
	router := newCatalogRouter(t)

	for _, path := range []string{
		"/api/services?min_rating=alta",
		"/api/services?max_price=mucho",
	} {
		w := doJSON(t, router, http.MethodGet, path, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestCatalogHandler_FavoriteLifecycle(t *testing.T) {
	router := newCatalogRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/services/s2/favorite", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", w.Code)
	}
	var favs FavoritesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &favs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(favs.Favorites) != 1 || favs.Favorites[0] != "s2" {
		t.Fatalf("expected [s2], got %v", favs.Favorites)
	}

	// The flag shows up on the catalog entry
	w = doJSON(t, router, http.MethodGet, "/api/services", nil)
	var resp ServicesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, e := range resp.Services {
		if e.ID == "s2" && !e.IsFavorite {
			t.Error("expected s2 flagged as favorite")
		}
	}

	// Toggling again clears it
	w = doJSON(t, router, http.MethodPost, "/api/services/s2/favorite", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &favs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(favs.Favorites) != 0 {
		t.Fatalf("expected an empty set, got %v", favs.Favorites)
	}
}

func TestPublishHandler_PublishAndBrowse(t *testing.T) {
	router := newCatalogRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/publications", PublishRequest{
		Title:       "Clases de guitarra",
		Description: "Clases personalizadas de guitarra para todos los niveles.",
		CategoryID:  "educacion_tutoria",
		Price:       "$ 45.000",
		Days:        []string{"Lun"},
		StartTime:   "08:00",
		EndTime:     "12:00",
		City:        "Bogotá",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var pub domain.Publication
	if err := json.Unmarshal(w.Body.Bytes(), &pub); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if pub.ID == "" || pub.PriceCOP != 45000 {
		t.Fatalf("unexpected record %+v", pub)
	}

	// The new listing leads the merged catalog
	w = doJSON(t, router, http.MethodGet, "/api/services", nil)
	var resp ServicesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 1+len(domain.StaticListings()) || resp.Services[0].ID != pub.ID {
		t.Fatalf("expected the publication first, got %+v", resp.Services)
	}

	// Unpublish restores the static catalog
	w = doJSON(t, router, http.MethodDelete, "/api/publications/"+pub.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unpublish: expected 200, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/services", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != len(domain.StaticListings()) {
		t.Fatalf("expected the static catalog back, got %d entries", resp.Total)
	}
}

func TestPublishHandler_ReportsEveryFieldError(t *testing.T) {
	router := newCatalogRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/publications", PublishRequest{
		Description: "corta",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var body struct {
		Error struct {
			Details map[string]json.RawMessage `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	raw, ok := body.Error.Details["validation_errors"]
	if !ok {
		t.Fatal("expected validation_errors in the response")
	}
	var fields []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal details: %v", err)
	}
	if len(fields) != 4 {
		t.Fatalf("expected all 4 violations reported at once, got %d: %+v", len(fields), fields)
	}
}

func TestPublishHandler_MalformedBody(t *testing.T) {
	router := newCatalogRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/publications", bytes.NewReader([]byte("}{")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
