package service

import (
	"context"
	"fmt"
	"sort"

	"serviprox/internal/domain"
	"serviprox/internal/repository"

	"go.uber.org/zap"
)

// CatalogEntry is a listing decorated with the viewer's favorite flag.
type CatalogEntry struct {
	domain.Listing
	IsFavorite bool `json:"is_favorite"`
}

// CatalogService defines the catalog browsing and favoriting operations.
type CatalogService interface {
	// Browse returns the merged catalog restricted to spec, newest user
	// listings first, each entry carrying its favorite flag.
	Browse(ctx context.Context, spec FilterSpec) ([]CatalogEntry, error)
	// Categories returns the fixed category set in carousel order.
	Categories() []domain.Category
	// Favorites returns the favorited listing ids.
	Favorites(ctx context.Context) ([]string, error)
	// ToggleFavorite flips the favorite state of id and returns the ids of
	// the resulting set.
	ToggleFavorite(ctx context.Context, id string) ([]string, error)
}

type catalogService struct {
	listings  repository.ListingRepository
	favorites repository.FavoritesRepository
	logger    *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(
	listings repository.ListingRepository,
	favorites repository.FavoritesRepository,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		listings:  listings,
		favorites: favorites,
		logger:    logger,
	}
}

func (s *catalogService) Browse(ctx context.Context, spec FilterSpec) ([]CatalogEntry, error) {
	all, err := s.listings.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	favs, err := s.favorites.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	matched := FilterListings(all, spec)

	entries := make([]CatalogEntry, 0, len(matched))
	for _, l := range matched {
		_, fav := favs[l.ID]
		entries = append(entries, CatalogEntry{Listing: l, IsFavorite: fav})
	}

	s.logger.Debug("Catalog browsed",
		zap.Int("candidates", len(all)),
		zap.Int("matched", len(matched)),
		zap.String("category_id", spec.CategoryID),
	)
	return entries, nil
}

func (s *catalogService) Categories() []domain.Category {
	return domain.Categories
}

func (s *catalogService) Favorites(ctx context.Context) ([]string, error) {
	favs, err := s.favorites.Load(ctx)
	if err != nil {
		return nil, err
	}
	return setToIDs(favs), nil
}

func (s *catalogService) ToggleFavorite(ctx context.Context, id string) ([]string, error) {
	favs, err := s.favorites.Toggle(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Favorite toggled",
		zap.String("listing_id", id),
		zap.Int("favorites", len(favs)),
	)
	return setToIDs(favs), nil
}

func setToIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
