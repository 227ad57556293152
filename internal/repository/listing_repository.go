package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"serviprox/internal/domain"
	"serviprox/internal/store"

	"go.uber.org/zap"
)

// PublicationsKey is the store key holding the user-authored listing
// collection, a JSON array ordered newest first.
const PublicationsKey = "serviprox_publicaciones"

// ListingRepository merges the build-time catalog with user-authored
// publications persisted in the key-value store.
type ListingRepository interface {
	// LoadAll returns the merged catalog: user publications newest first,
	// then the static listings in declaration order.
	LoadAll(ctx context.Context) ([]domain.Listing, error)
	// Publications returns the stored user-authored records, newest first.
	Publications(ctx context.Context) ([]domain.Publication, error)
	// AddPublication prepends a record and rewrites the stored collection.
	AddPublication(ctx context.Context, p *domain.Publication) error
	// RemovePublication drops the record with the given id and rewrites the
	// collection. A missing id is a no-op, not an error.
	RemovePublication(ctx context.Context, id string) error
}

type listingRepository struct {
	kv      store.KV
	mutator *store.Mutator
	static  []domain.Listing
	logger  *zap.Logger
}

// NewListingRepository creates a new instance of ListingRepository.
func NewListingRepository(kv store.KV, mutator *store.Mutator, static []domain.Listing, logger *zap.Logger) ListingRepository {
	return &listingRepository{
		kv:      kv,
		mutator: mutator,
		static:  static,
		logger:  logger,
	}
}

// decodePublications parses a stored collection. Missing or corrupt data
// degrades to an empty collection; a parse fault never reaches the caller.
func (r *listingRepository) decodePublications(raw string, exists bool) []domain.Publication {
	if !exists || raw == "" {
		return []domain.Publication{}
	}

	var pubs []domain.Publication
	if err := json.Unmarshal([]byte(raw), &pubs); err != nil {
		r.logger.Warn("Stored publications are corrupt, treating as empty",
			zap.String("key", PublicationsKey),
			zap.Error(err),
		)
		return []domain.Publication{}
	}
	return pubs
}

func (r *listingRepository) Publications(ctx context.Context) ([]domain.Publication, error) {
	raw, err := r.kv.Get(ctx, PublicationsKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []domain.Publication{}, nil
		}
		return nil, fmt.Errorf("failed to read publications: %w", err)
	}
	return r.decodePublications(raw, true), nil
}

func (r *listingRepository) LoadAll(ctx context.Context) ([]domain.Listing, error) {
	pubs, err := r.Publications(ctx)
	if err != nil {
		return nil, err
	}

	// Stored entries come first, already newest first; static entries are
	// appended in declaration order. Ids are deliberately not de-duplicated
	// between the two sources: a colliding stored entry simply precedes the
	// static one.
	listings := make([]domain.Listing, 0, len(pubs)+len(r.static))
	for _, p := range pubs {
		listings = append(listings, p.ToListing())
	}
	listings = append(listings, r.static...)

	return listings, nil
}

func (r *listingRepository) AddPublication(ctx context.Context, p *domain.Publication) error {
	err := r.mutator.Update(ctx, PublicationsKey, func(current string, exists bool) (string, error) {
		pubs := r.decodePublications(current, exists)
		next := append([]domain.Publication{*p}, pubs...)

		data, err := json.Marshal(next)
		if err != nil {
			return "", fmt.Errorf("failed to encode publications: %w", err)
		}
		return string(data), nil
	})
	if err != nil {
		return fmt.Errorf("failed to add publication: %w", err)
	}

	r.logger.Info("Publication stored",
		zap.String("id", p.ID),
		zap.String("category_id", p.CategoryID),
	)
	return nil
}

func (r *listingRepository) RemovePublication(ctx context.Context, id string) error {
	err := r.mutator.Update(ctx, PublicationsKey, func(current string, exists bool) (string, error) {
		pubs := r.decodePublications(current, exists)

		next := pubs[:0]
		for _, p := range pubs {
			if p.ID != id {
				next = append(next, p)
			}
		}

		data, err := json.Marshal(next)
		if err != nil {
			return "", fmt.Errorf("failed to encode publications: %w", err)
		}
		return string(data), nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove publication: %w", err)
	}

	return nil
}
