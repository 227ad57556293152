package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"serviprox/internal/store"

	"go.uber.org/zap"
)

// FavoritesKey is the store key holding the favorited listing ids, a JSON
// array in insertion order.
const FavoritesKey = "mis_favoritos"

// FavoritesRepository maintains the set of favorited listing ids. The set is
// persisted in full on every toggle; callers get a map so the per-card
// membership check stays O(1).
type FavoritesRepository interface {
	// Load returns the favorite id set. Missing or corrupt data loads as an
	// empty set, never as an error.
	Load(ctx context.Context) (map[string]struct{}, error)
	// Toggle inserts id if absent or removes it if present, persists the
	// updated set and returns it.
	Toggle(ctx context.Context, id string) (map[string]struct{}, error)
}

type favoritesRepository struct {
	kv      store.KV
	mutator *store.Mutator
	logger  *zap.Logger
}

// NewFavoritesRepository creates a new instance of FavoritesRepository.
func NewFavoritesRepository(kv store.KV, mutator *store.Mutator, logger *zap.Logger) FavoritesRepository {
	return &favoritesRepository{
		kv:      kv,
		mutator: mutator,
		logger:  logger,
	}
}

func (r *favoritesRepository) decodeIDs(raw string, exists bool) []string {
	if !exists || raw == "" {
		return []string{}
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		r.logger.Warn("Stored favorites are corrupt, treating as empty",
			zap.String("key", FavoritesKey),
			zap.Error(err),
		)
		return []string{}
	}
	return ids
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (r *favoritesRepository) Load(ctx context.Context) (map[string]struct{}, error) {
	raw, err := r.kv.Get(ctx, FavoritesKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}
	return toSet(r.decodeIDs(raw, true)), nil
}

func (r *favoritesRepository) Toggle(ctx context.Context, id string) (map[string]struct{}, error) {
	var result map[string]struct{}

	err := r.mutator.Update(ctx, FavoritesKey, func(current string, exists bool) (string, error) {
		ids := r.decodeIDs(current, exists)

		present := false
		next := ids[:0]
		for _, existing := range ids {
			if existing == id {
				present = true
				continue
			}
			next = append(next, existing)
		}
		if !present {
			next = append(next, id)
		}

		result = toSet(next)

		data, err := json.Marshal(next)
		if err != nil {
			return "", fmt.Errorf("failed to encode favorites: %w", err)
		}
		return string(data), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	return result, nil
}
