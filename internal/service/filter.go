package service

import (
	"strings"

	"serviprox/internal/domain"
)

// FilterSpec is the combined set of active catalog filter predicates. A zero
// value matches everything with a non-negative price cap of zero, so callers
// normally seed MaxPriceInclusive from DefaultMaxPrice.
type FilterSpec struct {
	CategoryID        string
	FreeText          string
	LocationText      string
	MinRating         float64
	MaxPriceInclusive int64
}

// DefaultMaxPrice is the upper bound of the price slider, used when no
// explicit cap is given.
const DefaultMaxPrice = 200000

// FilterListings returns the listings matching spec, preserving input order.
// It is a pure function: the input slice is never mutated and an empty
// result is a valid, non-nil slice.
func FilterListings(listings []domain.Listing, spec FilterSpec) []domain.Listing {
	term := strings.ToLower(strings.TrimSpace(spec.FreeText))
	loc := strings.ToLower(strings.TrimSpace(spec.LocationText))

	matched := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if matches(l, spec, term, loc) {
			matched = append(matched, l)
		}
	}
	return matched
}

func matches(l domain.Listing, spec FilterSpec, term, loc string) bool {
	if spec.CategoryID != "" && spec.CategoryID != "all" && l.CategoryID != spec.CategoryID {
		return false
	}

	if term != "" {
		haystacks := []string{
			l.Title,
			l.ProfessionalName,
			l.CategoryLabel,
			l.DisplayPrice(),
			l.Location,
		}
		found := false
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if loc != "" {
		byLocation := strings.Contains(strings.ToLower(l.Location), loc) ||
			(strings.Contains(loc, "remoto") && l.IsRemote)
		if !byLocation {
			return false
		}
	}

	if l.Rating < spec.MinRating {
		return false
	}

	if l.Price > spec.MaxPriceInclusive {
		return false
	}

	return true
}
