package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"serviprox/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrBadPayload means the bookings asset decoded but had neither of the two
// accepted shapes. Unlike storage parse faults this one is surfaced: the
// asset is reference data the user is explicitly waiting on.
var ErrBadPayload = errors.New("invalid bookings payload")

// BookingService loads the read-only reservations asset and searches it.
type BookingService interface {
	// Fetch GETs the bookings document. It accepts either a bare JSON array
	// or {"reservas": [...]}. The request follows ctx: a cancelled fetch
	// returns the context error with no side effects, and callers treat it
	// as silence rather than a failure.
	Fetch(ctx context.Context) ([]domain.Booking, error)
	// Fallback is the bundled sample shown when Fetch fails.
	Fallback() []domain.Booking
	// Search restricts bookings to those whose joined text contains term,
	// case-insensitively, preserving order.
	Search(bookings []domain.Booking, term string) []domain.Booking
}

type bookingService struct {
	client *http.Client
	url    string
	logger *zap.Logger
}

// NewBookingService creates a new instance of BookingService fetching from
// url. A nil client falls back to http.DefaultClient.
func NewBookingService(client *http.Client, url string, logger *zap.Logger) BookingService {
	if client == nil {
		client = http.DefaultClient
	}
	return &bookingService{
		client: client,
		url:    url,
		logger: logger,
	}
}

// bookingsEnvelope is the wrapped form of the asset.
type bookingsEnvelope struct {
	Reservas []domain.Booking `json:"reservas"`
}

func (s *bookingService) Fetch(ctx context.Context) ([]domain.Booking, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build bookings request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch bookings: HTTP %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	// Bare array first, wrapped object second; anything else is a hard
	// format error, not retried.
	var bookings []domain.Booking
	if err := json.Unmarshal(raw, &bookings); err == nil && bookings != nil {
		return bookings, nil
	}

	var envelope bookingsEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Reservas != nil {
		return envelope.Reservas, nil
	}

	return nil, ErrBadPayload
}

func (s *bookingService) Fallback() []domain.Booking {
	start := time.Date(2025, time.March, 12, 14, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	return []domain.Booking{
		{
			ID:           uuid.NewString(),
			Title:        "Mantenimiento General",
			Professional: "Javier Gómez",
			Place:        "Bogotá",
			Email:        "javier@serviprox.co",
			Phone:        "+573001112233",
			StartsAt:     start,
			EndsAt:       &end,
			OrderNumber:  "ORD-000001",
			Status:       domain.BookingScheduled,
			Client:       "Laura Méndez",
		},
	}
}

func (s *bookingService) Search(bookings []domain.Booking, term string) []domain.Booking {
	k := strings.ToLower(strings.TrimSpace(term))
	if k == "" {
		return bookings
	}

	matched := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if strings.Contains(b.SearchText(), k) {
			matched = append(matched, b)
		}
	}
	return matched
}
