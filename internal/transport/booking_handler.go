package transport

import (
	"context"
	"errors"
	"net/http"

	"serviprox/internal/domain"
	"serviprox/internal/middleware"
	"serviprox/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BookingHandler handles HTTP requests for the reservations and payment
// history views
type BookingHandler struct {
	bookings service.BookingService
	logger   *zap.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookings service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		logger:   logger,
	}
}

// RegisterRoutes registers all booking routes
func (h *BookingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/bookings", h.ListBookings)
	r.Get("/api/invoices", h.ListInvoices)
}

// BookingsResponse wraps the reference data. Warning is set when the asset
// failed to load and the sample fallback is being served instead.
type BookingsResponse struct {
	Bookings []domain.Booking `json:"bookings"`
	Warning  string           `json:"warning,omitempty"`
}

// ListBookings fetches the bookings asset, applying an optional q search.
// A failed fetch degrades to the bundled sample with a warning; a cancelled
// request is dropped silently.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	resp := BookingsResponse{}

	bookings, err := h.bookings.Fetch(r.Context())
	switch {
	case err == nil:
		resp.Bookings = bookings
	case errors.Is(err, context.Canceled):
		// Client went away mid-fetch; nothing to report.
		return
	default:
		h.logger.Warn("Bookings fetch failed, serving sample data", zap.Error(err))
		resp.Bookings = h.bookings.Fallback()
		resp.Warning = "Error al cargar las reservas"
	}

	resp.Bookings = h.bookings.Search(resp.Bookings, r.URL.Query().Get("q"))
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// ListInvoices returns the payment history, optionally restricted by the
// estado and metodo query filters.
func (h *BookingHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("estado")
	method := r.URL.Query().Get("metodo")

	invoices := []domain.Invoice{}
	for _, inv := range domain.SampleInvoices() {
		if status != "" && string(inv.Status) != status {
			continue
		}
		if method != "" && inv.Method != method {
			continue
		}
		invoices = append(invoices, inv)
	}

	middleware.RespondWithJSON(w, http.StatusOK, invoices)
}
