package domain

import (
	"strings"
	"time"
)

// BookingStatus values match the wire values of the bundled bookings asset.
type BookingStatus string

const (
	BookingScheduled BookingStatus = "Programado"
	BookingCompleted BookingStatus = "Completado"
	BookingCancelled BookingStatus = "Cancelado"
)

// Booking is a reservation record from the read-only reference asset. The
// same record serves the seeker view (contact = professional) and the
// professional view (contact = client).
type Booking struct {
	ID           string        `json:"id"`
	Title        string        `json:"titulo"`
	Professional string        `json:"profesional"`
	Place        string        `json:"lugar"`
	Email        string        `json:"email"`
	Phone        string        `json:"celular"`
	StartsAt     time.Time     `json:"fechaInicio"`
	EndsAt       *time.Time    `json:"fechaFin,omitempty"`
	OrderNumber  string        `json:"numeroOrden"`
	Status       BookingStatus `json:"estado,omitempty"`
	Description  string        `json:"descripcion,omitempty"`
	Client       string        `json:"cliente"`
	ClientEmail  string        `json:"emailCliente,omitempty"`
	ClientPhone  string        `json:"celularCliente,omitempty"`
}

// SearchText is the lowercase haystack the booking search matches against.
func (b Booking) SearchText() string {
	return strings.ToLower(strings.Join([]string{
		b.Title,
		b.Professional,
		b.Place,
		b.Email,
		b.Phone,
		b.OrderNumber,
		b.Description,
		b.Client,
		b.ClientEmail,
		b.ClientPhone,
	}, " "))
}

// InvoiceStatus values for the payment history view.
type InvoiceStatus string

const (
	InvoicePaid     InvoiceStatus = "Pagada"
	InvoicePending  InvoiceStatus = "Pendiente"
	InvoiceRejected InvoiceStatus = "Pago Rechazado"
)

// Invoice is one row of the payment history.
type Invoice struct {
	ID        string        `json:"id"`
	Date      string        `json:"fecha"` // YYYY-MM-DD
	Service   string        `json:"servicio"`
	AmountCOP int64         `json:"montoCOP"`
	Status    InvoiceStatus `json:"estado"`
	Method    string        `json:"metodoPago"`
}

// SampleInvoices is the demo payment history shown until real billing exists.
func SampleInvoices() []Invoice {
	return []Invoice{
		{ID: "FACT-00123", Date: "2024-08-15", Service: "Entrenamiento", AmountCOP: 180000, Status: InvoicePaid, Method: "Nequi"},
		{ID: "FACT-00124", Date: "2025-05-17", Service: "Clases", AmountCOP: 120000, Status: InvoiceRejected, Method: "Bancolombia"},
		{ID: "FACT-00125", Date: "2025-02-01", Service: "Desarrollo Web", AmountCOP: 1500000, Status: InvoicePaid, Method: "Efectivo"},
	}
}
