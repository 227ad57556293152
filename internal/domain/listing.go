package domain

import (
	"strings"
	"time"
)

// PlaceholderImageURL is shown for listings published without photos.
const PlaceholderImageURL = "https://via.placeholder.com/300?text=Sin+Imagen"

// DefaultProfessionalName labels user-authored listings, which carry no
// professional profile of their own.
const DefaultProfessionalName = "Usuario Local"

// Category is one entry of the fixed category set shown in the catalog
// carousel. "all" is a pseudo-category matching everything.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Categories is the fixed category set, in carousel order.
var Categories = []Category{
	{ID: "all", Label: "Todos"},
	{ID: "tecno_diseno", Label: "Tecnología y Diseño"},
	{ID: "mantenimiento", Label: "Mantenimiento y Reparaciones"},
	{ID: "cuidado_mascota", Label: "Cuidado de mascotas"},
	{ID: "seguridad_privada", Label: "Servicio de seguridad privada"},
	{ID: "foto_video", Label: "Foto y Video"},
	{ID: "educacion_tutoria", Label: "Educación y Entrenador"},
}

// CategoryLabel resolves a category id to its display label. Unknown or
// legacy ids resolve to the empty string rather than an error.
func CategoryLabel(id string) string {
	for _, c := range Categories {
		if c.ID == id {
			return c.Label
		}
	}
	return ""
}

// Listing is a service offering shown in the catalog, either compiled in
// (static) or authored by the user through the publisher.
type Listing struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	CategoryID       string  `json:"category_id"`
	CategoryLabel    string  `json:"category_label"`
	Price            int64   `json:"price"` // COP, no minor units
	ProfessionalName string  `json:"professional_name"`
	Rating           float64 `json:"rating"` // [0.0, 5.0]
	Location         string  `json:"location"`
	IsRemote         bool    `json:"is_remote"`
	ImageURL         string  `json:"image_url,omitempty"`
}

// DisplayPrice renders the price the way the catalog card shows it,
// e.g. 75000 -> "$75.000". The free-text filter matches against this form.
func (l Listing) DisplayPrice() string {
	return "$" + FormatCOP(l.Price)
}

// Publication is a user-authored listing record as persisted under the
// serviprox_publicaciones store key.
type Publication struct {
	ID            string    `json:"id"`
	Title         string    `json:"titulo"`
	Description   string    `json:"descripcion"`
	CategoryID    string    `json:"categoriaId"`
	CategoryLabel string    `json:"categoriaNombre"`
	PriceCOP      int64     `json:"tarifaCOP"`
	Availability  string    `json:"disponibilidad"`
	Location      string    `json:"ubicacion"`
	Images        []string  `json:"imagenes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ToListing maps a stored publication into a catalog listing. The remote
// flag is derived from the free-text location; new publications start with
// a 5.0 rating and fall back to the placeholder image.
func (p Publication) ToListing() Listing {
	image := PlaceholderImageURL
	if len(p.Images) > 0 && p.Images[0] != "" {
		image = p.Images[0]
	}

	return Listing{
		ID:               p.ID,
		Title:            p.Title,
		CategoryID:       p.CategoryID,
		CategoryLabel:    p.CategoryLabel,
		Price:            p.PriceCOP,
		ProfessionalName: DefaultProfessionalName,
		Rating:           5.0,
		Location:         p.Location,
		IsRemote:         strings.Contains(strings.ToLower(p.Location), "remoto"),
		ImageURL:         image,
	}
}

// FormatCOP renders an amount with es-CO thousands separators: 75000 -> "75.000".
func FormatCOP(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := []byte{}
	if amount == 0 {
		digits = append(digits, '0')
	}
	for amount > 0 {
		digits = append(digits, byte('0'+amount%10))
		amount /= 10
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i := len(digits) - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
		if i > 0 && i%3 == 0 {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// StaticListings returns the build-time catalog in declaration order. The
// merged catalog always appends these after user-authored listings.
func StaticListings() []Listing {
	return []Listing{
		{
			ID:               "s1",
			Title:            "Desarrollo Web Frontend",
			CategoryID:       "tecno_diseno",
			CategoryLabel:    "Tecnología",
			Price:            75000,
			ProfessionalName: "Carlos Rodríguez",
			Rating:           4.7,
			Location:         "Remoto",
			IsRemote:         true,
			ImageURL:         "https://images.unsplash.com/photo-1587620962725-abab7fe55159?q=80&w=2000&auto=format&fit=crop",
		},
		{
			ID:               "s2",
			Title:            "Entrenamiento Fitness Personalizado",
			CategoryID:       "educacion_tutoria",
			CategoryLabel:    "Entrenador Personal",
			Price:            50000,
			ProfessionalName: "Ana García",
			Rating:           4.9,
			Location:         "Bogotá",
			ImageURL:         "https://images.unsplash.com/photo-1549060279-7e168fcee0c2?q=80&w=2000&auto=format&fit=crop",
		},
		{
			ID:               "s3",
			Title:            "Servicios de Contratista General",
			CategoryID:       "mantenimiento",
			CategoryLabel:    "Contratista",
			Price:            80000,
			ProfessionalName: "Javier Gómez",
			Rating:           4.5,
			Location:         "Bogotá y alrededores, Colombia",
			ImageURL:         "https://i.ibb.co/sdd1z3t3/Servicios-Generales-Olusa-Contratisas-Generales-Peru.jpg",
		},
	}
}
