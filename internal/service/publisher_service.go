package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"serviprox/internal/domain"
	"serviprox/internal/repository"

	"go.uber.org/zap"
)

const (
	// MaxImages is the upload cap per publication.
	MaxImages = 8
	// MaxImageBytes is the per-image size cap (5 MB).
	MaxImageBytes = 5 * 1024 * 1024
	// MinDescriptionLen counts characters, not bytes, on the trimmed description.
	MinDescriptionLen = 20
)

// acceptedImageTypes are the MIME types the upload dropzone allows.
var acceptedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// FieldError is one human-readable publish-form failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every failing field of a submission at once; the
// form is never partially applied.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, " ")
}

// Messages returns the failure texts in field order.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return msgs
}

// ImageUpload describes one file offered to the publisher. Only metadata is
// validated here; the bytes themselves live with the platform file layer.
type ImageUpload struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}

// PublishForm is the validated input of a publish submission.
type PublishForm struct {
	Title       string
	Description string
	CategoryID  string
	// Price is the locale-formatted tariff string, e.g. "$ 75.000"; every
	// non-digit character is stripped before parsing.
	Price string

	// Availability: selected weekdays plus a daily time window.
	Days      []string
	StartTime string
	EndTime   string

	// Structured service area; empty parts are omitted from the composed
	// location string.
	Country      string
	Department   string
	City         string
	Neighborhood string
	Address      string

	Images []ImageUpload
}

// ParsePriceCOP strips every non-digit from a locale-formatted tariff
// string: "$ 75.000" -> 75000. An all-symbol string parses to zero.
func ParsePriceCOP(s string) int64 {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ComposeAvailability joins the selected weekdays and the daily window into
// the display string stored with the publication.
func ComposeAvailability(days []string, start, end string) string {
	parts := []string{}
	if len(days) > 0 {
		parts = append(parts, strings.Join(days, ", "))
	}
	if start != "" && end != "" {
		parts = append(parts, start+" - "+end)
	}
	return strings.Join(parts, " ")
}

// ComposeLocation joins the structured service area fields with ", ",
// omitting empty parts.
func ComposeLocation(parts ...string) string {
	kept := []string{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// PublisherService validates and persists user-authored listings.
type PublisherService interface {
	// Validate collects every constraint violation of form; nil means the
	// form is acceptable.
	Validate(form PublishForm) *ValidationError
	// Publish validates form, assigns a fresh identifier and persists the
	// record. A *ValidationError lists every failing field; nothing is
	// persisted unless the whole record is accepted.
	Publish(ctx context.Context, form PublishForm) (*domain.Publication, error)
	// Unpublish removes a user-authored listing; a missing id is a no-op.
	Unpublish(ctx context.Context, id string) error
	// Publications returns the user's stored records, newest first.
	Publications(ctx context.Context) ([]domain.Publication, error)
}

type publisherService struct {
	repo   repository.ListingRepository
	logger *zap.Logger

	mu     sync.Mutex
	lastID int64
}

// NewPublisherService creates a new instance of PublisherService.
func NewPublisherService(repo repository.ListingRepository, logger *zap.Logger) PublisherService {
	return &publisherService{
		repo:   repo,
		logger: logger,
	}
}

// Validate collects every constraint violation of form. It returns nil when
// the form is acceptable.
func (s *publisherService) Validate(form PublishForm) *ValidationError {
	var fields []FieldError

	if strings.TrimSpace(form.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Message: "El título es obligatorio."})
	}
	if utf8.RuneCountInString(strings.TrimSpace(form.Description)) < MinDescriptionLen {
		fields = append(fields, FieldError{Field: "description", Message: "La descripción debe tener al menos 20 caracteres."})
	}
	if form.CategoryID == "" {
		fields = append(fields, FieldError{Field: "category_id", Message: "Selecciona una categoría."})
	} else if domain.CategoryLabel(form.CategoryID) == "" || form.CategoryID == "all" {
		fields = append(fields, FieldError{Field: "category_id", Message: "Selecciona una categoría válida."})
	}
	if strings.TrimSpace(form.Price) == "" {
		fields = append(fields, FieldError{Field: "price", Message: "Ingresa la tarifa."})
	}

	if len(form.Images) > MaxImages {
		fields = append(fields, FieldError{
			Field:   "images",
			Message: fmt.Sprintf("Máximo %d imágenes por publicación.", MaxImages),
		})
	}
	for _, img := range form.Images {
		if !acceptedImageTypes[img.MIMEType] {
			fields = append(fields, FieldError{
				Field:   "images",
				Message: fmt.Sprintf("%s (tipo inválido)", img.Name),
			})
			continue
		}
		if img.Size > MaxImageBytes {
			fields = append(fields, FieldError{
				Field:   "images",
				Message: fmt.Sprintf("%s (> 5 MB)", img.Name),
			})
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// nextID derives an identifier from the current time, bumped forward when
// two publishes land on the same millisecond so ids stay strictly
// increasing within a session.
func (s *publisherService) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if now <= s.lastID {
		now = s.lastID + 1
	}
	s.lastID = now
	return "pub-" + strconv.FormatInt(now, 10)
}

func (s *publisherService) Publish(ctx context.Context, form PublishForm) (*domain.Publication, error) {
	if verr := s.Validate(form); verr != nil {
		s.logger.Debug("Publish rejected",
			zap.Int("errors", len(verr.Fields)),
		)
		return nil, verr
	}

	pub := &domain.Publication{
		ID:            s.nextID(),
		Title:         strings.TrimSpace(form.Title),
		Description:   strings.TrimSpace(form.Description),
		CategoryID:    form.CategoryID,
		CategoryLabel: domain.CategoryLabel(form.CategoryID),
		PriceCOP:      ParsePriceCOP(form.Price),
		Availability:  ComposeAvailability(form.Days, form.StartTime, form.EndTime),
		Location:      ComposeLocation(form.Country, form.Department, form.City, form.Neighborhood, form.Address),
		CreatedAt:     time.Now(),
	}
	for _, img := range form.Images {
		pub.Images = append(pub.Images, img.URL)
	}

	if err := s.repo.AddPublication(ctx, pub); err != nil {
		return nil, fmt.Errorf("failed to persist publication: %w", err)
	}

	s.logger.Info("Service published",
		zap.String("id", pub.ID),
		zap.String("category_id", pub.CategoryID),
		zap.Int64("price_cop", pub.PriceCOP),
	)
	return pub, nil
}

func (s *publisherService) Unpublish(ctx context.Context, id string) error {
	return s.repo.RemovePublication(ctx, id)
}

func (s *publisherService) Publications(ctx context.Context) ([]domain.Publication, error) {
	return s.repo.Publications(ctx)
}

// Publish flow states. The wizard advances Editing -> Validating and from
// there to Rejected (back to Editing on the next edit) or Accepted ->
// Persisted.
type PublishState int

const (
	StateEditing PublishState = iota
	StateValidating
	StateRejected
	StateAccepted
	StatePersisted
)

func (s PublishState) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateRejected:
		return "rejected"
	case StateAccepted:
		return "accepted"
	case StatePersisted:
		return "persisted"
	default:
		return "unknown"
	}
}

var ErrInvalidTransition = errors.New("invalid publish flow transition")

// PublishFlow is the explicit state machine driving one publish attempt.
// It is not safe for concurrent use; each submission owns its flow.
type PublishFlow struct {
	publisher PublisherService
	state     PublishState
	form      PublishForm
	errs      *ValidationError
	record    *domain.Publication
}

// NewPublishFlow starts a flow in Editing.
func NewPublishFlow(publisher PublisherService) *PublishFlow {
	return &PublishFlow{publisher: publisher, state: StateEditing}
}

// State reports the current flow state.
func (f *PublishFlow) State() PublishState { return f.state }

// Errors returns the rejection details, valid only in Rejected.
func (f *PublishFlow) Errors() *ValidationError { return f.errs }

// Record returns the persisted publication, valid only in Persisted.
func (f *PublishFlow) Record() *domain.Publication { return f.record }

// Edit replaces the draft. Allowed in Editing and Rejected; a rejected flow
// returns to Editing.
func (f *PublishFlow) Edit(form PublishForm) error {
	if f.state != StateEditing && f.state != StateRejected {
		return fmt.Errorf("%w: edit from %s", ErrInvalidTransition, f.state)
	}
	f.form = form
	f.state = StateEditing
	f.errs = nil
	return nil
}

// Submit validates the draft. Allowed only in Editing; the flow lands in
// Rejected with the collected errors or in Accepted, ready to persist.
func (f *PublishFlow) Submit() error {
	if f.state != StateEditing {
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, f.state)
	}

	f.state = StateValidating
	if verr := f.publisher.Validate(f.form); verr != nil {
		f.state = StateRejected
		f.errs = verr
		return verr
	}

	f.state = StateAccepted
	return nil
}

// Persist writes the accepted draft. Allowed only in Accepted. A storage
// failure keeps the flow in Accepted so the write can be retried; nothing
// is ever partially persisted.
func (f *PublishFlow) Persist(ctx context.Context) error {
	if f.state != StateAccepted {
		return fmt.Errorf("%w: persist from %s", ErrInvalidTransition, f.state)
	}

	record, err := f.publisher.Publish(ctx, f.form)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			f.state = StateRejected
			f.errs = verr
			return verr
		}
		return err
	}

	f.state = StatePersisted
	f.record = record
	return nil
}
