package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"serviprox/internal/store"

	"go.uber.org/zap"
)

// Profile store keys, opaque scalars outside the catalog collections.
const (
	ProfileFirstNameKey = "user.firstName"
	ProfileLastNameKey  = "user.lastName"
	ProfileEmailKey     = "user.email"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,13}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Profile holds the editable account fields.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// AccountService persists the profile scalars and drives registration.
type AccountService interface {
	LoadProfile(ctx context.Context) (Profile, error)
	// SaveProfile trims and stores each field individually.
	SaveProfile(ctx context.Context, p Profile) error
}

type accountService struct {
	kv     store.KV
	logger *zap.Logger
}

// NewAccountService creates a new instance of AccountService.
func NewAccountService(kv store.KV, logger *zap.Logger) AccountService {
	return &accountService{kv: kv, logger: logger}
}

func (s *accountService) LoadProfile(ctx context.Context) (Profile, error) {
	var p Profile
	for _, field := range []struct {
		key  string
		dest *string
	}{
		{ProfileFirstNameKey, &p.FirstName},
		{ProfileLastNameKey, &p.LastName},
		{ProfileEmailKey, &p.Email},
	} {
		value, err := s.kv.Get(ctx, field.key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return Profile{}, fmt.Errorf("failed to load profile: %w", err)
		}
		*field.dest = value
	}
	return p, nil
}

func (s *accountService) SaveProfile(ctx context.Context, p Profile) error {
	fields := map[string]string{
		ProfileFirstNameKey: strings.TrimSpace(p.FirstName),
		ProfileLastNameKey:  strings.TrimSpace(p.LastName),
		ProfileEmailKey:     strings.TrimSpace(p.Email),
	}
	for key, value := range fields {
		if err := s.kv.Set(ctx, key, value); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
	}

	s.logger.Info("Profile saved")
	return nil
}

// Registration wizard. The original runs a two-step modal: identity first,
// credentials second, with a hardware back button returning to step one.

// RegistrationStep1 is the identity page of the wizard.
type RegistrationStep1 struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Country     string `json:"country"`
	Phone       string `json:"phone"` // optional
	ProfileType string `json:"profile_type"`
}

// RegistrationStep2 is the credentials page of the wizard.
type RegistrationStep2 struct {
	BirthDate       string `json:"birth_date"`
	Gender          string `json:"gender"`
	DocumentType    string `json:"document_type"`
	DocumentNumber  string `json:"document_number"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ValidateStep1 collects the identity-page failures.
func ValidateStep1(s RegistrationStep1) *ValidationError {
	var fields []FieldError

	if strings.TrimSpace(s.FirstName) == "" {
		fields = append(fields, FieldError{Field: "first_name", Message: "Por favor ingresa tu nombre"})
	}
	if strings.TrimSpace(s.LastName) == "" {
		fields = append(fields, FieldError{Field: "last_name", Message: "Por favor ingresa tu apellido"})
	}
	if s.ProfileType == "" {
		fields = append(fields, FieldError{Field: "profile_type", Message: "Por favor selecciona un tipo de perfil"})
	}
	if s.Phone != "" && !phonePattern.MatchString(s.Phone) {
		fields = append(fields, FieldError{Field: "phone", Message: "Formato de teléfono inválido"})
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// ValidateStep2 collects the credentials-page failures.
func ValidateStep2(s RegistrationStep2) *ValidationError {
	var fields []FieldError

	if s.Email == "" || !emailPattern.MatchString(s.Email) {
		fields = append(fields, FieldError{Field: "email", Message: "Por favor ingresa un correo válido"})
	}
	if len(s.Password) < 6 {
		fields = append(fields, FieldError{Field: "password", Message: "La contraseña debe tener al menos 6 caracteres"})
	}
	if s.Password != s.ConfirmPassword {
		fields = append(fields, FieldError{Field: "confirm_password", Message: "Las contraseñas no coinciden"})
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// RegistrationState names the wizard states.
type RegistrationState int

const (
	RegistrationStep1State RegistrationState = iota
	RegistrationStep2State
	RegistrationSubmitted
)

func (s RegistrationState) String() string {
	switch s {
	case RegistrationStep1State:
		return "step1"
	case RegistrationStep2State:
		return "step2"
	case RegistrationSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// RegistrationFlow is the explicit wizard state machine. There is no account
// backend; a submitted flow simply holds the validated form.
type RegistrationFlow struct {
	state RegistrationState
	step1 RegistrationStep1
	step2 RegistrationStep2
}

// NewRegistrationFlow starts a flow at step one.
func NewRegistrationFlow() *RegistrationFlow {
	return &RegistrationFlow{state: RegistrationStep1State}
}

// State reports the current wizard state.
func (f *RegistrationFlow) State() RegistrationState { return f.state }

// Next validates the identity page and advances to step two.
func (f *RegistrationFlow) Next(s RegistrationStep1) error {
	if f.state != RegistrationStep1State {
		return fmt.Errorf("%w: next from %s", ErrInvalidTransition, f.state)
	}
	if verr := ValidateStep1(s); verr != nil {
		return verr
	}
	f.step1 = s
	f.state = RegistrationStep2State
	return nil
}

// Back returns from step two to step one, keeping the entered identity.
func (f *RegistrationFlow) Back() error {
	if f.state != RegistrationStep2State {
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, f.state)
	}
	f.state = RegistrationStep1State
	return nil
}

// Submit validates the credentials page and completes the wizard.
func (f *RegistrationFlow) Submit(s RegistrationStep2) error {
	if f.state != RegistrationStep2State {
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, f.state)
	}
	if verr := ValidateStep2(s); verr != nil {
		return verr
	}
	f.step2 = s
	f.state = RegistrationSubmitted
	return nil
}

// Form returns both pages of a submitted flow.
func (f *RegistrationFlow) Form() (RegistrationStep1, RegistrationStep2, error) {
	if f.state != RegistrationSubmitted {
		return RegistrationStep1{}, RegistrationStep2{}, fmt.Errorf("%w: form from %s", ErrInvalidTransition, f.state)
	}
	return f.step1, f.step2, nil
}
