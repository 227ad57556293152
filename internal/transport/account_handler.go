package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"serviprox/internal/middleware"
	"serviprox/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProfileRequest represents the profile update payload
type ProfileRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

// RegisterRequest represents a complete registration submission: both wizard
// pages at once. The server replays them through the wizard state machine.
type RegisterRequest struct {
	Step1 service.RegistrationStep1 `json:"step1"`
	Step2 service.RegistrationStep2 `json:"step2"`
}

// AccountHandler handles HTTP requests for profile and registration
type AccountHandler struct {
	account service.AccountService
	logger  *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(account service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		account: account,
		logger:  logger,
	}
}

// RegisterRoutes registers all account routes
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/profile", h.GetProfile)
	r.Put("/api/profile", h.SaveProfile)
	r.Post("/api/register", h.Register)
}

// GetProfile returns the stored profile fields
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.account.LoadProfile(r.Context())
	if err != nil {
		h.logger.Error("Failed to load profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profile)
}

// SaveProfile validates and persists the profile fields
func (h *AccountHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Profile validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile := service.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if err := h.account.SaveProfile(r.Context(), profile); err != nil {
		h.logger.Error("Failed to save profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profile)
}

// Register replays a submission through the registration wizard. Page-level
// failures come back as the usual validation error list.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("Register decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flow := service.NewRegistrationFlow()
	if err := flow.Next(req.Step1); err != nil {
		h.respondRegistrationError(w, err)
		return
	}
	if err := flow.Submit(req.Step2); err != nil {
		h.respondRegistrationError(w, err)
		return
	}

	h.logger.Info("Registration completed")
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"message": "¡Cuenta creada exitosamente!",
	})
}

func (h *AccountHandler) respondRegistrationError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		middleware.RespondWithValidationErrors(w, toValidationErrors(verr))
		return
	}

	h.logger.Error("Registration flow failed", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register")
}
