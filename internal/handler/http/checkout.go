package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/service"
	apperrors "github.com/Dheeraj-pilakkat/BrewHaven/pkg/errors"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/httputil"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/validator"
)

// CheckoutHandler serves the three stage checkout wizard.
type CheckoutHandler struct {
	checkout *service.CheckoutService
	logger   *slog.Logger
}

func NewCheckoutHandler(checkout *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

// Start opens a session from the shopper's current cart.
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	session, err := h.checkout.StartCheckout(r.Context(), cartIDFromContext(r.Context()), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: session})
}

// Get returns a session's current state.
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkout.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// Next advances the wizard one stage.
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkout.Next(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// Back retreats the wizard one stage.
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkout.Back(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// SetAddress records the shipping address during the logistics stage.
func (h *CheckoutHandler) SetAddress(w http.ResponseWriter, r *http.Request) {
	var input service.ShippingAddressInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	session, err := h.checkout.SetShippingAddress(r.Context(), chi.URLParam(r, "sessionID"), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// Submit runs settlement. The gateway wait is tied to the request context, so
// a client that disconnects abandons the attempt and keeps the session
// retryable.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input service.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	session, err := h.checkout.Submit(r.Context(), chi.URLParam(r, "sessionID"), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// Retry re-arms a failed session for another settlement attempt.
func (h *CheckoutHandler) Retry(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkout.Retry(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}
