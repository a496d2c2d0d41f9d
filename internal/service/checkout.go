package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/domain"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/event"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/repository"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/settlement"
	apperrors "github.com/Dheeraj-pilakkat/BrewHaven/pkg/errors"
)

// ShippingAddressInput holds the address collected during the logistics stage.
type ShippingAddressInput struct {
	FullName    string `json:"full_name" validate:"required"`
	AddressLine string `json:"address_line" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code" validate:"required"`
	Country     string `json:"country" validate:"required,len=2"`
	Phone       string `json:"phone"`
}

// SubmitInput holds the parameters for submitting settlement.
type SubmitInput struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card cash_on_delivery"`
}

// CheckoutService drives a session through the manifest, logistics, and
// settlement stages.
type CheckoutService struct {
	sessions repository.CheckoutRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
	gateway  settlement.Gateway
	producer *event.Producer
	logger   *slog.Logger

	sessionTTL time.Duration
	shipping   int64
	currency   string
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	sessions repository.CheckoutRepository,
	carts repository.CartRepository,
	orders repository.OrderRepository,
	gateway settlement.Gateway,
	producer *event.Producer,
	logger *slog.Logger,
	sessionTTL time.Duration,
	shipping int64,
	currency string,
) *CheckoutService {
	return &CheckoutService{
		sessions:   sessions,
		carts:      carts,
		orders:     orders,
		gateway:    gateway,
		producer:   producer,
		logger:     logger,
		sessionTTL: sessionTTL,
		shipping:   shipping,
		currency:   currency,
	}
}

// StartCheckout opens a session for the given cart, snapshotting its lines.
// The cart must exist and hold at least one line.
func (s *CheckoutService) StartCheckout(ctx context.Context, cartID, userID string) (*domain.CheckoutSession, error) {
	if cartID == "" {
		return nil, apperrors.InvalidInput("cart id is required")
	}

	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("cart", cartID)
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	now := time.Now().UTC()
	session := &domain.CheckoutSession{
		ID:             uuid.NewString(),
		CartID:         cartID,
		UserID:         userID,
		Stage:          domain.StageManifest,
		Status:         domain.StatusActive,
		Items:          append([]domain.CartItem(nil), cart.Items...),
		ShippingAmount: s.shipping,
		Currency:       s.currency,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(s.sessionTTL),
	}
	session.SubtotalAmount = session.CalculateSubtotal()
	session.TotalAmount = session.CalculateTotal()

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save checkout session: %w", err)
	}

	s.logger.InfoContext(ctx, "checkout started",
		slog.String("session_id", session.ID),
		slog.String("cart_id", cartID),
		slog.Int64("total", session.TotalAmount),
	)

	return session, nil
}

// GetSession retrieves a session by ID.
func (s *CheckoutService) GetSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	return s.loadSession(ctx, sessionID)
}

// Next advances the session one stage. Leaving the logistics stage requires a
// shipping address.
func (s *CheckoutService) Next(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Stage == domain.StageLogistics && session.ShippingAddress == nil {
		return nil, apperrors.InvalidInput("shipping address is required before settlement")
	}

	if !session.Advance() {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot advance from %s stage in %s status", session.Stage, session.Status))
	}

	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "checkout advanced",
		slog.String("session_id", session.ID),
		slog.String("stage", session.Stage.String()),
	)

	return session, nil
}

// Back moves the session one stage toward the manifest.
func (s *CheckoutService) Back(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.Retreat() {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot go back from %s stage in %s status", session.Stage, session.Status))
	}

	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// SetShippingAddress records the address during the logistics stage.
func (s *CheckoutService) SetShippingAddress(ctx context.Context, sessionID string, input ShippingAddressInput) (*domain.CheckoutSession, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status != domain.StatusActive {
		return nil, apperrors.Conflict("session is not active")
	}
	if session.Stage != domain.StageLogistics {
		return nil, apperrors.Conflict("shipping address is collected during the logistics stage")
	}

	session.ShippingAddress = &domain.Address{
		FullName:    input.FullName,
		AddressLine: input.AddressLine,
		City:        input.City,
		State:       input.State,
		PostalCode:  input.PostalCode,
		Country:     input.Country,
		Phone:       input.Phone,
	}

	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Submit runs settlement for the session. The session must be at the
// settlement stage; while the gateway is working the session is marked
// processing so a second submit is rejected. On approval an order is created,
// the cart is cleared, and the session completes. A declined payment marks
// the session failed so it can be retried.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, input SubmitInput) (*domain.CheckoutSession, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status == domain.StatusProcessing {
		return nil, apperrors.Conflict("settlement is already in progress")
	}
	if !session.CanSettle() {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot settle from %s stage in %s status", session.Stage, session.Status))
	}
	if session.ShippingAddress == nil {
		return nil, apperrors.InvalidInput("shipping address is required before settlement")
	}

	session.PaymentMethod = input.PaymentMethod
	return s.settle(ctx, session)
}

// Retry re-runs settlement for a session whose previous attempt was declined.
func (s *CheckoutService) Retry(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.CanRetry() {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot retry settlement in %s status", session.Status))
	}

	session.FailureReason = ""
	return s.settle(ctx, session)
}

func (s *CheckoutService) settle(ctx context.Context, session *domain.CheckoutSession) (*domain.CheckoutSession, error) {
	session.Status = domain.StatusProcessing
	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}

	result, err := s.gateway.Settle(ctx, settlement.Request{
		SessionID:     session.ID,
		Amount:        session.TotalAmount,
		Currency:      session.Currency,
		PaymentMethod: session.PaymentMethod,
	})
	if err != nil {
		return s.settleFailed(ctx, session, err)
	}

	order, err := s.createOrder(ctx, session)
	if err != nil {
		// The payment went through but the order could not be recorded.
		// Leave the session failed with a reason so support can reconcile
		// against the gateway transaction.
		s.logger.ErrorContext(ctx, "order creation failed after settlement",
			slog.String("session_id", session.ID),
			slog.String("transaction_id", result.TransactionID),
			slog.String("error", err.Error()),
		)
		return s.settleFailed(ctx, session, apperrors.Internal(err))
	}

	session.Status = domain.StatusCompleted
	session.OrderID = order.ID
	session.OrderRef = order.Reference

	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}

	if err := s.carts.Delete(ctx, session.CartID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("cart_id", session.CartID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishCheckoutCompleted(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout.completed event",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("session_id", session.ID),
		slog.String("order_ref", order.Reference),
		slog.String("transaction_id", result.TransactionID),
	)

	return session, nil
}

// settleFailed records the failure outcome. An interrupted attempt (caller
// gave up mid-delay) returns the session to active so it can be submitted
// again; a decline marks it failed for an explicit retry.
func (s *CheckoutService) settleFailed(ctx context.Context, session *domain.CheckoutSession, cause error) (*domain.CheckoutSession, error) {
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		session.Status = domain.StatusActive
		// Persist with a fresh context: the request context is already dead.
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.persist(saveCtx, session); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("settlement interrupted: %w", cause)
	}

	session.Status = domain.StatusFailed
	session.FailureReason = cause.Error()

	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}

	s.logger.WarnContext(ctx, "settlement failed",
		slog.String("session_id", session.ID),
		slog.String("reason", session.FailureReason),
	)

	return nil, cause
}

func (s *CheckoutService) createOrder(ctx context.Context, session *domain.CheckoutSession) (*domain.Order, error) {
	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.NewString(),
		Reference:       domain.NewOrderReference(),
		UserID:          session.UserID,
		CartID:          session.CartID,
		Status:          domain.OrderProcessing,
		Items:           session.Items,
		SubtotalAmount:  session.SubtotalAmount,
		ShippingAmount:  session.ShippingAmount,
		TotalAmount:     session.TotalAmount,
		Currency:        session.Currency,
		ShippingAddress: session.ShippingAddress,
		PaymentMethod:   session.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	return order, nil
}

func (s *CheckoutService) loadSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("checkout session", sessionID)
		}
		return nil, fmt.Errorf("get checkout session: %w", err)
	}

	if session.IsExpired() && !session.IsTerminal() {
		return nil, apperrors.Gone("checkout session has expired")
	}

	return session, nil
}

func (s *CheckoutService) persist(ctx context.Context, session *domain.CheckoutSession) error {
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("save checkout session: %w", err)
	}
	return nil
}
