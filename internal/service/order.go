package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/domain"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/repository"
	apperrors "github.com/Dheeraj-pilakkat/BrewHaven/pkg/errors"
)

// OrderWithTimeline pairs an order with its derived fulfillment timeline.
type OrderWithTimeline struct {
	domain.Order
	Timeline []domain.TimelineStep `json:"timeline"`
}

// OrderService serves placed orders and their tracking timelines.
type OrderService struct {
	repo   repository.OrderRepository
	logger *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, logger *slog.Logger) *OrderService {
	return &OrderService{repo: repo, logger: logger}
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*OrderWithTimeline, error) {
	if orderID == "" {
		return nil, apperrors.InvalidInput("order id is required")
	}

	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order", orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return withTimeline(order), nil
}

// GetByReference retrieves an order by its customer-facing reference.
func (s *OrderService) GetByReference(ctx context.Context, reference string) (*OrderWithTimeline, error) {
	if reference == "" {
		return nil, apperrors.InvalidInput("order reference is required")
	}

	order, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order", reference)
		}
		return nil, fmt.Errorf("get order by reference: %w", err)
	}

	return withTimeline(order), nil
}

// ListOrders returns a user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]OrderWithTimeline, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	out := make([]OrderWithTimeline, len(orders))
	for i := range orders {
		out[i] = *withTimeline(&orders[i])
	}
	return out, nil
}

// UpdateStatus transitions an order between fulfillment states.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) error {
	if orderID == "" {
		return apperrors.InvalidInput("order id is required")
	}
	switch status {
	case domain.OrderProcessing, domain.OrderShipped, domain.OrderDelivered:
	default:
		return apperrors.InvalidInput(fmt.Sprintf("invalid order status %q", status))
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("order", orderID)
		}
		return fmt.Errorf("update order status: %w", err)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", orderID),
		slog.String("status", status),
	)

	return nil
}

func withTimeline(order *domain.Order) *OrderWithTimeline {
	return &OrderWithTimeline{
		Order:    *order,
		Timeline: order.Timeline(),
	}
}
