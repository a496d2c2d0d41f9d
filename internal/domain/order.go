package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Order status constants.
const (
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
)

// Fulfillment step labels, in order.
const (
	StepAcquisition = "Acquisition"
	StepRoasting    = "Thermal Roasting"
	StepDispatch    = "Logistics Dispatch"
	StepDelivery    = "Final Delivery"
)

// Timeline step states.
const (
	StepCompleted = "completed"
	StepActive    = "active"
	StepPending   = "pending"
)

// Order is a placed order produced by a completed checkout.
type Order struct {
	ID              string     `json:"id"`
	Reference       string     `json:"reference"`
	UserID          string     `json:"user_id,omitempty"`
	CartID          string     `json:"cart_id,omitempty"`
	Status          string     `json:"status"`
	Items           []CartItem `json:"items"`
	SubtotalAmount  int64      `json:"subtotal_amount"`
	ShippingAmount  int64      `json:"shipping_amount"`
	TotalAmount     int64      `json:"total_amount"`
	Currency        string     `json:"currency"`
	ShippingAddress *Address   `json:"shipping_address,omitempty"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TimelineStep is one entry of an order's fulfillment timeline.
type TimelineStep struct {
	Label string `json:"label"`
	State string `json:"state"`
}

// stepCursor maps an order status to the index of its active timeline step.
// Steps before the cursor are completed, steps after it pending. A delivered
// order has every step completed.
var stepCursor = map[string]int{
	OrderProcessing: 1,
	OrderShipped:    2,
	OrderDelivered:  4,
}

// Timeline derives the fulfillment timeline from the order status.
func (o *Order) Timeline() []TimelineStep {
	labels := []string{StepAcquisition, StepRoasting, StepDispatch, StepDelivery}
	cursor, ok := stepCursor[o.Status]
	if !ok {
		cursor = 0
	}
	steps := make([]TimelineStep, len(labels))
	for i, label := range labels {
		state := StepPending
		switch {
		case i < cursor:
			state = StepCompleted
		case i == cursor:
			state = StepActive
		}
		steps[i] = TimelineStep{Label: label, State: state}
	}
	return steps
}

// NewOrderReference generates a customer-facing order reference like "BR-48213".
func NewOrderReference() string {
	return fmt.Sprintf("BR-%05d", rand.IntN(100000))
}
