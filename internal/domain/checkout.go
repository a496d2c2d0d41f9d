package domain

import "time"

// Checkout session status constants.
const (
	StatusActive     = "active"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusExpired    = "expired"
)

// Stage identifies a step of the checkout wizard. Stages are ordered and a
// session moves through them one at a time.
type Stage int

const (
	StageManifest Stage = iota
	StageLogistics
	StageSettlement
)

var stageNames = [...]string{"manifest", "logistics", "settlement"}

// String returns the wire name of the stage.
func (s Stage) String() string {
	if s < StageManifest || s > StageSettlement {
		return "unknown"
	}
	return stageNames[s]
}

// IsValidStage checks whether the ordinal is within the wizard's range.
func IsValidStage(s Stage) bool {
	return s >= StageManifest && s <= StageSettlement
}

// CheckoutSession represents an ongoing checkout.
type CheckoutSession struct {
	ID              string     `json:"id"`
	CartID          string     `json:"cart_id"`
	UserID          string     `json:"user_id,omitempty"`
	Stage           Stage      `json:"stage"`
	Status          string     `json:"status"`
	Items           []CartItem `json:"items"`
	SubtotalAmount  int64      `json:"subtotal_amount"`
	ShippingAmount  int64      `json:"shipping_amount"`
	TotalAmount     int64      `json:"total_amount"`
	Currency        string     `json:"currency"`
	ShippingAddress *Address   `json:"shipping_address,omitempty"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	OrderID         string     `json:"order_id,omitempty"`
	OrderRef        string     `json:"order_ref,omitempty"`
	FailureReason   string     `json:"failure_reason,omitempty"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Address represents a shipping address collected during the logistics stage.
type Address struct {
	FullName    string `json:"full_name"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	Phone       string `json:"phone,omitempty"`
}

// CalculateSubtotal computes the subtotal from the items (price * quantity for each).
func (s *CheckoutSession) CalculateSubtotal() int64 {
	var subtotal int64
	for _, item := range s.Items {
		subtotal += item.Price * int64(item.Quantity)
	}
	return subtotal
}

// CalculateTotal computes the total: subtotal + shipping.
func (s *CheckoutSession) CalculateTotal() int64 {
	return s.SubtotalAmount + s.ShippingAmount
}

// IsExpired checks whether the session has passed its expiry time.
func (s *CheckoutSession) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// IsTerminal returns true if the session is in a final state. A failed session
// is not terminal: it may be retried from the settlement stage.
func (s *CheckoutSession) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusExpired
}

// CanAdvance reports whether the session may move to the next stage.
// The settlement stage has no next stage; it completes via settlement instead.
func (s *CheckoutSession) CanAdvance() bool {
	return s.Status == StatusActive && s.Stage < StageSettlement
}

// CanRetreat reports whether the session may move back one stage.
func (s *CheckoutSession) CanRetreat() bool {
	return s.Status == StatusActive && s.Stage > StageManifest
}

// CanSettle reports whether settlement may be started for the session.
func (s *CheckoutSession) CanSettle() bool {
	return s.Status == StatusActive && s.Stage == StageSettlement
}

// CanRetry reports whether a failed settlement may be attempted again.
func (s *CheckoutSession) CanRetry() bool {
	return s.Status == StatusFailed
}

// Advance moves the session forward one stage. Returns false when the move is
// not allowed, leaving the session unchanged.
func (s *CheckoutSession) Advance() bool {
	if !s.CanAdvance() {
		return false
	}
	s.Stage++
	return true
}

// Retreat moves the session back one stage. Returns false when the move is
// not allowed, leaving the session unchanged.
func (s *CheckoutSession) Retreat() bool {
	if !s.CanRetreat() {
		return false
	}
	s.Stage--
	return true
}

// ValidStatuses returns the set of valid checkout session statuses.
func ValidStatuses() []string {
	return []string{
		StatusActive,
		StatusProcessing,
		StatusCompleted,
		StatusFailed,
		StatusExpired,
	}
}

// IsValidStatus checks whether the given status string is a valid checkout status.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
