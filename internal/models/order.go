package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderRefunded  OrderStatus = "refunded"
	OrderCancelled OrderStatus = "cancelled"
	OrderFailed    OrderStatus = "failed"
)

// orderTransitions is the only set of legal status moves. Anything not in
// this table is rejected, including writes that would "re-pay" a paid order.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderPaid, OrderCancelled, OrderFailed},
	OrderPaid:    {OrderRefunded},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	gorm.Model
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Status        OrderStatus     `gorm:"not null;default:'pending';index" json:"status"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	ServiceFee    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"service_fee"`
	ProcessingFee decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"processing_fee"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Currency      string          `gorm:"not null;default:'USD'" json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	BillingName   string          `json:"billing_name"`
	BillingEmail  string          `json:"billing_email"`
	ProviderRef   *string         `json:"provider_ref,omitempty"`
	RefundAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"refund_amount"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CapturedAt    *time.Time      `json:"captured_at,omitempty"`
	RefundedAt    *time.Time      `json:"refunded_at,omitempty"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User          User            `json:"-"`
	EventID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"event_id"`
	Event         Event           `json:"-"`
	PromotionID   *uuid.UUID      `gorm:"type:uuid" json:"promotion_id,omitempty"`
	Promotion     *Promotion      `json:"-"`
	Items         []OrderItem     `json:"items"`
}

func (order *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return
}

// OrderItem captures the unit price at order time; later price edits on the
// ticket type never change what the purchaser was charged.
type OrderItem struct {
	gorm.Model
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	TicketTypeID uuid.UUID       `gorm:"type:uuid;not null;index" json:"ticket_type_id"`
	TicketType   TicketType      `json:"-"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
}

func (item *OrderItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return
}
