package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventgate/internal/models"
	"github.com/farhanmaulana/eventgate/internal/monitoring"
)

const mintMaxAttempts = 5

// OrderService orchestrates the order lifecycle: creation against the
// inventory ledger and promotion validator, payment completion with ticket
// minting, refund and cancellation. All state transitions happen inside
// database transactions; collaborators (QR rendering, notification) run
// strictly after commit and their failures are logged, never propagated.
type OrderService struct {
	db            *gorm.DB
	logger        *logrus.Logger
	pricing       PricingConfig
	ledger        *InventoryLedger
	promotions    *PromotionValidator
	encoder       PayloadEncoder
	notifier      Notifier
	payloadSecret string
}

type OrderServiceProperty struct {
	DB            *gorm.DB
	Logger        *logrus.Logger
	Pricing       PricingConfig
	Ledger        *InventoryLedger
	Promotions    *PromotionValidator
	Encoder       PayloadEncoder
	Notifier      Notifier
	PayloadSecret string
}

func NewOrderService(props OrderServiceProperty) *OrderService {
	return &OrderService{
		db:            props.DB,
		logger:        props.Logger,
		pricing:       props.Pricing,
		ledger:        props.Ledger,
		promotions:    props.Promotions,
		encoder:       props.Encoder,
		notifier:      props.Notifier,
		payloadSecret: props.PayloadSecret,
	}
}

type LineItemInput struct {
	TicketTypeID uuid.UUID
	Quantity     int
}

type CreateOrderInput struct {
	UserID        uuid.UUID
	EventID       uuid.UUID
	Items         []LineItemInput
	BillingName   string
	BillingEmail  string
	PaymentMethod string
	DiscountCode  string
}

// CreateOrder validates the request against availability and per-order
// limits, applies the discount code and pricing, and persists a pending
// order. The sold counters are not touched here; units are only committed
// at payment completion. The promotion usage increment shares the order's
// transaction so a failed persist leaves no consumed usage.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no line items", ErrInvalidInput)
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
		}
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, "id = ?", input.EventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		now := time.Now()
		currency := ""
		subtotal := decimal.Zero
		lines := make([]PriceLine, 0, len(input.Items))
		orderItems := make([]models.OrderItem, 0, len(input.Items))

		for _, item := range input.Items {
			var tt models.TicketType
			err := tx.First(&tt, "id = ? AND event_id = ?", item.TicketTypeID, input.EventID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTicketTypeNotFound
				}
				return err
			}

			if !tt.OnSale(now) {
				return ErrSaleNotActive
			}
			if tt.MaxPerOrder != nil && item.Quantity > *tt.MaxPerOrder {
				return ErrPerOrderLimitExceeded
			}
			if item.Quantity > tt.Available() {
				return ErrInsufficientAvailability
			}
			if currency == "" {
				currency = tt.Currency
			}

			subtotal = subtotal.Add(tt.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2))
			lines = append(lines, PriceLine{Quantity: item.Quantity, UnitPrice: tt.Price})
			orderItems = append(orderItems, models.OrderItem{
				TicketTypeID: tt.ID,
				Quantity:     item.Quantity,
				UnitPrice:    tt.Price,
			})
		}

		applied, err := s.promotions.Apply(tx, input.DiscountCode, input.EventID, subtotal)
		if err != nil {
			return err
		}

		quote, err := CalculateQuote(s.pricing, lines, applied.Discount)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		order = models.Order{
			Status:        models.OrderPending,
			Subtotal:      quote.Subtotal,
			Discount:      quote.Discount,
			ServiceFee:    quote.ServiceFee,
			ProcessingFee: quote.ProcessingFee,
			Total:         quote.Total,
			Currency:      currency,
			PaymentMethod: input.PaymentMethod,
			BillingName:   input.BillingName,
			BillingEmail:  input.BillingEmail,
			UserID:        input.UserID,
			EventID:       input.EventID,
			Items:         orderItems,
		}
		if applied.Promotion != nil {
			order.PromotionID = &applied.Promotion.ID
		}

		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordOrderCreated()
	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"event_id": order.EventID,
		"total":    order.Total,
	}).Info("order created")

	return &order, nil
}

// CompletePayment transitions a pending order to paid, commits the sold
// counters and mints one ticket per purchased unit, all in one transaction.
// The status transition and each counter increment are conditional updates,
// so two workers completing payments for the same ticket type cannot
// jointly exceed capacity, and the same order cannot be completed twice.
func (s *OrderService) CompletePayment(ctx context.Context, orderID uuid.UUID, providerRef string) (*models.Order, []models.Ticket, error) {
	var order models.Order
	var tickets []models.Ticket

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		now := time.Now()
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderPending).
			Updates(map[string]interface{}{
				"status":       models.OrderPaid,
				"provider_ref": providerRef,
				"paid_at":      now,
				"captured_at":  now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderNotPending
		}

		order.Status = models.OrderPaid
		order.ProviderRef = &providerRef
		order.PaidAt = &now
		order.CapturedAt = &now

		for _, item := range order.Items {
			if err := s.ledger.Reserve(tx, item.TicketTypeID, item.Quantity); err != nil {
				if errors.Is(err, ErrInsufficientAvailability) {
					monitoring.RecordOversellRejection()
				}
				return err
			}
		}

		tickets = tickets[:0]
		for _, item := range order.Items {
			for unit := 0; unit < item.Quantity; unit++ {
				ticket, err := s.mintTicket(tx, &order, item.TicketTypeID, now)
				if err != nil {
					return err
				}
				tickets = append(tickets, *ticket)
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	monitoring.RecordPaymentCompleted()
	monitoring.RecordTicketsMinted(len(tickets))
	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"provider_ref": providerRef,
		"tickets":      len(tickets),
	}).Info("payment completed")

	s.deliverReceipt(ctx, &order, tickets)

	return &order, tickets, nil
}

// mintTicket inserts a ticket with a fresh code, retrying generation while
// the code is taken. The unique index on tickets.code remains the final
// guarantee; a lost race rolls the whole completion back, which is safe to
// retry by order id.
func (s *OrderService) mintTicket(tx *gorm.DB, order *models.Order, ticketTypeID uuid.UUID, now time.Time) (*models.Ticket, error) {
	for attempt := 0; attempt < mintMaxAttempts; attempt++ {
		code, err := GenerateTicketCode()
		if err != nil {
			return nil, err
		}

		var taken int64
		if err := tx.Model(&models.Ticket{}).Where("code = ?", code).Count(&taken).Error; err != nil {
			return nil, err
		}
		if taken > 0 {
			continue
		}

		ticket := models.Ticket{
			Code:         code,
			Status:       models.TicketActive,
			IssuedAt:     now,
			OrderID:      order.ID,
			TicketTypeID: ticketTypeID,
			EventID:      order.EventID,
			OwnerID:      order.UserID,
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return nil, err
		}
		return &ticket, nil
	}
	return nil, fmt.Errorf("could not mint a unique ticket code after %d attempts", mintMaxAttempts)
}

// deliverReceipt renders payloads and hands the receipt to the notifier.
// Runs after commit; every failure here degrades and is logged because the
// financial and inventory state is already durable.
func (s *OrderService) deliverReceipt(ctx context.Context, order *models.Order, tickets []models.Ticket) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", order.EventID).Error; err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("event lookup for receipt failed")
	}

	payloads := make(map[string][]byte, len(tickets))
	for _, ticket := range tickets {
		data := TicketPayload(ticket.Code, ticket.EventID, s.payloadSecret)
		img, err := s.encoder.Encode(data)
		if err != nil {
			s.logger.WithError(err).WithField("ticket_code", ticket.Code).Warn("payload encoding failed, using placeholder")
			img = PlaceholderPayload(ticket.Code)
		}
		payloads[ticket.Code] = img
	}

	receipt := Receipt{
		Recipient: order.BillingEmail,
		Order:     order,
		Event:     &event,
		Tickets:   tickets,
		Payloads:  payloads,
	}
	if err := s.notifier.OrderPaid(ctx, receipt); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("receipt delivery failed")
	}
}

// RefundOrder transitions a paid order to refunded, releases the sold
// counters and cancels the order's active tickets. Tickets are kept for
// audit, only their status changes.
func (s *OrderService) RefundOrder(ctx context.Context, orderID uuid.UUID, amount *decimal.Decimal) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		refund := order.Total
		if amount != nil {
			refund = *amount
			if refund.IsNegative() {
				refund = decimal.Zero
			}
			if refund.GreaterThan(order.Total) {
				refund = order.Total
			}
		}

		now := time.Now()
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderPaid).
			Updates(map[string]interface{}{
				"status":        models.OrderRefunded,
				"refunded_at":   now,
				"refund_amount": refund,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderNotPaid
		}

		order.Status = models.OrderRefunded
		order.RefundedAt = &now
		order.RefundAmount = refund

		for _, item := range order.Items {
			if err := s.ledger.Release(tx, item.TicketTypeID, item.Quantity); err != nil {
				return err
			}
		}

		return tx.Model(&models.Ticket{}).
			Where("order_id = ? AND status = ?", orderID, models.TicketActive).
			Update("status", models.TicketCancelled).Error
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordOrderRefunded()
	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"amount":   order.RefundAmount,
	}).Info("order refunded")

	return &order, nil
}

// CancelOrder lets the purchaser abandon a pending order. Pending orders
// never touched the ledger, so no inventory action is needed.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, requesterID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if order.UserID != requesterID {
			return ErrNotOrderOwner
		}

		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderPending).
			Update("status", models.OrderCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderNotPending
		}

		order.Status = models.OrderCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("order_id", order.ID).Info("order cancelled")
	return &order, nil
}

// GetOrder returns an order with its items, owner-checked.
func (s *OrderService) GetOrder(ctx context.Context, orderID, requesterID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != requesterID {
		return nil, ErrNotOrderOwner
	}
	return &order, nil
}

// ListOrders returns the requester's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.Preload("Items").
		Offset((page - 1) * limit).Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
