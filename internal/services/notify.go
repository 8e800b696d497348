package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/farhanmaulana/eventgate/internal/models"
)

// Receipt is what the notification collaborator gets after a payment
// completes: enough context to render a confirmation without reading the
// database again.
type Receipt struct {
	Recipient string
	Order     *models.Order
	Event     *models.Event
	Tickets   []models.Ticket
	Payloads  map[string][]byte // ticket code -> scannable image
}

// Notifier delivers receipts best-effort. It is invoked strictly after the
// order transaction commits; a delivery failure is logged by the caller and
// never rolled back into order state.
type Notifier interface {
	OrderPaid(ctx context.Context, receipt Receipt) error
}

// LogNotifier stands in for the mail pipeline in development and tests.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n *LogNotifier) OrderPaid(ctx context.Context, receipt Receipt) error {
	n.Logger.WithFields(logrus.Fields{
		"recipient": receipt.Recipient,
		"order_id":  receipt.Order.ID,
		"tickets":   len(receipt.Tickets),
	}).Info("order receipt")
	return nil
}
