package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders persisted in pending state",
		},
	)

	paymentsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_completed_total",
			Help: "Orders transitioned to paid",
		},
	)

	ticketsMinted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_minted_total",
			Help: "Individual tickets minted at payment completion",
		},
	)

	oversellRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oversell_rejections_total",
			Help: "Reservations rejected by the capacity guard",
		},
	)

	ordersRefunded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_refunded_total",
			Help: "Orders transitioned to refunded",
		},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_total",
			Help: "Check-in attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordOrderCreated()       { ordersCreated.Inc() }
func RecordPaymentCompleted()   { paymentsCompleted.Inc() }
func RecordTicketsMinted(n int) { ticketsMinted.Add(float64(n)) }
func RecordOversellRejection()  { oversellRejections.Inc() }
func RecordOrderRefunded()      { ordersRefunded.Inc() }

func RecordCheckIn(outcome string) {
	checkIns.WithLabelValues(outcome).Inc()
}
