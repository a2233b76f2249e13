package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics tracks checkout outcomes.
type OrderMetrics struct {
	placed   *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewOrderMetrics registers the checkout counters on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders successfully placed.",
	}, []string{"payment_status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Checkout attempts rejected before order creation.",
	}, []string{"reason"})
	reg.MustRegister(placed, failures)
	return &OrderMetrics{placed: placed, failures: failures}
}

// IncPlaced increments the placed counter for a payment status.
func (o *OrderMetrics) IncPlaced(paymentStatus string) {
	if o == nil || o.placed == nil {
		return
	}
	o.placed.WithLabelValues(normalizeLabel(paymentStatus)).Inc()
}

// IncFailure increments the failure counter for a rejection reason.
func (o *OrderMetrics) IncFailure(reason string) {
	if o == nil || o.failures == nil {
		return
	}
	o.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}
