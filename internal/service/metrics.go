package service

import "github.com/prometheus/client_golang/prometheus"

var (
	reservationOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "reservation_operations_total", Help: "Reservation lifecycle operations by outcome"},
		[]string{"op", "outcome"},
	)
	notifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "reservation_notify_failures_total", Help: "Confirmations that could not be dispatched"},
	)
)

func init() { prometheus.MustRegister(reservationOps, notifyFailures) }

func observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	reservationOps.WithLabelValues(op, outcome).Inc()
}
