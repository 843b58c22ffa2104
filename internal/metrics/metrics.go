// Package metrics holds the Prometheus collectors exposed on /metrics.
//
// Collectors live on their own Registry so tests and the CLI can import the
// package without touching the global default registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inventory"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// StockMovements counts committed ledger movements by type (IN / OUT).
	StockMovements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "movements_total",
			Help:      "Stock movements applied, by type.",
		},
		[]string{"type"},
	)

	// StockUnits counts units moved, by type.
	StockUnits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "units_total",
			Help:      "Units moved in or out of stock.",
		},
		[]string{"type"},
	)

	MovementReversals = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "reversals_total",
		Help:      "Stock movements deleted and reversed.",
	})

	// ReversalClamps counts reversals where the floor at zero absorbed part of the quantity.
	ReversalClamps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "reversal_clamps_total",
		Help:      "Reversals of IN movements clamped at zero stock.",
	})

	LowStockProducts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "low_stock_products",
		Help:      "Products at or below their reorder level at the last check.",
	})

	// PolicyDenials counts refused account operations by reason.
	PolicyDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "policy_denials_total",
			Help:      "Account operations refused by the access policy.",
		},
		[]string{"reason"}, // "last_admin" | "not_locked" | "partial_failure"
	)

	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		},
		[]string{"outcome"}, // "success" | "failure" | "locked"
	)
)

var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(
		RequestDuration,
		RequestTotal,
		StockMovements,
		StockUnits,
		MovementReversals,
		ReversalClamps,
		LowStockProducts,
		PolicyDenials,
		LoginAttempts,
	)
}

// Middleware records duration and count for every request, labelled by route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		code := strconv.Itoa(status)

		RequestDuration.WithLabelValues(c.Method(), path, code).Observe(time.Since(start).Seconds())
		RequestTotal.WithLabelValues(c.Method(), path, code).Inc()
		return err
	}
}

// Handler exposes the registry in the Prometheus text and OpenMetrics formats.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
