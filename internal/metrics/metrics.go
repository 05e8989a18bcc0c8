package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	productsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_products_created_total",
		Help: "Total number of products created.",
	})
	stockAdjustments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_stock_adjustments_total",
			Help: "Total number of stock adjustments by direction and outcome.",
		},
		[]string{"direction", "outcome"},
	)
	importRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_rows_total",
			Help: "Total number of processed import rows by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(productsCreated)
	prometheus.MustRegister(stockAdjustments)
	prometheus.MustRegister(importRows)
}

func ProductCreated() {
	productsCreated.Inc()
}

func StockAdjustment(direction string, ok bool) {
	outcome := "applied"
	if !ok {
		outcome = "rejected"
	}
	stockAdjustments.WithLabelValues(direction, outcome).Inc()
}

func ImportRow(outcome string) {
	importRows.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry for a standalone metrics listener.
func Handler() http.Handler {
	return promhttp.Handler()
}
