package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_sales_recorded_total",
		Help: "Total number of sales recorded",
	})

	SalesRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sales_rejected_total",
		Help: "Total number of rejected sale attempts",
	}, []string{"reason"})

	RefundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_refunds_total",
		Help: "Total number of refunds processed",
	})

	RefundsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_refunds_rejected_total",
		Help: "Total number of rejected refund attempts",
	}, []string{"reason"})

	SalesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_sales_deleted_total",
		Help: "Total number of sales removed via the hard-delete reversal",
	})

	StockDiscrepanciesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_stock_discrepancies_total",
		Help: "Reversals whose stock restore found no product row",
	})

	RevenueRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_revenue_recorded_total",
		Help: "Running sum of recorded sale totals",
	})

	ReceiptFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_receipt_fallback_total",
		Help: "Receipt numbers issued via the random fallback path",
	})

	SaleRecordLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_sale_record_latency_seconds",
		Help:    "Latency of the sale record transaction",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
