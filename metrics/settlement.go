package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	settlementTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betroom_settlements_total",
			Help: "Room close attempts by result",
		},
		[]string{"result"},
	)

	settlementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "betroom_settlement_duration_ms",
			Help:    "Room close duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 12),
		},
		[]string{"result"},
	)

	drawTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betroom_draw_outcomes_total",
			Help: "Drawn outcomes by game and label",
		},
		[]string{"game", "label"},
	)

	paidOutTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betroom_paid_out_amount_total",
			Help: "Sum of payouts credited to winners",
		},
	)

	houseRetainedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betroom_house_retained_amount_total",
			Help: "Sum of pools retained because nobody picked the outcome",
		},
	)
)

// RecordSettlement records a close attempt. result is "success" or the failure code.
func RecordSettlement(result string, elapsed time.Duration) {
	res := strings.ToLower(result)
	settlementTotal.WithLabelValues(res).Inc()
	settlementDuration.WithLabelValues(res).Observe(float64(elapsed.Milliseconds()))
}

// RecordDraw counts a drawn outcome
func RecordDraw(game, label string) {
	drawTotal.WithLabelValues(strings.ToLower(game), strings.ToLower(label)).Inc()
}

// RecordPayout adds the money moved by a settlement
func RecordPayout(paid, retained decimal.Decimal) {
	paidOutTotal.Add(paid.InexactFloat64())
	houseRetainedTotal.Add(retained.InexactFloat64())
}
