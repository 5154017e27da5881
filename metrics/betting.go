package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	wagerTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betroom_wager_requests_total",
			Help: "Total wager requests by result",
		},
		[]string{"result"},
	)

	wagerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "betroom_wager_request_duration_ms",
			Help:    "Wager request duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(2, 2, 12),
		},
		[]string{"result"},
	)

	stakedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betroom_staked_amount_total",
			Help: "Sum of accepted stakes",
		},
	)

	roomsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betroom_rooms_created_total",
			Help: "Rooms opened by game type",
		},
		[]string{"game"},
	)

	roomCodeCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betroom_room_code_collisions_total",
			Help: "Generated room codes rejected because they were already taken",
		},
	)
)

// RecordWager records a wager attempt. result is "success" or the failure code.
func RecordWager(result string, elapsed time.Duration) {
	res := strings.ToLower(result)
	wagerTotal.WithLabelValues(res).Inc()
	wagerDuration.WithLabelValues(res).Observe(float64(elapsed.Milliseconds()))
}

// RecordStake adds an accepted stake to the staked total
func RecordStake(stake decimal.Decimal) {
	stakedTotal.Add(stake.InexactFloat64())
}

// RecordRoomCreated counts a newly opened room
func RecordRoomCreated(game string) {
	roomsCreatedTotal.WithLabelValues(strings.ToLower(game)).Inc()
}

// RecordRoomCodeCollision counts a room code that had to be regenerated
func RecordRoomCodeCollision() {
	roomCodeCollisionsTotal.Inc()
}
