package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Counter: carry-over invocations by kind (week/day/quarter/delete) and outcome
	MovesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goals_carryover_moves_total",
			Help: "Total carry-over invocations",
		},
		[]string{"kind", "status"},
	)

	// Counter: goals carried/moved by depth
	GoalsCarriedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goals_carryover_goals_total",
			Help: "Total goals carried or moved",
		},
		[]string{"depth"},
	)

	// Histogram: move duration
	MoveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "goals_carryover_move_duration_seconds",
			Help: "Carry-over move duration seconds",
		},
		[]string{"kind"},
	)
)

func Init() {
	prometheus.MustRegister(MovesTotal, GoalsCarriedTotal, MoveDuration)
}
