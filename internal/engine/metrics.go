package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	spinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reward_spins_total",
			Help: "Total number of spin attempts by campaign and result.",
		},
		[]string{"campaign_id", "result"},
	)

	scratchEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reward_scratch_evaluations_total",
			Help: "Total number of scratch-card trigger evaluations by trigger kind and outcome.",
		},
		[]string{"trigger", "outcome"},
	)
)
