package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// We use 'promauto' which automatically registers metrics without complex initialization.

var (
	// 1. Proposals (Counter)
	// Counts proposal draws by outcome: "extend" (new object), "return"
	// (terminal marker), "invalid" (filtered as unparseable).
	ProposalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "programsearch_proposals_total",
			Help: "Total number of proposal draws processed",
		},
		[]string{"outcome"},
	)

	// 2. Object encodings (Counter)
	// Cache behaviour of the object encoder: hit vs miss. A healthy search
	// re-uses encodings heavily across particles and rounds.
	ObjectEncodings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "programsearch_object_encodings_total",
			Help: "Object encoding lookups by cache result",
		},
		[]string{"result"},
	)

	// 3. Distance evaluations (Counter)
	DistanceEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "programsearch_distance_evaluations_total",
			Help: "Graph distance lookups by cache result",
		},
		[]string{"result"},
	)

	// 4. Rounds (Counter)
	RoundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "programsearch_rounds_total",
			Help: "Total number of SMC rounds executed",
		},
	)

	// 5. Distinct particles after resampling (Gauge)
	PopulationDistinct = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "programsearch_population_distinct",
			Help: "Distinct particles surviving the latest resample",
		},
	)

	// 6. Round duration (Histogram)
	// Buckets cover fast mock models (sub-millisecond) up to slow remote
	// neural proposers (seconds).
	RoundDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "programsearch_round_duration_seconds",
			Help:    "Duration of one propose/weight/resample round",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)
