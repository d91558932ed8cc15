package merge

import (
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/sweeps-prefill/internal/observability"
	"github.com/ginjaninja78/sweeps-prefill/internal/store"
	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

// Engine reconciles a whole observation store and reports ambiguities.
type Engine struct {
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewEngine creates an Engine. metrics may be nil.
func NewEngine(logger zerolog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{logger: logger, metrics: metrics}
}

// Resolution is the outcome of resolving a store.
type Resolution struct {
	// Records holds one canonical record per callsign, sorted by callsign.
	Records []types.Record

	// Ambiguities holds every ambiguity reported, in callsign order.
	Ambiguities []Ambiguity
}

// Resolve reconciles every callsign in s. Each ambiguity is logged as a
// warning and counted; none of them is an error.
func (e *Engine) Resolve(s *store.Store) Resolution {
	e.logger.Debug().
		Int("callsigns", s.Len()).
		Int("observations", s.Total()).
		Msg("resolving observations")

	res := Resolution{Records: make([]types.Record, 0, s.Len())}

	for _, call := range s.Calls() {
		rec, ambiguities := Reconcile(call, s.Observations(call))
		res.Records = append(res.Records, rec)

		for _, a := range ambiguities {
			e.logger.Warn().
				Str("call", a.Callsign).
				Str("field", a.Field).
				Str("chosen", a.Chosen).
				Int("year", a.Year).
				Strs("candidates", a.Candidates).
				Msg("ambiguous field")
			if e.metrics != nil {
				e.metrics.Ambiguities.WithLabelValues(a.Field).Inc()
			}
		}
		res.Ambiguities = append(res.Ambiguities, ambiguities...)
	}

	if e.metrics != nil {
		e.metrics.Callsigns.Set(float64(len(res.Records)))
	}
	e.logger.Info().
		Int("callsigns", len(res.Records)).
		Int("ambiguities", len(res.Ambiguities)).
		Msg("merged observations")

	return res
}
