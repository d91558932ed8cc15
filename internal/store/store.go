// Package store holds every observation collected during a run, grouped by
// callsign in processing order.
//
// A Store is created empty for each run, filled during the read phase and
// only read afterwards. It is not safe for concurrent mutation; the generator
// reads its inputs sequentially.
package store

import (
	"sort"
	"strings"

	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

// Store maps a callsign to its ordered observations.
type Store struct {
	calls map[string][]types.Observation
	total int
}

// New creates an empty store.
func New() *Store {
	return &Store{calls: make(map[string][]types.Observation)}
}

// AddSeed records a seed observation. Seed data is a single snapshot, so it
// replaces any earlier seed observation for the same callsign. Cabrillo
// observations already recorded for the callsign are kept after it.
func (s *Store) AddSeed(o types.Observation) {
	call := normalize(o.Callsign)
	if call == "" {
		return
	}
	o.Callsign = call

	prev := s.calls[call]
	obs := make([]types.Observation, 0, len(prev)+1)
	obs = append(obs, o)
	for _, p := range prev {
		if p.Kind == types.SourceSeed {
			s.total--
			continue
		}
		obs = append(obs, p)
	}
	s.calls[call] = obs
	s.total++
}

// Add appends a log observation to its callsign's sequence.
func (s *Store) Add(o types.Observation) {
	call := normalize(o.Callsign)
	if call == "" {
		return
	}
	o.Callsign = call
	s.calls[call] = append(s.calls[call], o)
	s.total++
}

// Observations returns the observations recorded for a callsign, in
// insertion order. The returned slice must not be modified.
func (s *Store) Observations(call string) []types.Observation {
	return s.calls[normalize(call)]
}

// Calls returns every callsign in ascending lexicographic order.
func (s *Store) Calls() []string {
	calls := make([]string, 0, len(s.calls))
	for call := range s.calls {
		calls = append(calls, call)
	}
	sort.Strings(calls)
	return calls
}

// Len returns the number of distinct callsigns.
func (s *Store) Len() int {
	return len(s.calls)
}

// Total returns the number of observations held.
func (s *Store) Total() int {
	return s.total
}

func normalize(call string) string {
	return strings.ToUpper(strings.TrimSpace(call))
}
