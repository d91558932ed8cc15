// =============================================================================
// Sweepstakes Prefill Generator - Merge Engine
// =============================================================================
//
// This module reduces every observation collected for one callsign to a
// single canonical record. A callsign usually appears in many logs, and the
// logs disagree because:
//   (a) the exchange legitimately changed from one year to the next, or
//   (b) the copying station busted one or more items.
//
// RECONCILIATION:
//   1. Keep only the observations from the latest year. Seed data carries
//      year -1, so any log observation supersedes it.
//   2. Fewer than MinVoters observations left: return the first unchanged.
//   3. Otherwise vote per exchange field (section, check, precedence). The
//      most frequent value wins; ties go to the lexicographically smallest
//      value. A field with more than one distinct value is reported as an
//      Ambiguity.
//
// Descriptive fields (name, grids, state, birthdate) always come from the
// first observation of the latest year.
//
// =============================================================================

package merge

import (
	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

// MinVoters is the smallest number of same-year observations for which
// fields are voted on.
const MinVoters = 3

// Field names used in ambiguity reports and metrics.
const (
	FieldSection    = "section"
	FieldCheck      = "check"
	FieldPrecedence = "precedence"
)

// Ambiguity describes a field whose latest-year observations disagree.
type Ambiguity struct {
	Callsign string

	// Field is one of FieldSection, FieldCheck or FieldPrecedence.
	Field string

	// Chosen is the value that won the vote.
	Chosen string

	// Year is the year the candidates were taken from.
	Year int

	// Candidates is the full multiset of values, in observation order.
	Candidates []string
}

// exchangeField binds a voted field to its accessors.
type exchangeField struct {
	name string
	get  func(types.Observation) string
	set  func(*types.Record, string)
}

// exchangeFields lists the voted fields, in report order.
var exchangeFields = []exchangeField{
	{
		name: FieldSection,
		get:  func(o types.Observation) string { return o.Section },
		set:  func(r *types.Record, v string) { r.Section = v },
	},
	{
		name: FieldCheck,
		get:  func(o types.Observation) string { return o.Check },
		set:  func(r *types.Record, v string) { r.Check = v },
	},
	{
		name: FieldPrecedence,
		get:  func(o types.Observation) string { return o.Precedence },
		set:  func(r *types.Record, v string) { r.Precedence = v },
	},
}

// Reconcile reduces the observations of one callsign to a canonical record.
//
// PARAMETERS:
//   - call: The callsign the observations belong to.
//   - observations: Every observation for call, in processing order.
//
// RETURNS:
//   - The canonical record.
//   - One Ambiguity per voted field that had more than one distinct value.
//
// Reconcile never modifies observations and returns identical results for
// identical input. It must be called with at least one observation; an empty
// slice yields a record holding only the callsign.
func Reconcile(call string, observations []types.Observation) (types.Record, []Ambiguity) {
	if len(observations) == 0 {
		return types.Record{Callsign: call}, nil
	}

	latestYear := observations[0].Year
	for _, o := range observations[1:] {
		if o.Year > latestYear {
			latestYear = o.Year
		}
	}

	latest := make([]types.Observation, 0, len(observations))
	for _, o := range observations {
		if o.Year == latestYear {
			latest = append(latest, o)
		}
	}

	rec := latest[0].Record()
	rec.Callsign = call
	rec.Votes = len(latest)

	if len(latest) < MinVoters {
		return rec, nil
	}

	var ambiguities []Ambiguity
	for _, field := range exchangeFields {
		values := make([]string, len(latest))
		for i, o := range latest {
			values[i] = field.get(o)
		}

		chosen, distinct := Plurality(values)
		field.set(&rec, chosen)

		if distinct > 1 {
			ambiguities = append(ambiguities, Ambiguity{
				Callsign:   call,
				Field:      field.name,
				Chosen:     chosen,
				Year:       latestYear,
				Candidates: values,
			})
		}
	}

	return rec, ambiguities
}

// Plurality returns the most frequent value and the number of distinct
// values. Ties are broken by choosing the lexicographically smallest of the
// most frequent values, so the result does not depend on input order.
func Plurality(values []string) (string, int) {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	var (
		best      string
		bestCount int
	)
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best, len(counts)
}
