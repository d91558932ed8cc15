package merge

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sweeps-prefill/internal/logging"
	"github.com/ginjaninja78/sweeps-prefill/internal/observability"
	"github.com/ginjaninja78/sweeps-prefill/internal/store"
	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

func qso(call string, year int, prec, check, sect string) types.Observation {
	return types.Observation{
		Callsign:   call,
		Precedence: prec,
		Check:      check,
		Section:    sect,
		Year:       year,
		Kind:       types.SourceCabrillo,
	}
}

func TestReconcile_LogBeatsSeed(t *testing.T) {
	seed := types.Observation{
		Callsign:   "WZ6Z",
		Name:       "HOWARD",
		Section:    "EB",
		State:      "CA",
		Check:      "64",
		Birthdate:  "-1",
		Precedence: "A",
		Year:       types.SeedYear,
		Kind:       types.SourceSeed,
	}

	rec, amb := Reconcile("WZ6Z", []types.Observation{seed, qso("WZ6Z", 2023, "B", "20", "ORG")})

	assert.Empty(t, amb)
	assert.Equal(t, "ORG", rec.Section)
	assert.Equal(t, "20", rec.Check)
	assert.Equal(t, "B", rec.Precedence)
	assert.Equal(t, 2023, rec.Year)
	assert.Empty(t, rec.Name, "descriptive fields come from the winning observation")
}

func TestReconcile_SeedOnly(t *testing.T) {
	seed := types.Observation{Callsign: "WZ6Z", Name: "HOWARD", Section: "EB", Check: "64", Precedence: "A", Year: types.SeedYear}

	rec, amb := Reconcile("WZ6Z", []types.Observation{seed})

	assert.Empty(t, amb)
	assert.Equal(t, seed.Record(), rec)
}

func TestReconcile_MajorityWithDiagnostic(t *testing.T) {
	obs := []types.Observation{
		qso("N3EN", 2024, "A", "56", "MDC"),
		qso("N3EN", 2024, "A", "56", "MDC"),
		qso("N3EN", 2024, "A", "56", "EPA"),
	}

	rec, amb := Reconcile("N3EN", obs)

	assert.Equal(t, "MDC", rec.Section)
	assert.Equal(t, "56", rec.Check)
	assert.Equal(t, "A", rec.Precedence)
	assert.Equal(t, 3, rec.Votes)

	require.Len(t, amb, 1)
	assert.Equal(t, Ambiguity{
		Callsign:   "N3EN",
		Field:      FieldSection,
		Chosen:     "MDC",
		Year:       2024,
		Candidates: []string{"MDC", "MDC", "EPA"},
	}, amb[0])
}

func TestReconcile_OnlyLatestYearVotes(t *testing.T) {
	obs := []types.Observation{
		qso("K6XX", 2022, "B", "72", "SCV"),
		qso("K6XX", 2022, "B", "72", "SCV"),
		qso("K6XX", 2022, "B", "72", "SCV"),
		qso("K6XX", 2024, "U", "72", "EB"),
	}

	rec, amb := Reconcile("K6XX", obs)

	assert.Empty(t, amb)
	assert.Equal(t, "EB", rec.Section)
	assert.Equal(t, "U", rec.Precedence)
	assert.Equal(t, 2024, rec.Year)
	assert.Equal(t, 1, rec.Votes)
}

func TestReconcile_TwoDisagreeingReturnsFirstUnblended(t *testing.T) {
	first := qso("W1AW", 2024, "B", "14", "CT")
	second := qso("W1AW", 2024, "A", "15", "WMA")

	rec, amb := Reconcile("W1AW", []types.Observation{first, second})

	assert.Empty(t, amb, "no voting below three observations")
	want := first.Record()
	want.Votes = 2
	assert.Equal(t, want, rec)
}

func TestReconcile_PerFieldVote(t *testing.T) {
	obs := []types.Observation{
		qso("AA0B", 2024, "A", "99", "MO"),
		qso("AA0B", 2024, "B", "98", "MO"),
		qso("AA0B", 2024, "B", "99", "KS"),
	}

	rec, amb := Reconcile("AA0B", obs)

	assert.Equal(t, "MO", rec.Section)
	assert.Equal(t, "99", rec.Check)
	assert.Equal(t, "B", rec.Precedence)
	assert.Len(t, amb, 3)
}

func TestReconcile_TieBreakIsLexicographic(t *testing.T) {
	obs := []types.Observation{
		qso("K1AR", 2024, "M", "65", "WMA"),
		qso("K1AR", 2024, "M", "65", "EMA"),
		qso("K1AR", 2024, "M", "65", "NH"),
	}

	rec, amb := Reconcile("K1AR", obs)
	assert.Equal(t, "EMA", rec.Section)
	require.Len(t, amb, 1)
	assert.Equal(t, FieldSection, amb[0].Field)
}

func TestReconcile_EmptyFieldsVote(t *testing.T) {
	obs := []types.Observation{
		qso("NO1SE", 2024, "", "", "ENY"),
		qso("NO1SE", 2024, "", "", "ENY"),
		qso("NO1SE", 2024, "Q", "", "ENY"),
	}

	rec, amb := Reconcile("NO1SE", obs)
	assert.Empty(t, rec.Precedence)
	require.Len(t, amb, 1)
	assert.Equal(t, FieldPrecedence, amb[0].Field)
}

func TestReconcile_Empty(t *testing.T) {
	rec, amb := Reconcile("N0CALL", nil)
	assert.Equal(t, types.Record{Callsign: "N0CALL"}, rec)
	assert.Nil(t, amb)
}

func TestReconcile_NeverPicksOlderYear(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sections := []string{"MDC", "EPA", "WPA", "SNJ"}

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(8)
		obs := make([]types.Observation, n)
		maxYear := types.SeedYear
		for j := range obs {
			year := 2020 + rng.Intn(5)
			if rng.Intn(6) == 0 {
				year = types.SeedYear
			}
			if year > maxYear {
				maxYear = year
			}
			obs[j] = qso("N3EN", year, "A", "56", sections[rng.Intn(len(sections))])
		}

		rec, _ := Reconcile("N3EN", obs)
		assert.Equal(t, maxYear, rec.Year)
	}
}

func TestReconcile_PermutationInvariantAndIdempotent(t *testing.T) {
	obs := []types.Observation{
		qso("N3EN", 2024, "A", "56", "MDC"),
		qso("N3EN", 2024, "A", "56", "EPA"),
		qso("N3EN", 2024, "B", "56", "MDC"),
		qso("N3EN", 2023, "U", "11", "WPA"),
		qso("N3EN", 2024, "A", "65", "MDC"),
		qso("N3EN", 2024, "A", "56", "EPA"),
	}

	want, _ := Reconcile("N3EN", obs)
	again, _ := Reconcile("N3EN", obs)
	assert.Equal(t, want, again)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]types.Observation(nil), obs...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, _ := Reconcile("N3EN", shuffled)
		assert.Equal(t, want.Section, got.Section)
		assert.Equal(t, want.Check, got.Check)
		assert.Equal(t, want.Precedence, got.Precedence)
		assert.Equal(t, want.Year, got.Year)
	}
	assert.Equal(t, "MDC", want.Section)
	assert.Equal(t, "56", want.Check)
	assert.Equal(t, "A", want.Precedence)
}

func TestReconcile_DoesNotModifyInput(t *testing.T) {
	obs := []types.Observation{
		qso("N3EN", 2024, "A", "56", "EPA"),
		qso("N3EN", 2024, "A", "56", "MDC"),
		qso("N3EN", 2024, "A", "56", "MDC"),
	}
	before := append([]types.Observation(nil), obs...)

	Reconcile("N3EN", obs)
	assert.Equal(t, before, obs)
}

func TestPlurality(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		want     string
		distinct int
	}{
		{"single", []string{"MDC"}, "MDC", 1},
		{"strict plurality", []string{"EPA", "MDC", "MDC"}, "MDC", 2},
		{"tie", []string{"WPA", "EPA"}, "EPA", 2},
		{"three way tie", []string{"C", "B", "A", "C", "B", "A"}, "A", 3},
		{"empty value", []string{"", "", "A"}, "", 2},
		{"none", nil, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, distinct := Plurality(tt.values)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.distinct, distinct)
		})
	}
}

func TestEngine_Resolve(t *testing.T) {
	s := store.New()
	s.AddSeed(types.Observation{Callsign: "WZ6Z", Section: "EB", Check: "64", Precedence: "A", Year: types.SeedYear, Kind: types.SourceSeed})
	s.Add(qso("WZ6Z", 2023, "B", "20", "ORG"))
	s.Add(qso("N3EN", 2024, "A", "56", "MDC"))
	s.Add(qso("N3EN", 2024, "A", "56", "EPA"))
	s.Add(qso("N3EN", 2024, "A", "56", "MDC"))

	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: "info", Format: "json", Output: &buf})
	metrics := observability.NewMetrics()

	res := NewEngine(logger, metrics).Resolve(s)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "N3EN", res.Records[0].Callsign)
	assert.Equal(t, "MDC", res.Records[0].Section)
	assert.Equal(t, "WZ6Z", res.Records[1].Callsign)
	assert.Equal(t, "ORG", res.Records[1].Section)

	require.Len(t, res.Ambiguities, 1)
	assert.Contains(t, buf.String(), `"message":"ambiguous field"`)
	assert.Contains(t, buf.String(), `"candidates":["MDC","EPA","MDC"]`)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Ambiguities.WithLabelValues(FieldSection)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Callsigns))
}

func TestEngine_ResolveEmptyStore(t *testing.T) {
	res := NewEngine(logging.Nop(), nil).Resolve(store.New())
	assert.Empty(t, res.Records)
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Ambiguities)
}
