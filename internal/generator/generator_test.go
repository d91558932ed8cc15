package generator

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sweeps-prefill/internal/config"
	"github.com/ginjaninja78/sweeps-prefill/internal/logging"
	"github.com/ginjaninja78/sweeps-prefill/internal/observability"
)

var runTime = time.Date(2024, time.November, 4, 16, 0, 0, 0, time.UTC)

const logA = `START-OF-LOG: 3.0
CALLSIGN: N6TV
QSO: 14000 CW 2024-11-02 2100 N6TV 1 A 61 SCV N3EN 12 A 56 MDC
QSO: 14000 CW 2024-11-02 2101 N6TV 2 A 61 SCV wz6z 13 B 20 ORG
QSO: 14000 CW 2024-11-02 2102 N6TV 3 A 61 SCV BROKEN
END-OF-LOG:
`

const logB = `QSO: 7000 CW 2024-11-02 2200 K6XX 1 B 72 SCV N3EN 99 A 56 MDC
QSO: 7000 CW 2024-11-02 2201 K6XX 2 B 72 SCV N3EN 99 A 56 EPA
`

const seedCSV = `WZ6Z,HOWARD,,,EB,CA,64,-1,A
K1AR,JOHN,,,EMA,MA,65,,M
`

type fixture struct {
	root    string
	logDir  string
	seed    string
	out     string
	cfg     *config.Config
	logs    *bytes.Buffer
	metrics *observability.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	f := &fixture{
		root:    root,
		logDir:  filepath.Join(root, "logs"),
		seed:    filepath.Join(root, "SSCW.txt"),
		out:     filepath.Join(root, "out"),
		logs:    &bytes.Buffer{},
		metrics: observability.NewMetrics(),
	}

	write(t, filepath.Join(f.logDir, "n6tv.log"), logA)
	write(t, filepath.Join(f.logDir, "2024", "k6xx.log"), logB)
	write(t, f.seed, seedCSV)

	f.cfg = config.Default()
	f.cfg.OutputDir = f.out
	return f
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func (f *fixture) generator() *Generator {
	logger := logging.New(logging.Config{Level: "debug", Format: "json", Output: f.logs})
	return New(f.cfg, logger,
		WithClock(clockwork.NewFakeClockAt(runTime)),
		WithMetrics(f.metrics),
	)
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	f.cfg.SummaryFile = config.DefaultSummaryFile
	f.cfg.MetricsFile = filepath.Join(f.root, "prefill.prom")

	summary, err := f.generator().Run(Inputs{SeedPath: f.seed, LogDir: f.logDir})
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, runTime, summary.StartTime)
	assert.True(t, summary.SeedLoaded)
	assert.Equal(t, 2, summary.SeedRecords)
	assert.Equal(t, 2, summary.LogFiles)
	assert.Equal(t, 5, summary.QSOs)
	assert.Equal(t, 1, summary.SkippedLines)
	assert.Equal(t, 6, summary.Observations)
	assert.Equal(t, 3, summary.Callsigns)
	assert.Zero(t, summary.FailedFiles)
	require.Len(t, summary.Ambiguities, 1)
	assert.Equal(t, "N3EN", summary.Ambiguities[0].Callsign)
	assert.Equal(t, []string{"MDC", "EPA", "MDC"}, summary.Ambiguities[0].Candidates)
	assert.Len(t, summary.Outputs, 5)

	n1mm, err := os.ReadFile(filepath.Join(f.out, "prefill_n1mm.txt"))
	require.NoError(t, err)
	assert.Equal(t, "# NCCC call history generated 2024-11-04\n"+
		"!!Order!!, CALL, EXCH1, CK, SECT\n"+
		"K1AR,M,65,EMA\n"+
		"N3EN,A,56,MDC\n"+
		"WZ6Z,B,20,ORG\n", string(n1mm))

	trlog, err := os.ReadFile(filepath.Join(f.out, "TRMASTER.ASC"))
	require.NoError(t, err)
	assert.Equal(t, "K1AR =AEMA =K65 =VM\r\nN3EN =AMDC =K56 =VA\r\nWZ6Z =AORG =K20 =VB\r\n", string(trlog))

	for _, name := range []string{"prefill_wintest.xdt", "prefill_writelog.txt", "prefill_review.xlsx", "run_summary.txt"} {
		assert.FileExists(t, filepath.Join(f.out, name))
	}

	entries, err := os.ReadDir(f.out)
	require.NoError(t, err)
	assert.Len(t, entries, 6, "no temporary files left behind")

	prom, err := os.ReadFile(f.cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `sweeps_prefill_files_read_total{kind="cabrillo"} 2`)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FilesRead.WithLabelValues("seed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LinesSkipped.WithLabelValues("cabrillo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Ambiguities.WithLabelValues("section")))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.Callsigns))
	assert.Equal(t, float64(len(n1mm)), testutil.ToFloat64(f.metrics.ExportBytes.WithLabelValues("n1mm")))

	assert.Contains(t, f.logs.String(), `"message":"ambiguous field"`)
	assert.Contains(t, f.logs.String(), `"message":"skipping malformed line"`)
}

func TestRun_SelectedFormatsAndNames(t *testing.T) {
	f := newFixture(t)
	f.cfg.Formats = []string{"n1mm"}
	f.cfg.Outputs = map[string]string{"n1mm": "SS_prefill.txt"}

	summary, err := f.generator().Run(Inputs{LogDir: f.logDir})
	require.NoError(t, err)

	require.Len(t, summary.Outputs, 1)
	assert.Equal(t, filepath.Join(f.out, "SS_prefill.txt"), summary.Outputs[0].Path)

	entries, err := os.ReadDir(f.out)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRun_RejectedSeedLayoutContinues(t *testing.T) {
	f := newFixture(t)
	write(t, f.seed, "!!Order!!,CALL,NAME\nW1AW,HIRAM\n")

	summary, err := f.generator().Run(Inputs{SeedPath: f.seed, LogDir: f.logDir})
	require.NoError(t, err)

	assert.False(t, summary.SeedLoaded)
	assert.Equal(t, 1, summary.FailedFiles)
	assert.Equal(t, 2, summary.Callsigns, "logs are still processed")
	assert.Contains(t, f.logs.String(), "seed layout rejected")
	assert.Equal(t, []string{
		"seed layout: SECT: required column is not declared",
		"seed layout: CK: required column is not declared",
		"seed layout: PREC: required column is not declared",
	}, summary.SeedProblems)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FilesFailed.WithLabelValues("seed")))
}

func TestRun_MissingInputsWritesHeaderOnlyFiles(t *testing.T) {
	f := newFixture(t)

	summary, err := f.generator().Run(Inputs{
		SeedPath: filepath.Join(f.root, "missing.csv"),
		LogDir:   filepath.Join(f.root, "missing"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.FailedFiles)
	assert.Zero(t, summary.Callsigns)

	wintest, err := os.ReadFile(filepath.Join(f.out, "prefill_wintest.xdt"))
	require.NoError(t, err)
	assert.Equal(t, "# TITLE 2024 NCCC data\r\n", string(wintest))
}

func TestValidate_OverlongLineKeepsRestOfLog(t *testing.T) {
	f := newFixture(t)
	write(t, filepath.Join(f.logDir, "big.log"),
		"QSO: 14000 CW 2024-11-02 2300 W6YX 1 A 9 SCV W1AW 1 B 14 CT\n"+
			"SOAPBOX: "+strings.Repeat("73 ", 1024*1024)+"\n"+
			"QSO: 14000 CW 2024-11-02 2301 W6YX 2 A 9 SCV K1AR 2 M 65 EMA\n")

	summary, records := f.generator().Validate(Inputs{LogDir: f.logDir})

	assert.Zero(t, summary.FailedFiles)
	assert.Equal(t, 3, summary.LogFiles)
	assert.Equal(t, 2, summary.SkippedLines, "the broken QSO in logA and the soapbox line")

	var calls []string
	for _, r := range records {
		calls = append(calls, r.Callsign)
	}
	assert.Equal(t, []string{"K1AR", "N3EN", "W1AW", "WZ6Z"}, calls)
}

func TestValidate_UnreadableLogDoesNotStopOthers(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	f := newFixture(t)
	locked := filepath.Join(f.logDir, "locked.log")
	write(t, locked, "QSO: 14000 CW 2024-11-02 2300 W6YX 1 A 9 SCV W1AW 1 B 14 CT\n")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	summary, records := f.generator().Validate(Inputs{LogDir: f.logDir})

	assert.Equal(t, 1, summary.FailedFiles)
	assert.Equal(t, 2, summary.LogFiles)
	require.Len(t, summary.FailedList, 1)
	assert.Equal(t, locked, summary.FailedList[0].Path)
	assert.Len(t, records, 2)
	assert.Contains(t, f.logs.String(), `"message":"failed to read log"`)
}

func TestRun_OutputDirNotCreatable(t *testing.T) {
	f := newFixture(t)
	blocker := filepath.Join(f.root, "blocker")
	write(t, blocker, "")
	f.cfg.OutputDir = filepath.Join(blocker, "out")

	summary, err := f.generator().Run(Inputs{LogDir: f.logDir})
	require.Error(t, err)
	require.NotNil(t, summary)
	assert.Empty(t, summary.Outputs)
}

func TestValidate_WritesNothing(t *testing.T) {
	f := newFixture(t)

	summary, records := f.generator().Validate(Inputs{SeedPath: f.seed, LogDir: f.logDir})

	assert.Equal(t, 3, summary.Callsigns)
	require.Len(t, records, 3)
	assert.Equal(t, "WZ6Z", records[2].Callsign)
	assert.Equal(t, "ORG", records[2].Section)
	assert.Equal(t, 2024, records[2].Year)
	assert.NoDirExists(t, f.out)
}

func TestValidate_Windows1252Seed(t *testing.T) {
	f := newFixture(t)
	f.cfg.Encoding = "Windows-1252"
	write(t, f.seed, "K1AR,JOS\xc9,,,EMA,MA,65,,M\n")

	_, records := f.generator().Validate(Inputs{SeedPath: f.seed, LogDir: f.logDir})

	require.NotEmpty(t, records)
	assert.Equal(t, "K1AR", records[0].Callsign)
	assert.Equal(t, "JOSÉ", records[0].Name)
	assert.Equal(t, -1, records[0].Year)
}

func TestValidate_WorkbookSeed(t *testing.T) {
	f := newFixture(t)

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]interface{}{"!!Order!!", "CALL", "EXCH1", "CK", "SECT"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]interface{}{"AA0B", "U", "99", "MO"}))
	path := filepath.Join(f.root, "roster.xlsx")
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	summary, records := f.generator().Validate(Inputs{SeedPath: path, LogDir: f.logDir})

	assert.True(t, summary.SeedLoaded)
	assert.Equal(t, 1, summary.SeedRecords)
	require.Len(t, records, 3)
	assert.Equal(t, "AA0B", records[0].Callsign)
	assert.Equal(t, "MO", records[0].Section)
	assert.Equal(t, "U", records[0].Precedence)
}
