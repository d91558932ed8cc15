// =============================================================================
// Sweepstakes Prefill Generator - Generator Module
// =============================================================================
//
// This module orchestrates one generator run, from reading the inputs to
// writing the export files.
//
// PIPELINE:
//   1. Read the seed file (CSV or XLSX) into the observation store
//   2. Walk the log directory and read every Cabrillo log into the store
//   3. Reconcile each callsign into a canonical record
//   4. Write every configured export format
//   5. Write the run summary report and the metrics textfile
//
// ERROR POLICY:
//   Data problems never stop a run. A malformed line is skipped and counted,
//   an unreadable file is logged and counted, and a rejected seed layout
//   means the run continues without seed data. Only output failures are
//   returned as errors.
//
// =============================================================================

package generator

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/sweeps-prefill/internal/cabrillo"
	"github.com/ginjaninja78/sweeps-prefill/internal/config"
	"github.com/ginjaninja78/sweeps-prefill/internal/export"
	"github.com/ginjaninja78/sweeps-prefill/internal/merge"
	"github.com/ginjaninja78/sweeps-prefill/internal/observability"
	"github.com/ginjaninja78/sweeps-prefill/internal/parser"
	"github.com/ginjaninja78/sweeps-prefill/internal/store"
	"github.com/ginjaninja78/sweeps-prefill/internal/types"
	"github.com/ginjaninja78/sweeps-prefill/internal/validation"
	"github.com/ginjaninja78/sweeps-prefill/internal/xlsxparser"
	"github.com/ginjaninja78/sweeps-prefill/pkg/utils"
)

// Inputs names the sources of one run.
type Inputs struct {
	// SeedPath is the optional seed file. Files ending in .xlsx are read as
	// workbooks, anything else as comma-separated text.
	SeedPath string

	// LogDir is the directory walked for Cabrillo logs.
	LogDir string
}

// =============================================================================
// GENERATOR STRUCTURE
// =============================================================================

// Generator runs the prefill pipeline.
type Generator struct {
	cfg     *config.Config
	logger  zerolog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the clock used for timestamps and export headers.
func WithClock(clock clockwork.Clock) Option {
	return func(g *Generator) {
		g.clock = clock
	}
}

// WithMetrics sets the metrics the run reports to.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(g *Generator) {
		g.metrics = metrics
	}
}

// New creates a Generator.
//
// PARAMETERS:
//   - cfg: The validated configuration.
//   - logger: Receives all diagnostics.
//   - opts: Optional clock and metrics overrides.
func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) *Generator {
	g := &Generator{
		cfg:     cfg,
		logger:  logger,
		metrics: observability.NewMetrics(),
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run executes the whole pipeline.
//
// RETURNS:
//   - The run summary. It is returned even when an error occurs.
//   - An error if the output directory cannot be created or an output file,
//     the summary or the metrics file cannot be written.
func (g *Generator) Run(in Inputs) (*utils.RunSummary, error) {
	summary, records := g.prepare(in)
	fm := utils.NewFileManager(in.LogDir, g.cfg.OutputDir)

	// =========================================================================
	// STEP 4: WRITE EXPORTS
	// =========================================================================

	if err := fm.EnsureOutputDir(); err != nil {
		g.finish(summary)
		return summary, err
	}

	var errs []error
	opts := g.cfg.ExportOptions(summary.StartTime)
	for _, name := range g.cfg.Formats {
		out, err := g.export(fm, name, records, opts)
		if err != nil {
			g.logger.Error().Err(err).Str("format", name).Msg("export failed")
			errs = append(errs, err)
			continue
		}
		summary.Outputs = append(summary.Outputs, out)
	}

	g.finish(summary)

	// =========================================================================
	// STEP 5: WRITE REPORTS
	// =========================================================================

	if g.cfg.SummaryFile != "" {
		path, err := fm.WriteSummaryLog(summary, g.cfg.SummaryFile)
		if err != nil {
			errs = append(errs, err)
		} else {
			g.logger.Info().Str("file", path).Msg("wrote run summary")
		}
	}

	if g.cfg.MetricsFile != "" {
		if err := g.metrics.WriteTextfile(g.cfg.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics file: %w", err))
		} else {
			g.logger.Debug().Str("file", g.cfg.MetricsFile).Msg("wrote metrics")
		}
	}

	return summary, errors.Join(errs...)
}

// Validate reads and reconciles the inputs without writing anything.
//
// RETURNS:
//   - The run summary.
//   - The reconciled records, sorted by callsign.
func (g *Generator) Validate(in Inputs) (*utils.RunSummary, []types.Record) {
	summary, records := g.prepare(in)
	g.finish(summary)
	return summary, records
}

// prepare runs the read and merge phases.
func (g *Generator) prepare(in Inputs) (*utils.RunSummary, []types.Record) {
	summary := &utils.RunSummary{
		RunID:     uuid.New().String(),
		StartTime: g.clock.Now(),
		SeedFile:  in.SeedPath,
	}
	g.logger.Info().
		Str("run_id", summary.RunID).
		Str("seed", in.SeedPath).
		Str("logs", in.LogDir).
		Msg("starting run")

	// =========================================================================
	// STEP 1-2: READ INPUTS
	// =========================================================================

	st := store.New()
	g.loadSeed(in.SeedPath, st, summary)
	g.loadLogs(in.LogDir, st, summary)

	// =========================================================================
	// STEP 3: RECONCILE
	// =========================================================================

	resolution := merge.NewEngine(g.logger, g.metrics).Resolve(st)

	summary.Observations = st.Total()
	summary.Callsigns = len(resolution.Records)
	for _, a := range resolution.Ambiguities {
		summary.Ambiguities = append(summary.Ambiguities, utils.AmbiguityInfo{
			Callsign:   a.Callsign,
			Field:      a.Field,
			Chosen:     a.Chosen,
			Year:       a.Year,
			Candidates: a.Candidates,
		})
	}

	return summary, resolution.Records
}

// finish stamps the end of the run.
func (g *Generator) finish(summary *utils.RunSummary) {
	summary.EndTime = g.clock.Now()
	g.metrics.RunDuration.Set(summary.Duration().Seconds())

	g.logger.Info().
		Str("run_id", summary.RunID).
		Int("callsigns", summary.Callsigns).
		Int("observations", summary.Observations).
		Int("ambiguities", len(summary.Ambiguities)).
		Int("failed_files", summary.FailedFiles).
		Dur("duration", summary.Duration()).
		Msg("run complete")
}

// =============================================================================
// INPUT READING
// =============================================================================

// loadSeed reads the seed file into the store. Any failure is logged and the
// run continues without seed data.
func (g *Generator) loadSeed(path string, st *store.Store, summary *utils.RunSummary) {
	if path == "" {
		g.logger.Debug().Msg("no seed file")
		return
	}

	result, err := g.readSeed(path)
	if err != nil {
		ev := g.logger.Error().Err(err).Str("file", path)
		if errors.Is(err, validation.ErrInvalidLayout) {
			for _, problem := range validation.Errors(err) {
				summary.SeedProblems = append(summary.SeedProblems, problem.Error())
			}
			ev.Str("problems", validation.FormatErrors(err)).Msg("seed layout rejected, continuing without seed data")
		} else {
			ev.Msg("failed to read seed file, continuing without seed data")
		}
		g.fail(summary, types.SourceSeed, path, err)
		return
	}

	for _, obs := range result.Observations {
		st.AddSeed(obs)
	}
	g.logSkipped(types.SourceSeed, result.Skipped)

	summary.SeedLoaded = true
	summary.SeedRecords = len(result.Observations)
	summary.SeedSkipped = len(result.Skipped)
	summary.InputFiles = append(summary.InputFiles, utils.InputFileInfo{
		Path:    path,
		Kind:    types.SourceSeed.String(),
		Lines:   result.Records,
		Records: len(result.Observations),
		Skipped: len(result.Skipped),
	})
	g.count(types.SourceSeed, len(result.Observations), len(result.Skipped))

	g.logger.Info().
		Str("file", path).
		Int("records", result.Records).
		Int("valid", len(result.Observations)).
		Bool("order_directive", result.Layout.Declared).
		Msg("seed loaded")
}

// readSeed reads a CSV or XLSX seed file.
func (g *Generator) readSeed(path string) (*parser.SeedResult, error) {
	if xlsxparser.IsWorkbook(path) {
		return xlsxparser.ReadSeed(path)
	}

	var result *parser.SeedResult
	err := g.withDecodedFile(path, func(r io.Reader) error {
		var err error
		result, err = parser.ReadSeed(r, path)
		return err
	})
	return result, err
}

// loadLogs walks dir and reads every log into the store.
func (g *Generator) loadLogs(dir string, st *store.Store, summary *utils.RunSummary) {
	if dir == "" {
		g.logger.Warn().Msg("no log directory given")
		return
	}

	discovery, err := utils.NewFileManager(dir, g.cfg.OutputDir).DiscoverLogFiles()
	if err != nil {
		g.logger.Error().Err(err).Str("dir", dir).Msg("failed to read log directory")
		g.fail(summary, types.SourceCabrillo, dir, err)
		return
	}

	for _, skipped := range discovery.Skipped {
		g.logger.Warn().Str("path", skipped.Path).Str("reason", skipped.Reason).Msg("skipping directory entry")
		g.metrics.EntriesSkipped.Inc()
		summary.SkippedDirs++
	}

	for _, path := range discovery.Files {
		var result *cabrillo.Result
		err := g.withDecodedFile(path, func(r io.Reader) error {
			var err error
			result, err = cabrillo.Read(r, path)
			return err
		})
		if result == nil {
			g.logger.Error().Err(err).Str("file", path).Msg("failed to read log")
			g.fail(summary, types.SourceCabrillo, path, err)
			continue
		}

		// A read error keeps the QSOs decoded before it.
		for _, obs := range result.Observations {
			st.Add(obs)
		}
		g.logSkipped(types.SourceCabrillo, result.Skipped)

		summary.Lines += result.Lines
		summary.QSOs += result.QSOs
		summary.SkippedLines += len(result.Skipped)
		summary.InputFiles = append(summary.InputFiles, utils.InputFileInfo{
			Path:    path,
			Kind:    types.SourceCabrillo.String(),
			Lines:   result.Lines,
			Records: len(result.Observations),
			Skipped: len(result.Skipped),
		})
		g.metrics.Observations.WithLabelValues(types.SourceCabrillo.String()).Add(float64(len(result.Observations)))
		g.metrics.LinesSkipped.WithLabelValues(types.SourceCabrillo.String()).Add(float64(len(result.Skipped)))

		if err != nil {
			g.logger.Error().Err(err).
				Str("file", path).
				Int("kept", len(result.Observations)).
				Msg("failed to read log, keeping QSOs read so far")
			g.fail(summary, types.SourceCabrillo, path, err)
			continue
		}

		summary.LogFiles++
		g.metrics.FilesRead.WithLabelValues(types.SourceCabrillo.String()).Inc()

		g.logger.Info().
			Str("file", path).
			Int("lines", result.Lines).
			Int("qsos", result.QSOs).
			Int("skipped", len(result.Skipped)).
			Msg("log read")
	}
}

// withDecodedFile opens path and passes its contents, decoded from the
// configured encoding, to read.
func (g *Generator) withDecodedFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	r, err := parser.NewDecoder(f, g.cfg.Encoding)
	if err != nil {
		return err
	}
	return read(r)
}

// logSkipped reports malformed lines at debug level.
func (g *Generator) logSkipped(kind types.SourceKind, skipped []*parser.LineError) {
	for _, le := range skipped {
		g.logger.Debug().
			Str("kind", kind.String()).
			Str("file", le.Origin).
			Int("line", le.Line).
			Str("reason", le.Reason).
			Msg("skipping malformed line")
	}
}

// count updates the per-file metrics.
func (g *Generator) count(kind types.SourceKind, observations, skipped int) {
	g.metrics.FilesRead.WithLabelValues(kind.String()).Inc()
	g.metrics.Observations.WithLabelValues(kind.String()).Add(float64(observations))
	g.metrics.LinesSkipped.WithLabelValues(kind.String()).Add(float64(skipped))
}

// fail records an input that could not be read.
func (g *Generator) fail(summary *utils.RunSummary, kind types.SourceKind, path string, err error) {
	g.metrics.FilesFailed.WithLabelValues(kind.String()).Inc()
	summary.FailedFiles++
	summary.FailedList = append(summary.FailedList, utils.FailedFileInfo{
		Path:         path,
		ErrorMessage: err.Error(),
	})
}

// =============================================================================
// OUTPUT WRITING
// =============================================================================

// export writes one format atomically into the output directory.
func (g *Generator) export(fm *utils.FileManager, name string, records []types.Record, opts export.Options) (utils.OutputFileInfo, error) {
	format, err := export.Lookup(name)
	if err != nil {
		return utils.OutputFileInfo{}, err
	}

	path, n, err := fm.WriteFile(g.cfg.OutputFile(format.Name), func(w io.Writer) error {
		return format.Write(w, records, opts)
	})
	if err != nil {
		return utils.OutputFileInfo{}, err
	}

	g.metrics.ExportBytes.WithLabelValues(format.Name).Add(float64(n))
	g.logger.Info().
		Str("format", format.Name).
		Str("file", path).
		Int("callsigns", len(records)).
		Int64("bytes", n).
		Msg("wrote export")

	return utils.OutputFileInfo{Format: format.Name, Path: path, Bytes: n}, nil
}
