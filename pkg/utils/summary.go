package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary holds the results of one generator run.
type RunSummary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time

	// Seed input. SeedFile is empty when no seed was given.
	SeedFile    string
	SeedRecords int
	SeedSkipped int
	SeedLoaded  bool

	// SeedProblems lists why a seed layout was rejected, one entry per
	// problem.
	SeedProblems []string

	// Cabrillo input.
	LogFiles     int
	FailedFiles  int
	SkippedDirs  int
	Lines        int
	QSOs         int
	SkippedLines int

	// Merge results.
	Observations int
	Callsigns    int

	InputFiles  []InputFileInfo
	FailedList  []FailedFileInfo
	Ambiguities []AmbiguityInfo
	Outputs     []OutputFileInfo
}

// Duration returns the wall time of the run.
func (s *RunSummary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// InputFileInfo contains statistics for one input file that was read.
type InputFileInfo struct {
	Path    string
	Kind    string
	Lines   int
	Records int
	Skipped int
}

// FailedFileInfo contains information about an input that could not be read.
type FailedFileInfo struct {
	Path         string
	ErrorMessage string
}

// AmbiguityInfo describes a reconciled field whose observations disagreed.
type AmbiguityInfo struct {
	Callsign   string
	Field      string
	Chosen     string
	Year       int
	Candidates []string
}

// OutputFileInfo describes a written output file.
type OutputFileInfo struct {
	Format string
	Path   string
	Bytes  int64
}

const summaryRule = "================================================================================\n"
const sectionRule = "--------------------------------------------------------------------------------\n"

// WriteSummaryLog writes the run summary report into the output directory.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if the file cannot be written.
func (fm *FileManager) WriteSummaryLog(summary *RunSummary, name string) (string, error) {
	path, _, err := fm.WriteFile(name, func(w io.Writer) error {
		return WriteSummary(w, summary)
	})
	if err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	return path, nil
}

// WriteSummary renders the run summary report to w.
func WriteSummary(w io.Writer, summary *RunSummary) error {
	writer := bufio.NewWriter(w)

	seed := summary.SeedFile
	switch {
	case seed == "":
		seed = "none"
	case !summary.SeedLoaded:
		seed += " (not loaded)"
	}

	fmt.Fprintf(writer, "Sweepstakes Prefill Generator - Run Summary\n"+
		summaryRule+"\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Inputs:\n"+
		"  Seed File:      %s\n"+
		"  Seed Records:   %d\n"+
		"  Seed Skipped:   %d\n"+
		"  Log Files:      %d\n"+
		"  Failed Files:   %d\n"+
		"  Skipped Dirs:   %d\n"+
		"  Lines:          %d\n"+
		"  QSOs:           %d\n"+
		"  Skipped Lines:  %d\n\n"+
		"Merge:\n"+
		"  Observations:   %d\n"+
		"  Callsigns:      %d\n"+
		"  Ambiguities:    %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.Duration().String(),
		seed,
		summary.SeedRecords,
		summary.SeedSkipped,
		summary.LogFiles,
		summary.FailedFiles,
		summary.SkippedDirs,
		summary.Lines,
		summary.QSOs,
		summary.SkippedLines,
		summary.Observations,
		summary.Callsigns,
		len(summary.Ambiguities))

	if len(summary.Outputs) > 0 {
		writer.WriteString("Outputs:\n")
		writer.WriteString(sectionRule)
		for _, out := range summary.Outputs {
			fmt.Fprintf(writer, "  %-9s %s (%d bytes)\n", out.Format, out.Path, out.Bytes)
		}
		writer.WriteString("\n")
	}

	if len(summary.InputFiles) > 0 {
		writer.WriteString("Input Files:\n")
		writer.WriteString(sectionRule)
		for _, in := range summary.InputFiles {
			fmt.Fprintf(writer, "  %s [%s] lines=%d records=%d skipped=%d\n",
				in.Path, in.Kind, in.Lines, in.Records, in.Skipped)
		}
		writer.WriteString("\n")
	}

	if len(summary.FailedList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString(sectionRule)
		for _, ff := range summary.FailedList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.Path)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	if len(summary.SeedProblems) > 0 {
		writer.WriteString("Seed Layout Problems:\n")
		writer.WriteString(sectionRule)
		for _, p := range summary.SeedProblems {
			fmt.Fprintf(writer, "  %s\n", p)
		}
		writer.WriteString("\n")
	}

	if len(summary.Ambiguities) > 0 {
		writer.WriteString("Ambiguities:\n")
		writer.WriteString(sectionRule)
		for _, a := range summary.Ambiguities {
			fmt.Fprintf(writer, "  %-10s %-10s chose %-4s from %s (%d)\n",
				a.Callsign, a.Field, a.Chosen, strings.Join(a.Candidates, ","), a.Year)
		}
		writer.WriteString("\n")
	}

	writer.WriteString(summaryRule)
	writer.WriteString("End of Summary\n")

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush summary: %w", err)
	}
	return nil
}
