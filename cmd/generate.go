// =============================================================================
// Sweepstakes Prefill Generator - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, the main command of the tool. It
// runs the whole pipeline and writes the export files.
//
// COMMAND USAGE:
//   prefill generate -d <log dir> [flags]
//
// FLAGS:
//   -p, --prefill      : Seed file from an earlier year (CSV or XLSX)
//   -d, --dir          : Directory of Cabrillo logs, walked recursively
//   -o, --output       : Output directory
//   --formats          : Export formats to write (default: all but seed)
//   --metrics-file     : Write run metrics in Prometheus textfile format
//   --summary          : Write run_summary.txt into the output directory
//
// EXIT STATUS:
//   Non-zero for usage and configuration errors and for output that cannot
//   be written. Bad input data is logged and never changes the exit status.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sweeps-prefill/internal/config"
	"github.com/ginjaninja78/sweeps-prefill/internal/generator"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// inputFlags are the flags shared by generate and validate.
type inputFlags struct {
	seedPath string
	logDir   string
}

// generateInputs holds the input flags of the generate command.
var generateInputs inputFlags

// outputDir overrides the configured output directory.
var outputDir string

// formats overrides the configured export formats.
var formats []string

// metricsFile is the Prometheus textfile to write.
var metricsFile string

// writeSummary enables the run summary report.
var writeSummary bool

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

// generateCmd represents the 'generate' command.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate prefill files from contest logs",
	Long: `The generate command reads the seed file and every Cabrillo log below the
log directory, reconciles each callsign's exchange and writes one file per
export format into the output directory.

Output files are replaced atomically, so a failed run never leaves a
half-written file behind. Malformed lines and unreadable logs are logged on
stderr and skipped; they never stop the run.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the generate command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(generateCmd)

	addInputFlags(generateCmd, &generateInputs)

	generateCmd.Flags().StringVarP(
		&outputDir,
		"output",
		"o",
		"",
		"Output directory (default from config, or the current directory)",
	)

	generateCmd.Flags().StringSliceVar(
		&formats,
		"formats",
		nil,
		"Export formats to write: n1mm, wintest, writelog, trlog, xlsx, seed (default all but seed)",
	)

	generateCmd.Flags().StringVar(
		&metricsFile,
		"metrics-file",
		"",
		"Write run metrics to this file in Prometheus textfile format",
	)

	generateCmd.Flags().BoolVar(
		&writeSummary,
		"summary",
		false,
		"Write "+config.DefaultSummaryFile+" into the output directory",
	)
}

// addInputFlags registers the -p and -d flags on cmd.
func addInputFlags(cmd *cobra.Command, flags *inputFlags) {
	cmd.Flags().StringVarP(
		&flags.seedPath,
		"prefill",
		"p",
		"",
		"Seed (prefill) file from an earlier year, CSV or XLSX",
	)

	cmd.Flags().StringVarP(
		&flags.logDir,
		"dir",
		"d",
		"",
		"Directory of Cabrillo logs, walked recursively",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runGenerate executes the generate command.
func runGenerate(cmd *cobra.Command) error {
	cfg := *appConfig

	if err := applyInputFlags(&cfg, generateInputs); err != nil {
		return err
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if len(formats) > 0 {
		cfg.Formats = formats
	}
	if metricsFile != "" {
		cfg.MetricsFile = metricsFile
	}
	if writeSummary && cfg.SummaryFile == "" {
		cfg.SummaryFile = config.DefaultSummaryFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// From here on, failures are not usage errors.
	cmd.SilenceUsage = true

	gen := generator.New(&cfg, logger)
	summary, err := gen.Run(generator.Inputs{SeedPath: cfg.SeedFile, LogDir: cfg.InputDir})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Callsigns:   %d\n", summary.Callsigns)
	fmt.Fprintf(out, "Ambiguities: %d\n", len(summary.Ambiguities))
	for _, o := range summary.Outputs {
		fmt.Fprintf(out, "Wrote %-9s %s\n", o.Format, o.Path)
	}

	return err
}

// applyInputFlags copies the -p and -d flags into cfg. A log directory is
// required, from the flag or the configuration.
func applyInputFlags(cfg *config.Config, flags inputFlags) error {
	if flags.seedPath != "" {
		cfg.SeedFile = flags.seedPath
	}
	if flags.logDir != "" {
		cfg.InputDir = flags.logDir
	}
	if cfg.InputDir == "" {
		return fmt.Errorf("no log directory: use -d or set input_dir in %s", config.DefaultFile)
	}
	return nil
}
