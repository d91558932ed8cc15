package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sweeps-prefill/internal/generator"
)

// validateInputs holds the input flags of the validate command.
var validateInputs inputFlags

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Read and reconcile the inputs without writing any files",
	Long: `The validate command runs the read and reconcile steps of generate and
prints what it found: the number of files, QSOs and callsigns, the lines that
were skipped, and every field whose observations disagreed. Nothing is
written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *appConfig
		if err := applyInputFlags(&cfg, validateInputs); err != nil {
			return err
		}
		cmd.SilenceUsage = true

		summary, _ := generator.New(&cfg, logger).Validate(generator.Inputs{
			SeedPath: cfg.SeedFile,
			LogDir:   cfg.InputDir,
		})

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Seed records:  %d (%d skipped)\n", summary.SeedRecords, summary.SeedSkipped)
		for _, p := range summary.SeedProblems {
			fmt.Fprintf(out, "  %s\n", p)
		}
		fmt.Fprintf(out, "Log files:     %d (%d failed)\n", summary.LogFiles, summary.FailedFiles)
		fmt.Fprintf(out, "QSOs:          %d (%d skipped)\n", summary.QSOs, summary.SkippedLines)
		fmt.Fprintf(out, "Callsigns:     %d\n", summary.Callsigns)
		fmt.Fprintf(out, "Ambiguities:   %d\n", len(summary.Ambiguities))
		for _, a := range summary.Ambiguities {
			fmt.Fprintf(out, "  %s %s: chose %s from %s\n", a.Callsign, a.Field, a.Chosen, strings.Join(a.Candidates, ","))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addInputFlags(validateCmd, &validateInputs)
}
