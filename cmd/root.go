// =============================================================================
// Sweepstakes Prefill Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (prefill)
//   ├── generateCmd (prefill generate)
//   ├── validateCmd (prefill validate)
//   └── versionCmd (prefill version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads .env.local and .env into the environment
//   2. Loads the YAML configuration (--config, or prefill.yaml if present)
//   3. Sets up the zerolog logger on stderr
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sweeps-prefill/internal/config"
	"github.com/ginjaninja78/sweeps-prefill/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig is the configuration loaded before a subcommand runs.
var appConfig *config.Config

// logger receives every diagnostic.
var logger = zerolog.Nop()

// envFiles are loaded in order. godotenv never overrides a variable that is
// already set, so the first file wins.
var envFiles = []string{".env.local", ".env"}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "prefill",
	Short: "Sweepstakes prefill generator - build call history files from contest logs",
	Long: `prefill reads submitted Sweepstakes logs in Cabrillo format, plus an
optional prefill file from an earlier year, and reconciles every callsign's
exchange into a single best guess. The result is written as call history
files for the common contest logging programs.

Reconciliation:
  - Only the most recent year seen for a callsign counts
  - With three or more observations, each exchange field is voted on
  - Disagreements are reported as ambiguities on stderr

Output formats:
  n1mm, wintest, writelog, trlog and an xlsx review workbook, plus an
  opt-in nine-column seed file for next year

Example Usage:
  prefill generate -p SSCW_2023.txt -d ./logs -o ./out
  prefill generate -d ./logs --formats n1mm,trlog --summary
  prefill validate -p roster.xlsx -d ./logs`,

	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return initialize(cmd.Flags().Changed("config"))
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initialize loads the environment and the configuration and sets up the
// logger.
func initialize(explicitConfig bool) error {
	for _, f := range envFiles {
		// A missing file is not an error.
		_ = godotenv.Load(f)
	}

	cfg, err := config.Load(cfgFile, explicitConfig)
	if err != nil {
		return err
	}
	appConfig = cfg

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	if verbose {
		logCfg.Level = "debug"
	}
	logger = logging.New(logCfg)

	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --config flag: The YAML configuration file. Without it, prefill.yaml
	// is used when it exists.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultFile,
		"Path to the configuration file",
	)

	// --verbose flag: Enables debug logging, including every skipped line.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
