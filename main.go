// =============================================================================
// Sweepstakes Prefill Generator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the prefill CLI application. It delegates
// command execution to the cmd package.
//
// USAGE:
//   prefill generate - Build call history files from Cabrillo logs
//   prefill validate - Read and reconcile the inputs, write nothing
//   prefill version  - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsers, observation store, merge engine, exporters
//   - pkg/           : File management and the run summary report
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sweeps-prefill/cmd"
)

func main() {
	cmd.Execute()
}
