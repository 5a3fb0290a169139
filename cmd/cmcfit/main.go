// Command cmcfit estimates critical micelle concentrations from
// conductometric titration data.
//
// It reads CSV datasets, fits the APN conductivity model, reports the
// fitted parameters with their uncertainties and the degree of ionization,
// and optionally persists everything into a binary session archive.
package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var logLevel = new(slog.LevelVar)

func main() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: "15:04:05",
		}),
	))

	if err := newRootCommand().Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "cmcfit",
		Short: "Estimate critical micelle concentrations from conductivity titrations",
		Long: `cmcfit fits the APN conductivity model to titration data by nonlinear
least squares. The critical micelle concentration is a model parameter, so
it comes with a standard error instead of a graphical slope construction.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				logLevel.Set(slog.LevelDebug)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(newFitCommand())
	root.AddCommand(newInspectCommand())

	return root
}
