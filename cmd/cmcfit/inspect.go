package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/micellab/cmcfit"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect session.cmc",
		Short: "List the contents of a session archive",
		Long: `Inspect verifies the archive checksum, then lists every dataset with its
point count and concentration range, the stored fit records, and how well
the column data compressed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), args[0])
		},
	}
}

func runInspect(out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	arc, err := cmcfit.DecodeArchive(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	fmt.Fprintf(out, "%s: %d dataset(s), created %s\n",
		path, arc.Count(), arc.CreatedAt().Format(time.RFC3339))

	stats := arc.Stats()
	fmt.Fprintf(out, "columns: %s, %d -> %d bytes (ratio %.2f, %.1f%% saved)\n",
		stats.Algorithm, stats.OriginalSize, stats.CompressedSize,
		stats.CompressionRatio(), stats.SpaceSavings())

	for ds := range arc.All() {
		lo, hi := ds.ConcRange()
		fmt.Fprintf(out, "  %-24s %4d points, conc %g to %g\n", ds.Name, ds.Len(), lo, hi)

		rec, ok := arc.FitRecord(ds.Name)
		if !ok {
			continue
		}

		status := "converged"
		if !rec.Converged {
			status = "not converged"
		}
		fmt.Fprintf(out, "    cmc = %.4g", rec.Params.CMC)
		if rec.StdErrOK {
			fmt.Fprintf(out, " ± %.2g", rec.StdErr[0])
		}
		if rec.AlphaOK {
			fmt.Fprintf(out, ", α = %.3f", rec.Alpha)
		}
		fmt.Fprintf(out, ", rss = %.4g (%s)\n", rec.RSS, status)
	}

	return nil
}
