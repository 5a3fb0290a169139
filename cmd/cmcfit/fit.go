package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/micellab/cmcfit"
	"github.com/micellab/cmcfit/apn"
	"github.com/micellab/cmcfit/archive"
	"github.com/micellab/cmcfit/dataset"
	"github.com/micellab/cmcfit/fit"
	"github.com/micellab/cmcfit/format"
)

type fitOptions struct {
	concColumn      string
	condColumn      string
	guess           []float64
	maxEvals        int
	nAgg            float64
	lambdaC         float64
	numericJacobian bool
	curvePoints     int
	archivePath     string
	compression     string
}

func newFitCommand() *cobra.Command {
	o := &fitOptions{}

	cmd := &cobra.Command{
		Use:   "fit data.csv [data.csv ...]",
		Short: "Fit the conductivity model to one or more CSV datasets",
		Long: `Fit reads each CSV file, fits the conductivity model, and prints a
report per dataset. Each file needs a header row with a concentration and a
conductivity column; the dataset is named after the file.

With --archive, all datasets and their fit records are written into a
single binary session archive.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.OutOrStdout(), args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.concColumn, "conc-column", dataset.DefaultConcentrationColumn, "CSV column holding concentrations")
	flags.StringVar(&o.condColumn, "cond-column", dataset.DefaultConductivityColumn, "CSV column holding conductivities")
	flags.Float64SliceVar(&o.guess, "guess", nil, "initial guess as cmc,r,a,b,c")
	flags.IntVar(&o.maxEvals, "max-evals", fit.DefaultMaxEvals, "model evaluation budget per fit")
	flags.Float64Var(&o.nAgg, "n-agg", apn.DefaultAggregationNumber, "micelle aggregation number for the ionization estimate")
	flags.Float64Var(&o.lambdaC, "lambda-c", apn.DefaultCounterionConductivity, "counterion molar conductivity in S·cm²/mol")
	flags.BoolVar(&o.numericJacobian, "numeric-jacobian", false, "use forward differences instead of the analytic Jacobian")
	flags.IntVar(&o.curvePoints, "curve-points", 0, "append n fitted curve samples to each report")
	flags.StringVarP(&o.archivePath, "archive", "o", "", "write datasets and fit records to this archive file")
	flags.StringVar(&o.compression, "compression", "zstd", "archive compression: none, zstd, s2, lz4")

	return cmd
}

func (o *fitOptions) fitterOptions() ([]cmcfit.Option, error) {
	opts := []cmcfit.Option{
		cmcfit.WithMaxEvals(o.maxEvals),
		cmcfit.WithAggregationNumber(o.nAgg),
		cmcfit.WithCounterionConductivity(o.lambdaC),
	}

	if len(o.guess) > 0 {
		guess, err := apn.FromVector(o.guess)
		if err != nil {
			return nil, fmt.Errorf("--guess: %w", err)
		}
		opts = append(opts, cmcfit.WithInitialGuess(guess))
	}
	if o.numericJacobian {
		opts = append(opts, cmcfit.WithNumericJacobian())
	}

	return opts, nil
}

func (o *fitOptions) run(out io.Writer, paths []string) error {
	opts, err := o.fitterOptions()
	if err != nil {
		return err
	}

	var encoder *archive.Encoder
	if o.archivePath != "" {
		cType, err := format.ParseCompressionType(o.compression)
		if err != nil {
			return fmt.Errorf("--compression: %w", err)
		}
		encoder, err = cmcfit.NewArchiveEncoder(archive.WithCompression(cType))
		if err != nil {
			return err
		}
	}

	for _, path := range paths {
		ds, err := dataset.ReadCSVFile(path,
			dataset.WithConcentrationColumn(o.concColumn),
			dataset.WithConductivityColumn(o.condColumn),
		)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		slog.Debug("dataset loaded", "name", ds.Name, "points", ds.Len())

		res, err := cmcfit.Fit(ds, opts...)
		if err != nil {
			if res != nil {
				// Budget exhaustion still carries the best iterate; show it
				// before failing so the report names the sticking point.
				fmt.Fprint(out, res)
			}

			return fmt.Errorf("fit %s: %w", path, err)
		}

		fmt.Fprint(out, res)
		if o.curvePoints > 0 {
			if err := printCurve(out, res, o.curvePoints); err != nil {
				return err
			}
		}

		if encoder != nil {
			if err := archiveResult(encoder, ds, res); err != nil {
				return fmt.Errorf("archive %s: %w", ds.Name, err)
			}
		}
	}

	if encoder != nil {
		data, err := encoder.Finish()
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.archivePath, data, 0o644); err != nil {
			return err
		}
		slog.Info("archive written", "path", o.archivePath, "bytes", len(data))
	}

	return nil
}

func printCurve(out io.Writer, res *cmcfit.Result, n int) error {
	conc, cond, err := res.Curve(n)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "concentration,conductivity")
	for i := range conc {
		fmt.Fprintf(out, "%g,%g\n", conc[i], cond[i])
	}

	return nil
}

func archiveResult(encoder *archive.Encoder, ds dataset.Dataset, res *cmcfit.Result) error {
	if err := encoder.StartDataset(ds.Name, ds.Len()); err != nil {
		return err
	}
	if err := encoder.AddPoints(ds.Conc, ds.Cond); err != nil {
		return err
	}
	if err := encoder.SetFitRecord(res.FitRecord()); err != nil {
		return err
	}

	return encoder.EndDataset()
}
