package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/micellab/cmcfit/errs"
	"github.com/micellab/cmcfit/internal/options"
)

// Default CSV column names. Matching is case-insensitive after trimming
// surrounding whitespace.
const (
	DefaultConcentrationColumn = "concentration"
	DefaultConductivityColumn  = "conductivity"
)

type csvConfig struct {
	name    string
	concCol string
	condCol string
}

// CSVOption configures CSV ingestion.
type CSVOption = options.Option[*csvConfig]

// WithName sets the name of the resulting dataset. ReadCSVFile defaults to
// the file name without its extension; ReadCSV defaults to an empty name.
func WithName(name string) CSVOption {
	return options.NoError(func(c *csvConfig) {
		c.name = name
	})
}

// WithConcentrationColumn selects the header of the concentration column.
func WithConcentrationColumn(name string) CSVOption {
	return options.New(func(c *csvConfig) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty concentration column name", errs.ErrMissingColumn)
		}
		c.concCol = name

		return nil
	})
}

// WithConductivityColumn selects the header of the conductivity column.
func WithConductivityColumn(name string) CSVOption {
	return options.New(func(c *csvConfig) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty conductivity column name", errs.ErrMissingColumn)
		}
		c.condCol = name

		return nil
	})
}

// ReadCSV reads a Dataset from CSV data with a header row. The two columns
// selected by the configured names are parsed as float64; other columns are
// ignored, so a multi-series workbook export can be read one series at a
// time by switching column names. Lines starting with '#' are comments.
func ReadCSV(r io.Reader, opts ...CSVOption) (Dataset, error) {
	cfg := csvConfig{
		concCol: DefaultConcentrationColumn,
		condCol: DefaultConductivityColumn,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return Dataset{}, err
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err == io.EOF {
		return Dataset{}, fmt.Errorf("%w: no header row", errs.ErrEmptyDataset)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("reading csv header: %w", err)
	}

	concIdx, err := columnIndex(header, cfg.concCol)
	if err != nil {
		return Dataset{}, err
	}
	condIdx, err := columnIndex(header, cfg.condCol)
	if err != nil {
		return Dataset{}, err
	}

	var conc, cond []float64
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Dataset{}, fmt.Errorf("reading csv row %d: %w", row+1, err)
		}
		row++

		c, err := parseCell(record, concIdx, cfg.concCol, row)
		if err != nil {
			return Dataset{}, err
		}
		k, err := parseCell(record, condIdx, cfg.condCol, row)
		if err != nil {
			return Dataset{}, err
		}

		conc = append(conc, c)
		cond = append(cond, k)
	}

	return New(cfg.name, conc, cond)
}

// ReadCSVFile reads a Dataset from a CSV file, naming it after the file
// unless WithName overrides it.
func ReadCSVFile(path string, opts ...CSVOption) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	return ReadCSV(f, append([]CSVOption{WithName(name)}, opts...)...)
}

func columnIndex(header []string, want string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(want)) {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %q not in header %v", errs.ErrMissingColumn, want, header)
}

func parseCell(record []string, idx int, col string, row int) (float64, error) {
	if idx >= len(record) {
		return 0, fmt.Errorf("%w: row %d has no %q cell", errs.ErrInvalidSample, row, col)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: row %d column %q: %q", errs.ErrInvalidSample, row, col, record[idx])
	}

	return v, nil
}
