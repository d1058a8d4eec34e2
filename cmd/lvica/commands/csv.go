package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/katalvlaran/lvica/matrix"
)

// readMatrix reads a CSV file with one row per channel. All rows must have
// the same number of samples.
func readMatrix(path string) (*matrix.Dense[float64], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := decodeMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return m, nil
}

func decodeMatrix(r io.Reader) (*matrix.Dense[float64], error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	var (
		data []float64
		rows int
		cols = -1
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if cols < 0 {
			cols = len(rec)
		}
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", rows+1, j+1, err)
			}
			data = append(data, v)
		}
		rows++
	}
	if rows == 0 {
		return nil, fmt.Errorf("empty file: %w", matrix.ErrInvalidDimensions)
	}
	return matrix.NewDenseFrom(rows, cols, data)
}

// writeMatrix writes m as CSV, one row per channel, to path ("-" for stdout).
func writeMatrix(path string, m *matrix.Dense[float64]) error {
	if path == "-" {
		return encodeMatrix(os.Stdout, m)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := encodeMatrix(f, m); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func encodeMatrix(w io.Writer, m *matrix.Dense[float64]) error {
	cw := csv.NewWriter(w)
	rec := make([]string, m.Cols())
	for i := 0; i < m.Rows(); i++ {
		row, err := m.Row(i)
		if err != nil {
			return err
		}
		for j, v := range row {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
