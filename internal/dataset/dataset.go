// Package dataset reads and writes the CSV matrices used by the kdknn
// command, with transparent gzip, zstd and LZ4 stream compression.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrEmpty is returned when a file holds no data rows.
	ErrEmpty = errors.New("dataset has no rows")
	// ErrNoFeatures is returned when a labeled file has only a label column.
	ErrNoFeatures = errors.New("dataset has no feature columns")
)

// Matrix is a row-major float32 matrix, optionally with one label per row.
type Matrix struct {
	Data   []float32
	Rows   int
	Cols   int
	Labels []float32 // nil unless read with Labeled
}

// Row returns row i of the matrix.
func (m *Matrix) Row(i int) []float32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// ReadOptions controls how a CSV matrix is parsed.
type ReadOptions struct {
	// Labeled moves the last column of every row into Matrix.Labels.
	Labeled bool
}

// Load reads a CSV matrix from path, decompressing by file extension.
func Load(path string, opts ReadOptions) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := NewReader(f, CompressionFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer r.Close()

	m, err := Read(r, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Read parses a CSV matrix. Lines starting with '#' are skipped. A first
// row that does not parse as numbers is treated as a header.
func Read(r io.Reader, opts ReadOptions) (*Matrix, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	m := &Matrix{}
	width := 0

	for first := true; ; first = false {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if width == 0 {
			if first && !numeric(rec) {
				continue
			}
			width = len(rec)
			m.Cols = width
			if opts.Labeled {
				m.Cols--
				if m.Cols == 0 {
					return nil, ErrNoFeatures
				}
			}
		}

		if len(rec) != width {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, width, len(rec))
		}

		for i, field := range rec {
			v, err := parse(field)
			if err != nil {
				line, _ := cr.FieldPos(i)
				return nil, fmt.Errorf("line %d, field %d: %w", line, i+1, err)
			}
			if opts.Labeled && i == width-1 {
				m.Labels = append(m.Labels, v)
			} else {
				m.Data = append(m.Data, v)
			}
		}
		m.Rows++
	}

	if m.Rows == 0 {
		return nil, ErrEmpty
	}
	return m, nil
}

func parse(field string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", field)
	}
	return float32(v), nil
}

func numeric(rec []string) bool {
	for _, field := range rec {
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 32); err != nil {
			return false
		}
	}
	return true
}

// Write writes m as CSV, with the label as the last column when present.
func Write(w io.Writer, m *Matrix) error {
	cw := csv.NewWriter(w)
	rec := make([]string, 0, m.Cols+1)

	for i := 0; i < m.Rows; i++ {
		rec = rec[:0]
		for _, v := range m.Row(i) {
			rec = append(rec, formatFloat(v))
		}
		if m.Labels != nil {
			rec = append(rec, formatFloat(m.Labels[i]))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
