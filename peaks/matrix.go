package peaks

import (
	"fmt"

	"github.com/cwbudde/algo-msquant/spectrum"
)

// Matrix is a dense row-major sample-by-window intensity matrix. Rows hold
// raw extracted intensities in input order; columns follow the window set
// that produced them.
type Matrix struct {
	rows, cols int
	data       []float64
}

// Rows returns the number of sample rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of window columns.
func (m *Matrix) Cols() int { return m.cols }

// At returns the intensity of sample i in window j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

// Row returns sample i's intensities as a view into the matrix. Callers must
// treat the returned slice as read-only.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// ExtractBatch applies MaxIntensities to every spectrum, producing one
// matrix row per input in input order. An empty input yields a 0-row matrix
// with one column per window.
func ExtractBatch(spectra []spectrum.Spectrum, windows WindowSet) (*Matrix, error) {
	if err := windows.Validate(); err != nil {
		return nil, err
	}

	m := &Matrix{
		rows: len(spectra),
		cols: len(windows),
		data: make([]float64, len(spectra)*len(windows)),
	}

	for i, spec := range spectra {
		row, err := MaxIntensities(spec, windows)
		if err != nil {
			return nil, fmt.Errorf("spectrum %d: %w", i, err)
		}

		copy(m.data[i*m.cols:], row)
	}

	return m, nil
}
