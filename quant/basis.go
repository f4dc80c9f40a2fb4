// Package quant estimates mixture fractions of two reference species from
// window-extracted peak intensities: it builds a normalized two-column
// reference basis from pure-species spectra and fits each sample row to it
// by non-negative least squares.
package quant

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-msquant/peaks"
	"github.com/cwbudde/algo-msquant/spectrum"
)

// Basis is the normalized reference matrix: one row per diagnostic window,
// one column per pure species. Each column is scaled so its maximum entry is
// exactly 1. A Basis is immutable after construction and safe to share
// across concurrent solves.
//
// Column order carries meaning: column 0 belongs to the first species passed
// to BuildBasis, column 1 to the second, and every downstream fraction
// vector follows the same order. Labels preserves that mapping.
type Basis struct {
	labels [2]string
	dense  *mat.Dense
}

// BuildBasis extracts both pure-species spectra over windows and normalizes
// each resulting column by its own maximum. A column whose maximum is zero
// means every window missed the reference signal; that is a configuration
// error reported as *DegenerateReferenceError.
func BuildBasis(pureA, pureB spectrum.Spectrum, windows peaks.WindowSet, labelA, labelB string) (*Basis, error) {
	colA, err := normalizedColumn(pureA, windows, labelA)
	if err != nil {
		return nil, err
	}

	colB, err := normalizedColumn(pureB, windows, labelB)
	if err != nil {
		return nil, err
	}

	dense := mat.NewDense(len(windows), 2, nil)
	for i := range windows {
		dense.Set(i, 0, colA[i])
		dense.Set(i, 1, colB[i])
	}

	return &Basis{
		labels: [2]string{labelA, labelB},
		dense:  dense,
	}, nil
}

// normalizedColumn extracts one reference column and scales it to a maximum
// of 1.
func normalizedColumn(pure spectrum.Spectrum, windows peaks.WindowSet, label string) ([]float64, error) {
	raw, err := peaks.MaxIntensities(pure, windows)
	if err != nil {
		return nil, fmt.Errorf("reference %q: %w", label, err)
	}

	maxVal := 0.0
	for _, v := range raw {
		if v > maxVal {
			maxVal = v
		}
	}

	if maxVal == 0 {
		return nil, &DegenerateReferenceError{Species: label, Windows: len(windows)}
	}

	norm := make([]float64, len(raw))
	vecmath.ScaleBlock(norm, raw, 1/maxVal)

	return norm, nil
}

// Rows returns the number of windows the basis was built over.
func (b *Basis) Rows() int {
	r, _ := b.dense.Dims()
	return r
}

// Labels returns the species labels in column order.
func (b *Basis) Labels() [2]string {
	return b.labels
}

// At returns the normalized intensity of species column j in window row i.
func (b *Basis) At(i, j int) float64 {
	return b.dense.At(i, j)
}

// Column returns a copy of species column j.
func (b *Basis) Column(j int) []float64 {
	r, _ := b.dense.Dims()

	out := make([]float64, r)
	for i := range out {
		out[i] = b.dense.At(i, j)
	}

	return out
}
