// Package peaks extracts diagnostic peak intensities from mass spectra over
// fixed m/z windows.
//
// A window is an open m/z interval expected to contain one isotope peak of
// interest. Extraction takes the maximum intensity among the spectrum points
// whose m/z falls strictly inside the window, or 0 when no point does. The
// same window set is shared between reference and sample spectra, and its
// order defines the column order of every derived matrix.
package peaks

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-msquant/spectrum"
)

// Window is an open m/z interval (Low, High).
type Window struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Validate checks that both bounds are finite and Low < High.
func (w Window) Validate() error {
	if math.IsNaN(w.Low) || math.IsInf(w.Low, 0) || math.IsNaN(w.High) || math.IsInf(w.High, 0) {
		return fmt.Errorf("window bounds must be finite: (%g, %g)", w.Low, w.High)
	}

	if !(w.Low < w.High) {
		return fmt.Errorf("window lower bound must be below upper bound: (%g, %g)", w.Low, w.High)
	}

	return nil
}

// Contains reports whether mz lies strictly inside the window.
func (w Window) Contains(mz float64) bool {
	return mz > w.Low && mz < w.High
}

// WindowSet is an ordered list of diagnostic windows.
type WindowSet []Window

// Validate checks every window in the set and that the set is non-empty.
func (ws WindowSet) Validate() error {
	if len(ws) == 0 {
		return fmt.Errorf("window set must not be empty")
	}

	for i, w := range ws {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("window %d: %w", i, err)
		}
	}

	return nil
}

// MaxIntensities returns the maximum intensity of spec inside each window,
// in window order. Windows that contain no spectrum point, including windows
// entirely outside the measured m/z range, yield 0.
//
// Both window bounds are compared against the spectrum's own m/z values.
// Inputs are not mutated.
func MaxIntensities(spec spectrum.Spectrum, windows WindowSet) ([]float64, error) {
	if err := windows.Validate(); err != nil {
		return nil, err
	}

	if len(spec.MZ) != len(spec.Intensity) {
		return nil, fmt.Errorf("spectrum m/z and intensity length mismatch: %d != %d", len(spec.MZ), len(spec.Intensity))
	}

	out := make([]float64, len(windows))

	for i, w := range windows {
		maxVal := 0.0
		for j, mz := range spec.MZ {
			if w.Contains(mz) && spec.Intensity[j] > maxVal {
				maxVal = spec.Intensity[j]
			}
		}

		out[i] = maxVal
	}

	return out, nil
}
