// Package spectrum provides the mass spectrum data model and a loader for
// two-column text exports (m/z and intensity, two header lines).
package spectrum

import (
	"fmt"
	"math"
)

// Spectrum holds paired m/z and intensity values of one measurement.
//
// The two slices always have equal length. The m/z values are not required
// to be sorted; window extraction scans all points.
type Spectrum struct {
	MZ        []float64
	Intensity []float64
}

// MalformedSpectrumError reports a spectrum that violates the data model:
// mismatched slice lengths, or non-finite or negative values.
type MalformedSpectrumError struct {
	Name   string // source identifier, typically the file name
	Reason string
}

func (e *MalformedSpectrumError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("malformed spectrum: %s", e.Reason)
	}

	return fmt.Sprintf("malformed spectrum %q: %s", e.Name, e.Reason)
}

// Len returns the number of points in the spectrum.
func (s Spectrum) Len() int {
	return len(s.MZ)
}

// Validate checks the spectrum against the data model: equal slice lengths
// and finite, non-negative m/z and intensity values. The returned error is a
// *MalformedSpectrumError tagged with name.
func (s Spectrum) Validate(name string) error {
	if len(s.MZ) != len(s.Intensity) {
		return &MalformedSpectrumError{
			Name:   name,
			Reason: fmt.Sprintf("m/z and intensity length mismatch: %d != %d", len(s.MZ), len(s.Intensity)),
		}
	}

	for i, mz := range s.MZ {
		if math.IsNaN(mz) || math.IsInf(mz, 0) || mz < 0 {
			return &MalformedSpectrumError{
				Name:   name,
				Reason: fmt.Sprintf("invalid m/z value %g at point %d", mz, i),
			}
		}
	}

	for i, v := range s.Intensity {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return &MalformedSpectrumError{
				Name:   name,
				Reason: fmt.Sprintf("invalid intensity value %g at point %d", v, i),
			}
		}
	}

	return nil
}
