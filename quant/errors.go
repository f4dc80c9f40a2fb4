package quant

import "fmt"

// DegenerateReferenceError reports a pure-species reference spectrum whose
// extracted intensity is zero in every diagnostic window. The basis cannot
// be normalized in that case, so the analysis must abort.
type DegenerateReferenceError struct {
	Species string
	Windows int
}

func (e *DegenerateReferenceError) Error() string {
	return fmt.Sprintf("reference %q has zero intensity in all %d windows", e.Species, e.Windows)
}

// SingularFitError reports a sample row whose fitted coefficients sum to
// zero: the reference basis explains none of the row's signal, so no
// fraction can be assigned. It affects only the row it names.
type SingularFitError struct {
	Row int
}

func (e *SingularFitError) Error() string {
	return fmt.Sprintf("sample row %d: fitted coefficients sum to zero", e.Row)
}
