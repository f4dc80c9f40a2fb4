package nnls

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const tolerance = 1e-9

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func checkSolution(t *testing.T, got, want []float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("solution length: got %d, want %d", len(got), len(want))
	}

	for i := range want {
		if !almostEqual(got[i], want[i], tolerance) {
			t.Errorf("x[%d]: got %g, want %g", i, got[i], want[i])
		}
	}
}

func TestSolve_Identity(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

	x, err := Solve(a, []float64{3, 4})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	checkSolution(t, x, []float64{3, 4})
}

func TestSolve_Overdetermined(t *testing.T) {
	// Unconstrained optimum is [1, 2], already feasible.
	a := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})

	x, err := Solve(a, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	checkSolution(t, x, []float64{1, 2})
}

func TestSolve_ClampsNegativeCoefficient(t *testing.T) {
	// Unconstrained solution is [1, -0.5]; the constrained optimum drops
	// the second column and fits the first alone: x = [0.75, 0].
	a := mat.NewDense(2, 2, []float64{
		1, 0,
		1, 1,
	})

	x, err := Solve(a, []float64{1, 0.5})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	checkSolution(t, x, []float64{0.75, 0})
}

func TestSolve_RecoversNonNegativeCombination(t *testing.T) {
	a := mat.NewDense(4, 2, []float64{
		1.0, 0.4,
		0.2, 1.0,
		0.7, 0.1,
		0.5, 0.9,
	})

	want := []float64{0.3, 0.7}

	b := make([]float64, 4)
	for i := range b {
		b[i] = a.At(i, 0)*want[0] + a.At(i, 1)*want[1]
	}

	x, err := Solve(a, b)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	checkSolution(t, x, want)
}

func TestSolve_ZeroRHS(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 0.5, 0.5, 1})

	x, err := Solve(a, []float64{0, 0})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	checkSolution(t, x, []float64{0, 0})
}

func TestSolve_SingleDiagnosticWindow(t *testing.T) {
	// One window, two references normalized to 1: the mixture intensity 90
	// is explained entirely by the first entering column.
	a := mat.NewDense(1, 2, []float64{1, 1})

	x, err := Solve(a, []float64{90})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	sum := x[0] + x[1]
	if !almostEqual(sum, 90, tolerance) {
		t.Errorf("coefficient sum: got %g, want 90", sum)
	}

	if x[0] < 0 || x[1] < 0 {
		t.Errorf("coefficients must be non-negative: %v", x)
	}
}

func TestSolve_BlockingCoefficientLeavesActiveSet(t *testing.T) {
	// The first column enters with the larger gradient, but the joint
	// least-squares solution drives its coefficient negative once the
	// second column joins. The feasibility loop must step back, drop the
	// first column, and terminate at [0, 3].
	a := mat.NewDense(2, 2, []float64{
		1, 0,
		2, 1,
	})

	x, err := Solve(a, []float64{-0.1, 3})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	checkSolution(t, x, []float64{0, 3})

	for i, v := range x {
		if v < 0 {
			t.Errorf("x[%d] = %g, must be non-negative", i, v)
		}
	}
}

func TestSolve_WideMatrix(t *testing.T) {
	// More columns than rows is fine while only one column carries the fit.
	a := mat.NewDense(1, 3, []float64{1, 2, 1})

	x, err := Solve(a, []float64{4})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	checkSolution(t, x, []float64{0, 2, 0})
}

func TestSolvePassive_UnderdeterminedRejected(t *testing.T) {
	a := mat.NewDense(1, 2, []float64{1, 1})

	if _, err := solvePassive(a, []float64{1}, []bool{true, true}); err == nil {
		t.Error("passive set wider than the row count must be rejected")
	}
}

func TestSolve_DimensionMismatch(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

	if _, err := Solve(a, []float64{1}); err == nil {
		t.Error("mismatched rhs length must be rejected")
	}
}

func TestSolve_Deterministic(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{
		1, 0.375,
		0.2, 1,
		0.6, 0.8,
	})
	b := []float64{0.9, 0.4, 0.7}

	first, err := Solve(a, b)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := Solve(a, b)
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}

		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: x[%d] = %g, first run %g", i, j, again[j], first[j])
			}
		}
	}
}

func TestSolve_DoesNotMutateInputs(t *testing.T) {
	data := []float64{1, 0, 1, 1}
	a := mat.NewDense(2, 2, data)
	b := []float64{1, 0.5}

	if _, err := Solve(a, b); err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if b[0] != 1 || b[1] != 0.5 {
		t.Error("rhs was mutated")
	}

	want := []float64{1, 0, 1, 1}
	for i := range want {
		if data[i] != want[i] {
			t.Fatal("design matrix was mutated")
		}
	}
}
