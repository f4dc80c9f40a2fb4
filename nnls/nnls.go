// Package nnls solves non-negative least-squares problems
//
//	min ||A*x - b||_2  subject to  x >= 0
//
// with the Lawson-Hanson active-set algorithm. The least-squares subproblem
// on the passive (unconstrained) column set is solved through a QR
// factorization, so A may be any matrix with at least as many rows as
// passive columns.
package nnls

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const defaultTolerance = 1e-10

// Config holds solver parameters.
type Config struct {
	// Tolerance is the dual-feasibility threshold. Gradient entries at or
	// below it are treated as zero. Defaults to 1e-10 scaled by the largest
	// absolute gradient entry of the initial point.
	Tolerance float64

	// MaxIterations caps the number of active-set changes. Defaults to
	// 3 times the number of columns.
	MaxIterations int
}

// Option mutates a Config.
type Option func(*Config)

// WithTolerance sets the dual-feasibility tolerance.
func WithTolerance(tol float64) Option {
	return func(cfg *Config) {
		if tol > 0 {
			cfg.Tolerance = tol
		}
	}
}

// WithMaxIterations caps the number of active-set iterations.
func WithMaxIterations(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxIterations = n
		}
	}
}

// Solve returns the non-negative x minimizing ||a*x - b||_2. It does not
// mutate a or b and holds no state between calls, so a single design matrix
// may be shared across concurrent solves.
//
// Wide matrices (more columns than rows) are accepted as long as the active
// set stays within the row count, which holds whenever a's columns are not
// redundant; a subproblem that would become underdetermined is reported as
// an error rather than solved.
func Solve(a *mat.Dense, b []float64, opts ...Option) ([]float64, error) {
	m, n := a.Dims()
	if len(b) != m {
		return nil, fmt.Errorf("nnls: rhs length %d does not match %d matrix rows", len(b), m)
	}

	if n == 0 {
		return nil, fmt.Errorf("nnls: matrix has no columns")
	}

	var cfg Config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = 3 * n
	}

	x := make([]float64, n)
	passive := make([]bool, n)
	w := make([]float64, n)
	resid := make([]float64, m)

	gradient(a, b, x, resid, w)

	tol := cfg.Tolerance
	if tol <= 0 {
		tol = defaultTolerance * maxAbs(w)
	}

	for iter := 0; iter < maxIter; iter++ {
		// Most negative-gradient free variable enters the passive set.
		t := -1
		best := tol

		for j := 0; j < n; j++ {
			if !passive[j] && w[j] > best {
				best = w[j]
				t = j
			}
		}

		if t < 0 {
			return x, nil // dual feasible: optimum reached
		}

		passive[t] = true

		// Inner loop: restore primal feasibility of the passive set. Every
		// pass either finishes or removes at least one passive coefficient,
		// so n+1 passes bound it.
		for inner := 0; ; inner++ {
			if inner > n {
				return nil, fmt.Errorf("nnls: feasibility loop failed to terminate after %d passes", inner)
			}

			z, err := solvePassive(a, b, passive)
			if err != nil {
				return nil, err
			}

			if allPositive(z, passive) {
				for j := range x {
					if passive[j] {
						x[j] = z[j]
					} else {
						x[j] = 0
					}
				}

				break
			}

			// Step from x toward z, stopping at the first coefficient that
			// would turn negative; that coefficient leaves the passive set.
			alpha := 1.0
			blocking := -1

			for j := range z {
				if passive[j] && z[j] <= 0 {
					if step := x[j] / (x[j] - z[j]); step < alpha {
						alpha = step
						blocking = j
					}
				}
			}

			for j := range x {
				if passive[j] {
					x[j] += alpha * (z[j] - x[j])
					if x[j] <= 0 {
						x[j] = 0
						passive[j] = false
					}
				}
			}

			// The blocking coefficient lands on zero up to rounding; remove
			// it even when the update leaves a tiny positive residue.
			if blocking >= 0 && passive[blocking] {
				x[blocking] = 0
				passive[blocking] = false
			}
		}

		gradient(a, b, x, resid, w)
	}

	return nil, fmt.Errorf("nnls: no convergence within %d iterations", maxIter)
}

// gradient fills w with A^T * (b - A*x), using resid as scratch.
func gradient(a *mat.Dense, b, x, resid, w []float64) {
	m, n := a.Dims()

	for i := 0; i < m; i++ {
		ax := 0.0
		for j := 0; j < n; j++ {
			ax += a.At(i, j) * x[j]
		}

		resid[i] = b[i] - ax
	}

	for j := 0; j < n; j++ {
		sum := 0.0
		for i := 0; i < m; i++ {
			sum += a.At(i, j) * resid[i]
		}

		w[j] = sum
	}
}

// solvePassive solves the unconstrained least-squares problem restricted to
// the passive columns and scatters the solution back to full length.
func solvePassive(a *mat.Dense, b []float64, passive []bool) ([]float64, error) {
	m, n := a.Dims()

	cols := make([]int, 0, n)
	for j, p := range passive {
		if p {
			cols = append(cols, j)
		}
	}

	if len(cols) == 0 {
		return make([]float64, n), nil
	}

	if len(cols) > m {
		return nil, fmt.Errorf("nnls: passive set of %d columns exceeds %d rows", len(cols), m)
	}

	sub := mat.NewDense(m, len(cols), nil)
	for i := 0; i < m; i++ {
		for k, j := range cols {
			sub.Set(i, k, a.At(i, j))
		}
	}

	var qr mat.QR
	qr.Factorize(sub)

	sol := mat.NewVecDense(len(cols), nil)
	if err := qr.SolveVecTo(sol, false, mat.NewVecDense(m, b)); err != nil {
		return nil, fmt.Errorf("nnls: passive-set least squares failed: %w", err)
	}

	z := make([]float64, n)
	for k, j := range cols {
		z[j] = sol.AtVec(k)
	}

	return z, nil
}

func allPositive(z []float64, passive []bool) bool {
	for j, p := range passive {
		if p && z[j] <= 0 {
			return false
		}
	}

	return true
}

func maxAbs(v []float64) float64 {
	maxVal := 0.0
	for _, x := range v {
		if x < 0 {
			x = -x
		}

		if x > maxVal {
			maxVal = x
		}
	}

	if maxVal == 0 {
		return 1
	}

	return maxVal
}
