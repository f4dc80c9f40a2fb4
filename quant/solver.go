package quant

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-msquant/nnls"
	"github.com/cwbudde/algo-msquant/peaks"
)

// Config holds fraction-solver parameters.
type Config struct {
	// Concurrency is the number of parallel row solves. Defaults to the
	// number of available CPU cores.
	Concurrency int

	// MaxIterations is passed through to the NNLS solver; 0 keeps its
	// default.
	MaxIterations int

	// Tolerance is passed through to the NNLS solver; 0 keeps its default.
	Tolerance float64
}

// normalizeConfig fills in defaults.
func normalizeConfig(cfg Config) Config {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}

	return cfg
}

// Solver fits sample rows against a reference basis and turns the fitted
// coefficients into mixture fractions.
type Solver struct {
	cfg Config
}

// NewSolver creates a Solver with the given configuration.
func NewSolver(cfg Config) *Solver {
	return &Solver{cfg: normalizeConfig(cfg)}
}

// BatchResult holds per-row fraction estimates. Fractions[i] is nil exactly
// when RowErrors[i] is non-nil; both slices always have one entry per input
// row, in input order.
type BatchResult struct {
	Fractions [][]float64
	RowErrors []error
}

// Solved returns the number of rows with a fraction estimate.
func (r *BatchResult) Solved() int {
	n := 0
	for _, f := range r.Fractions {
		if f != nil {
			n++
		}
	}

	return n
}

// Failed returns the number of rows without a fraction estimate.
func (r *BatchResult) Failed() int {
	return len(r.Fractions) - r.Solved()
}

// Solve fits every row of m to the basis independently and in parallel,
// reassembling results by original row index. Row failures are collected in
// the result rather than aborting the batch; a failing row never affects any
// other row.
func (s *Solver) Solve(basis *Basis, m *peaks.Matrix) (*BatchResult, error) {
	if basis == nil {
		return nil, fmt.Errorf("solve: basis must not be nil")
	}

	if m.Cols() != basis.Rows() {
		return nil, fmt.Errorf("solve: peak matrix has %d columns, basis has %d rows", m.Cols(), basis.Rows())
	}

	rows := m.Rows()
	res := &BatchResult{
		Fractions: make([][]float64, rows),
		RowErrors: make([]error, rows),
	}

	workers := s.cfg.Concurrency
	if workers > rows {
		workers = rows
	}

	if workers <= 1 {
		for i := 0; i < rows; i++ {
			res.Fractions[i], res.RowErrors[i] = s.solveRow(basis, m.Row(i), i)
		}

		return res, nil
	}

	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				// Workers write to disjoint indices, so no locking is needed.
				res.Fractions[i], res.RowErrors[i] = s.solveRow(basis, m.Row(i), i)
			}
		}()
	}

	for i := 0; i < rows; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	return res, nil
}

// solveRow is the pure per-row fit: NNLS against the shared basis followed
// by normalization of the coefficients to proportions.
func (s *Solver) solveRow(basis *Basis, row []float64, idx int) ([]float64, error) {
	x, err := nnls.Solve(basis.dense, row,
		nnls.WithMaxIterations(s.cfg.MaxIterations),
		nnls.WithTolerance(s.cfg.Tolerance))
	if err != nil {
		return nil, fmt.Errorf("sample row %d: %w", idx, err)
	}

	sum := 0.0
	for _, v := range x {
		sum += v
	}

	if sum == 0 {
		return nil, &SingularFitError{Row: idx}
	}

	fractions := make([]float64, len(x))
	vecmath.ScaleBlock(fractions, x, 1/sum)

	return fractions, nil
}

// MeanFractions averages the fraction vectors of all solved rows, skipping
// failed rows entirely. It returns the mean, the number of rows that
// contributed, and an error when no row solved.
func MeanFractions(res *BatchResult) ([]float64, int, error) {
	var acc []float64

	n := 0
	for _, f := range res.Fractions {
		if f == nil {
			continue
		}

		if acc == nil {
			acc = make([]float64, len(f))
		}

		vecmath.AddBlockInPlace(acc, f)
		n++
	}

	if n == 0 {
		return nil, 0, fmt.Errorf("mean fractions: no sample row solved")
	}

	mean := make([]float64, len(acc))
	vecmath.ScaleBlock(mean, acc, 1/float64(n))

	return mean, n, nil
}
