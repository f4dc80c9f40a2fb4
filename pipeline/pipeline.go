// Package pipeline wires spectrum loading, peak extraction, and fraction
// solving into a full analysis run over one or more replicate groups.
package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-msquant/peaks"
	"github.com/cwbudde/algo-msquant/quant"
	"github.com/cwbudde/algo-msquant/spectrum"
)

// FailPolicy selects how a run treats per-row solve failures.
type FailPolicy int

const (
	// CollectErrors records row failures in the report and keeps going.
	// This is the default.
	CollectErrors FailPolicy = iota

	// FailFast aborts the run on the first row failure.
	FailFast
)

// Config describes one analysis run.
type Config struct {
	// ReferenceA and ReferenceB are the pure-species spectrum files. Their
	// order fixes the column order of the basis and of every fraction
	// vector.
	ReferenceA string
	ReferenceB string

	// LabelA and LabelB name the species. Empty labels default to the
	// reference file names.
	LabelA string
	LabelB string

	// SampleDirs holds one directory per replicate group.
	SampleDirs []string

	// Windows is the shared diagnostic window set.
	Windows peaks.WindowSet

	// Concurrency bounds the parallel row solves; 0 means all CPU cores.
	Concurrency int

	// Policy selects fail-fast or collect-and-continue on row failures.
	Policy FailPolicy

	// Logger receives run progress; nil uses the logrus standard logger.
	Logger *log.Logger
}

// GroupResult holds the outcome for one replicate group.
type GroupResult struct {
	Name      string
	Files     []string
	Fractions [][]float64 // nil entry for a failed row
	RowErrors []error     // nil entry for a solved row
	Mean      []float64   // nil when no row solved
	Solved    int
	Failed    int
}

// Report is the aggregated outcome of a run. Basis is the reference basis
// the fractions were fitted against; it is immutable and safe to share with
// renderers.
type Report struct {
	Labels  [2]string
	Windows peaks.WindowSet
	Basis   *quant.Basis
	Groups  []GroupResult
}

// Run executes the full pipeline: load the two pure references, build the
// basis once, then extract and solve every sample group. A degenerate basis
// aborts immediately; row-level failures follow cfg.Policy.
func Run(cfg Config) (*Report, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	if len(cfg.SampleDirs) == 0 {
		return nil, fmt.Errorf("pipeline: no sample directories configured")
	}

	if err := cfg.Windows.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	labelA := cfg.LabelA
	if labelA == "" {
		labelA = baseName(cfg.ReferenceA)
	}

	labelB := cfg.LabelB
	if labelB == "" {
		labelB = baseName(cfg.ReferenceB)
	}

	pureA, err := spectrum.LoadFile(cfg.ReferenceA)
	if err != nil {
		return nil, fmt.Errorf("pipeline: reference %q: %w", labelA, err)
	}

	pureB, err := spectrum.LoadFile(cfg.ReferenceB)
	if err != nil {
		return nil, fmt.Errorf("pipeline: reference %q: %w", labelB, err)
	}

	basis, err := quant.BuildBasis(pureA, pureB, cfg.Windows, labelA, labelB)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	logger.WithFields(log.Fields{
		"windows":   len(cfg.Windows),
		"species_a": labelA,
		"species_b": labelB,
	}).Info("reference basis built")

	solver := quant.NewSolver(quant.Config{Concurrency: cfg.Concurrency})

	rep := &Report{
		Labels:  basis.Labels(),
		Windows: cfg.Windows,
		Basis:   basis,
		Groups:  make([]GroupResult, 0, len(cfg.SampleDirs)),
	}

	for _, dir := range cfg.SampleDirs {
		group, err := runGroup(dir, basis, solver, cfg, logger)
		if err != nil {
			return nil, err
		}

		rep.Groups = append(rep.Groups, *group)
	}

	return rep, nil
}

func runGroup(dir string, basis *quant.Basis, solver *quant.Solver, cfg Config, logger *log.Logger) (*GroupResult, error) {
	name := baseName(dir)

	spectra, files, err := spectrum.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: group %q: %w", name, err)
	}

	logger.WithFields(log.Fields{"group": name, "samples": len(files)}).Info("spectra loaded")

	m, err := peaks.ExtractBatch(spectra, cfg.Windows)
	if err != nil {
		return nil, fmt.Errorf("pipeline: group %q: %w", name, err)
	}

	res, err := solver.Solve(basis, m)
	if err != nil {
		return nil, fmt.Errorf("pipeline: group %q: %w", name, err)
	}

	group := &GroupResult{
		Name:      name,
		Files:     files,
		Fractions: res.Fractions,
		RowErrors: res.RowErrors,
		Solved:    res.Solved(),
		Failed:    res.Failed(),
	}

	for i, rowErr := range res.RowErrors {
		if rowErr == nil {
			continue
		}

		if cfg.Policy == FailFast {
			return nil, fmt.Errorf("pipeline: group %q: sample %q: %w", name, files[i], rowErr)
		}

		logger.WithFields(log.Fields{"group": name, "sample": files[i]}).
			WithError(rowErr).Warn("sample row failed")
	}

	if group.Solved > 0 {
		mean, n, err := quant.MeanFractions(res)
		if err != nil {
			return nil, fmt.Errorf("pipeline: group %q: %w", name, err)
		}

		group.Mean = mean

		logger.WithFields(log.Fields{
			"group":     name,
			"solved":    n,
			"failed":    group.Failed,
			basisLabel(basis, 0): fmt.Sprintf("%.4f", mean[0]),
			basisLabel(basis, 1): fmt.Sprintf("%.4f", mean[1]),
		}).Info("group solved")
	} else {
		logger.WithFields(log.Fields{"group": name, "failed": group.Failed}).
			Warn("no sample row solved")
	}

	return group, nil
}

func basisLabel(b *quant.Basis, col int) string {
	labels := b.Labels()
	return strings.ToLower(labels[col])
}

func baseName(path string) string {
	return filepath.Base(filepath.Clean(path))
}
