package store

import (
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-msquant/peaks"
	"github.com/cwbudde/algo-msquant/pipeline"
	"github.com/cwbudde/algo-msquant/quant"
)

func testReport() *pipeline.Report {
	return &pipeline.Report{
		Labels:  [2]string{"D", "N"},
		Windows: peaks.WindowSet{{Low: 2005, High: 2010}, {Low: 2020, High: 2025}},
		Groups: []pipeline.GroupResult{
			{
				Name:      "day0",
				Files:     []string{"r1.txt", "r2.txt"},
				Fractions: [][]float64{{0.9, 0.1}, nil},
				RowErrors: []error{nil, &quant.SingularFitError{Row: 1}},
				Mean:      []float64{0.9, 0.1},
				Solved:    1,
				Failed:    1,
			},
			{
				Name:      "day7",
				Files:     []string{"r1.txt"},
				Fractions: [][]float64{nil},
				RowErrors: []error{&quant.SingularFitError{Row: 0}},
				Solved:    0,
				Failed:    1,
			},
		},
	}
}

func TestSaveReportRoundTrip(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	runID, err := s.SaveReport(time.Now(), testReport())
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	if runID <= 0 {
		t.Fatalf("run id: got %d", runID)
	}

	means, err := s.GroupMeans(runID)
	if err != nil {
		t.Fatalf("GroupMeans: %v", err)
	}

	// day7 has no mean and must be skipped.
	if len(means) != 1 {
		t.Fatalf("groups with mean: got %d, want 1", len(means))
	}

	gm := means[0]
	if gm.Group != "day0" || gm.Solved != 1 || gm.Failed != 1 {
		t.Errorf("group: got %+v", gm)
	}

	if math.Abs(gm.MeanA-0.9) > 1e-12 || math.Abs(gm.MeanB-0.1) > 1e-12 {
		t.Errorf("means: got %g/%g, want 0.9/0.1", gm.MeanA, gm.MeanB)
	}
}

func TestSaveReport_MultipleRuns(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	first, err := s.SaveReport(time.Now(), testReport())
	if err != nil {
		t.Fatalf("first SaveReport: %v", err)
	}

	second, err := s.SaveReport(time.Now(), testReport())
	if err != nil {
		t.Fatalf("second SaveReport: %v", err)
	}

	if second <= first {
		t.Errorf("run ids must increase: %d then %d", first, second)
	}

	means, err := s.GroupMeans(first)
	if err != nil {
		t.Fatalf("GroupMeans: %v", err)
	}

	if len(means) != 1 {
		t.Errorf("first run groups: got %d, want 1", len(means))
	}
}
