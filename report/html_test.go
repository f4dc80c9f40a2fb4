package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-msquant/peaks"
	"github.com/cwbudde/algo-msquant/quant"
	"github.com/cwbudde/algo-msquant/spectrum"
)

func testBasis(t *testing.T) *quant.Basis {
	t.Helper()

	windows := peaks.WindowSet{{Low: 2005, High: 2010}, {Low: 2020, High: 2025}}

	pureD := spectrum.Spectrum{MZ: []float64{2007.8, 2021.5}, Intensity: []float64{100, 20}}
	pureN := spectrum.Spectrum{MZ: []float64{2007.8, 2021.5}, Intensity: []float64{30, 80}}

	basis, err := quant.BuildBasis(pureD, pureN, windows, "D", "N")
	if err != nil {
		t.Fatalf("BuildBasis: %v", err)
	}

	return basis
}

func TestWriteHTML(t *testing.T) {
	rep := testReport()
	rep.Basis = testBasis(t)

	path := filepath.Join(t.TempDir(), "report.html")
	if err := WriteHTML(path, rep); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	out := string(data)

	for _, want := range []string{
		"Group day0",      // per-group fraction chart
		"Reference basis", // basis column chart
		"r1.txt",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
}

func TestWriteHTML_WithoutBasis(t *testing.T) {
	rep := testReport() // Basis stays nil

	path := filepath.Join(t.TempDir(), "report.html")
	if err := WriteHTML(path, rep); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	out := string(data)

	if !strings.Contains(out, "Group day0") {
		t.Error("rendered report missing group chart")
	}

	if strings.Contains(out, "Reference basis") {
		t.Error("basis chart rendered without a basis")
	}
}
