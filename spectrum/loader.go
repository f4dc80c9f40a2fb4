package spectrum

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// headerLines is the number of leading lines skipped in exported spectrum
// files before numeric data starts.
const headerLines = 2

// ParseReader reads a whitespace-delimited two-column spectrum (m/z,
// intensity) from r. The first two lines are treated as headers and skipped;
// blank lines are ignored. The name is used in error messages only.
//
// The result is validated before it is returned, so a successfully parsed
// spectrum always satisfies the data model.
func ParseReader(r io.Reader, name string) (Spectrum, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var s Spectrum

	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo <= headerLines {
			continue
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return Spectrum{}, &MalformedSpectrumError{
				Name:   name,
				Reason: fmt.Sprintf("line %d: expected 2 columns, got %d", lineNo, len(fields)),
			}
		}

		mz, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return Spectrum{}, &MalformedSpectrumError{
				Name:   name,
				Reason: fmt.Sprintf("line %d: bad m/z value %q", lineNo, fields[0]),
			}
		}

		intensity, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return Spectrum{}, &MalformedSpectrumError{
				Name:   name,
				Reason: fmt.Sprintf("line %d: bad intensity value %q", lineNo, fields[1]),
			}
		}

		s.MZ = append(s.MZ, mz)
		s.Intensity = append(s.Intensity, intensity)
	}

	if err := sc.Err(); err != nil {
		return Spectrum{}, fmt.Errorf("read spectrum %q: %w", name, err)
	}

	if err := s.Validate(name); err != nil {
		return Spectrum{}, err
	}

	return s, nil
}

// LoadFile reads and validates a single spectrum file.
func LoadFile(path string) (Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return Spectrum{}, fmt.Errorf("open spectrum: %w", err)
	}
	defer f.Close()

	return ParseReader(f, filepath.Base(path))
}

// LoadDir loads every regular file in dir as a spectrum, one replicate per
// file. Files are ordered by name so the resulting row order is
// deterministic. The returned names parallel the spectra.
func LoadDir(dir string) ([]Spectrum, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read spectrum directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		names = append(names, e.Name())
	}

	sort.Strings(names)

	spectra := make([]Spectrum, 0, len(names))
	for _, name := range names {
		s, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, nil, err
		}

		spectra = append(spectra, s)
	}

	return spectra, names, nil
}
