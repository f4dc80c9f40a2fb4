package peaks

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseWindows parses the compact "low:high,low:high,..." window notation
// used on the command line, e.g. "2005.7:2010.4,2021.6:2026.3".
func ParseWindows(s string) (WindowSet, error) {
	parts := strings.Split(s, ",")
	ws := make(WindowSet, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("window %q: expected low:high", part)
		}

		low, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		if err != nil {
			return nil, fmt.Errorf("window %q: bad lower bound: %w", part, err)
		}

		high, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if err != nil {
			return nil, fmt.Errorf("window %q: bad upper bound: %w", part, err)
		}

		ws = append(ws, Window{Low: low, High: high})
	}

	if err := ws.Validate(); err != nil {
		return nil, err
	}

	return ws, nil
}

// LoadWindows reads a window set from a JSON file holding an array of
// {"low": ..., "high": ...} objects.
func LoadWindows(path string) (WindowSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read window file: %w", err)
	}

	var ws WindowSet
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parse window file %q: %w", path, err)
	}

	if err := ws.Validate(); err != nil {
		return nil, fmt.Errorf("window file %q: %w", path, err)
	}

	return ws, nil
}
