package workload

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Universe is the ordered, finite set of article identifiers a workload
// draws from. It is immutable for the duration of a run.
type Universe []int

// RangeUniverse returns the contiguous universe first..first+size-1.
func RangeUniverse(first, size int) Universe {
	if size <= 0 {
		return Universe{}
	}
	u := make(Universe, size)
	for i := range u {
		u[i] = first + i
	}
	return u
}

// Size returns the number of identifiers in the universe.
func (u Universe) Size() int {
	return len(u)
}

// Prefix returns the first n identifiers, or the whole universe when n
// exceeds its size. Used to confine a sweep to a cache-capacity-sized
// subset.
func (u Universe) Prefix(n int) Universe {
	if n >= len(u) {
		return u
	}
	if n < 0 {
		n = 0
	}
	return u[:n]
}

// LoadUniverse reads an explicit identifier set from a file. JSON files
// must contain an array of integers; CSV files one identifier per row
// (first column). The file extension selects the format.
func LoadUniverse(path string) (Universe, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSONUniverse(path)
	case ".csv":
		return loadCSVUniverse(path)
	default:
		return nil, fmt.Errorf("unsupported universe file format %q (want .json or .csv)", filepath.Ext(path))
	}
}

func loadJSONUniverse(path string) (Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}

	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse universe file %s: %w", path, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("universe file %s contains no identifiers", path)
	}
	return Universe(ids), nil
}

func loadCSVUniverse(path string) (Universe, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open universe file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}

	ids := make(Universe, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("universe file %s row %d: %w", path, i+1, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("universe file %s contains no identifiers", path)
	}
	return ids, nil
}
