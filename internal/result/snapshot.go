package result

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
)

// Save writes the result as gzip-compressed JSON. The snapshot lets
// reports and charts be regenerated later without another solver run.
func (r *Result) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("result: save %s: %w", path, err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	enc := json.NewEncoder(zw)
	if err := enc.Encode(r); err != nil {
		zw.Close()
		return fmt.Errorf("result: save %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("result: save %s: %w", path, err)
	}
	return f.Close()
}

// Load reads a snapshot written by Save.
func Load(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("result: load %s: %w", path, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("result: load %s: %w", path, err)
	}
	defer zr.Close()

	var r Result
	if err := json.NewDecoder(zr).Decode(&r); err != nil {
		return nil, fmt.Errorf("result: load %s: %w", path, err)
	}
	return &r, nil
}
