package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Decode parses one evidence record from JSON and validates it.
func Decode(data []byte) (*Evidence, error) {
	var ev Evidence
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("evidence: decode: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}

// LoadFile reads and validates a single evidence JSON file. A record
// with no evidence_id inherits the file's base name as its identifier.
func LoadFile(path string) (*Evidence, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var ev Evidence
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", path, err)
	}
	if ev.EvidenceID == "" {
		ev.EvidenceID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &ev, nil
}

// LoadDir loads every *.json file in dir. Files that fail to decode or
// validate are skipped with a warning; extraction runs concurrently on
// the capture side, so the returned slice is sorted by evidence id to
// give callers a stable order.
func LoadDir(dir string, logger zerolog.Logger) ([]Evidence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("evidence: read dir: %w", err)
	}

	records := make([]Evidence, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ev, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping malformed evidence")
			continue
		}
		records = append(records, *ev)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].EvidenceID < records[j].EvidenceID
	})
	return records, nil
}
