// Package report renders a resolution run as a TOML document the
// operator can archive next to the rewritten files.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lox/handreveal/internal/fileutil"
)

// Report is the top-level document for one resolution run.
type Report struct {
	GeneratedAt string       `toml:"generated_at"`
	Files       []FileReport `toml:"file,omitempty"`
}

// FileReport summarizes one resolved hand-history file.
type FileReport struct {
	Path         string        `toml:"path"`
	HandsTotal   int           `toml:"hands_total"`
	HandsMatched int           `toml:"hands_matched"`
	Valid        bool          `toml:"valid"`
	Written      bool          `toml:"written"`
	Errors       []string      `toml:"errors,omitempty"`
	Warnings     []string      `toml:"warnings,omitempty"`
	Tables       []TableReport `toml:"table,omitempty"`
}

// TableReport lists the aggregated mapping for one table session.
type TableReport struct {
	Name      string          `toml:"name"`
	HeroName  string          `toml:"hero_name,omitempty"`
	Players   []PlayerEntry   `toml:"player,omitempty"`
	Conflicts []ConflictEntry `toml:"conflict,omitempty"`
}

// PlayerEntry is one resolved identifier.
type PlayerEntry struct {
	AnonID     string  `toml:"anon_id"`
	Name       string  `toml:"name"`
	Source     string  `toml:"source"`
	Confidence float64 `toml:"confidence"`
	Locked     bool    `toml:"locked,omitempty"`
}

// ConflictEntry records contradictory evidence for one identifier.
type ConflictEntry struct {
	AnonID   string   `toml:"anon_id"`
	Kept     string   `toml:"kept"`
	Rejected []string `toml:"rejected"`
}

// New creates a report stamped with the given generation time.
func New(now time.Time) *Report {
	return &Report{GeneratedAt: now.UTC().Format(time.RFC3339)}
}

// Encode writes the report to w as TOML.
func Encode(w io.Writer, r *Report) error {
	if r == nil {
		return fmt.Errorf("report: nil report")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(r)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(r *Report) ([]byte, error) {
	var buf strings.Builder
	if err := Encode(&buf, r); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// WriteFile atomically writes the report to path.
func WriteFile(path string, r *Report) error {
	data, err := EncodeToBytes(r)
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomicDir(path, data, 0o644)
}
