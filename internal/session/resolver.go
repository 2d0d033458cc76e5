// Package session orchestrates the resolution pipeline: parse a
// hand-history file, match its hands against visual evidence, aggregate
// per-table name mappings, rewrite the text, and validate the result.
// The pipeline is pure per file, so independent files resolve
// concurrently.
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/handreveal/internal/evidence"
	"github.com/lox/handreveal/internal/fileutil"
	"github.com/lox/handreveal/internal/handhistory"
	"github.com/lox/handreveal/internal/matcher"
	"github.com/lox/handreveal/internal/report"
	"github.com/lox/handreveal/internal/rewrite"
)

// Result is the outcome of resolving one file. A per-file failure is
// carried in Err; it never aborts the rest of a batch.
type Result struct {
	Path         string
	OutputPath   string
	Output       string
	Tables       []matcher.TableMapping
	Validation   rewrite.ValidationResult
	HandsTotal   int
	HandsMatched int
	Written      bool
	Err          error
}

// Report converts the result into its report form.
func (r *Result) Report() report.FileReport {
	fr := report.FileReport{
		Path:         r.Path,
		HandsTotal:   r.HandsTotal,
		HandsMatched: r.HandsMatched,
		Valid:        r.Validation.Valid,
		Written:      r.Written,
		Errors:       r.Validation.Errors,
		Warnings:     append([]string(nil), r.Validation.Warnings...),
	}
	if r.Err != nil {
		fr.Errors = append([]string{r.Err.Error()}, fr.Errors...)
	}
	for _, table := range r.Tables {
		fr.Warnings = append(fr.Warnings, table.Warnings...)
		tr := report.TableReport{Name: table.TableName, HeroName: table.HeroName}
		for _, id := range sortedKeys(table.Mappings) {
			m := table.Mappings[id]
			tr.Players = append(tr.Players, report.PlayerEntry{
				AnonID:     m.AnonID,
				Name:       m.Name,
				Source:     string(m.Source),
				Confidence: m.Confidence,
				Locked:     m.Locked,
			})
		}
		for _, c := range table.Conflicts {
			tr.Conflicts = append(tr.Conflicts, report.ConflictEntry{
				AnonID: c.AnonID, Kept: c.Kept, Rejected: c.Rejected,
			})
		}
		fr.Tables = append(fr.Tables, tr)
	}
	return fr
}

// Resolver runs the pipeline with a fixed evidence set.
type Resolver struct {
	settings Settings
	records  []evidence.Evidence
	parser   *handhistory.Parser
	logger   zerolog.Logger
}

// NewResolver creates a resolver over the given evidence records.
func NewResolver(settings Settings, records []evidence.Evidence, logger zerolog.Logger) *Resolver {
	if settings.ConfidenceThreshold <= 0 {
		settings.ConfidenceThreshold = matcher.DefaultThreshold
	}
	if settings.MaxConcurrency <= 0 {
		settings.MaxConcurrency = 4
	}
	return &Resolver{
		settings: settings,
		records:  records,
		parser:   handhistory.NewParser(logger),
		logger:   logger,
	}
}

// ResolveText runs the pipeline over one file's text without touching
// the file system.
func (r *Resolver) ResolveText(name, text string) *Result {
	res := &Result{Path: name}

	hands := r.parser.ParseFile(text)
	res.HandsTotal = len(hands)
	if len(hands) == 0 {
		res.Err = fmt.Errorf("session: no parseable hands in %s", name)
		return res
	}

	res.Tables = matcher.AggregateTables(hands, r.records, r.settings.ConfidenceThreshold, r.logger)

	merged := make(map[string]string)
	for _, table := range res.Tables {
		res.HandsMatched += table.HandsMatched
		for id, resolved := range table.Resolved() {
			if existing, ok := merged[id]; ok && existing != resolved {
				r.logger.Warn().
					Str("anon_id", id).
					Str("kept", existing).
					Str("rejected", resolved).
					Msg("identifier resolves differently across tables in one file")
				continue
			}
			merged[id] = resolved
		}
	}

	res.Output = rewrite.Rewrite(text, merged)
	res.Validation = rewrite.Validate(text, res.Output)
	return res
}

// ResolveFile resolves one file on disk and writes the rewritten text
// unless strict mode is on and a hard validation error fired.
func (r *Resolver) ResolveFile(path string) *Result {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return &Result{Path: path, Err: err}
	}

	res := r.ResolveText(path, string(data))
	if res.Err != nil {
		return res
	}

	res.OutputPath = r.outputPath(path)
	if r.settings.Strict && !res.Validation.Valid {
		r.logger.Error().
			Str("file", path).
			Strs("errors", res.Validation.Errors).
			Msg("refusing to write output that fails hard validation")
		return res
	}

	if err := fileutil.WriteFileAtomicDir(res.OutputPath, []byte(res.Output), 0o644); err != nil {
		res.Err = err
		return res
	}
	res.Written = true
	return res
}

// ResolveBatch resolves files concurrently with bounded parallelism.
// Results are returned in input order; onResult, when non-nil, fires as
// each file finishes.
func (r *Resolver) ResolveBatch(ctx context.Context, paths []string, onResult func(*Result)) []*Result {
	results := make([]*Result, len(paths))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.settings.MaxConcurrency)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = &Result{Path: path, Err: ctx.Err()}
				return nil
			default:
			}

			res := r.ResolveFile(path)
			results[i] = res
			if onResult != nil {
				mu.Lock()
				onResult(res)
				mu.Unlock()
			}
			return nil
		})
	}

	// Workers never return errors; per-file failures live in results.
	_ = g.Wait()
	return results
}

// outputPath places the rewritten file in the output dir under the same
// base name, or next to the input with a .resolved suffix.
func (r *Resolver) outputPath(path string) string {
	base := filepath.Base(path)
	if r.settings.OutputDir != "" {
		return filepath.Join(r.settings.OutputDir, base)
	}
	ext := filepath.Ext(base)
	return filepath.Join(filepath.Dir(path), strings.TrimSuffix(base, ext)+".resolved"+ext)
}

func sortedKeys(m map[string]matcher.NameMapping) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
