package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/handreveal/cmd/handreveal/shared"
	"github.com/lox/handreveal/internal/evidence"
	"github.com/lox/handreveal/internal/report"
	"github.com/lox/handreveal/internal/session"
)

var (
	// Style definitions
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	fileStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))
)

// ResolveCmd rewrites anonymized hand history files in place of their
// session aliases, using whatever extraction evidence is available.
type ResolveCmd struct {
	Files       []string `arg:"" name:"file" help:"Anonymized hand history files" type:"existingfile"`
	Evidence    string   `short:"e" help:"Directory of extraction evidence JSON files"`
	Output      string   `short:"o" help:"Directory for resolved files (default: next to each input)"`
	Config      string   `short:"c" help:"Resolver configuration file" default:"handreveal.hcl"`
	Threshold   *float64 `help:"Minimum match score to accept a hand (0..100)"`
	Strict      *bool    `help:"Refuse to write files that fail validation"`
	Concurrency *int     `help:"Maximum files resolved in parallel"`
	Report      string   `help:"Write a TOML resolution report to this path"`
	Progress    bool     `short:"p" help:"Show interactive progress while resolving"`
	Debug       bool     `short:"d" help:"Enable debug logging"`
	JSONLogs    bool     `name:"json-logs" help:"Emit structured JSON logs"`
}

func (cmd ResolveCmd) Run() error {
	logger := shared.Logger(cmd.Debug, cmd.JSONLogs)

	settings, err := cmd.settings()
	if err != nil {
		return err
	}

	records, err := evidence.LoadDir(settings.EvidenceDir, logger)
	if err != nil {
		return fmt.Errorf("loading evidence from %s: %w", settings.EvidenceDir, err)
	}
	logger.Info().Int("records", len(records)).Str("dir", settings.EvidenceDir).Msg("loaded evidence")

	resolver := session.NewResolver(settings, records, logger)
	ctx := shared.SignalContext(logger)

	var results []*session.Result
	if cmd.Progress {
		results, err = runWithProgress(ctx, resolver, cmd.Files)
		if err != nil {
			return err
		}
	} else {
		results = resolver.ResolveBatch(ctx, cmd.Files, func(res *session.Result) {
			fmt.Println(resultLine(res))
		})
	}

	if cmd.Report != "" {
		rep := report.New(time.Now())
		for _, res := range results {
			rep.Files = append(rep.Files, res.Report())
		}
		if err := report.WriteFile(cmd.Report, rep); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info().Str("path", cmd.Report).Msg("wrote resolution report")
	}

	return printSummary(results)
}

// settings merges the configuration file with explicit flag overrides.
func (cmd ResolveCmd) settings() (session.Settings, error) {
	config, err := session.LoadConfig(cmd.Config)
	if err != nil {
		return session.Settings{}, err
	}

	settings := config.Resolver
	if cmd.Evidence != "" {
		settings.EvidenceDir = cmd.Evidence
	}
	if settings.EvidenceDir == "" {
		settings.EvidenceDir = "evidence"
	}
	if cmd.Output != "" {
		settings.OutputDir = cmd.Output
	}
	if cmd.Threshold != nil {
		settings.ConfidenceThreshold = *cmd.Threshold
	}
	if cmd.Strict != nil {
		settings.Strict = *cmd.Strict
	}
	if cmd.Concurrency != nil {
		settings.MaxConcurrency = *cmd.Concurrency
	}
	return settings, nil
}

func resultLine(res *session.Result) string {
	if res.Err != nil {
		return fmt.Sprintf("%s %s: %v", failStyle.Render("✗"), fileStyle.Render(res.Path), res.Err)
	}

	line := fmt.Sprintf("%s %s → %s (%d/%d hands matched)",
		okStyle.Render("✓"),
		fileStyle.Render(res.Path),
		res.OutputPath,
		res.HandsMatched,
		res.HandsTotal)
	if !res.Written {
		line = fmt.Sprintf("%s %s (%d/%d hands matched, not written)",
			failStyle.Render("✗"),
			fileStyle.Render(res.Path),
			res.HandsMatched,
			res.HandsTotal)
	}
	if n := len(res.Validation.Warnings); n > 0 {
		line += warnStyle.Render(fmt.Sprintf(" %d warnings", n))
	}
	return line
}

func printSummary(results []*session.Result) error {
	written := 0
	failed := 0
	for _, res := range results {
		if res.Err != nil || !res.Validation.Valid {
			failed++
			continue
		}
		if res.Written {
			written++
		}
	}

	fmt.Println()
	fmt.Printf("%d files resolved, %d written\n", len(results), written)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}
