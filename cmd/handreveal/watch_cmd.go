package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/handreveal/cmd/handreveal/shared"
	"github.com/lox/handreveal/internal/evidence"
	"github.com/lox/handreveal/internal/session"
	"github.com/lox/handreveal/internal/watch"
)

// WatchCmd tails an export directory and resolves each hand history
// file once the poker client has finished writing it.
type WatchCmd struct {
	Dir      string        `arg:"" help:"Directory to watch for hand history exports" type:"existingdir"`
	Evidence string        `short:"e" help:"Directory of extraction evidence JSON files"`
	Output   string        `short:"o" help:"Directory for resolved files"`
	Config   string        `short:"c" help:"Resolver configuration file" default:"handreveal.hcl"`
	Settle   time.Duration `help:"How long a file must stay quiet before it is resolved" default:"2s"`
	Debug    bool          `short:"d" help:"Enable debug logging"`
	JSONLogs bool          `name:"json-logs" help:"Emit structured JSON logs"`
}

func (cmd WatchCmd) Run() error {
	logger := shared.Logger(cmd.Debug, cmd.JSONLogs)

	config, err := session.LoadConfig(cmd.Config)
	if err != nil {
		return err
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

	records, err := evidence.LoadDir(settings.EvidenceDir, logger)
	if err != nil {
		return fmt.Errorf("loading evidence from %s: %w", settings.EvidenceDir, err)
	}
	logger.Info().Int("records", len(records)).Str("dir", settings.EvidenceDir).Msg("loaded evidence")

	resolver := session.NewResolver(settings, records, logger)
	ctx := shared.SignalContext(logger)

	watcher := watch.New(cmd.Dir, cmd.Settle, quartz.NewReal(), logger, func(path string) {
		res := resolver.ResolveFile(path)
		if res.Err != nil {
			logger.Error().Err(res.Err).Str("file", path).Msg("resolve failed")
			return
		}
		logger.Info().
			Str("file", path).
			Str("output", res.OutputPath).
			Int("hands", res.HandsTotal).
			Int("matched", res.HandsMatched).
			Bool("written", res.Written).
			Msg("resolved")
	})

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
