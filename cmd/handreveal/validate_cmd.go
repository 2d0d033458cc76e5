package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/handreveal/internal/rewrite"
)

// ValidateCmd compares a resolved file against its anonymized original
// and reports anything the rewrite should not have changed.
type ValidateCmd struct {
	Original string `arg:"" help:"Original anonymized hand history file" type:"existingfile"`
	Resolved string `arg:"" help:"Resolved file to check" type:"existingfile"`
}

func (cmd ValidateCmd) Run() error {
	original, err := os.ReadFile(cmd.Original)
	if err != nil {
		return err
	}
	resolved, err := os.ReadFile(cmd.Resolved)
	if err != nil {
		return err
	}

	result := rewrite.Validate(string(original), string(resolved))
	for _, msg := range result.Errors {
		fmt.Println(failStyle.Render("error: " + msg))
	}
	for _, msg := range result.Warnings {
		fmt.Println(warnStyle.Render("warning: " + msg))
	}

	if !result.Valid {
		return fmt.Errorf("%s fails validation against %s", cmd.Resolved, cmd.Original)
	}

	log.Info("validation passed", "file", cmd.Resolved, "warnings", len(result.Warnings))
	return nil
}
