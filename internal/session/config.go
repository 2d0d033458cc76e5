package session

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/handreveal/internal/matcher"
)

// Config is the root of the resolver configuration file.
type Config struct {
	Resolver Settings `hcl:"resolver,block"`
}

// Settings controls a resolution run.
type Settings struct {
	// ConfidenceThreshold is the minimum match score (0..100).
	ConfidenceThreshold float64 `hcl:"confidence_threshold,optional"`
	// Strict refuses to write output files that fail hard validation.
	Strict bool `hcl:"strict,optional"`
	// OutputDir receives rewritten files; empty means alongside input.
	OutputDir string `hcl:"output_dir,optional"`
	// EvidenceDir is scanned for *.json extraction records.
	EvidenceDir string `hcl:"evidence_dir,optional"`
	// MaxConcurrency bounds parallel file resolution.
	MaxConcurrency int `hcl:"max_concurrency,optional"`
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() *Config {
	return &Config{
		Resolver: Settings{
			ConfidenceThreshold: matcher.DefaultThreshold,
			Strict:              true,
			MaxConcurrency:      4,
		},
	}
}

// LoadConfig loads configuration from an HCL file, returning defaults
// when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Resolver.ConfidenceThreshold <= 0 {
		config.Resolver.ConfidenceThreshold = matcher.DefaultThreshold
	}
	if config.Resolver.MaxConcurrency <= 0 {
		config.Resolver.MaxConcurrency = 4
	}
	return &config, nil
}
