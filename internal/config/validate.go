package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var knownModalities = []string{"T1w", "T2w", "FLAIR", "bold", "lesion", "connectivity", "other"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateLayout(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDataset() error {
	switch c.Dataset.Type {
	case "raw", "derivatives":
	default:
		return fmt.Errorf("dataset.type: unsupported value %q (want raw or derivatives)", c.Dataset.Type)
	}
	if strings.ContainsAny(c.Dataset.PipelineName, `/\`) {
		return fmt.Errorf("dataset.pipeline_name: %q must not contain path separators", c.Dataset.PipelineName)
	}
	return nil
}

func (c *Config) validateLayout() error {
	if !slices.Contains(knownModalities, c.Layout.DefaultModality) {
		return fmt.Errorf("layout.default_modality: unsupported value %q (want one of %s)", c.Layout.DefaultModality, strings.Join(knownModalities, ", "))
	}
	if strings.ContainsAny(c.Layout.DefaultSession, `/\ `) {
		return fmt.Errorf("layout.default_session: %q must be a single token", c.Layout.DefaultSession)
	}
	dirs := []struct{ key, value string }{
		{"layout.anat_dir", c.Layout.AnatDir},
		{"layout.func_dir", c.Layout.FuncDir},
		{"layout.custom_dir", c.Layout.CustomDir},
		{"layout.derivatives_dir", c.Layout.DerivativesDir},
	}
	for _, dir := range dirs {
		if strings.ContainsAny(dir.value, `/\`) || dir.value == "." || dir.value == ".." {
			return fmt.Errorf("%s: %q must be a single folder name", dir.key, dir.value)
		}
	}
	return nil
}

func (c *Config) validateScan() error {
	for _, pattern := range c.Scan.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("scan.exclude: invalid pattern %q", pattern)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
