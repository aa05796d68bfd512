package config

import (
	"fmt"
	"os"
	"strings"
)

// PipelineEnvVar supplies dataset.pipeline_name when the config leaves it empty.
const PipelineEnvVar = "BIDSLITE_PIPELINE_NAME"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDataset()
	c.normalizeLayout()
	c.normalizeScan()
	c.normalizeValidation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeDataset() {
	c.Dataset.Type = strings.ToLower(strings.TrimSpace(c.Dataset.Type))
	if c.Dataset.Type == "" {
		c.Dataset.Type = defaultDatasetType
	}
	c.Dataset.PipelineName = strings.TrimSpace(c.Dataset.PipelineName)
	if c.Dataset.PipelineName == "" {
		if value, ok := os.LookupEnv(PipelineEnvVar); ok {
			c.Dataset.PipelineName = strings.TrimSpace(value)
		}
	}
	c.Dataset.Name = strings.TrimSpace(c.Dataset.Name)
	if c.Dataset.Name == "" {
		c.Dataset.Name = defaultDatasetName
	}
	c.Dataset.BIDSVersion = strings.TrimSpace(c.Dataset.BIDSVersion)
	if c.Dataset.BIDSVersion == "" {
		c.Dataset.BIDSVersion = defaultBIDSVersion
	}
	c.Dataset.Authors = trimList(c.Dataset.Authors, false)
}

func (c *Config) normalizeLayout() {
	set := func(field *string, fallback string) {
		*field = strings.TrimSpace(*field)
		if *field == "" {
			*field = fallback
		}
	}
	set(&c.Layout.DefaultSession, defaultDefaultSession)
	set(&c.Layout.DefaultModality, defaultDefaultModality)
	set(&c.Layout.AnatDir, defaultAnatDir)
	set(&c.Layout.FuncDir, defaultFuncDir)
	set(&c.Layout.CustomDir, defaultCustomDir)
	set(&c.Layout.DerivativesDir, defaultDerivativesDir)
}

func (c *Config) normalizeScan() {
	exts := trimList(c.Scan.Extensions, false)
	for i, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[i] = ext
	}
	if len(exts) == 0 {
		exts = append([]string(nil), defaultExtensions...)
	}
	c.Scan.Extensions = exts
	c.Scan.Exclude = trimList(c.Scan.Exclude, false)
}

func (c *Config) normalizeValidation() {
	c.Validation.RequiredColumns = trimList(c.Validation.RequiredColumns, false)
	if len(c.Validation.RequiredColumns) == 0 {
		c.Validation.RequiredColumns = append([]string(nil), defaultRequiredColumns...)
	}
	c.Validation.AllowedSex = trimList(c.Validation.AllowedSex, true)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// trimList trims entries and removes duplicates. Empty entries are dropped
// unless keepEmpty is set.
func trimList(values []string, keepEmpty bool) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" && !keepEmpty {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
