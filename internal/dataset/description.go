package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bidslite/internal/faults"
	"bidslite/internal/layout"
)

const (
	// DescriptionFile is the BIDS dataset descriptor name.
	DescriptionFile = "dataset_description.json"
	// GeneratorName and GeneratorVersion identify this tool in GeneratedBy.
	GeneratorName    = "BIDS Lite"
	GeneratorVersion = "0.1.0"
	// DefaultBIDSVersion is written when Description.BIDSVersion is empty.
	DefaultBIDSVersion = "1.9.0"
	defaultRawName     = "BIDS Lite Dataset"
)

// Description holds the values written to dataset_description.json.
type Description struct {
	DatasetType  layout.DatasetType
	PipelineName string
	Name         string
	BIDSVersion  string
	Authors      []string
	Date         time.Time
}

type toolInfo struct {
	Name    string `json:"Name"`
	Version string `json:"Version"`
}

type descriptionPayload struct {
	Name                string     `json:"Name"`
	BIDSVersion         string     `json:"BIDSVersion"`
	DatasetType         string     `json:"DatasetType"`
	Authors             []string   `json:"Authors,omitempty"`
	PipelineDescription *toolInfo  `json:"PipelineDescription,omitempty"`
	GeneratedBy         []toolInfo `json:"GeneratedBy"`
	Date                string     `json:"Date"`
}

// Root returns the dataset folder for out: out itself for raw datasets and
// out/derivatives/<pipeline> for derivatives.
func Root(out string, datasetType layout.DatasetType, pipeline string) string {
	return layout.Builder{Root: out}.DatasetRoot(datasetType, pipeline)
}

// WriteDatasetDescription writes dataset_description.json into dir.
func WriteDatasetDescription(dir string, desc Description) (string, error) {
	payload, err := buildDescription(desc)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", faults.Wrap(faults.ErrIO, "dataset", "describe", "encode description", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", faults.Wrap(faults.ErrIO, "dataset", "describe", "create dataset root", err)
	}
	path := filepath.Join(dir, DescriptionFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", faults.Wrap(faults.ErrIO, "dataset", "describe", "write "+DescriptionFile, err)
	}
	return path, nil
}

func buildDescription(desc Description) (descriptionPayload, error) {
	date := desc.Date
	if date.IsZero() {
		date = time.Now()
	}
	version := strings.TrimSpace(desc.BIDSVersion)
	if version == "" {
		version = DefaultBIDSVersion
	}
	payload := descriptionPayload{
		BIDSVersion: version,
		GeneratedBy: []toolInfo{{Name: GeneratorName, Version: GeneratorVersion}},
		Date:        date.Format(time.DateOnly),
	}
	switch desc.DatasetType {
	case layout.Derivatives:
		pipeline := strings.TrimSpace(desc.PipelineName)
		if pipeline == "" {
			return payload, faults.Wrap(faults.ErrConfiguration, "dataset", "describe", "pipeline name is required for derivatives dataset type", nil)
		}
		payload.Name = fmt.Sprintf("%s Derivatives - %s", GeneratorName, pipeline)
		payload.DatasetType = string(layout.Derivatives)
		payload.PipelineDescription = &toolInfo{Name: pipeline, Version: GeneratorVersion}
	case layout.Raw, "":
		payload.Name = strings.TrimSpace(desc.Name)
		if payload.Name == "" {
			payload.Name = defaultRawName
		}
		payload.DatasetType = string(layout.Raw)
		payload.Authors = desc.Authors
	default:
		return payload, faults.Wrap(faults.ErrConfiguration, "dataset", "describe", fmt.Sprintf("unsupported dataset type %q", desc.DatasetType), nil)
	}
	return payload, nil
}
