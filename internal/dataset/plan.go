package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"bidslite/internal/faults"
	"bidslite/internal/planner"
)

// WritePlan exports ops to path. Files ending in .yaml or .yml are written as
// YAML, anything else as indented JSON.
func WritePlan(path string, ops []planner.Operation) error {
	if ops == nil {
		ops = []planner.Operation{}
	}
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(ops)
	default:
		data, err = json.MarshalIndent(ops, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return faults.Wrap(faults.ErrIO, "dataset", "export plan", "encode plan", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return faults.Wrap(faults.ErrIO, "dataset", "export plan", "create directory", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return faults.Wrap(faults.ErrIO, "dataset", "export plan", "write "+path, err)
	}
	return nil
}

// ReadPlan loads a plan previously written by WritePlan.
func ReadPlan(path string) ([]planner.Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrNotFound, "dataset", "read plan", path, err)
	}
	var ops []planner.Operation
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &ops)
	default:
		err = json.Unmarshal(data, &ops)
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrValidation, "dataset", "read plan", "decode "+path, err)
	}
	return ops, nil
}
