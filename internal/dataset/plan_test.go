package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidslite/internal/dataset"
	"bidslite/internal/faults"
	"bidslite/internal/planner"
)

func samplePlan() []planner.Operation {
	return []planner.Operation{
		{Source: "/in/ross_001.nii.gz", Destination: "/out/sub-001/ses-01/anat/sub-001_ses-01_t1w.nii.gz", Action: planner.ActionCopy},
		{Source: "/in/ross_002.nii", Destination: "/out/sub-002/ses-01/anat/sub-002_ses-01_t1w.nii", Action: planner.ActionCopy},
	}
}

func TestWritePlanJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans", "plan.json")
	require.NoError(t, dataset.WritePlan(path, samplePlan()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {\n    \"src\": \"/in/ross_001.nii.gz\""))

	back, err := dataset.ReadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, samplePlan(), back)
}

func TestWritePlanYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, dataset.WritePlan(path, samplePlan()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- src: /in/ross_001.nii.gz")
	assert.Contains(t, string(data), "action: copy")

	back, err := dataset.ReadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, samplePlan(), back)
}

func TestWritePlanEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, dataset.WritePlan(path, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestReadPlanErrors(t *testing.T) {
	_, err := dataset.ReadPlan(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, faults.ErrNotFound))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = dataset.ReadPlan(bad)
	assert.True(t, errors.Is(err, faults.ErrValidation))
}
