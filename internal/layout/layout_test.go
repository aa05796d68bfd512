package layout_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidslite/internal/faults"
	"bidslite/internal/layout"
	"bidslite/internal/modality"
)

func TestBuildRawIncludesSession(t *testing.T) {
	b := layout.Builder{Root: "/out"}
	got, err := b.Build(layout.Target{Participant: "001", Session: "001", Modality: modality.T1w, DatasetType: layout.Raw, Extension: ".nii.gz"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "sub-001", "ses-01", "anat", "sub-001_ses-01_t1w.nii.gz"), got)
}

func TestBuildRawWithoutSessionFails(t *testing.T) {
	_, err := layout.Builder{Root: "/out"}.Build(layout.Target{Participant: "001", Modality: modality.T1w, DatasetType: layout.Raw})
	require.Error(t, err)
}

func TestBuildDerivativesOmitsMissingSession(t *testing.T) {
	b := layout.Builder{Root: "/out"}
	got, err := b.Build(layout.Target{Participant: "ahmed", Modality: modality.Lesion, DatasetType: layout.Derivatives, PipelineName: "p", Extension: ".nii.gz"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "derivatives", "p", "sub-ahmed", "custom", "sub-ahmed_lesion.nii.gz"), got)

	got, err = b.Build(layout.Target{Participant: "001", Session: "002", Modality: modality.Bold, DatasetType: layout.Derivatives, PipelineName: "p", Extension: ".nii"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "derivatives", "p", "sub-001", "ses-02", "func", "sub-001_ses-02_bold.nii"), got)
}

func TestBuildDerivativesRequiresPipeline(t *testing.T) {
	_, err := layout.Builder{Root: "/out"}.Build(layout.Target{Participant: "001", DatasetType: layout.Derivatives})
	require.Error(t, err)
	assert.True(t, errors.Is(err, faults.ErrConfiguration))
}

func TestDirsRouting(t *testing.T) {
	d := layout.Dirs{Anat: "a", Func: "f", Custom: "c", Derivatives: "d"}
	assert.Equal(t, "a", d.For(modality.FLAIR))
	assert.Equal(t, "a", d.For(modality.Other))
	assert.Equal(t, "f", d.For(modality.Bold))
	assert.Equal(t, "c", d.For(modality.Connectivity))

	got, err := layout.Builder{Root: "/r", Dirs: d}.Build(layout.Target{Participant: "x", Modality: modality.Other, DatasetType: layout.Derivatives, PipelineName: "p"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/r", "d", "p", "sub-x", "a", "sub-x_other"), got)
}

func TestSessionLabel(t *testing.T) {
	assert.Equal(t, "01", layout.SessionLabel("001"))
	assert.Equal(t, "12", layout.SessionLabel("012"))
	assert.Equal(t, "123", layout.SessionLabel("123"))
	assert.Equal(t, "baseline", layout.SessionLabel("baseline"))
	assert.Equal(t, "", layout.SessionLabel(""))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".nii.gz", layout.Extension("sub-001_T1w.nii.gz"))
	assert.Equal(t, ".NII.GZ", layout.Extension("A.NII.GZ"))
	assert.Equal(t, ".nii", layout.Extension("a.nii"))
}

func TestParseDatasetType(t *testing.T) {
	dt, err := layout.ParseDatasetType("Derivatives")
	require.NoError(t, err)
	assert.Equal(t, layout.Derivatives, dt)
	dt, err = layout.ParseDatasetType("")
	require.NoError(t, err)
	assert.Equal(t, layout.Raw, dt)
	_, err = layout.ParseDatasetType("processed")
	assert.True(t, errors.Is(err, faults.ErrConfiguration))
}

func TestDatasetRoot(t *testing.T) {
	b := layout.Builder{Root: "/out"}
	assert.Equal(t, "/out", b.DatasetRoot(layout.Raw, "ignored"))
	assert.Equal(t, filepath.Join("/out", "derivatives", "seg"), b.DatasetRoot(layout.Derivatives, "seg"))

	custom := layout.Builder{Root: "/out", Dirs: layout.Dirs{Anat: "anat", Func: "func", Custom: "custom", Derivatives: "deriv"}}
	assert.Equal(t, filepath.Join("/out", "deriv", "seg"), custom.DatasetRoot(layout.Derivatives, "seg"))
}
