package modality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bidslite/internal/modality"
)

func TestClassifyPriority(t *testing.T) {
	cases := map[string]modality.Tag{
		"sub-001_T1w.nii.gz":        modality.T1w,
		"patient_MPRAGE.nii":        modality.T1w,
		"sub-001_T2w.nii.gz":        modality.T2w,
		"case_FLAIR.nii":            modality.FLAIR,
		"task-rest_bold.nii.gz":     modality.Bold,
		"sub-001_lesion.nii.gz":     modality.Lesion,
		"subject_connectome.nii":    modality.Connectivity,
		"t1w_lesion_mask.nii.gz":    modality.T1w,
		"flair_lesion.nii.gz":       modality.FLAIR,
		"ross_connectivity_map.nii": modality.Connectivity,
	}
	for name, want := range cases {
		assert.Equal(t, want, modality.Classify(name, "", modality.T1w), name)
	}
}

func TestClassifyFallsBack(t *testing.T) {
	assert.Equal(t, modality.Lesion, modality.Classify("Ahmed.nii.gz", modality.Lesion, modality.T1w))
	assert.Equal(t, modality.T1w, modality.Classify("Ahmed.nii.gz", "", modality.T1w))
	assert.Equal(t, modality.T2w, modality.Classify("Ahmed.nii.gz", "", modality.T2w))
}

func TestParse(t *testing.T) {
	assert.Equal(t, modality.T1w, modality.Parse(" T1w "))
	assert.Equal(t, modality.T2w, modality.Parse("t2"))
	assert.Equal(t, modality.Bold, modality.Parse("func"))
	assert.Equal(t, modality.Other, modality.Parse("dwi"))
	assert.Equal(t, modality.Tag(""), modality.Parse(""))
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "t1w", modality.T1w.Suffix())
	assert.Equal(t, "flair", modality.FLAIR.Suffix())
	assert.Equal(t, "other", modality.Tag("").Suffix())
	assert.True(t, modality.FLAIR.Anatomical())
	assert.False(t, modality.Lesion.Anatomical())
}
