package identifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bidslite/internal/identifier"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Smith-2023_A", "smithu2023ua"},
		{"Ab 1", "abu1"},
		{"S  02", "suu02"},
		{"patient_001", "patientu001"},
		{"Ross1981-case2", "ross1981ucase2"},
		{"  Ahmed  ", "ahmed"},
		{"1", "001"},
		{"01", "001"},
		{"001", "001"},
		{"12", "012"},
		{"1234", "1234"},
		{"", ""},
		{"   ", ""},
		{"Müller", "muuller"},
		{"a/b.c", "aubuc"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, identifier.Normalize(tc.in), "Normalize(%q)", tc.in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Smith-2023_A", "1", "", "sub-001_ses-01_T1w.nii.gz", "ÅNGSTRÖM 7", "x__y", "007", "u"}
	for _, in := range inputs {
		once := identifier.Normalize(in)
		assert.Equal(t, once, identifier.Normalize(once), "idempotence for %q", in)
	}
}

func TestPaddingVariants(t *testing.T) {
	assert.Equal(t, []string{"001", "01", "1"}, identifier.PaddingVariants("001"))
	assert.Equal(t, []string{"012", "12"}, identifier.PaddingVariants("012"))
	assert.Equal(t, []string{"0001", "001", "01", "1"}, identifier.PaddingVariants("0001"))
	assert.Equal(t, []string{"1234"}, identifier.PaddingVariants("1234"))
	assert.Equal(t, []string{"000", "00", "0"}, identifier.PaddingVariants("000"))
	assert.Nil(t, identifier.PaddingVariants("abc"))
}

func TestHelpers(t *testing.T) {
	assert.True(t, identifier.IsNumeric("007"))
	assert.False(t, identifier.IsNumeric(""))
	assert.False(t, identifier.IsNumeric("0a"))
	assert.Equal(t, "smith2023a", identifier.StripMarkers("smithu2023ua"))
	assert.True(t, identifier.HasDigit("case2"))
	assert.False(t, identifier.HasDigit("ahmed"))
}
