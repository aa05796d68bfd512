package layout

import (
	"fmt"
	"path/filepath"
	"strings"

	"bidslite/internal/faults"
	"bidslite/internal/identifier"
	"bidslite/internal/modality"
)

// DatasetType selects the destination tree.
type DatasetType string

const (
	Raw         DatasetType = "raw"
	Derivatives DatasetType = "derivatives"
)

// ParseDatasetType validates a dataset type value.
func ParseDatasetType(raw string) (DatasetType, error) {
	switch DatasetType(strings.ToLower(strings.TrimSpace(raw))) {
	case Raw, "":
		return Raw, nil
	case Derivatives:
		return Derivatives, nil
	default:
		return "", faults.Wrap(faults.ErrConfiguration, "layout", "dataset type", fmt.Sprintf("unsupported dataset type %q (want raw or derivatives)", raw), nil)
	}
}

// Dirs names the destination subfolders.
type Dirs struct {
	Anat        string
	Func        string
	Custom      string
	Derivatives string
}

// DefaultDirs returns the BIDS folder names.
func DefaultDirs() Dirs {
	return Dirs{Anat: "anat", Func: "func", Custom: "custom", Derivatives: "derivatives"}
}

// For returns the datatype folder for a modality.
func (d Dirs) For(tag modality.Tag) string {
	switch tag {
	case modality.Bold:
		return d.Func
	case modality.Lesion, modality.Connectivity:
		return d.Custom
	default:
		return d.Anat
	}
}

// Target identifies one destination file.
type Target struct {
	Participant  string
	Session      string
	Modality     modality.Tag
	DatasetType  DatasetType
	PipelineName string
	// Extension is appended verbatim, for example ".nii.gz".
	Extension string
}

// Builder turns targets into paths under Root.
type Builder struct {
	Root string
	Dirs Dirs
}

// Build returns the destination path for t.
func (b Builder) Build(t Target) (string, error) {
	if t.Participant == "" {
		return "", faults.Wrap(faults.ErrValidation, "layout", "build path", "participant is required", nil)
	}
	dirs := b.Dirs
	if dirs == (Dirs{}) {
		dirs = DefaultDirs()
	}
	base := b.Root
	session := SessionLabel(t.Session)
	switch t.DatasetType {
	case Derivatives:
		pipeline := strings.TrimSpace(t.PipelineName)
		if pipeline == "" {
			return "", faults.Wrap(faults.ErrConfiguration, "layout", "build path", "pipeline name is required for derivatives dataset type", nil)
		}
		base = filepath.Join(base, dirs.Derivatives, pipeline)
	case Raw, "":
		if session == "" {
			return "", faults.Wrap(faults.ErrValidation, "layout", "build path", "raw datasets require a session", nil)
		}
	default:
		return "", faults.Wrap(faults.ErrConfiguration, "layout", "build path", fmt.Sprintf("unsupported dataset type %q", t.DatasetType), nil)
	}

	subject := "sub-" + t.Participant
	segments := []string{base, subject}
	name := subject
	if session != "" {
		segments = append(segments, "ses-"+session)
		name += "_ses-" + session
	}
	segments = append(segments, dirs.For(t.Modality))
	name += "_" + t.Modality.Suffix() + t.Extension
	segments = append(segments, name)
	return filepath.Join(segments...), nil
}

// DatasetRoot returns the folder holding dataset_description.json for the
// given dataset type: Root itself for raw datasets, the pipeline folder under
// the derivatives directory otherwise.
func (b Builder) DatasetRoot(t DatasetType, pipeline string) string {
	if t != Derivatives {
		return b.Root
	}
	dirs := b.Dirs
	if dirs == (Dirs{}) {
		dirs = DefaultDirs()
	}
	return filepath.Join(b.Root, dirs.Derivatives, strings.TrimSpace(pipeline))
}

// SessionLabel renders a normalized session identifier for paths. Numeric
// sessions use two digits, alphanumeric sessions are kept verbatim.
func SessionLabel(session string) string {
	if !identifier.IsNumeric(session) {
		return session
	}
	trimmed := strings.TrimLeft(session, "0")
	if trimmed == "" {
		trimmed = "0"
	}
	return identifier.PadNumeric(trimmed, 2)
}

// Extension returns the image extension of name, keeping compound suffixes
// such as ".nii.gz" together.
func Extension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".nii.gz", ".tar.gz"} {
		if strings.HasSuffix(lower, ext) {
			return name[len(name)-len(ext):]
		}
	}
	return filepath.Ext(name)
}
