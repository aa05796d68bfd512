package dataset

import (
	"os"
	"path/filepath"
	"strings"

	"bidslite/internal/faults"
	"bidslite/internal/fileutil"
	"bidslite/internal/layout"
)

const (
	// ReadmeFile is created in the dataset root when absent.
	ReadmeFile       = "README.md"
	phenotypeDir     = "phenotype"
	publicationsDir  = "publications"
	derivativesDir   = "derivatives"
	defaultReadmeMsg = "# BIDS Lite Dataset\n" +
		"This dataset was organized using BIDS Lite.\n" +
		"You can edit this README to add study-specific information.\n"
)

// WritePhenotypeFiles copies supplementary files into the phenotype folder,
// which lives in the dataset root for raw datasets and in the pipeline folder
// for derivatives. Missing inputs are skipped. It returns the number of files
// copied.
func WritePhenotypeFiles(out string, files []string, datasetType layout.DatasetType, pipeline string) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}
	if datasetType == layout.Derivatives && strings.TrimSpace(pipeline) == "" {
		return 0, faults.Wrap(faults.ErrConfiguration, "dataset", "phenotype", "pipeline name is required for derivatives dataset type", nil)
	}
	dir := filepath.Join(Root(out, datasetType, pipeline), phenotypeDir)
	return copyInto(dir, files, "phenotype")
}

// WritePublicationFiles copies key result files into
// derivatives/publications, or derivatives/publications/<pipeline> when a
// pipeline is named. Missing inputs are skipped.
func WritePublicationFiles(out string, files []string, pipeline string) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}
	dir := filepath.Join(out, derivativesDir, publicationsDir)
	if pipeline = strings.TrimSpace(pipeline); pipeline != "" {
		dir = filepath.Join(dir, pipeline)
	}
	return copyInto(dir, files, "publications")
}

func copyInto(dir string, files []string, operation string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, faults.Wrap(faults.ErrIO, "dataset", operation, "create "+dir, err)
	}
	copied := 0
	for _, src := range files {
		if !fileutil.Exists(src) {
			continue
		}
		if err := fileutil.CopyFileVerified(src, filepath.Join(dir, filepath.Base(src))); err != nil {
			return copied, faults.Wrap(faults.ErrIO, "dataset", operation, "copy "+src, err)
		}
		copied++
	}
	return copied, nil
}

// WriteReadme creates README.md in dir unless one exists. templatePath, when
// set, supplies the contents.
func WriteReadme(dir, templatePath string) (bool, error) {
	path := filepath.Join(dir, ReadmeFile)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	text := []byte(defaultReadmeMsg)
	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return false, faults.Wrap(faults.ErrNotFound, "dataset", "readme", "read template "+templatePath, err)
		}
		text = data
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, faults.Wrap(faults.ErrIO, "dataset", "readme", "create dataset root", err)
	}
	if err := os.WriteFile(path, text, 0o644); err != nil {
		return false, faults.Wrap(faults.ErrIO, "dataset", "readme", "write "+ReadmeFile, err)
	}
	return true, nil
}
