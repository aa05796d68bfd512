package config

const (
	defaultStateDir           = "~/.local/share/bidslite"
	defaultLogDir             = "~/.local/share/bidslite/logs"
	defaultDatasetType        = "raw"
	defaultDatasetName        = "BIDS Lite Dataset"
	defaultBIDSVersion        = "1.9.0"
	defaultDefaultSession     = "01"
	defaultDefaultModality    = "T1w"
	defaultAnatDir            = "anat"
	defaultFuncDir            = "func"
	defaultCustomDir          = "custom"
	defaultDerivativesDir     = "derivatives"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultHistoryEnabled     = true
	defaultMatchAllModalities = false
	defaultHistoryFile        = "history.db"
)

var (
	defaultExtensions      = []string{".nii.gz", ".nii"}
	defaultExclude         = []string{"**/.*", "**/.*/**"}
	defaultRequiredColumns = []string{"participant_id"}
	defaultAllowedSex      = []string{"M", "F", "Male", "Female", "f", "m", "male", "female", "NA", "na", "N/A", ""}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Dataset: Dataset{
			Type:        defaultDatasetType,
			Name:        defaultDatasetName,
			BIDSVersion: defaultBIDSVersion,
		},
		Layout: Layout{
			DefaultSession:  defaultDefaultSession,
			DefaultModality: defaultDefaultModality,
			AnatDir:         defaultAnatDir,
			FuncDir:         defaultFuncDir,
			CustomDir:       defaultCustomDir,
			DerivativesDir:  defaultDerivativesDir,
		},
		Scan: Scan{
			Extensions: append([]string(nil), defaultExtensions...),
			Exclude:    append([]string(nil), defaultExclude...),
		},
		Matching: Matching{
			MatchAllModalities: defaultMatchAllModalities,
		},
		Validation: Validation{
			RequiredColumns: append([]string(nil), defaultRequiredColumns...),
			AllowedSex:      append([]string(nil), defaultAllowedSex...),
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
