package main

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
	"bidslite/internal/testsupport"
)

func standardMeta(t *testing.T, env *cliTestEnv) string {
	t.Helper()
	return testsupport.WriteCSV(t, filepath.Join(env.baseDir, "metadata.csv"),
		[]string{"participant_id", "session_id", "age", "sex"},
		[]string{"001", "01", "30", "F"},
	)
}

func TestHelp(t *testing.T) {
	out, _, err := runCLI(t, []string{"--help"}, "")
	require.NoError(t, err)
	for _, name := range []string{"validate", "plan", "apply", "history", "config"} {
		assert.Contains(t, out, name)
	}
}

func TestValidateCommandSuccess(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.Touch(t, env.inDir, "patient_001/T1w.nii.gz")
	meta := standardMeta(t, env)

	out, _, err := runCLI(t, []string{"validate", "--in", env.inDir, "--meta", meta}, env.configPath)
	require.NoError(t, err)
	requireContains(t, out, "Validation passed. No blocking issues found.")
}

func TestValidateCommandMissingColumn(t *testing.T) {
	env := setupCLITestEnv(t)
	meta := testsupport.WriteCSV(t, filepath.Join(env.baseDir, "metadata.csv"),
		[]string{"session_id", "age"}, []string{"01", "30"})

	out, _, err := runCLI(t, []string{"validate", "--in", env.inDir, "--meta", meta}, env.configPath)
	var exit exitError
	require.True(t, errors.As(err, &exit), "expected exit error, got %v", err)
	assert.Equal(t, 1, exit.code)
	requireContains(t, out, "Found 1 issue(s):")
	requireContains(t, out, "- [ERROR] MISSING_COL: Missing required column: participant_id")
}

func TestValidateCommandReportsMissingFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.Touch(t, env.inDir, "patient_001/T1w.nii.gz")
	meta := testsupport.WriteCSV(t, filepath.Join(env.baseDir, "metadata.csv"),
		[]string{"participant_id"}, []string{"001"}, []string{"002"})

	out, _, err := runCLI(t, []string{"validate", "--in", env.inDir, "--meta", meta, "--json"}, env.configPath)
	require.Error(t, err)
	requireContains(t, out, `"code": "FILE_MISSING"`)
	requireContains(t, out, `"msg": "No file found matching participant=002"`)
}

func TestValidateCommandRequiresFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"validate"}, env.configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestPlanCommandWritesJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.Touch(t, env.inDir, "patient_001/T1w.nii.gz")
	meta := standardMeta(t, env)
	planPath := filepath.Join(env.baseDir, "plan.json")

	out, _, err := runCLI(t, []string{"plan", "--in", env.inDir, "--meta", meta, "--out", env.outDir, "--json", planPath}, env.configPath)
	require.NoError(t, err)
	requireContains(t, out, "Planned 1 operation(s).")
	requireContains(t, out, "Wrote dry-run plan JSON to: "+planPath)

	ops, err := dataset.ReadPlan(planPath)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, filepath.Join(env.inDir, "patient_001", "T1w.nii.gz"), ops[0].Source)
	assert.Equal(t, filepath.Join(env.outDir, "sub-001", "ses-01", "anat", "sub-001_ses-01_t1w.nii.gz"), ops[0].Destination)
	assert.Equal(t, "copy", ops[0].Action)
	assert.NoDirExists(t, env.outDir, "plan must not write the output tree")
}

func TestPlanCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.Touch(t, env.inDir, "patient_001/T1w.nii.gz")
	meta := standardMeta(t, env)

	out, _, err := runCLI(t, []string{"plan", "--in", env.inDir, "--meta", meta, "--out", env.outDir, "--table"}, env.configPath)
	require.NoError(t, err)
	requireContains(t, strings.ToLower(out), "destination")
	requireContains(t, out, "sub-001_ses-01_t1w.nii.gz")
}

func TestPlanCommandDerivativesRequiresPipeline(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.Touch(t, env.inDir, "file.nii.gz")
	meta := testsupport.WriteCSV(t, filepath.Join(env.baseDir, "metadata.csv"), []string{"participant_id"}, []string{"001"})

	_, _, err := runCLI(t, []string{"plan", "--in", env.inDir, "--meta", meta, "--out", env.outDir, "--dataset-type", "derivatives"}, env.configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline-name is required")
}

func TestPlanCommandDerivativesWithPipeline(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.Touch(t, env.inDir, "patient_001/T1w.nii.gz")
	meta := testsupport.WriteCSV(t, filepath.Join(env.baseDir, "metadata.csv"), []string{"participant_id"}, []string{"001"})
	planPath := filepath.Join(env.baseDir, "plan.yaml")

	out, _, err := runCLI(t, []string{
		"plan", "--in", env.inDir, "--meta", meta, "--out", env.outDir,
		"--dataset-type", "derivatives", "--pipeline-name", "test_pipeline", "--json", planPath,
	}, env.configPath)
	require.NoError(t, err)
	requireContains(t, out, "Planned 1 operation(s).")

	ops, err := dataset.ReadPlan(planPath)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, filepath.Join(env.outDir, "derivatives", "test_pipeline", "sub-001", "anat", "sub-001_t1w.nii.gz"), ops[0].Destination)
}

func TestPlanCommandBlocksOnErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	meta := testsupport.WriteCSV(t, filepath.Join(env.baseDir, "metadata.csv"), []string{"participant_id"}, []string{"bad id"})

	out, _, err := runCLI(t, []string{"plan", "--in", env.inDir, "--meta", meta, "--out", env.outDir}, env.configPath)
	require.Error(t, err)
	requireContains(t, out, "ERROR-level issues")
	requireContains(t, out, "ILLEGAL_CHAR")
}

func TestApplyCommandSuccess(t *testing.T) {
	env := setupCLITestEnv(t)
	src := testsupport.Touch(t, env.inDir, "patient_001/T1w.nii.gz")[0]
	meta := standardMeta(t, env)

	out, _, err := runCLI(t, []string{"apply", "--in", env.inDir, "--meta", meta, "--out", env.outDir}, env.configPath)
	require.NoError(t, err)
	requireContains(t, out, "Apply done: 1 ok, 0 failed")
	requireContains(t, out, "BIDS root: "+env.outDir)

	requireExists(t, filepath.Join(env.outDir, "dataset_description.json"))
	requireExists(t, filepath.Join(env.outDir, "participants.tsv"))
	requireExists(t, filepath.Join(env.outDir, "README.md"))
	requireExists(t, filepath.Join(env.outDir, "logs", "report.md"))
	requireExists(t, filepath.Join(env.outDir, "sub-001", "ses-01", "anat", "sub-001_ses-01_t1w.nii.gz"))
	requireExists(t, src)
	assert.NoFileExists(t, filepath.Join(env.outDir, dataset.LockFileName))

	participants, err := os.ReadFile(filepath.Join(env.outDir, "participants.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "participant_id\tsession_id\tage\tsex\nsub-001\t001\t30\tF\n", string(participants))

	runID := lineValue(out, "Run ID:")
	require.NotEmpty(t, runID)
	report, err := os.ReadFile(filepath.Join(env.outDir, "logs", "report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(report), runID)

	history, _, err := runCLI(t, []string{"history"}, env.configPath)
	require.NoError(t, err)
	requireContains(t, history, runID[:8])
	requireContains(t, history, "completed")

	show, _, err := runCLI(t, []string{"history", "show", runID[:8]}, env.configPath)
	require.NoError(t, err)
	requireContains(t, show, runID)
	requireContains(t, show, "1 planned, 1 ok, 0 failed")
	requireContains(t, show, "sub-001_ses-01_t1w.nii.gz")
}

func TestApplyCommandWithMove(t *testing.T) {
	env := setupCLITestEnv(t)
	src := testsupport.Touch(t, env.inDir, "patient_001/T1w.nii.gz")[0]
	meta := standardMeta(t, env)

	out, _, err := runCLI(t, []string{"apply", "--in", env.inDir, "--meta", meta, "--out", env.outDir, "--move"}, env.configPath)
	require.NoError(t, err)
	requireContains(t, out, "Apply done: 1 ok, 0 failed")
	assert.NoFileExists(t, src)
	requireExists(t, filepath.Join(env.outDir, "sub-001", "ses-01", "anat", "sub-001_ses-01_t1w.nii.gz"))
}

func TestApplyCommandDerivativesRequiresPipeline(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.Touch(t, env.inDir, "file.nii.gz")
	meta := testsupport.WriteCSV(t, filepath.Join(env.baseDir, "metadata.csv"), []string{"participant_id"}, []string{"001"})

	_, _, err := runCLI(t, []string{"apply", "--in", env.inDir, "--meta", meta, "--out", env.outDir, "--dataset-type", "derivatives"}, env.configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline-name is required")
}

func TestApplyCommandDerivatives(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.Touch(t, env.inDir, "patient_001/T1w.nii.gz")
	meta := testsupport.WriteCSV(t, filepath.Join(env.baseDir, "metadata.csv"), []string{"participant_id"}, []string{"001"})
	fig := testsupport.Touch(t, env.baseDir, "figures/circuit.png")[0]

	out, _, err := runCLI(t, []string{
		"apply", "--in", env.inDir, "--meta", meta, "--out", env.outDir,
		"--dataset-type", "derivatives", "--pipeline-name", "seg", "--publication", fig,
	}, env.configPath)
	require.NoError(t, err)
	root := filepath.Join(env.outDir, "derivatives", "seg")
	requireContains(t, out, "BIDS root: "+root)
	requireContains(t, out, "Copied 1 publication file(s)")
	requireExists(t, filepath.Join(root, "dataset_description.json"))
	requireExists(t, filepath.Join(root, "sub-001", "anat", "sub-001_t1w.nii.gz"))
	requireExists(t, filepath.Join(env.outDir, "derivatives", "publications", "seg", "circuit.png"))
}

func TestApplyCommandPublicationRequiresDerivatives(t *testing.T) {
	env := setupCLITestEnv(t)
	meta := standardMeta(t, env)
	_, _, err := runCLI(t, []string{"apply", "--in", env.inDir, "--meta", meta, "--out", env.outDir, "--publication", "x.png"}, env.configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--publication requires")
}

func TestApplyCommandWithPhenotypeFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.Touch(t, env.inDir, "patient_001/T1w.nii.gz")
	meta := standardMeta(t, env)
	clinical := filepath.Join(env.baseDir, "clinical_data.csv")
	require.NoError(t, os.WriteFile(clinical, []byte("col1,col2\nval1,val2"), 0o644))

	out, _, err := runCLI(t, []string{"apply", "--in", env.inDir, "--meta", meta, "--out", env.outDir, "--phenotype", clinical}, env.configPath)
	require.NoError(t, err)
	requireContains(t, out, "phenotype file(s)")
	requireExists(t, filepath.Join(env.outDir, "phenotype", "clinical_data.csv"))
}

func TestApplyCommandValidationErrorExits(t *testing.T) {
	env := setupCLITestEnv(t)
	meta := testsupport.WriteCSV(t, filepath.Join(env.baseDir, "metadata.csv"), []string{"session_id", "age"}, []string{"01", "30"})

	out, _, err := runCLI(t, []string{"apply", "--in", env.inDir, "--meta", meta, "--out", env.outDir}, env.configPath)
	require.Error(t, err)
	requireContains(t, out, "ERROR-level issues")
	assert.NoDirExists(t, env.outDir)
}

func TestApplyCommandRefusesLockedOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.Touch(t, env.inDir, "patient_001/T1w.nii.gz")
	meta := standardMeta(t, env)

	lock, err := dataset.AcquireLock(env.outDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lock.Release() })

	_, _, err = runCLI(t, []string{"apply", "--in", env.inDir, "--meta", meta, "--out", env.outDir}, env.configPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, faults.ErrLocked), "unexpected error: %v", err)
}

func TestApplyCommandMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)
	meta := standardMeta(t, env)
	missing := filepath.Join(env.baseDir, "nope")

	out, _, err := runCLI(t, []string{"apply", "--in", missing, "--meta", meta, "--out", env.outDir}, env.configPath)
	require.Error(t, err)
	requireContains(t, out, "Preflight failed: Input directory")
}

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	require.NoError(t, err)
	requireContains(t, out, "No runs recorded.")

	_, _, err = runCLI(t, []string{"history", "show", "missing"}, env.configPath)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not found"))
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	require.NoError(t, err)
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	require.NoError(t, err)
	requireContains(t, out, "Wrote sample configuration")
	requireExists(t, target)

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "")
	require.NoError(t, err)

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	require.NoError(t, err)
	requireContains(t, out, "Config path: "+target)
}

func TestInvalidLogFormatFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"--log-format", "xml", "history"}, env.configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestValidateCommandUsesPlanningRules(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.Touch(t, env.inDir, "sub-001_ses-02_T1w.nii.gz", "sub-002_notes.txt")
	meta := testsupport.WriteCSV(t, filepath.Join(env.baseDir, "metadata.csv"),
		[]string{"participant_id"}, []string{"001"}, []string{"002"})

	out, _, err := runCLI(t, []string{"validate", "--in", env.inDir, "--meta", meta}, env.configPath)
	require.Error(t, err)
	requireContains(t, out, "Found 2 issue(s):")
	requireContains(t, out, "No file found matching participant=001")
	requireContains(t, out, "No file found matching participant=002")
}
