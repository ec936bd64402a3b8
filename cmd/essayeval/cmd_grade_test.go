package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const replayMixed = `{"results": {
	"mpnet": {"overall": 7.5, "criteria": {"task_response": 7, "coherence": 8, "lexical": 7, "grammar": 8}},
	"deberta": {"error": "model not loaded"}
}}`

const replayAllScored = `{"results": {
	"longformer": {"overall": 6, "criteria": {"task_response": 6, "coherence": 6, "lexical": 6, "grammar": 6}}
}}`

// gradeFixture moves into a fresh directory holding an essay and a recorded
// scoring response.
func gradeFixture(t *testing.T, replay string) (essayPath, replayPath string) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	essayPath = filepath.Join(dir, "essay.txt")
	require.NoError(t, os.WriteFile(essayPath, []byte("Technology has changed classrooms."), 0o644))
	replayPath = filepath.Join(dir, "replay.json")
	require.NoError(t, os.WriteFile(replayPath, []byte(replay), 0o644))
	return essayPath, replayPath
}

func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestGrade_AllModelsScored(t *testing.T) {
	essay, replay := gradeFixture(t, replayAllScored)

	stdout, _, err := runCLI(t, "", "grade", essay, "--replay", replay, "--topic", "Classrooms")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Longformer")
	assert.Contains(t, stdout, "Consensus Band: 6.0")
}

func TestGrade_FailedModelSetsExitError(t *testing.T) {
	essay, replay := gradeFixture(t, replayMixed)

	stdout, _, err := runCLI(t, "", "grade", "--file", essay, "--replay", replay)

	var failure *ModelFailureError
	require.True(t, errors.As(err, &failure), "got %v", err)
	assert.Equal(t, 1, failure.Failed)
	assert.Equal(t, 2, failure.Total)
	assert.Contains(t, stdout, "model not loaded")
}

func TestGrade_StdinJSON(t *testing.T) {
	_, replay := gradeFixture(t, replayAllScored)

	stdout, _, err := runCLI(t, "An essay read from stdin.", "grade", "-f", "-", "--replay", replay, "-o", "json")
	require.NoError(t, err)

	var resp struct {
		Session struct {
			DocumentText string `json:"document_text"`
			State        string `json:"state"`
		} `json:"session"`
		Views struct {
			Summary struct {
				Succeeded int `json:"succeeded"`
			} `json:"summary"`
		} `json:"views"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "An essay read from stdin.", resp.Session.DocumentText)
	assert.Equal(t, "completed", resp.Session.State)
	assert.Equal(t, 1, resp.Views.Summary.Succeeded)
}

func TestGrade_ExportWritesReports(t *testing.T) {
	essay, replay := gradeFixture(t, replayAllScored)
	outDir := filepath.Join(t.TempDir(), "reports")

	_, stderr, err := runCLI(t, "", "grade", essay, "--replay", replay,
		"--export", "xlsx,csv", "--output-dir", outDir)
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	var exts []string
	for _, e := range entries {
		exts = append(exts, filepath.Ext(e.Name()))
	}
	assert.ElementsMatch(t, []string{".xlsx", ".csv"}, exts)
	assert.Contains(t, stderr, "Saved xlsx report")
	assert.Contains(t, stderr, "Saved csv report")
}

func TestGrade_PDFWithoutSnapshotStillWritesOthers(t *testing.T) {
	essay, replay := gradeFixture(t, replayAllScored)
	outDir := filepath.Join(t.TempDir(), "reports")

	_, _, err := runCLI(t, "", "grade", essay, "--replay", replay,
		"--export", "pdf,csv", "--output-dir", outDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--snapshot")

	entries, readErr := os.ReadDir(outDir)
	require.NoError(t, readErr)
	require.Len(t, entries, 1)
	assert.Equal(t, ".csv", filepath.Ext(entries[0].Name()))
}

func TestGrade_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "empty essay", args: []string{"grade"}, wantErr: "document text is empty"},
		{name: "unknown format", args: []string{"grade", "--export", "docx"}, wantErr: "unknown export format"},
		{name: "no model matches", args: []string{"grade", "--models", "gpt*"}, wantErr: "gpt*"},
		{name: "upload without target", args: []string{"grade", "--export", "csv", "--upload"}, wantErr: "--upload needs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			essay, replay := gradeFixture(t, replayAllScored)
			args := append([]string{}, tt.args...)
			if tt.name != "empty essay" {
				args = append(args, essay)
			}
			args = append(args, "--replay", replay)

			_, _, err := runCLI(t, "", args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var failure *ModelFailureError
			assert.False(t, errors.As(err, &failure))
		})
	}
}

func TestGrade_ArgumentAndFileConflict(t *testing.T) {
	essay, replay := gradeFixture(t, replayAllScored)

	_, _, err := runCLI(t, "", "grade", essay, "--file", essay, "--replay", replay)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both")
}

func TestGrade_WarnsAboutTruncation(t *testing.T) {
	_, replay := gradeFixture(t, replayAllScored)
	long := strings.Repeat("word ", 600)

	_, stderr, err := runCLI(t, long, "grade", "-", "--replay", replay, "--models", "mpnet,longformer")
	require.NoError(t, err)

	assert.Contains(t, stderr, "warning: mpnet reads at most 512 tokens")
	assert.NotContains(t, stderr, "warning: longformer")
}

func TestGrade_SaveUsesConfiguredFormats(t *testing.T) {
	essay, replay := gradeFixture(t, replayAllScored)
	require.NoError(t, os.WriteFile(".essayeval.yaml", []byte("export:\n  output_dir: out\n  formats: [csv]\n  delimiter: \"\\t\"\n"), 0o644))

	_, _, err := runCLI(t, "", "grade", essay, "--replay", replay, "--save")
	require.NoError(t, err)

	entries, err := os.ReadDir("out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".tsv", filepath.Ext(entries[0].Name()))
}
