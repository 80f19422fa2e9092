package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "Smallest valid scenario"
start: "2026-10-19"
corpus:
  a.py: "# a\n"
days:
  - expect: published
    file: a.py
`

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0o644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "minimal", scenario.Name)
	assert.Equal(t, "2026-10-19", scenario.Start)
	assert.Equal(t, "# a\n", scenario.Corpus["a.py"])
	require.Len(t, scenario.Days, 1)
	assert.Equal(t, "published", scenario.Days[0].Expect)
	assert.Equal(t, "a.py", scenario.Days[0].File)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nstart: \"2026-10-19\"\ndays: [{expect: published}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nstart: \"2026-10-19\"\ndays: [{expect: published}]\n",
			wantErr: "description is required",
		},
		{
			name:    "bad start",
			yaml:    "name: n\ndescription: d\nstart: \"19/10/2026\"\ndays: [{expect: published}]\n",
			wantErr: "start must be a YYYY-MM-DD date",
		},
		{
			name:    "no days",
			yaml:    "name: n\ndescription: d\nstart: \"2026-10-19\"\n",
			wantErr: "days list is required",
		},
		{
			name:    "unknown store",
			yaml:    "name: n\ndescription: d\nstart: \"2026-10-19\"\nstore: redis\ndays: [{expect: published}]\n",
			wantErr: "unknown store",
		},
		{
			name:    "unknown outcome",
			yaml:    "name: n\ndescription: d\nstart: \"2026-10-19\"\ndays: [{expect: uploaded}]\n",
			wantErr: "unknown expected outcome",
		},
		{
			name:    "failed_at without failure",
			yaml:    "name: n\ndescription: d\nstart: \"2026-10-19\"\ndays: [{expect: published, failed_at: describing}]\n",
			wantErr: "failed_at requires expect: failed",
		},
		{
			name:    "negative advance",
			yaml:    "name: n\ndescription: d\nstart: \"2026-10-19\"\ndays: [{expect: published, advance: -1}]\n",
			wantErr: "advance must be non-negative",
		},
		{
			name:    "corpus escapes",
			yaml:    "name: n\ndescription: d\nstart: \"2026-10-19\"\ncorpus: {\"../x.py\": \"\"}\ndays: [{expect: published}]\n",
			wantErr: "invalid corpus path",
		},
		{
			name:    "absolute write",
			yaml:    "name: n\ndescription: d\nstart: \"2026-10-19\"\ndays: [{expect: published, write: {\"/etc/x.py\": \"\"}}]\n",
			wantErr: "invalid corpus path",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nstart: \"2026-10-19\"\ndays: [{expect: published}]\nassertions: [{type: trace_order}]\n",
			wantErr: "unknown assertion type",
		},
		{
			name:    "artifact_contains needs text",
			yaml:    "name: n\ndescription: d\nstart: \"2026-10-19\"\ndays: [{expect: published}]\nassertions: [{type: artifact_contains, container: a, artifact: a.py}]\n",
			wantErr: "container, artifact and text are required",
		},
		{
			name:    "history_contains needs file",
			yaml:    "name: n\ndescription: d\nstart: \"2026-10-19\"\ndays: [{expect: published}]\nassertions: [{type: history_contains}]\n",
			wantErr: "file is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_Testdata(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			require.NoError(t, err)
		})
	}
}
