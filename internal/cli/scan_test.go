package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_ReportsFindings(t *testing.T) {
	e := newCLIEnv(t)
	secret := e.writeFile(t, "secret.py", "import os\napi_key = 'abc123'\n")
	clean := e.writeFile(t, "clean.py", "print('hi')\n")

	stdout, _, err := e.execute(t, "scan", secret, clean)
	require.NoError(t, err)
	assert.Contains(t, stdout, "line 2: api_key")
	assert.Contains(t, stdout, "2 file(s) scanned, 1 finding(s)")
	assert.NotContains(t, stdout, "abc123")
}

func TestScan_CorpusByDefault(t *testing.T) {
	e := newCLIEnv(t)
	e.writeFile(t, "a.py", "password = \"x\"\n")
	e.writeFile(t, "sub/b.py", "print('b')\n")
	e.writeFile(t, "notes.txt", "password = \"x\"\n")

	stdout, _, err := e.execute(t, "--format", "json", "scan")
	require.NoError(t, err)

	var resp struct {
		Data []ScanResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data, 2)
	assert.True(t, resp.Data[0].Found)
	assert.False(t, resp.Data[1].Found)
	assert.Empty(t, resp.Data[0].Redacted)
}

func TestScan_FailOnFindings(t *testing.T) {
	e := newCLIEnv(t)
	path := e.writeFile(t, "a.py", "SECRET = \"x\"\n")

	_, stderr, err := e.execute(t, "scan", "--fail-on-findings", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "[E020]")

	clean := e.writeFile(t, "b.py", "print(1)\n")
	_, _, err = e.execute(t, "scan", "--fail-on-findings", clean)
	require.NoError(t, err)
}

func TestScan_Redacted(t *testing.T) {
	e := newCLIEnv(t)
	path := e.writeFile(t, "a.py", "token = \"abc\"\nprint(token)\n")

	stdout, _, err := e.execute(t, "scan", "--redacted", path)
	require.NoError(t, err)
	assert.Equal(t, "token=\"[REDACTED]\"\nprint(token)\n", stdout)
}

func TestScan_RedactedNeedsOneFile(t *testing.T) {
	e := newCLIEnv(t)

	_, _, err := e.execute(t, "scan", "--redacted")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestScan_ExtraRulesFromConfig(t *testing.T) {
	e := newCLIEnv(t)
	path := e.writeFile(t, "a.py", "aws_secret_access_key = \"AKIA\"\n")
	cfg := e.writeConfig(t, `redact:
  extra_rules:
    - label: aws
      keyword: aws_secret_access_key
`)

	stdout, _, err := e.execute(t, "--config", cfg, "scan", "--redacted", path)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "AKIA")
}

func TestScan_MissingFile(t *testing.T) {
	e := newCLIEnv(t)

	stdout, _, err := e.execute(t, "scan", filepath.Join(e.dir, "missing.py"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "[E005]")
}
