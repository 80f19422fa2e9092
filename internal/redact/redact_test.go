package redact

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_PasswordIsRedacted(t *testing.T) {
	result := Default().Scan(`password="abc123"`)

	assert.True(t, result.Found)
	assert.Contains(t, result.Redacted, `password="[REDACTED]"`)
	assert.NotContains(t, result.Redacted, "abc123")
	assert.Equal(t, `password="abc123"`, result.Original)
}

func TestScan_DefaultLabels(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"password spaced", `password = 'x1'`, `password="[REDACTED]"`},
		{"api key underscore", `api_key="k"`, `api_key="[REDACTED]"`},
		{"api key hyphen", `api-key = "k"`, `api_key="[REDACTED]"`},
		{"token", `token='t'`, `token="[REDACTED]"`},
		{"secret", `secret="s"`, `secret="[REDACTED]"`},
		{"credentials", `credentials = "u:p"`, `credentials="[REDACTED]"`},
		{"case insensitive", `PASSWORD="Hunter2"`, `password="[REDACTED]"`},
		{"suffix of identifier", `session_token = "abc"`, `session_token="[REDACTED]"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Default().Scan(tt.input)
			assert.True(t, result.Found)
			assert.Equal(t, tt.want, result.Redacted)
		})
	}
}

func TestScan_NoMatch(t *testing.T) {
	inputs := []string{
		"",
		"x = 1",
		`password = get_password()`,    // not a quoted literal
		`password = "a" + "b"`,         // only the first literal is seen
		`token == "abc"`,               // comparison
		`password = os.environ["PASS"]`, // indirection
	}

	for _, input := range inputs[:3] {
		result := Default().Scan(input)
		assert.False(t, result.Found, "input %q", input)
		assert.Equal(t, input, result.Redacted)
	}

	// Concatenation: the first literal is redacted, the rest is untouched.
	result := Default().Scan(inputs[3])
	assert.True(t, result.Found)
	assert.Equal(t, `password="[REDACTED]" + "b"`, result.Redacted)

	// "==" has no quoted literal directly after "=".
	assert.False(t, Default().Scan(inputs[4]).Found)
	assert.False(t, Default().Scan(inputs[5]).Found)
}

func TestScan_EveryMatchIsRedacted(t *testing.T) {
	input := "password = 'one'\nx = 2\npassword = \"two\"\n"

	result := Default().Scan(input)

	require.True(t, result.Found)
	assert.Equal(t, "password=\"[REDACTED]\"\nx = 2\npassword=\"[REDACTED]\"\n", result.Redacted)
	require.Len(t, result.Findings, 2)
	assert.Equal(t, Finding{Label: "password", Line: 1}, result.Findings[0])
	assert.Equal(t, Finding{Label: "password", Line: 3}, result.Findings[1])
}

func TestScan_Idempotent(t *testing.T) {
	input := `
password = "abc123"
api_key = 'xyz'
auth_token="t"
client_secret = "s"
credentials = "c"
`
	first := Default().Scan(input)
	require.True(t, first.Found)

	second := Default().Scan(first.Redacted)
	assert.False(t, second.Found, "redacted text must not re-trigger any rule")
	assert.Equal(t, first.Redacted, second.Redacted)
	assert.Empty(t, second.Findings)
}

func TestScan_PlaceholderValueIsNotAFinding(t *testing.T) {
	result := Default().Scan(`token = "[REDACTED]"`)
	assert.False(t, result.Found)
	assert.Equal(t, `token = "[REDACTED]"`, result.Redacted)
}

func TestScan_FindingsInTableOrder(t *testing.T) {
	input := "secret='a'\npassword='b'\n"

	result := Default().Scan(input)

	require.Len(t, result.Findings, 2)
	assert.Equal(t, "password", result.Findings[0].Label, "password rule runs before secret rule")
	assert.Equal(t, "secret", result.Findings[1].Label)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Rule{Label: "", Keyword: "x"})
	assert.Error(t, err)

	_, err = New(Rule{Label: "x", Keyword: " "})
	assert.Error(t, err)

	_, err = New(Rule{Label: "bad", Keyword: "("})
	assert.Error(t, err)
}

func TestWithDefaults_AppendsRules(t *testing.T) {
	s, err := WithDefaults(Rule{Label: "private_key", Keyword: "private[_-]key"})
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"password", "api_key", "token", "secret", "credentials", "private_key"},
		s.Labels())

	result := s.Scan(`PRIVATE_KEY = "-----BEGIN"`)
	assert.True(t, result.Found)
	assert.Equal(t, `private_key="[REDACTED]"`, result.Redacted)
}

func TestScan_Golden(t *testing.T) {
	input := `import requests

password = "hunter2"
API-KEY='abc-123'
session_token="t0k3n"
client_secret = 'shh'
credentials="user:pass"
safe = "value"
`
	result := Default().Scan(input)
	require.True(t, result.Found)
	require.Len(t, result.Findings, 5)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "redacted_sample", []byte(result.Redacted))
}
