package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainerName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a.py", "a"},
		{"My Script.py", "my_script"},
		{"dir/sub/Tool Box.PY", "tool_box"},
		{"archive.tar.gz", "archive.tar"},
		{"Makefile", "makefile"},
		{".bashrc", ".bashrc"},
		{"Ünïcode Nämé.py", "ünïcode_nämé"},
		{"Café.py", "café"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainerName(tt.in))
		})
	}
}

func TestArtifactMessage(t *testing.T) {
	assert.Equal(t, "Add a.py", ArtifactMessage("a.py"))
}

func TestToday_UsesClockLocation(t *testing.T) {
	assert.Equal(t, "2026-03-14", Today(fixedClock{"2026-03-14T23:30:00-05:00"}))
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	a, b := gen.Generate(), gen.Generate()
	assert.Len(t, a, 36)
	assert.Equal(t, byte('7'), a[14])
	assert.NotEqual(t, a, b)
}

func TestStepError(t *testing.T) {
	inner := assert.AnError
	err := &StepError{State: StateDescribing, Err: inner}
	assert.Equal(t, "describing: "+inner.Error(), err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, StateDescribing, FailedState(err))
	assert.Equal(t, State(""), FailedState(inner))
}

func TestStateTerminal(t *testing.T) {
	assert.True(t, StateDone.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StatePublishing.Terminal())
}
