package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHistory_IsEmptyAndValid(t *testing.T) {
	h := NewHistory()
	assert.NotNil(t, h.Files)
	assert.NotNil(t, h.UploadDates)
	assert.Empty(t, h.Files)
	assert.Empty(t, h.UploadDates)
}

func TestIsDateUsed(t *testing.T) {
	h := sampleHistory()

	assert.True(t, h.IsDateUsed("2026-10-18"))
	assert.False(t, h.IsDateUsed("2026-10-19"))
	assert.False(t, h.IsDateUsed("2026-10-1"), "exact match only")
	assert.False(t, NewHistory().IsDateUsed("2026-10-18"))
}

func TestHasDigest_MatchesValuesNotKeys(t *testing.T) {
	h := sampleHistory()

	assert.True(t, h.HasDigest("aaaa"))
	assert.False(t, h.HasDigest("/corpus/a.py"))
	assert.False(t, h.HasDigest("cccc"))
}

func TestRecordPublication_IsPure(t *testing.T) {
	before := sampleHistory()

	after := before.RecordPublication("/corpus/c.py", "cccc", "2026-10-19")

	assert.Equal(t, sampleHistory(), before, "receiver must not change")
	assert.Equal(t, "cccc", after.Files["/corpus/c.py"])
	assert.Len(t, after.Files, 3)
	assert.Equal(t, []string{"2026-10-17", "2026-10-18", "2026-10-19"}, after.UploadDates)
}

func TestRecordPublication_OnZeroValue(t *testing.T) {
	var h History

	after := h.RecordPublication("a.py", "aaaa", "2026-10-19")

	assert.Equal(t, map[string]string{"a.py": "aaaa"}, after.Files)
	assert.Equal(t, []string{"2026-10-19"}, after.UploadDates)
}

func TestRecordPublication_AppendDoesNotAliasReceiver(t *testing.T) {
	base := History{Files: map[string]string{}, UploadDates: make([]string, 1, 8)}
	base.UploadDates[0] = "2026-10-01"

	a := base.RecordPublication("a", "1", "2026-10-02")
	b := base.RecordPublication("b", "2", "2026-10-03")

	assert.Equal(t, []string{"2026-10-01", "2026-10-02"}, a.UploadDates)
	assert.Equal(t, []string{"2026-10-01", "2026-10-03"}, b.UploadDates)
}

func TestEntries_SortedByID(t *testing.T) {
	entries := sampleHistory().Entries()

	assert.Equal(t, []Entry{
		{ID: "/corpus/a.py", Digest: "aaaa"},
		{ID: "/corpus/b.py", Digest: "bbbb"},
	}, entries)
}

func TestLastDate(t *testing.T) {
	date, ok := sampleHistory().LastDate()
	assert.True(t, ok)
	assert.Equal(t, "2026-10-18", date)

	_, ok = NewHistory().LastDate()
	assert.False(t, ok)
}

func TestClone_IsDeep(t *testing.T) {
	h := sampleHistory()
	c := h.Clone()

	c.Files["/corpus/a.py"] = "changed"
	c.UploadDates[0] = "changed"

	assert.Equal(t, "aaaa", h.Files["/corpus/a.py"])
	assert.Equal(t, "2026-10-17", h.UploadDates[0])
}
