package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/codedrop/internal/engine"
	"github.com/roach88/codedrop/internal/store"
	"github.com/roach88/codedrop/internal/testutil"
)

func TestPlan_PreviewsWithoutSideEffects(t *testing.T) {
	h := store.NewHistory().RecordPublication("a.py", digestOf("# a\n"), "2026-03-13")
	f := newFixture(h,
		testutil.Candidate("a.py", "# a\n"),
		testutil.Candidate("dir/My Tool.py", "api_key = \"k-123\"\nrun()\n"),
		testutil.Candidate("c.py", "# c\n"),
	)

	plan, err := f.engine(t, engine.Config{}).Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, today, plan.Date)
	assert.False(t, plan.PublishedToday)
	assert.Equal(t, "2026-03-13", plan.LastDate)
	assert.Equal(t, 1, plan.HistoryEntries)
	assert.Equal(t, 3, plan.Candidates)
	assert.Equal(t, 2, plan.Unpublished)
	require.NotNil(t, plan.Next)
	assert.Equal(t, "dir/My Tool.py", plan.Next.ID)
	assert.Equal(t, "my_tool", plan.Container)
	assert.True(t, plan.WouldRedact)
	assert.True(t, plan.WouldEnrich)

	assert.Equal(t, 0, f.store.Saves)
	assert.Equal(t, 0, f.annotator.Calls())
	assert.Equal(t, 0, f.describer.Calls())
	assert.Equal(t, 0, f.publisher.Calls())
}

func TestPlan_IdenticalCopiesCountOnce(t *testing.T) {
	f := newFixture(store.NewHistory(),
		testutil.Candidate("a.py", "# same\n"),
		testutil.Candidate("copy/a.py", "# same\n"),
		testutil.Candidate("b.py", "# b\n"),
	)

	plan, err := f.engine(t, engine.Config{}).Plan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, plan.Candidates)
	assert.Equal(t, 2, plan.Unpublished)
	assert.Equal(t, "a.py", plan.Next.ID)
}

func TestPlan_PublishedToday(t *testing.T) {
	h := store.NewHistory().RecordPublication("a.py", digestOf("x"), today)
	f := newFixture(h)

	plan, err := f.engine(t, engine.Config{}).Plan(context.Background())
	require.NoError(t, err)
	assert.True(t, plan.PublishedToday)
	assert.Nil(t, plan.Next)
}

func TestPlan_ListErrorIsReported(t *testing.T) {
	f := newFixture(store.NewHistory())
	f.corpus.Err = errors.New("corpus: stat /missing: no such file or directory")

	plan, err := f.engine(t, engine.Config{}).Plan(context.Background())
	require.NoError(t, err)
	assert.Contains(t, plan.ListError, "no such file")
}

func TestPlan_LoadError(t *testing.T) {
	f := newFixture(store.NewHistory())
	f.store.LoadErr = errors.New("corrupt")

	_, err := f.engine(t, engine.Config{}).Plan(context.Background())
	require.Error(t, err)
}
