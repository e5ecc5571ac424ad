package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bcir/internal/testutil"
)

func TestRuns_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	clock := testutil.StartingAt(10)

	// Recorded out of order on purpose.
	seqs := []int64{clock.Next(), clock.Next(), clock.Next()}
	for _, i := range []int{2, 0, 1} {
		require.NoError(t, s.RecordRun(ctx, createTestRun(t, seqs[i], "demo.yaml")))
	}

	runs, err := s.Runs(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for i, run := range runs {
		assert.Equal(t, seqs[i], run.Seq)
	}
}

func TestRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.Runs(context.Background(), RunFilter{})
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestRuns_RoundTripsFirings(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := createTestRun(t, 1, "demo.yaml",
		firing("unused-instructions", "%x = add int %a, 1"),
		firing("box-unbox", "%u = call java.lang.Integer.intValue()I(%b)"),
		firing("unused-instructions", "%y = mul int %x, 2"),
	)
	require.NoError(t, s.RecordRun(ctx, want))

	got, err := s.Run(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRuns_Filters(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	clock := testutil.NewDeterministicClock()

	a1 := createTestRun(t, clock.Next(), "a.yaml", firing("dead-casts", "%c = cast %o to java.lang.Object"))
	b1 := createTestRun(t, clock.Next(), "b.yaml", firing("dead-stores", "store %v, 1"))
	a2 := createTestRun(t, clock.Next(), "a.yaml")
	for _, run := range []Run{a1, b1, a2} {
		require.NoError(t, s.RecordRun(ctx, run))
	}

	tests := []struct {
		name   string
		filter RunFilter
		want   []string
	}{
		{"all", RunFilter{}, []string{a1.ID, b1.ID, a2.ID}},
		{"source", RunFilter{Source: "a.yaml"}, []string{a1.ID, a2.ID}},
		{"rule", RunFilter{Rule: "dead-stores"}, []string{b1.ID}},
		{"source and rule", RunFilter{Source: "a.yaml", Rule: "dead-stores"}, []string{}},
		{"limit keeps latest", RunFilter{Limit: 2}, []string{b1.ID, a2.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := s.Runs(ctx, tt.filter)
			require.NoError(t, err)
			ids := []string{}
			for _, r := range runs {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRun_UnchangedHasNoFirings(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun(t, 1, "demo.yaml")
	require.NoError(t, s.RecordRun(ctx, run))

	got, err := s.Run(ctx, run.ID)
	require.NoError(t, err)
	assert.False(t, got.Changed)
	assert.Equal(t, []Firing{}, got.Firings)
}

func TestLastSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.RecordRun(ctx, createTestRun(t, 4, "a.yaml")))
	require.NoError(t, s.RecordRun(ctx, createTestRun(t, 9, "a.yaml")))
	seq, err = s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), seq)
}

func TestNewRun_ContentAddressed(t *testing.T) {
	a, err := NewRun(1, "a.yaml", nil, "h1", "h2", nil)
	require.NoError(t, err)
	b, err := NewRun(1, "a.yaml", nil, "h1", "h3", nil)
	require.NoError(t, err)
	c, err := NewRun(2, "a.yaml", nil, "h1", "h2", nil)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID, "after hash is not part of the ID")
	assert.NotEqual(t, a.ID, c.ID)
	assert.True(t, a.Changed)
}
