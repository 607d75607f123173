package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ritual-coach-backend/internal/catalog"
)

func TestSelectEmptyCandidates(t *testing.T) {
	eng := testEngine(t, 1, anyTask("x"))
	_, err := eng.Select(nil, NewUserState())
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestSelectAlwaysReturnsCandidate(t *testing.T) {
	eng := testEngine(t, 2, anyTask("a"), anyTask("b"), anyTask("c"))
	cands := eng.catalog.Tasks()
	s := NewUserState()

	seen := map[string]bool{}
	for i := 0; i < 300; i++ {
		got, err := eng.Select(cands, s)
		require.NoError(t, err)
		seen[got.ID] = true
		assert.Contains(t, []string{"a", "b", "c"}, got.ID)
	}
	// with 300 draws over 3 near-equal weights, all should appear
	assert.Len(t, seen, 3)
}

func TestSelectCoreWeightDoubles(t *testing.T) {
	core := anyTask("core")
	core.IsCore = true
	other := anyTask("other")

	eng := testEngine(t, 3, core, other)
	cands := []catalog.Task{core, other}
	s := NewUserState()

	coreHits := 0
	const trials = 3000
	for i := 0; i < trials; i++ {
		got, err := eng.Select(cands, s)
		require.NoError(t, err)
		if got.ID == "core" {
			coreHits++
		}
	}

	// core carries 2x weight, so its share should sit near 2/3
	share := float64(coreHits) / trials
	assert.InDelta(t, 2.0/3.0, share, 0.04, "core share %.3f", share)
}

func TestSelectDriveDomainBoost(t *testing.T) {
	drive := anyTask("drive")
	drive.Domain = "drive"
	other := anyTask("other")

	eng := testEngine(t, 4, drive, other)
	cands := []catalog.Task{drive, other}

	s := NewUserState()
	s.Drive = 3

	hits := 0
	const trials = 3000
	for i := 0; i < trials; i++ {
		got, err := eng.Select(cands, s)
		require.NoError(t, err)
		if got.ID == "drive" {
			hits++
		}
	}

	// 1.5x weight => share near 0.6
	share := float64(hits) / trials
	assert.InDelta(t, 0.6, share, 0.04, "drive share %.3f", share)
}

func TestSelectDisfavorsCompletedToday(t *testing.T) {
	a := anyTask("a")
	b := anyTask("b")

	eng := testEngine(t, 5, a, b)
	cands := []catalog.Task{a, b}

	s := NewUserState()
	s.CompletedToday = []string{"a"}

	bHits := 0
	const trials = 3000
	for i := 0; i < trials; i++ {
		got, err := eng.Select(cands, s)
		require.NoError(t, err)
		if got.ID == "b" {
			bHits++
		}
	}

	// b at 1.5 vs a at 1.0 => b share near 0.6
	share := float64(bHits) / trials
	assert.InDelta(t, 0.6, share, 0.04, "fresh-task share %.3f", share)
}

func TestNextRunsFullPipeline(t *testing.T) {
	core := anyTask("core")
	core.IsCore = true

	eng := testEngine(t, 6, core, anyTask("other"))
	s := NewUserState()

	got, err := eng.Next(s)
	require.NoError(t, err)
	assert.Equal(t, "core", got.ID)
}
