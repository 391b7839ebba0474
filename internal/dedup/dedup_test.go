package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programme-lv/ranker/api"
)

func tier(rank int, score, avgTime float64) api.TierCandidate {
	return api.TierCandidate{
		Rank:             rank,
		AverageTestScore: score,
		AverageTimeTaken: api.Seconds(avgTime),
		Solution:         &api.TaskRecord{},
	}
}

func scores(sols []api.TierCandidate) []float64 {
	out := make([]float64, 0, len(sols))
	for _, s := range sols {
		out = append(out, s.AverageTestScore)
	}
	return out
}

func TestProcessCollapsesExactScoreDuplicates(t *testing.T) {
	sols := []api.TierCandidate{
		tier(1, 1.0, 0.1),
		tier(2, 0.5, 0.3),
		tier(3, 0.5, 0.2),
		tier(4, 0.2, 0.4),
	}

	got, err := Process(sols, DefaultConfig())
	require.NoError(t, err)

	// The slower 0.5 duplicate is gone, the faster one survives.
	assert.Equal(t, []float64{1.0, 0.5, 0.2}, scores(got))
	assert.Equal(t, api.Seconds(0.2), got[1].AverageTimeTaken)
}

func TestProcessRankOneBeatsFasterDuplicate(t *testing.T) {
	sols := []api.TierCandidate{
		tier(1, 1.0, 0.9),
		tier(2, 1.0, 0.1),
	}

	got, err := Process(sols, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, api.Seconds(0.9), got[0].AverageTimeTaken)
}

func TestProcessRejectsTwoRankOnes(t *testing.T) {
	sols := []api.TierCandidate{
		tier(1, 1.0, 0.1),
		tier(1, 0.5, 0.2),
	}

	_, err := Process(sols, DefaultConfig())
	assert.ErrorIs(t, err, ErrMultipleRankOne)
}

func TestProcessReassignsConsecutiveRanks(t *testing.T) {
	sols := []api.TierCandidate{
		tier(1, 1.0, 0.1),
		tier(3, 0.8, 0.2),
		tier(5, 0.6, 0.2),
		tier(7, 0.4, 0.2),
		tier(9, 0.2, 0.2),
	}

	got, err := Process(sols, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, s := range got {
		assert.Equal(t, i+1, s.Rank)
	}
	assert.Equal(t, []float64{1.0, 0.8, 0.6, 0.4, 0.2}, scores(got))
}

func TestProcessDownSamplesToPoolSize(t *testing.T) {
	sols := []api.TierCandidate{tier(1, 1.0, 0.1)}
	for i := 0; i < 20; i++ {
		sols = append(sols, tier(i+2, 0.95-float64(i)*0.05, 0.2))
	}

	got, err := Process(sols, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 1.0, got[0].AverageTestScore)
	// Scores stay strictly descending after re-ranking.
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i].AverageTestScore, got[i-1].AverageTestScore)
	}
}

func TestProcessIdempotentOnSmallPool(t *testing.T) {
	sols := []api.TierCandidate{
		tier(1, 1.0, 0.1),
		tier(2, 0.5, 0.2),
		tier(3, 0.2, 0.3),
	}

	once, err := Process(sols, DefaultConfig())
	require.NoError(t, err)
	twice, err := Process(once, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestPickSpacedPrefersLowPositiveFloor(t *testing.T) {
	sorted := []api.TierCandidate{
		tier(2, 0.9, 0.1),
		tier(3, 0.7, 0.1),
		tier(4, 0.5, 0.1),
		tier(5, 0.3, 0.1),
		tier(6, 0.05, 0.1),
		tier(7, 0.0, 0.1),
	}

	got := pickSpaced(sorted, 3, 0.1)
	require.Len(t, got, 3)
	// The 0.05 candidate is the bottom extreme, not the 0.0 one.
	assert.Equal(t, 0.05, got[len(got)-1].AverageTestScore)
}

func TestPickSpacedReturnsAllWhenKCoversPool(t *testing.T) {
	sorted := []api.TierCandidate{
		tier(2, 0.9, 0.1),
		tier(3, 0.1, 0.1),
	}
	got := pickSpaced(sorted, 5, 0.1)
	assert.Equal(t, sorted, got)
}
