// Package dedup reduces a tier-ranked candidate pool to a small,
// score-diverse selection: exact-score duplicates collapse to the fastest
// member, then the pool is down-sampled to evenly cover the score range,
// and the survivors are re-ranked.
package dedup

import (
	"errors"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/programme-lv/ranker/api"
)

// ErrMultipleRankOne means the pool carried more than one rank-1 candidate
// after deduplication, which the pipeline treats as corrupt input.
var ErrMultipleRankOne = errors.New("more than one rank 1 solution found")

// Config carries the tunable knobs of the selection pass.
type Config struct {
	// PoolSize is the target number of survivors.
	PoolSize int
	// SoftFloorCeiling bounds the "low but not zero" score band: when any
	// candidate scores in (0, SoftFloorCeiling), the lowest such candidate
	// becomes the bottom extreme instead of a zero-score one.
	SoftFloorCeiling float64
}

// DefaultConfig matches the pipeline defaults.
func DefaultConfig() Config {
	return Config{PoolSize: 5, SoftFloorCeiling: 0.1}
}

// Process deduplicates, down-samples and re-ranks the pool. Candidates with
// identical scores are duplicates: a group containing rank-1 candidates
// keeps only those, any other group keeps its fastest member. The reduced
// pool is then down-sampled to cfg.PoolSize spread across the score range
// (rank-1 candidates always survive) and ranks are reassigned 1..n by
// descending score.
func Process(solutions []api.TierCandidate, cfg Config) ([]api.TierCandidate, error) {
	groupOf := make(map[float64][]api.TierCandidate)
	var order []float64
	for _, s := range solutions {
		if _, ok := groupOf[s.AverageTestScore]; !ok {
			order = append(order, s.AverageTestScore)
		}
		groupOf[s.AverageTestScore] = append(groupOf[s.AverageTestScore], s)
	}

	var deduped []api.TierCandidate
	for _, score := range order {
		group := groupOf[score]
		var rank1 []api.TierCandidate
		for _, s := range group {
			if s.Rank == 1 {
				rank1 = append(rank1, s)
			}
		}
		if len(rank1) > 0 {
			deduped = append(deduped, rank1...)
			continue
		}
		best := group[0]
		for _, s := range group[1:] {
			if s.AverageTimeTaken < best.AverageTimeTaken {
				best = s
			}
		}
		deduped = append(deduped, best)
	}

	var rank1, rest []api.TierCandidate
	for _, s := range deduped {
		if s.Rank == 1 {
			rank1 = append(rank1, s)
		} else {
			rest = append(rest, s)
		}
	}
	if len(rank1) > 1 {
		return nil, ErrMultipleRankOne
	}

	sortByScoreDesc(rank1)
	sortByScoreDesc(rest)

	var final []api.TierCandidate
	if len(rank1) >= cfg.PoolSize {
		final = rank1
	} else {
		need := cfg.PoolSize - len(rank1)
		if need > len(rest) {
			need = len(rest)
		}
		final = append(final, rank1...)
		final = append(final, pickSpaced(rest, need, cfg.SoftFloorCeiling)...)
	}

	sortByScoreDesc(final)
	for i := range final {
		final[i].Rank = i + 1
	}
	return final, nil
}

// pickSpaced selects k candidates from the score-descending list so their
// scores span the range evenly. The bottom extreme is the lowest candidate
// in the (0, softFloorCeiling) band when one exists, otherwise the overall
// lowest; the remaining picks are the unselected candidates closest to the
// evenly spaced targets between 1.0 and that floor.
func pickSpaced(sorted []api.TierCandidate, k int, softFloorCeiling float64) []api.TierCandidate {
	n := len(sorted)
	if k >= n {
		return sorted
	}

	const maxScore = 1.0
	selected := mapset.NewSet[int]()

	var minScore float64
	bottom := -1
	for i := n - 1; i >= 0; i-- {
		score := sorted[i].AverageTestScore
		if score > 0.0 && score < softFloorCeiling {
			bottom = i
			break
		}
	}
	if bottom >= 0 {
		minScore = sorted[bottom].AverageTestScore
		selected.Add(bottom)
	} else {
		minScore = sorted[n-1].AverageTestScore
		selected.Add(n - 1)
	}

	for i := 1; i < k; i++ {
		target := maxScore - float64(i)/float64(k)*(maxScore-minScore)
		best := -1
		bestDiff := api.Inf
		for j, s := range sorted {
			if selected.Contains(j) {
				continue
			}
			diff := s.AverageTestScore - target
			if diff < 0 {
				diff = -diff
			}
			if diff < bestDiff {
				bestDiff = diff
				best = j
			}
		}
		if best >= 0 {
			selected.Add(best)
		}
	}

	indices := selected.ToSlice()
	sort.Ints(indices)
	out := make([]api.TierCandidate, 0, len(indices))
	for _, i := range indices {
		out = append(out, sorted[i])
	}
	return out
}

func sortByScoreDesc(s []api.TierCandidate) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].AverageTestScore > s[j].AverageTestScore
	})
}
