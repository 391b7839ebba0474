// Package rank orders a task's candidate pool within one execution tier.
// Candidates are grouped by test score, near-identical runtimes inside a
// group eliminate the slower candidate, and the survivors get consecutive
// ranks by descending score. The reference solution always holds rank 1 and
// is never eliminated.
package rank

import (
	"sort"

	"github.com/programme-lv/ranker/api"
)

// Dim names an execution tier.
type Dim string

const (
	DimBase Dim = "base"
	DimPlus Dim = "plus"
)

const (
	// scoreEps is the tolerance for treating two candidates' raw scores as
	// equal during pairwise elimination.
	scoreEps = 1e-9
	// mergeEps is the tolerance for merging the reference solution into a
	// score group.
	mergeEps = 1e-20
)

// Config carries the tunable knobs of the ranking pass.
type Config struct {
	// TimeRatioThreshold is the max(t)/min(t) ratio below which two
	// equal-score candidates are considered duplicates and the slower one
	// is eliminated. 1.0 disables elimination entirely.
	TimeRatioThreshold float64
}

// Score returns the candidate's raw test score for the tier, 0.0 when the
// tier was never executed.
func Score(c *api.TaskRecord, dim Dim) float64 {
	res := c.ExecResult(string(dim))
	if res == nil {
		return 0.0
	}
	return res.AverageTestScore
}

// EffectiveScore returns the score used for grouping. The base tier uses the
// raw score; the plus tier blends base and plus scores weighted by their
// test-input counts, so a candidate passing every plus test but failing base
// tests does not outrank an all-correct one.
func EffectiveScore(c *api.TaskRecord, dim Dim) float64 {
	score := Score(c, dim)
	if dim != DimPlus {
		return score
	}
	nPlus := len(c.PlusInput)
	nBase := len(c.BaseInput)
	if nPlus+nBase == 0 {
		return score
	}
	return (score*float64(nPlus) + Score(c, DimBase)*float64(nBase)) / float64(nPlus+nBase)
}

// timeTaken returns the candidate's average runtime for the tier, +Inf when
// timing data is missing.
func timeTaken(c *api.TaskRecord, dim Dim) float64 {
	return c.ExecResult(string(dim)).AvgTime()
}

// Rank assigns ranks to the pool for the given tier. The candidate whose id
// equals originalID is the reference: it is forced to rank 1 and survives
// every elimination. Returned map holds id -> rank; eliminated candidates
// are absent. Ranks are consecutive starting at 1.
func Rank(pool []api.Candidate, dim Dim, originalID int, cfg Config) map[int]int {
	var reference *api.Candidate
	others := make([]*api.Candidate, 0, len(pool))
	for i := range pool {
		if pool[i].ID == originalID {
			reference = &pool[i]
		} else {
			others = append(others, &pool[i])
		}
	}

	// Group by effective score, keeping the order groups first appear in so
	// the output is stable across runs.
	groupOf := make(map[float64][]*api.Candidate)
	var order []float64
	for _, c := range others {
		score := EffectiveScore(c.Solution, dim)
		if _, ok := groupOf[score]; !ok {
			order = append(order, score)
		}
		groupOf[score] = append(groupOf[score], c)
	}

	var survivors []*api.Candidate
	for _, score := range order {
		group := append([]*api.Candidate(nil), groupOf[score]...)
		if reference != nil && abs(Score(reference.Solution, dim)-score) < mergeEps {
			group = append(group, reference)
		}
		group = eliminate(group, dim, originalID, cfg.TimeRatioThreshold)
		for _, c := range group {
			if c != reference {
				survivors = append(survivors, c)
			}
		}
	}

	// Survivors in descending score order; the stable sort keeps the
	// group/candidate order among exact ties.
	sort.SliceStable(survivors, func(i, j int) bool {
		return Score(survivors[i].Solution, dim) > Score(survivors[j].Solution, dim)
	})

	ranks := make(map[int]int, len(survivors)+1)
	ranks[originalID] = 1
	next := 2
	for _, c := range survivors {
		if c.ID == originalID {
			continue
		}
		ranks[c.ID] = next
		next++
	}
	return ranks
}

// eliminate repeatedly removes the slower of any two candidates whose scores
// match within scoreEps and whose runtime ratio is below the threshold. The
// reference candidate is never removed. Runs until no pair qualifies.
func eliminate(group []*api.Candidate, dim Dim, originalID int, threshold float64) []*api.Candidate {
	for {
		removed := false
	scan:
		for i := 0; i < len(group); i++ {
			t1 := timeTaken(group[i].Solution, dim)
			for j := i + 1; j < len(group); j++ {
				t2 := timeTaken(group[j].Solution, dim)
				if abs(Score(group[i].Solution, dim)-Score(group[j].Solution, dim)) >= scoreEps {
					continue
				}
				bigger := j
				if t1 > t2 {
					bigger = i
				}
				ratio := timeRatio(t1, t2)
				if ratio < threshold && group[bigger].ID != originalID {
					group = append(group[:bigger], group[bigger+1:]...)
					removed = true
					break scan
				}
			}
		}
		if !removed {
			return group
		}
	}
}

// timeRatio is max/min, or +Inf when the faster time is not positive.
func timeRatio(t1, t2 float64) float64 {
	lo, hi := t1, t2
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo <= 0 {
		return api.Inf
	}
	return hi / lo
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
