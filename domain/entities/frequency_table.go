package entities

import (
	"sort"
	"time"
)

// TopSuffixLimit is the number of suffixes kept in the secondary tier
const TopSuffixLimit = 20

// DimensionStats holds the counts of a fixed-domain dimension and its ranking.
// Counts carries every possible key, including the ones never observed.
type DimensionStats struct {
	Counts  map[int]int `json:"counts"`
	Ranking []int       `json:"ranking"`
}

// NewDimensionStats creates stats with every key in [lo, hi] set to zero
func NewDimensionStats(lo, hi int) DimensionStats {
	counts := make(map[int]int, hi-lo+1)
	for k := lo; k <= hi; k++ {
		counts[k] = 0
	}
	return DimensionStats{Counts: counts}
}

// Rank recomputes Ranking: descending count, ties broken by ascending key
func (d *DimensionStats) Rank() {
	keys := make([]int, 0, len(d.Counts))
	for k := range d.Counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := d.Counts[keys[i]], d.Counts[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})
	d.Ranking = keys
}

// Top returns the highest ranked key, or -1 when the ranking is empty
func (d *DimensionStats) Top() int {
	if len(d.Ranking) == 0 {
		return -1
	}
	return d.Ranking[0]
}

// SuffixCount is one entry of the top suffix list
type SuffixCount struct {
	Suffix string `json:"suffix"`
	Count  int    `json:"count"`
}

// FrequencyTable is the full set of tallies derived from the draw history.
// It is recomputed from scratch on every run and never patched incrementally.
type FrequencyTable struct {
	GeneratedAt    time.Time                  `json:"generated_at"`
	TotalRounds    int                        `json:"total_rounds"`
	MinRound       int                        `json:"min_round"`
	MaxRound       int                        `json:"max_round"`
	BonusRounds    int                        `json:"bonus_rounds"`
	Groups         DimensionStats             `json:"groups"`
	Positions      [DigitCount]DimensionStats `json:"positions"`
	BonusPositions [DigitCount]DimensionStats `json:"bonus_positions"`
	TopSuffixes    []SuffixCount              `json:"top_suffixes"`
}

// IsEmpty returns true if the table was built from zero rounds
func (t *FrequencyTable) IsEmpty() bool {
	return t == nil || t.TotalRounds == 0
}

// RankSuffixes returns at most limit suffixes by descending count, ties by ascending suffix
func RankSuffixes(counts map[string]int, limit int) []SuffixCount {
	out := make([]SuffixCount, 0, len(counts))
	for s, c := range counts {
		out = append(out, SuffixCount{Suffix: s, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Suffix < out[j].Suffix
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
