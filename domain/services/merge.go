package services

import (
	"sort"

	"pension720/domain/entities"
)

// MergeHistory overlays freshly extracted records on top of the persisted
// history. Records are keyed by round: fresh wins on collision, persisted
// rounds missing from the fresh set are kept, nothing is ever removed.
func MergeHistory(persisted, fresh []entities.DrawRecord) []entities.DrawRecord {
	byRound := make(map[int]entities.DrawRecord, len(persisted)+len(fresh))
	for _, r := range persisted {
		byRound[r.Round] = r
	}
	for _, r := range fresh {
		byRound[r.Round] = r
	}

	merged := make([]entities.DrawRecord, 0, len(byRound))
	for _, r := range byRound {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Round < merged[j].Round
	})
	return merged
}
