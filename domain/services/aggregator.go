package services

import (
	"time"

	"pension720/domain/entities"
)

// BuildFrequencyTable folds the full history into a fresh frequency table.
// Every fixed-domain key is present even when its count is zero.
func BuildFrequencyTable(records []entities.DrawRecord, generatedAt time.Time) *entities.FrequencyTable {
	table := &entities.FrequencyTable{
		GeneratedAt: generatedAt.UTC(),
		Groups:      entities.NewDimensionStats(entities.MinGroup, entities.MaxGroup),
	}
	for p := 0; p < entities.DigitCount; p++ {
		table.Positions[p] = entities.NewDimensionStats(0, 9)
		table.BonusPositions[p] = entities.NewDimensionStats(0, 9)
	}

	// sparse: only observed suffixes get a key
	suffixCounts := make(map[string]int)

	for i, r := range records {
		if i == 0 || r.Round < table.MinRound {
			table.MinRound = r.Round
		}
		if r.Round > table.MaxRound {
			table.MaxRound = r.Round
		}
		table.TotalRounds++

		table.Groups.Counts[r.Primary.Group]++
		for p, d := range r.Primary.Digits {
			table.Positions[p].Counts[d]++
		}
		if r.Bonus != nil {
			table.BonusRounds++
			for p, d := range r.Bonus.Digits {
				table.BonusPositions[p].Counts[d]++
			}
		}
		suffixCounts[r.Primary.Digits.Suffix()]++
	}

	table.Groups.Rank()
	for p := 0; p < entities.DigitCount; p++ {
		table.Positions[p].Rank()
		table.BonusPositions[p].Rank()
	}
	table.TopSuffixes = entities.RankSuffixes(suffixCounts, entities.TopSuffixLimit)

	return table
}
