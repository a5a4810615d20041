package services

import (
	"testing"
	"time"

	"pension720/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFrequencyTable_SingleRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	table := BuildFrequencyTable([]entities.DrawRecord{newTestRecord(303, 3, "639566")}, now)

	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 1, 4: 0, 5: 0}, table.Groups.Counts)
	assert.Equal(t, []int{3, 1, 2, 4, 5}, table.Groups.Ranking)
	assert.Equal(t, 1, table.TotalRounds)
	assert.Equal(t, 303, table.MinRound)
	assert.Equal(t, 303, table.MaxRound)
	assert.Equal(t, 0, table.BonusRounds)
	assert.Equal(t, now, table.GeneratedAt)

	assert.Equal(t, []int{6, 0, 1, 2, 3, 4, 5, 7, 8, 9}, table.Positions[0].Ranking)
	assert.Equal(t, []entities.SuffixCount{{Suffix: "39566", Count: 1}}, table.TopSuffixes)
}

func TestBuildFrequencyTable_Completeness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []entities.DrawRecord
	}{
		{name: "empty history", records: nil},
		{name: "sample history", records: sampleHistory()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table := BuildFrequencyTable(tt.records, time.Now())

			assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, table.Groups.Ranking)
			assert.Len(t, table.Groups.Counts, 5)
			for p := 0; p < entities.DigitCount; p++ {
				assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, table.Positions[p].Ranking, "position %d", p+1)
				assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, table.BonusPositions[p].Ranking, "bonus position %d", p+1)
				assert.Len(t, table.Positions[p].Counts, 10)
				assert.Len(t, table.BonusPositions[p].Counts, 10)
			}
		})
	}
}

func TestBuildFrequencyTable_EmptyHistory(t *testing.T) {
	t.Parallel()

	table := BuildFrequencyTable(nil, time.Now())

	assert.True(t, table.IsEmpty())
	assert.Equal(t, 0, table.MinRound)
	assert.Equal(t, 0, table.MaxRound)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, table.Groups.Ranking)
	assert.Empty(t, table.TopSuffixes)
}

func TestBuildFrequencyTable_SampleHistory(t *testing.T) {
	t.Parallel()

	history := sampleHistory()
	table := BuildFrequencyTable(history, time.Now())

	assert.Equal(t, 10, table.TotalRounds)
	assert.Equal(t, 1, table.MinRound)
	assert.Equal(t, 10, table.MaxRound)
	assert.Equal(t, 4, table.BonusRounds)

	// group 3 appears three times, then 1, 2 and 4 twice each
	assert.Equal(t, []int{3, 1, 2, 4, 5}, table.Groups.Ranking)
	assert.Equal(t, 3, table.Groups.Counts[3])

	// first position: 1 x3 (123456, 123450, 102938), 0 x1, 3 x1, 4 x1, 5 x1, 7 x1, 8 x1, 9 x1
	assert.Equal(t, 3, table.Positions[0].Counts[1])
	assert.Equal(t, 1, table.Positions[0].Top())

	// bonus first digits: 6, 0, 5, 1
	assert.Equal(t, 1, table.BonusPositions[0].Counts[6])
	assert.Equal(t, 0, table.BonusPositions[0].Counts[9])

	// "23456" is shared by rounds 1 and 7
	require.NotEmpty(t, table.TopSuffixes)
	assert.Equal(t, entities.SuffixCount{Suffix: "23456", Count: 2}, table.TopSuffixes[0])
	assert.Len(t, table.TopSuffixes, 9)
}

func TestBuildFrequencyTable_OrderIndependent(t *testing.T) {
	t.Parallel()

	history := sampleHistory()
	reversed := make([]entities.DrawRecord, len(history))
	for i, r := range history {
		reversed[len(history)-1-i] = r
	}

	now := time.Now()
	assert.Equal(t, BuildFrequencyTable(history, now), BuildFrequencyTable(reversed, now))
}

func TestBuildFrequencyTable_TopSuffixLimit(t *testing.T) {
	t.Parallel()

	records := make([]entities.DrawRecord, 0, 30)
	for i := 0; i < 30; i++ {
		digits := []byte("000000")
		digits[4] = byte('0' + i/10)
		digits[5] = byte('0' + i%10)
		records = append(records, newTestRecord(i+1, 1, string(digits)))
	}

	table := BuildFrequencyTable(records, time.Now())

	require.Len(t, table.TopSuffixes, entities.TopSuffixLimit)
	assert.Equal(t, "00000", table.TopSuffixes[0].Suffix)
	assert.Equal(t, "00019", table.TopSuffixes[entities.TopSuffixLimit-1].Suffix)
}
