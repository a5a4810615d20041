package repository

import (
	"context"
	"testing"
	"time"

	"pension720/domain/entities"
	"pension720/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(round, group int, digits entities.Digits, bonus *entities.BonusResult) entities.DrawRecord {
	date := time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*(round-303))
	return entities.DrawRecord{
		Round:      round,
		Date:       &date,
		Primary:    entities.PrimaryResult{Group: group, Digits: digits, WinnerCount: 1},
		Bonus:      bonus,
		Provenance: "https://example.test/draws",
	}
}

func TestDrawRecordRepository_SaveAndLoad(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewDrawRecordRepository(testDB.DB)
	ctx := context.Background()

	empty, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	undated := testRecord(301, 5, entities.Digits{0, 0, 1, 1, 2, 2}, nil)
	undated.Date = nil

	records := []entities.DrawRecord{
		undated,
		testRecord(302, 2, entities.Digits{1, 2, 3, 4, 5, 6}, nil),
		testRecord(303, 4, entities.Digits{6, 3, 9, 5, 6, 6}, &entities.BonusResult{Digits: entities.Digits{6, 1, 9, 1, 3, 6}, WinnerCount: 10}),
	}
	require.NoError(t, repo.Save(ctx, records))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestDrawRecordRepository_SaveUpsertsWithoutDeleting(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewDrawRecordRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, []entities.DrawRecord{
		testRecord(300, 1, entities.Digits{0, 0, 0, 0, 0, 0}, nil),
		testRecord(301, 1, entities.Digits{1, 1, 1, 1, 1, 1}, nil),
	}))

	corrected := testRecord(301, 3, entities.Digits{3, 3, 3, 3, 3, 3}, &entities.BonusResult{Digits: entities.Digits{9, 9, 9, 9, 9, 9}, WinnerCount: 5})
	require.NoError(t, repo.Save(ctx, []entities.DrawRecord{corrected}))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, 300, loaded[0].Round)
	assert.Equal(t, corrected, loaded[1])
}

func TestDrawRecordRepository_SaveRejectsInvalidRecordAtomically(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewDrawRecordRepository(testDB.DB)
	ctx := context.Background()

	invalid := testRecord(302, 9, entities.Digits{1, 2, 3, 4, 5, 6}, nil)
	err := repo.Save(ctx, []entities.DrawRecord{
		testRecord(301, 1, entities.Digits{1, 1, 1, 1, 1, 1}, nil),
		invalid,
	})
	assert.Error(t, err)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFrequencySnapshotRepository_SaveAndLatest(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewFrequencySnapshotRepository(testDB.DB.Pool)
	ctx := context.Background()

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	older := &entities.FrequencyTable{
		GeneratedAt: time.Date(2026, 2, 13, 9, 0, 0, 0, time.UTC),
		TotalRounds: 1,
		MinRound:    302,
		MaxRound:    302,
		Groups:      entities.NewDimensionStats(entities.MinGroup, entities.MaxGroup),
	}
	newer := &entities.FrequencyTable{
		GeneratedAt: time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC),
		TotalRounds: 2,
		MinRound:    302,
		MaxRound:    303,
		Groups:      entities.NewDimensionStats(entities.MinGroup, entities.MaxGroup),
		TopSuffixes: []entities.SuffixCount{{Suffix: "39566", Count: 1}},
	}
	newer.Groups.Counts[4] = 1
	newer.Groups.Rank()

	require.NoError(t, repo.Save(ctx, newer))
	require.NoError(t, repo.Save(ctx, older))

	latest, err = repo.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.TotalRounds)
	assert.True(t, latest.GeneratedAt.Equal(newer.GeneratedAt))
	assert.Equal(t, newer.Groups, latest.Groups)
	assert.Equal(t, newer.TopSuffixes, latest.TopSuffixes)

	assert.Error(t, repo.Save(ctx, nil))
}
