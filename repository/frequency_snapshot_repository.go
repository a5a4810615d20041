package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pension720/domain/entities"

	"github.com/jackc/pgx/v5"
)

// FrequencySnapshotRepository appends every computed frequency table as a jsonb snapshot
type FrequencySnapshotRepository struct {
	q Queryable
}

// NewFrequencySnapshotRepository creates a new frequency snapshot repository
func NewFrequencySnapshotRepository(q Queryable) *FrequencySnapshotRepository {
	return &FrequencySnapshotRepository{q: q}
}

// Save stores the table as a new snapshot
func (r *FrequencySnapshotRepository) Save(ctx context.Context, table *entities.FrequencyTable) error {
	if table == nil {
		return fmt.Errorf("frequency table is nil")
	}

	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal frequency table: %w", err)
	}

	query := `
		INSERT INTO frequency_snapshots (generated_at, total_rounds, min_round, max_round, payload)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.q.Exec(ctx, query, table.GeneratedAt, table.TotalRounds, table.MinRound, table.MaxRound, payload); err != nil {
		return fmt.Errorf("failed to insert frequency snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot, or nil if none was stored yet
func (r *FrequencySnapshotRepository) Latest(ctx context.Context) (*entities.FrequencyTable, error) {
	query := `
		SELECT payload
		FROM frequency_snapshots
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`

	var payload []byte
	err := r.q.QueryRow(ctx, query).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest frequency snapshot: %w", err)
	}

	var table entities.FrequencyTable
	if err := json.Unmarshal(payload, &table); err != nil {
		return nil, fmt.Errorf("failed to decode frequency snapshot: %w", err)
	}
	return &table, nil
}
