package interfaces

import (
	"context"

	"pension720/domain/entities"
)

// DrawHistoryRepository defines the interface for the persisted draw history
type DrawHistoryRepository interface {
	// Load returns the persisted records ordered by ascending round.
	// An empty history is not an error.
	Load(ctx context.Context) ([]entities.DrawRecord, error)

	// Save replaces the persisted history with the given records.
	// Implementations must never leave a partially written history behind.
	Save(ctx context.Context, records []entities.DrawRecord) error
}

// FrequencyRepository defines the interface for the derived frequency artifact
type FrequencyRepository interface {
	// Save stores the latest frequency table
	Save(ctx context.Context, table *entities.FrequencyTable) error
}
