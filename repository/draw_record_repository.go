package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pension720/database"
	"pension720/domain/entities"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// DrawRecordRepository stores the draw history in postgres
type DrawRecordRepository struct {
	db *database.DB
}

// NewDrawRecordRepository creates a new draw record repository
func NewDrawRecordRepository(db *database.DB) *DrawRecordRepository {
	return &DrawRecordRepository{db: db}
}

// Load returns every stored round ordered by ascending round
func (r *DrawRecordRepository) Load(ctx context.Context) ([]entities.DrawRecord, error) {
	query := `
		SELECT round, draw_date, primary_group, primary_digits, primary_winner_count,
		       bonus_digits, bonus_winner_count, provenance
		FROM draw_records
		ORDER BY round ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query draw records: %w", err)
	}
	defer rows.Close()

	var records []entities.DrawRecord
	for rows.Next() {
		record, err := scanDrawRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draw records: %w", err)
	}

	return records, nil
}

// Save upserts every record in a single transaction.
// Rounds that are stored but absent from records are left untouched.
func (r *DrawRecordRepository) Save(ctx context.Context, records []entities.DrawRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO draw_records (
			round, draw_date, primary_group, primary_digits, primary_winner_count,
			bonus_digits, bonus_winner_count, provenance
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (round) DO UPDATE SET
			draw_date = EXCLUDED.draw_date,
			primary_group = EXCLUDED.primary_group,
			primary_digits = EXCLUDED.primary_digits,
			primary_winner_count = EXCLUDED.primary_winner_count,
			bonus_digits = EXCLUDED.bonus_digits,
			bonus_winner_count = EXCLUDED.bonus_winner_count,
			provenance = EXCLUDED.provenance,
			updated_at = NOW()
	`

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range records {
			rec := &records[i]
			if err := rec.Validate(); err != nil {
				return fmt.Errorf("refusing to store invalid record: %w", err)
			}

			var bonusDigits *string
			var bonusWinners *int
			if rec.Bonus != nil {
				digits := rec.Bonus.Digits.String()
				bonusDigits = &digits
				bonusWinners = &rec.Bonus.WinnerCount
			}

			batch.Queue(query,
				rec.Round,
				rec.Date,
				rec.Primary.Group,
				rec.Primary.Digits.String(),
				rec.Primary.WinnerCount,
				bonusDigits,
				bonusWinners,
				rec.Provenance,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for i := range records {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to upsert round %d: %w", records[i].Round, err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close batch: %w", err)
		}

		log.WithField("records", len(records)).Debug("Upserted draw records")
		return nil
	})
}

func scanDrawRecord(row pgx.Row) (entities.DrawRecord, error) {
	var (
		record        entities.DrawRecord
		drawDate      *time.Time
		primaryDigits string
		bonusDigits   *string
		bonusWinners  *int
	)

	err := row.Scan(
		&record.Round,
		&drawDate,
		&record.Primary.Group,
		&primaryDigits,
		&record.Primary.WinnerCount,
		&bonusDigits,
		&bonusWinners,
		&record.Provenance,
	)
	if err != nil {
		return entities.DrawRecord{}, fmt.Errorf("failed to scan draw record: %w", err)
	}

	record.Primary.Digits, err = entities.ParseDigits(strings.Split(primaryDigits, ""))
	if err != nil {
		return entities.DrawRecord{}, fmt.Errorf("round %d: %w", record.Round, err)
	}

	if drawDate != nil {
		d := drawDate.UTC()
		record.Date = &d
	}

	if bonusDigits != nil {
		digits, err := entities.ParseDigits(strings.Split(*bonusDigits, ""))
		if err != nil {
			return entities.DrawRecord{}, fmt.Errorf("round %d bonus: %w", record.Round, err)
		}
		record.Bonus = &entities.BonusResult{Digits: digits}
		if bonusWinners != nil {
			record.Bonus.WinnerCount = *bonusWinners
		}
	}

	return record, nil
}
