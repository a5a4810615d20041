package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"pension720/domain/entities"

	log "github.com/sirupsen/logrus"
)

// writeFileAtomic replaces path with data so readers only ever see the old
// or the new content: write to a temp file in the same directory, sync, rename.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// FileHistoryStore keeps the draw history as a JSON array ordered by round
type FileHistoryStore struct {
	path string
	now  func() time.Time
}

// NewFileHistoryStore creates a store backed by path
func NewFileHistoryStore(path string) *FileHistoryStore {
	return &FileHistoryStore{path: path, now: time.Now}
}

// Load returns the stored history. A missing file is an empty history.
// An unreadable file is moved aside before the error is returned, so the
// next Save cannot silently destroy it.
func (s *FileHistoryStore) Load(ctx context.Context) ([]entities.DrawRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("path", s.path).Info("No stored history yet")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history %s: %w", s.path, err)
	}

	var records []entities.DrawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		backup := fmt.Sprintf("%s.corrupt-%s", s.path, s.now().UTC().Format("20060102T150405Z"))
		if rerr := os.Rename(s.path, backup); rerr != nil {
			log.WithError(rerr).WithField("path", s.path).Error("Failed to move corrupt history aside")
		} else {
			log.WithField("backup", backup).Warn("Moved corrupt history aside")
		}
		return nil, fmt.Errorf("failed to decode history %s: %w", s.path, err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Round < records[j].Round
	})
	return records, nil
}

// Save atomically replaces the stored history
func (s *FileHistoryStore) Save(ctx context.Context, records []entities.DrawRecord) error {
	if records == nil {
		records = []entities.DrawRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := writeFileAtomic(s.path, append(data, '\n')); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"path":    s.path,
		"records": len(records),
	}).Debug("Saved history")
	return nil
}

// FileFrequencyStore writes the latest frequency table as JSON
type FileFrequencyStore struct {
	path string
}

// NewFileFrequencyStore creates a store backed by path
func NewFileFrequencyStore(path string) *FileFrequencyStore {
	return &FileFrequencyStore{path: path}
}

// Save atomically replaces the stored table
func (s *FileFrequencyStore) Save(ctx context.Context, table *entities.FrequencyTable) error {
	if table == nil {
		return fmt.Errorf("frequency table is nil")
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode frequency table: %w", err)
	}
	return writeFileAtomic(s.path, append(data, '\n'))
}

// Load reads the stored table, returning nil when none was written yet
func (s *FileFrequencyStore) Load(ctx context.Context) (*entities.FrequencyTable, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read frequency table %s: %w", s.path, err)
	}

	var table entities.FrequencyTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to decode frequency table %s: %w", s.path, err)
	}
	return &table, nil
}
