package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SlotRecord is one persisted save slot. State is the opaque JSON snapshot
// of a full game state; a nil State means the slot is empty.
type SlotRecord struct {
	Index     int
	State     []byte
	LastSaved *time.Time
}

// SQLiteSlotRepository stores the fixed-size save-slot array in SQLite.
type SQLiteSlotRepository struct {
	db        *sql.DB
	slotCount int
}

// NewSQLiteSlotRepository creates a repository exposing slotCount slots.
func NewSQLiteSlotRepository(db *sql.DB, slotCount int) *SQLiteSlotRepository {
	return &SQLiteSlotRepository{db: db, slotCount: slotCount}
}

// Load returns all slots in index order. Missing rows come back as empty
// slots so the result always has slotCount entries.
func (r *SQLiteSlotRepository) Load(ctx context.Context) ([]SlotRecord, error) {
	slots := make([]SlotRecord, r.slotCount)
	for i := range slots {
		slots[i].Index = i
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT slot_index, state_json, last_saved FROM save_slots ORDER BY slot_index ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load save slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			index     int
			stateJSON string
			lastSaved time.Time
		)
		if err := rows.Scan(&index, &stateJSON, &lastSaved); err != nil {
			return nil, fmt.Errorf("failed to scan save slot: %w", err)
		}
		if index < 0 || index >= r.slotCount {
			continue
		}
		slots[index].State = []byte(stateJSON)
		saved := lastSaved
		slots[index].LastSaved = &saved
	}
	return slots, rows.Err()
}

// Save upserts one slot with the given snapshot and timestamp.
func (r *SQLiteSlotRepository) Save(ctx context.Context, index int, state []byte, savedAt time.Time) error {
	if index < 0 || index >= r.slotCount {
		return fmt.Errorf("slot index %d out of range [0, %d)", index, r.slotCount)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO save_slots (slot_index, state_json, last_saved) VALUES (?, ?, ?)
		 ON CONFLICT(slot_index) DO UPDATE SET
			state_json=excluded.state_json,
			last_saved=excluded.last_saved`,
		index, string(state), savedAt)
	if err != nil {
		return fmt.Errorf("failed to save slot %d: %w", index, err)
	}
	return nil
}

// Clear empties one slot.
func (r *SQLiteSlotRepository) Clear(ctx context.Context, index int) error {
	if index < 0 || index >= r.slotCount {
		return fmt.Errorf("slot index %d out of range [0, %d)", index, r.slotCount)
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM save_slots WHERE slot_index = ?`, index)
	if err != nil {
		return fmt.Errorf("failed to clear slot %d: %w", index, err)
	}
	return nil
}
