package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"cryptotycoon/internal/game"
)

// Session and save-slot management. Slot snapshots are opaque JSON to the
// store; (un)marshalling happens here, under the engine lock, so a save
// always captures one consistent state.

// slotSummariesLocked builds the menu view of the slot array. Load errors
// degrade to an all-empty menu rather than failing the snapshot.
func (e *Engine) slotSummariesLocked() []SlotSummary {
	records, err := e.slots.Load(context.Background())
	if err != nil {
		e.log.Error("failed to load save slots", zap.Error(err))
		records = make([]SlotRecord, game.MaxSaveSlots)
	}
	summaries := make([]SlotSummary, len(records))
	for i, rec := range records {
		summaries[i] = SlotSummary{
			Index:     i,
			Empty:     rec.State == nil,
			LastSaved: rec.LastSaved,
		}
	}
	return summaries
}

// NewGame starts a fresh normal-mode session in the given slot and
// persists it immediately.
func (e *Engine) NewGame(ctx context.Context, slot int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if slot < 0 || slot >= game.MaxSaveSlots {
		return fmt.Errorf("slot index %d out of range [0, %d)", slot, game.MaxSaveSlots)
	}

	e.state = game.NewState(false, e.now())
	e.activeSlot = slot
	if err := e.saveLocked(ctx); err != nil {
		return err
	}
	e.log.Info("new game started", zap.Int("slot", slot))
	e.commitLocked()
	return nil
}

// LoadGame resumes the session saved in the given slot.
func (e *Engine) LoadGame(ctx context.Context, slot int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if slot < 0 || slot >= game.MaxSaveSlots {
		return fmt.Errorf("slot index %d out of range [0, %d)", slot, game.MaxSaveSlots)
	}

	records, err := e.slots.Load(ctx)
	if err != nil {
		return fmt.Errorf("load slots: %w", err)
	}
	if records[slot].State == nil {
		return fmt.Errorf("slot %d is empty", slot)
	}

	var st game.State
	if err := json.Unmarshal(records[slot].State, &st); err != nil {
		return fmt.Errorf("decode slot %d: %w", slot, err)
	}
	if st.Holdings == nil {
		st.Holdings = make(map[string]float64)
	}
	// Stale in-flight flags do not survive a reload.
	st.GeneratingAdvice = false

	e.state = &st
	e.activeSlot = slot
	e.log.Info("game loaded", zap.Int("slot", slot), zap.Int64("tick", st.TimeStep))
	e.commitLocked()
	return nil
}

// SaveGame persists the active session into its slot.
func (e *Engine) SaveGame(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return fmt.Errorf("no active game to save")
	}
	if err := e.saveLocked(ctx); err != nil {
		return err
	}
	e.state.Message = fmt.Sprintf("Game saved to slot %d.", e.activeSlot+1)
	e.commitLocked()
	return nil
}

// Autosave persists the active session without touching the message field.
// No-op outside a session.
func (e *Engine) Autosave(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return
	}
	if err := e.saveLocked(ctx); err != nil {
		e.log.Error("autosave failed", zap.Error(err))
		return
	}
	e.log.Info("autosaved", zap.Int("slot", e.activeSlot), zap.Int64("tick", e.state.TimeStep))
}

func (e *Engine) saveLocked(ctx context.Context) error {
	snapshot, err := json.Marshal(e.state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := e.slots.Save(ctx, e.activeSlot, snapshot, e.now()); err != nil {
		return fmt.Errorf("save slot %d: %w", e.activeSlot, err)
	}
	return nil
}

// DeleteSlot empties a save slot. Destructive: the caller must confirm.
// Deleting the active session's slot ends the session.
func (e *Engine) DeleteSlot(ctx context.Context, slot int, confirmed bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !confirmed {
		return fmt.Errorf("deleting slot %d requires confirmation", slot)
	}
	if slot < 0 || slot >= game.MaxSaveSlots {
		return fmt.Errorf("slot index %d out of range [0, %d)", slot, game.MaxSaveSlots)
	}
	if err := e.slots.Clear(ctx, slot); err != nil {
		return err
	}
	if slot == e.activeSlot {
		e.state = nil
		e.activeSlot = -1
	}
	e.log.Info("slot deleted", zap.Int("slot", slot))
	e.commitLocked()
	return nil
}

// QuitToMenu discards the in-memory session and returns to slot selection.
// Unsaved progress since the last (auto)save is lost.
func (e *Engine) QuitToMenu() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = nil
	e.activeSlot = -1
	e.commitLocked()
}

// ToggleSandbox flips sandbox mode. Turning it on resets cash to the
// sandbox bootstrap value and leaves coins, holdings and rigs untouched.
// Turning it off is destructive - it discards the session and starts a
// fresh normal-mode game - and therefore requires confirmation.
func (e *Engine) ToggleSandbox(confirmed bool) {
	e.withSession(func(st *game.State) {
		if !st.SandboxMode {
			st.SandboxMode = true
			st.Cash = game.SandboxStartingCash
			st.Message = "Sandbox Mode enabled. Enjoy unlimited funds!"
			return
		}
		if !confirmed {
			st.Message = "Turning sandbox off starts a new NORMAL game in this slot. Confirm to proceed."
			return
		}
		e.state = game.NewState(false, e.now())
	})
}

// FullReset restarts the active slot with a fresh normal-mode game.
// Destructive: requires confirmation.
func (e *Engine) FullReset(confirmed bool) {
	e.withSession(func(st *game.State) {
		if !confirmed {
			st.Message = "Resetting starts a new game in this slot. Confirm to proceed."
			return
		}
		e.state = game.NewState(false, e.now())
	})
}
