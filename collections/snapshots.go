package collections

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"ffebudget/autosave"
)

// SnapshotStore keeps recovery snapshots as records of the
// recovery_snapshots collection, one record per slot.
type SnapshotStore struct {
	app core.App
}

// NewSnapshotStore returns a SnapshotStore backed by app. Setup must have
// run first.
func NewSnapshotStore(app core.App) *SnapshotStore {
	return &SnapshotStore{app: app}
}

func (s *SnapshotStore) find(slot string) (*core.Record, error) {
	records, err := s.app.FindRecordsByFilter(
		RecoverySnapshots,
		"slot = {:slot}",
		"-updated", 1, 0,
		map[string]any{"slot": slot},
	)
	if err != nil {
		return nil, fmt.Errorf("snapshots: query slot %q: %w", slot, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (s *SnapshotStore) Load(ctx context.Context, slot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := s.find(slot)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, autosave.ErrNoSnapshot
	}
	return []byte(rec.GetString("payload")), nil
}

func (s *SnapshotStore) Save(ctx context.Context, slot string, data []byte) error {
	rec, err := s.find(slot)
	if err != nil {
		return err
	}
	if rec == nil {
		col, err := s.app.FindCollectionByNameOrId(RecoverySnapshots)
		if err != nil {
			return fmt.Errorf("snapshots: could not find collection: %w", err)
		}
		rec = core.NewRecord(col)
		rec.Set("slot", slot)
	}
	rec.Set("payload", string(data))
	rec.Set("version", payloadVersion(data))

	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return fmt.Errorf("snapshots: save slot %q: %w", slot, err)
	}
	return nil
}

func (s *SnapshotStore) Delete(ctx context.Context, slot string) error {
	rec, err := s.find(slot)
	if err != nil || rec == nil {
		return err
	}
	if err := s.app.DeleteWithContext(ctx, rec); err != nil {
		return fmt.Errorf("snapshots: delete slot %q: %w", slot, err)
	}
	return nil
}

// payloadVersion reads the schema version out of a serialized document.
func payloadVersion(data []byte) string {
	var head struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return ""
	}
	return head.Version
}
