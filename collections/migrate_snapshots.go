package collections

import (
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/pocketbase"

	"ffebudget/persistence"
)

// MigrateSnapshots rewrites stored recovery snapshots written by an older
// schema version through the document loader, so they come back in the
// current format. Snapshots that cannot be loaded are left alone.
// Safe to call on every startup -- returns early if nothing to migrate.
func MigrateSnapshots(app *pocketbase.PocketBase) error {
	col, err := app.FindCollectionByNameOrId(RecoverySnapshots)
	if err != nil {
		return fmt.Errorf("migrate: could not find %s collection: %w", RecoverySnapshots, err)
	}

	stale, err := app.FindRecordsByFilter(
		col,
		"version != {:version}",
		"",
		0,
		0,
		map[string]any{"version": persistence.Version},
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query snapshots: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	log.Printf("migrate: found %d recovery snapshot(s) from an older version -- upgrading...\n", len(stale))

	for _, rec := range stale {
		slot := rec.GetString("slot")
		doc, err := persistence.Deserialize([]byte(rec.GetString("payload")))
		if err != nil {
			log.Printf("migrate: snapshot %q (%s) could not be loaded, leaving it: %v\n", slot, rec.Id, err)
			continue
		}
		data, err := persistence.Serialize(doc, time.Now())
		if err != nil {
			log.Printf("migrate: snapshot %q (%s) could not be re-encoded: %v\n", slot, rec.Id, err)
			continue
		}

		rec.Set("payload", string(data))
		rec.Set("version", persistence.Version)
		if err := app.Save(rec); err != nil {
			log.Printf("migrate: failed to save snapshot %q (%s): %v\n", slot, rec.Id, err)
			continue
		}

		log.Printf("migrate: snapshot %q upgraded to version %s\n", slot, persistence.Version)
	}

	log.Println("migrate: recovery snapshot migration complete.")
	return nil
}
