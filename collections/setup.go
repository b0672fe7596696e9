package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// RecoverySnapshots is the collection that backs the auto-save slots.
const RecoverySnapshots = "recovery_snapshots"

// maxPayload bounds a stored snapshot. Documents embed their attachments,
// so this is well above the text field default.
const maxPayload = 64 << 20

// Setup programmatically creates/ensures the recovery_snapshots collection
// exists.
func Setup(app *pocketbase.PocketBase) {
	ensureCollection(app, RecoverySnapshots, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "slot", Required: true})
		c.Fields.Add(&core.TextField{Name: "payload", Required: true, Max: maxPayload})
		c.Fields.Add(&core.TextField{Name: "version", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_recovery_snapshots_slot", true, "slot", "")
	})
}

func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
