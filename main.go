package main

import (
	"log"
	"path/filepath"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"ffebudget/autosave"
	"ffebudget/collections"
	"ffebudget/config"
	"ffebudget/handlers"
	"ffebudget/persistence"
	"ffebudget/services"
	"ffebudget/session"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	services.CurrencySymbol = cfg.CurrencySymbol

	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: filepath.Join(cfg.DataDir, "pb_data"),
	})

	var s *session.Session

	// Create collections and migrate stored snapshots on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.MigrateSnapshots(app); err != nil {
			log.Printf("Warning: snapshot migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		files, err := persistence.NewLocalFiles(cfg.DocumentsDir)
		if err != nil {
			return err
		}
		snapshots, err := snapshotStore(app, cfg)
		if err != nil {
			return err
		}
		s = session.Start(session.Options{
			Files:     files,
			Snapshots: snapshots,
			Slot:      cfg.RecoverySlot,
			Delay:     cfg.AutosaveDelay,
			Logger:    app.Logger(),
		})
		log.Printf("session: documents in %s, %s snapshot store", cfg.DocumentsDir, cfg.SnapshotBackend)

		// ── Document ─────────────────────────────────────────────
		se.Router.GET("/api/document", handlers.HandleGetDocument(s))
		se.Router.GET("/api/documents", handlers.HandleListDocuments(files))
		se.Router.POST("/api/document/new", handlers.HandleNewDocument(s))
		se.Router.POST("/api/document/open", handlers.HandleOpenDocument(s))
		se.Router.POST("/api/document/save", handlers.HandleSaveDocument(s))

		// ── Recovery ─────────────────────────────────────────────
		se.Router.GET("/api/recovery", handlers.HandleRecoveryStatus(s))
		se.Router.POST("/api/recovery/resume", handlers.HandleRecoveryResume(s))
		se.Router.POST("/api/recovery/discard", handlers.HandleRecoveryDiscard(s))

		// ── Project and categories ───────────────────────────────
		se.Router.PATCH("/api/project", handlers.HandlePatchProject(s))
		se.Router.POST("/api/categories", handlers.HandleAddCategory(s))
		se.Router.PATCH("/api/categories/{categoryId}", handlers.HandlePatchCategory(s))
		se.Router.DELETE("/api/categories/{categoryId}", handlers.HandleDeleteCategory(s))

		// ── Line items ───────────────────────────────────────────
		// move must be registered before {itemId} to avoid matching "move" as an ID
		se.Router.POST("/api/categories/{categoryId}/items/move", handlers.HandleMoveItem(s))
		se.Router.POST("/api/categories/{categoryId}/items", handlers.HandleAddItem(s))
		se.Router.PATCH("/api/categories/{categoryId}/items/{itemId}", handlers.HandlePatchItem(s))
		se.Router.DELETE("/api/categories/{categoryId}/items/{itemId}", handlers.HandleDeleteItem(s))
		se.Router.POST("/api/categories/{categoryId}/items/{itemId}/duplicate", handlers.HandleDuplicateItem(s))
		se.Router.POST("/api/categories/{categoryId}/import", handlers.HandleImportItems(s))

		// ── Specifications ───────────────────────────────────────
		se.Router.PUT("/api/categories/{categoryId}/items/{itemId}/specification", handlers.HandleSaveSpecification(s))
		se.Router.POST("/api/categories/{categoryId}/items/{itemId}/attachments", handlers.HandleAddAttachment(s))
		se.Router.DELETE("/api/categories/{categoryId}/items/{itemId}/attachments/{attachmentId}", handlers.HandleDeleteAttachment(s))

		// ── Exports ──────────────────────────────────────────────
		se.Router.GET("/export/ledger.xlsx", handlers.HandleExportLedgerExcel(s))
		se.Router.GET("/export/ledger.pdf", handlers.HandleExportLedgerPDF(s))
		se.Router.GET("/export/specbook.pdf", handlers.HandleExportSpecBook(s))
		se.Router.GET("/print/ledger", handlers.HandlePrintLedger(s))

		return se.Next()
	})

	// Write any pending recovery snapshot before exit
	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		if s != nil {
			s.Close()
		}
		return e.Next()
	})

	app.RootCmd.AddCommand(newTotalsCmd(), newExportCmd(), newMigrateCmd())

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// snapshotStore returns the recovery snapshot store selected by the config.
func snapshotStore(app *pocketbase.PocketBase, cfg *config.Config) (autosave.SnapshotStore, error) {
	switch cfg.SnapshotBackend {
	case config.BackendFile:
		store, err := autosave.NewDirStore(cfg.SnapshotDir())
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendMemory:
		return autosave.NewMemoryStore(), nil
	}
	return collections.NewSnapshotStore(app), nil
}
