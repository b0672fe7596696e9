// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"

	"ffebudget/autosave"
	"ffebudget/budget"
	"ffebudget/collections"
	"ffebudget/persistence"
	"ffebudget/session"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestSession is a session wired to in-memory and temporary collaborators.
type TestSession struct {
	*session.Session
	Clock *autosave.ManualClock
	Store *autosave.MemoryStore
	Files *persistence.LocalFiles
}

// NewTestSession starts a session with an in-memory snapshot store, a
// manual clock and a documents directory under t.TempDir().
func NewTestSession(t *testing.T) *TestSession {
	t.Helper()

	files, err := persistence.NewLocalFiles(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create documents dir: %v", err)
	}
	ts := &TestSession{
		Clock: autosave.NewManualClock(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)),
		Store: autosave.NewMemoryStore(),
		Files: files,
	}
	ts.Session = session.Start(session.Options{
		Files:     files,
		Snapshots: ts.Store,
		Clock:     ts.Clock,
		Logger:    DiscardLogger(),
	})
	return ts
}

// RestartTestSession starts the next run over ts's clock, snapshot store
// and documents directory, as after a crash.
func RestartTestSession(t *testing.T, ts *TestSession) *TestSession {
	t.Helper()

	next := &TestSession{Clock: ts.Clock, Store: ts.Store, Files: ts.Files}
	next.Session = session.Start(session.Options{
		Files:     ts.Files,
		Snapshots: ts.Store,
		Clock:     ts.Clock,
		Logger:    DiscardLogger(),
	})
	return next
}

// SampleDocument returns a small hotel budget: two categories, three items
// and a specification with one attachment. Its grand total is 20575.
func SampleDocument() budget.Document {
	return budget.Document{
		ProjectInfo: budget.ProjectInfo{
			Name:           "Harbor Hotel Lobby",
			Address:        "1 Pier Road, Portland ME",
			Date:           "2026-01-15",
			Client:         "Harbor Hospitality LLC",
			Allowance:      750000,
			SalesTaxRate:   10.25,
			CompanyName:    "Northwind Interiors",
			CompanyAddress: "200 Congress St, Portland ME",
			CompanyPhone:   "207-555-0100",
			CompanyEmail:   "studio@northwind.test",
			Terms:          append([]string(nil), budget.DefaultTerms...),
		},
		Categories: []budget.Category{
			{
				ID: budget.CategoryFrontOfHouse, Title: "Front of House", ColorTag: "amber", IconKey: "sofa",
				Items: []budget.LineItem{
					{
						ID: 1001, Manufacturer: "Knoll", Description: "Lounge chair",
						Dimensions: "30W x 32D x 29H", Quantity: 50, UnitPrice: 170,
						LeadTime: "8-10 weeks", Status: budget.StatusApproved, Notes: "COM",
						Specification: &budget.Specification{
							DetailedDescription: "Walnut frame, COM upholstery.",
							Attachments: []budget.Attachment{{
								ID: "att-1001", Name: "lounge-chair.pdf", MimeType: "application/pdf",
								SizeBytes: 8, Data: []byte("%PDF-1.4"),
							}},
						},
					},
					{
						ID: 1002, Manufacturer: "Arper", Description: "Side table",
						Quantity: 46, UnitPrice: 225, Status: budget.StatusDraft,
						Specification: budget.EmptySpecification(),
					},
				},
			},
			{
				ID: budget.CategoryLighting, Title: "Lighting", ColorTag: "yellow", IconKey: "lamp",
				Items: []budget.LineItem{
					{
						ID: 1003, Manufacturer: "Flos", Description: "Pendant",
						Quantity: 3, UnitPrice: 575, Status: budget.StatusOrdered,
						Specification: budget.EmptySpecification(),
					},
				},
			},
		},
	}
}

// LoadDocument replaces the session's document with doc by saving it as
// "fixture" and opening that file.
func LoadDocument(t *testing.T, ts *TestSession, doc budget.Document) {
	t.Helper()

	data, err := persistence.Serialize(doc, ts.Clock.Now())
	if err != nil {
		t.Fatalf("failed to serialize document: %v", err)
	}
	if err := ts.Files.Write(t.Context(), "fixture", data); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if err := ts.Open(t.Context(), "fixture", true); err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
