package handlers

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/xuri/excelize/v2"
)

const importCSV = `Manufacturer,Description,Qty,Unit Price,Status
Serta,King bed,20,"1,200",Approved
Hay,Nightstand,40,180,
`

func TestHandleImportItems(t *testing.T) {
	ts := sampleSession(t)
	req := withPath(uploadRequest(t, "/", "rooms.csv", []byte(importCSV)), "categoryId", "lighting")

	rec := serve(t, HandleImportItems(ts.Session), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode[ImportView](t, rec)
	if body.TotalRows != 2 || body.ValidRows != 2 || len(body.Added) != 2 {
		t.Errorf("total=%d valid=%d added=%d", body.TotalRows, body.ValidRows, len(body.Added))
	}

	items := ts.Document().Categories[1].Items
	if len(items) != 3 {
		t.Fatalf("expected 3 lighting items, got %d", len(items))
	}
	bed := items[1]
	if bed.Manufacturer != "Serta" || bed.Quantity != 20 || bed.UnitPrice != 1200 || bed.Status != "Approved" {
		t.Errorf("unexpected imported item %+v", bed)
	}
	if got := body.Document.Totals.CategoryTotals["lighting"].String(); got != "32925" {
		t.Errorf("lighting total = %s, want 32925", got)
	}
}

func TestHandleImportItems_RowErrors(t *testing.T) {
	csv := "Description,Qty,Unit Price\nDesk,-1,100\n,2,50\nLamp,1,40\n"

	t.Run("json", func(t *testing.T) {
		ts := sampleSession(t)
		req := withPath(uploadRequest(t, "/", "bad.csv", []byte(csv)), "categoryId", "foh")

		rec := serve(t, HandleImportItems(ts.Session), req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		body := decode[ImportView](t, rec)
		if body.ErrorRows != 2 || body.ValidRows != 1 || len(body.Errors) != 2 {
			t.Errorf("errorRows=%d validRows=%d errors=%+v", body.ErrorRows, body.ValidRows, body.Errors)
		}
		if body.Errors[0].Row != 2 || body.Errors[0].Message != "Quantity cannot be negative" {
			t.Errorf("unexpected first error %+v", body.Errors[0])
		}
		if len(ts.Document().Categories[0].Items) != 2 || ts.IsDirty() {
			t.Error("nothing may be imported when rows have errors")
		}
	})

	t.Run("xlsx report", func(t *testing.T) {
		ts := sampleSession(t)
		req := withPath(uploadRequest(t, "/?format=xlsx", "bad.csv", []byte(csv)), "categoryId", "foh")

		rec := serve(t, HandleImportItems(ts.Session), req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
			t.Errorf("content type = %q", ct)
		}
		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		if err != nil {
			t.Fatalf("report is not a valid xlsx: %v", err)
		}
		defer f.Close()
	})
}

func TestHandleImportItems_BadRequests(t *testing.T) {
	tests := []struct {
		name       string
		categoryID string
		filename   string
		content    string
		wantStatus int
	}{
		{"unsupported format", "foh", "items.txt", "Description\nDesk\n", http.StatusBadRequest},
		{"no description column", "foh", "items.csv", "Qty,Price\n1,2\n", http.StatusBadRequest},
		{"blank rows only", "foh", "items.csv", "Description,Qty\n,\n", http.StatusBadRequest},
		{"unknown category", "spa", "items.csv", "Description\nDesk\n", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := sampleSession(t)
			req := withPath(uploadRequest(t, "/", tt.filename, []byte(tt.content)), "categoryId", tt.categoryID)

			rec := serve(t, HandleImportItems(ts.Session), req)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if ts.IsDirty() {
				t.Error("document must be unchanged")
			}
		})
	}
}
