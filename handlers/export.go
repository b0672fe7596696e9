package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"ffebudget/services"
	"ffebudget/session"
	"ffebudget/views"
)

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

func ledgerData(s *session.Session) services.LedgerData {
	st := s.State()
	return services.BuildLedgerData(st.Document, st.Totals, time.Now())
}

func attachment(e *core.RequestEvent, contentType, filename string, body []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	e.Response.Write(body)
	return nil
}

// HandleExportLedgerExcel generates and downloads the budget ledger as Excel.
func HandleExportLedgerExcel(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := ledgerData(s)

		xlsxBytes, err := services.GenerateLedgerExcel(data)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("Budget_%s_%d.xlsx", sanitizeFilename(data.Title), time.Now().Year())
		return attachment(e, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename, xlsxBytes)
	}
}

// HandleExportLedgerPDF generates and downloads the budget ledger as PDF.
func HandleExportLedgerPDF(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := ledgerData(s)

		pdfBytes, err := services.GenerateLedgerPDF(data)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("Budget_%s_%d.pdf", sanitizeFilename(data.Title), time.Now().Year())
		return attachment(e, "application/pdf", filename, pdfBytes)
	}
}

// HandleExportSpecBook generates and downloads the specification book PDF.
func HandleExportSpecBook(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := services.BuildSpecBookData(s.Document(), time.Now())

		pdfBytes, err := services.GenerateSpecBookPDF(data)
		if err != nil {
			log.Printf("export_specbook: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("SpecBook_%s_%d.pdf", sanitizeFilename(data.Title), time.Now().Year())
		return attachment(e, "application/pdf", filename, pdfBytes)
	}
}

// HandlePrintLedger renders the printable HTML ledger.
func HandlePrintLedger(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		component := views.Ledger(ledgerData(s))
		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		return component.Render(e.Request.Context(), e.Response)
	}
}
