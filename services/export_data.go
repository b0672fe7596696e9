package services

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"ffebudget/budget"
)

// LedgerRow is a single line item in the ledger export.
type LedgerRow struct {
	Index        string // "1.1", "1.2", "2.1" etc
	Manufacturer string
	Description  string
	Dimensions   string
	Qty          float64
	UnitPrice    float64
	LineTotal    decimal.Decimal
	LeadTime     string
	Status       string
	Notes        string
}

// LedgerSection is one category with its rows and subtotal.
type LedgerSection struct {
	Index    string
	Title    string
	Rows     []LedgerRow
	Subtotal decimal.Decimal
}

// LedgerData holds all data needed for a budget ledger export.
type LedgerData struct {
	Title          string
	Client         string
	Address        string
	ProjectDate    string
	CompanyName    string
	CompanyAddress string
	CompanyContact string
	GeneratedDate  string
	Sections       []LedgerSection
	GrandTotal     decimal.Decimal
	SalesTaxRate   float64
	Tax            decimal.Decimal
	TotalWithTax   decimal.Decimal
	Allowance      decimal.Decimal
	Variance       decimal.Decimal
	OverBudget     bool
	Terms          []string
}

// BuildLedgerData flattens a document and its totals into export rows.
func BuildLedgerData(doc budget.Document, totals budget.Totals, now time.Time) LedgerData {
	info := doc.ProjectInfo
	data := LedgerData{
		Title:          exportTitle(info),
		Client:         info.Client,
		Address:        info.Address,
		ProjectDate:    info.Date,
		CompanyName:    info.CompanyName,
		CompanyAddress: info.CompanyAddress,
		CompanyContact: joinNonEmpty(" | ", info.CompanyPhone, info.CompanyEmail),
		GeneratedDate:  now.Format("2006-01-02"),
		Sections:       make([]LedgerSection, 0, len(doc.Categories)),
		GrandTotal:     totals.GrandTotal,
		SalesTaxRate:   info.SalesTaxRate,
		Tax:            totals.Tax,
		TotalWithTax:   totals.TotalWithTax,
		Allowance:      decimal.NewFromFloat(info.Allowance),
		Variance:       totals.Variance,
		OverBudget:     totals.OverBudget(),
		Terms:          info.Terms,
	}
	if len(data.Terms) == 0 {
		data.Terms = budget.DefaultTerms
	}

	for ci, c := range doc.Categories {
		section := LedgerSection{
			Index:    fmt.Sprintf("%d", ci+1),
			Title:    c.Title,
			Rows:     make([]LedgerRow, 0, len(c.Items)),
			Subtotal: totals.CategoryTotals[c.ID],
		}
		for ii, it := range c.Items {
			section.Rows = append(section.Rows, LedgerRow{
				Index:        fmt.Sprintf("%d.%d", ci+1, ii+1),
				Manufacturer: it.Manufacturer,
				Description:  it.Description,
				Dimensions:   it.Dimensions,
				Qty:          it.Quantity,
				UnitPrice:    it.UnitPrice,
				LineTotal:    budget.LineTotal(it),
				LeadTime:     it.LeadTime,
				Status:       string(it.Status),
				Notes:        it.Notes,
			})
		}
		data.Sections = append(data.Sections, section)
	}
	return data
}

// SpecAttachment describes an attachment in the spec book. The payload
// itself is not printed.
type SpecAttachment struct {
	Name     string
	MimeType string
	Size     string
}

// SpecBookEntry is one line item with its specification sheet.
type SpecBookEntry struct {
	Index               string
	Category            string
	Manufacturer        string
	Description         string
	Dimensions          string
	Qty                 float64
	LeadTime            string
	Status              string
	DetailedDescription string
	Attachments         []SpecAttachment
}

// SpecBookData holds all data needed for the spec book export.
type SpecBookData struct {
	Title         string
	Client        string
	CompanyName   string
	GeneratedDate string
	Entries       []SpecBookEntry
}

// BuildSpecBookData lists every item of the document, in ledger order,
// with its detailed description and attachment summaries.
func BuildSpecBookData(doc budget.Document, now time.Time) SpecBookData {
	info := doc.ProjectInfo
	data := SpecBookData{
		Title:         exportTitle(info),
		Client:        info.Client,
		CompanyName:   info.CompanyName,
		GeneratedDate: now.Format("2006-01-02"),
	}
	for ci, c := range doc.Categories {
		for ii, it := range c.Items {
			entry := SpecBookEntry{
				Index:        fmt.Sprintf("%d.%d", ci+1, ii+1),
				Category:     c.Title,
				Manufacturer: it.Manufacturer,
				Description:  it.Description,
				Dimensions:   it.Dimensions,
				Qty:          it.Quantity,
				LeadTime:     it.LeadTime,
				Status:       string(it.Status),
			}
			if it.Specification != nil {
				entry.DetailedDescription = it.Specification.DetailedDescription
				for _, a := range it.Specification.Attachments {
					entry.Attachments = append(entry.Attachments, SpecAttachment{
						Name:     a.Name,
						MimeType: a.MimeType,
						Size:     humanize.Bytes(uint64(max(a.SizeBytes, 0))),
					})
				}
			}
			data.Entries = append(data.Entries, entry)
		}
	}
	return data
}

func exportTitle(info budget.ProjectInfo) string {
	if info.Name == "" {
		return "FF&E Budget"
	}
	return info.Name
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
