package budget

import (
	"errors"
	"strings"
)

// ErrUnknownField is returned when a field name has no update variant.
var ErrUnknownField = errors.New("unknown field")

// ItemField is one line item field update. Each variant carries its own
// value type; numeric variants are validated when applied.
type ItemField interface {
	FieldName() string
	applyItem(it *LineItem) error
}

type (
	Manufacturer string
	Description  string
	Dimensions   string
	Quantity     float64
	UnitPrice    float64
	LeadTime     string
	Notes        string
)

func (Manufacturer) FieldName() string { return "manufacturer" }
func (Description) FieldName() string  { return "description" }
func (Dimensions) FieldName() string   { return "dimensions" }
func (Quantity) FieldName() string     { return "quantity" }
func (UnitPrice) FieldName() string    { return "unitPrice" }
func (LeadTime) FieldName() string     { return "leadTime" }
func (Notes) FieldName() string        { return "notes" }
func (Status) FieldName() string       { return "status" }

func (v Manufacturer) applyItem(it *LineItem) error { it.Manufacturer = string(v); return nil }
func (v Description) applyItem(it *LineItem) error  { it.Description = string(v); return nil }
func (v Dimensions) applyItem(it *LineItem) error   { it.Dimensions = string(v); return nil }
func (v LeadTime) applyItem(it *LineItem) error     { it.LeadTime = string(v); return nil }
func (v Notes) applyItem(it *LineItem) error        { it.Notes = string(v); return nil }

// Status values are stored as given; membership is a presentation concern.
func (v Status) applyItem(it *LineItem) error { it.Status = v; return nil }

func (v Quantity) applyItem(it *LineItem) error {
	if err := CheckAmount(float64(v)); err != nil {
		return err
	}
	it.Quantity = float64(v)
	return nil
}

func (v UnitPrice) applyItem(it *LineItem) error {
	if err := CheckAmount(float64(v)); err != nil {
		return err
	}
	it.UnitPrice = float64(v)
	return nil
}

// ProjectField is one project metadata update.
type ProjectField interface {
	FieldName() string
	applyProject(p *ProjectInfo) error
}

type (
	ProjectName    string
	ProjectAddress string
	ProjectDate    string
	Client         string
	Allowance      float64
	SalesTaxRate   float64
	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
	CompanyEmail   string
	LogoURL        string
	Terms          []string
)

func (ProjectName) FieldName() string    { return "name" }
func (ProjectAddress) FieldName() string { return "address" }
func (ProjectDate) FieldName() string    { return "date" }
func (Client) FieldName() string         { return "client" }
func (Allowance) FieldName() string      { return "allowance" }
func (SalesTaxRate) FieldName() string   { return "salesTaxRate" }
func (CompanyName) FieldName() string    { return "companyName" }
func (CompanyAddress) FieldName() string { return "companyAddress" }
func (CompanyPhone) FieldName() string   { return "companyPhone" }
func (CompanyEmail) FieldName() string   { return "companyEmail" }
func (LogoURL) FieldName() string        { return "logoUrl" }
func (Terms) FieldName() string          { return "terms" }

func (v ProjectName) applyProject(p *ProjectInfo) error    { p.Name = string(v); return nil }
func (v ProjectAddress) applyProject(p *ProjectInfo) error { p.Address = string(v); return nil }
func (v ProjectDate) applyProject(p *ProjectInfo) error    { p.Date = string(v); return nil }
func (v Client) applyProject(p *ProjectInfo) error         { p.Client = string(v); return nil }
func (v CompanyName) applyProject(p *ProjectInfo) error    { p.CompanyName = string(v); return nil }
func (v CompanyAddress) applyProject(p *ProjectInfo) error { p.CompanyAddress = string(v); return nil }
func (v CompanyPhone) applyProject(p *ProjectInfo) error   { p.CompanyPhone = string(v); return nil }
func (v CompanyEmail) applyProject(p *ProjectInfo) error   { p.CompanyEmail = string(v); return nil }
func (v LogoURL) applyProject(p *ProjectInfo) error        { p.LogoURL = string(v); return nil }

func (v Terms) applyProject(p *ProjectInfo) error {
	p.Terms = append([]string(nil), v...)
	return nil
}

func (v Allowance) applyProject(p *ProjectInfo) error {
	if err := CheckAmount(float64(v)); err != nil {
		return err
	}
	p.Allowance = float64(v)
	return nil
}

func (v SalesTaxRate) applyProject(p *ProjectInfo) error {
	if err := CheckAmount(float64(v)); err != nil {
		return err
	}
	p.SalesTaxRate = float64(v)
	return nil
}

// ParseItemField builds an item update from a field name and raw text, as
// received from a form or the command line. Numeric text that does not
// parse yields a *Rejection.
func ParseItemField(name, raw string) (ItemField, error) {
	switch name {
	case "manufacturer":
		return Manufacturer(raw), nil
	case "description":
		return Description(raw), nil
	case "dimensions":
		return Dimensions(raw), nil
	case "leadTime":
		return LeadTime(raw), nil
	case "notes":
		return Notes(raw), nil
	case "status":
		return Status(raw), nil
	case "quantity", "unitPrice":
		v, err := ParseAmount(raw)
		if err != nil {
			return nil, &Rejection{Field: name, Value: raw, Err: err}
		}
		if name == "quantity" {
			return Quantity(v), nil
		}
		return UnitPrice(v), nil
	}
	return nil, &Rejection{Field: name, Value: raw, Err: ErrUnknownField}
}

// ParseProjectField builds a project update from a field name and raw
// text. Terms are split on newlines, blank lines dropped.
func ParseProjectField(name, raw string) (ProjectField, error) {
	switch name {
	case "name":
		return ProjectName(raw), nil
	case "address":
		return ProjectAddress(raw), nil
	case "date":
		return ProjectDate(raw), nil
	case "client":
		return Client(raw), nil
	case "companyName":
		return CompanyName(raw), nil
	case "companyAddress":
		return CompanyAddress(raw), nil
	case "companyPhone":
		return CompanyPhone(raw), nil
	case "companyEmail":
		return CompanyEmail(raw), nil
	case "logoUrl":
		return LogoURL(raw), nil
	case "terms":
		var terms Terms
		for _, line := range strings.Split(raw, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				terms = append(terms, line)
			}
		}
		return terms, nil
	case "allowance", "salesTaxRate":
		v, err := ParseAmount(raw)
		if err != nil {
			return nil, &Rejection{Field: name, Value: raw, Err: err}
		}
		if name == "allowance" {
			return Allowance(v), nil
		}
		return SalesTaxRate(v), nil
	}
	return nil, &Rejection{Field: name, Value: raw, Err: ErrUnknownField}
}

// fieldValue is the value carried by an update, for diagnostics.
func fieldValue(f any) any {
	switch v := f.(type) {
	case Quantity:
		return float64(v)
	case UnitPrice:
		return float64(v)
	case Allowance:
		return float64(v)
	case SalesTaxRate:
		return float64(v)
	}
	return f
}
