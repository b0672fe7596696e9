// Package budget holds the FF&E document model, the totals engine and the
// mutation API used to edit a document in place.
package budget

// Status is the procurement state of a line item. The set below is what the
// application offers, but the data layer stores whatever string it is given.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusApproved  Status = "Approved"
	StatusOrdered   Status = "Ordered"
	StatusReceived  Status = "Received"
	StatusInstalled Status = "Installed"
)

// Statuses lists the known statuses in workflow order.
var Statuses = []Status{StatusDraft, StatusApproved, StatusOrdered, StatusReceived, StatusInstalled}

// Known reports whether s is one of the offered statuses.
func (s Status) Known() bool {
	for _, k := range Statuses {
		if s == k {
			return true
		}
	}
	return false
}

// DefaultTerms is substituted when a document has no terms of its own.
var DefaultTerms = []string{
	"Pricing is a budget estimate based on current market rates and is subject to change until purchase orders are issued.",
	"Sales tax, freight, receiving, delivery and installation are estimated and will be billed at actual cost.",
	"Lead times are approximate and begin once specifications are approved and deposits are received.",
}

// ProjectInfo is the document's metadata record.
type ProjectInfo struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Date           string   `json:"date"`
	Client         string   `json:"client"`
	Allowance      float64  `json:"allowance"`
	SalesTaxRate   float64  `json:"salesTaxRate"`
	CompanyName    string   `json:"companyName"`
	CompanyAddress string   `json:"companyAddress"`
	CompanyPhone   string   `json:"companyPhone"`
	CompanyEmail   string   `json:"companyEmail"`
	LogoURL        string   `json:"logoUrl"`
	Terms          []string `json:"terms"`
}

// Attachment is an uploaded file embedded in the document.
type Attachment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	Data      []byte `json:"data"`
}

// Specification is the optional detail sheet attached to a line item.
type Specification struct {
	DetailedDescription string       `json:"detailedDescription"`
	Attachments         []Attachment `json:"attachments"`
}

// EmptySpecification returns a specification with no text and no attachments.
func EmptySpecification() *Specification {
	return &Specification{Attachments: []Attachment{}}
}

// LineItem is one FF&E entry. Its line total is always Quantity * UnitPrice
// and is never stored.
type LineItem struct {
	ID            int64          `json:"id"`
	Manufacturer  string         `json:"manufacturer"`
	Description   string         `json:"description"`
	Dimensions    string         `json:"dimensions"`
	Quantity      float64        `json:"quantity"`
	UnitPrice     float64        `json:"unitPrice"`
	LeadTime      string         `json:"leadTime"`
	Status        Status         `json:"status"`
	Notes         string         `json:"notes"`
	Specification *Specification `json:"specification,omitempty"`
}

// Category groups line items. IconKey is resolved from the catalog and is
// not part of the persisted data.
type Category struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	ColorTag string     `json:"colorTag"`
	IconKey  string     `json:"-"`
	Items    []LineItem `json:"items"`
}

// Document is the whole editable tree.
type Document struct {
	ProjectInfo ProjectInfo
	Categories  []Category
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := Document{ProjectInfo: d.ProjectInfo}
	out.ProjectInfo.Terms = append([]string(nil), d.ProjectInfo.Terms...)
	if d.Categories != nil {
		out.Categories = make([]Category, len(d.Categories))
		for i, c := range d.Categories {
			out.Categories[i] = c.clone()
		}
	}
	return out
}

func (c Category) clone() Category {
	out := c
	if c.Items != nil {
		out.Items = make([]LineItem, len(c.Items))
		for i, it := range c.Items {
			out.Items[i] = it.clone()
		}
	}
	return out
}

func (it LineItem) clone() LineItem {
	out := it
	out.Specification = it.Specification.clone()
	return out
}

func (s *Specification) clone() *Specification {
	if s == nil {
		return nil
	}
	out := &Specification{DetailedDescription: s.DetailedDescription}
	if s.Attachments != nil {
		out.Attachments = make([]Attachment, len(s.Attachments))
		for i, a := range s.Attachments {
			a.Data = append([]byte(nil), a.Data...)
			out.Attachments[i] = a
		}
	}
	return out
}

// Category returns the category with the given id.
func (d *Document) Category(id string) (*Category, bool) {
	for i := range d.Categories {
		if d.Categories[i].ID == id {
			return &d.Categories[i], true
		}
	}
	return nil, false
}

// itemIndex returns the position of the item with the given id, or -1.
func (c *Category) itemIndex(id int64) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// NewLineItem returns an item with the default field values.
func NewLineItem(id int64) LineItem {
	return LineItem{
		ID:            id,
		Quantity:      1,
		UnitPrice:     0,
		Status:        StatusDraft,
		Specification: EmptySpecification(),
	}
}
