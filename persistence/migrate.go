package persistence

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cast"

	"ffebudget/budget"
)

// Deserialize decodes a .ffe document of any version. Only a missing
// projectInfo or categories key, or content that is not a JSON object,
// fails the load. Everything else is coerced: malformed item lists become
// empty, nested item lists are flattened one level, unparsable numbers
// become 0, and fields that older files lack get their defaults.
func Deserialize(data []byte) (budget.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return budget.Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if root == nil {
		return budget.Document{}, fmt.Errorf("%w: not an object", ErrMalformed)
	}

	rawInfo, ok := root["projectInfo"]
	if !ok || rawInfo == nil {
		return budget.Document{}, ErrMissingProjectInfo
	}
	info, ok := rawInfo.(map[string]any)
	if !ok {
		return budget.Document{}, fmt.Errorf("%w: projectInfo is not an object", ErrMalformed)
	}
	rawCats, ok := root["categories"]
	if !ok || rawCats == nil {
		return budget.Document{}, ErrMissingCategories
	}
	cats, ok := rawCats.([]any)
	if !ok {
		return budget.Document{}, fmt.Errorf("%w: categories is not a list", ErrMalformed)
	}

	doc := budget.Document{
		ProjectInfo: decodeProjectInfo(info),
		Categories:  make([]budget.Category, 0, len(cats)),
	}
	for _, rc := range cats {
		m, ok := rc.(map[string]any)
		if !ok {
			continue
		}
		doc.Categories = append(doc.Categories, decodeCategory(m))
	}
	repairIDs(&doc)
	return doc, nil
}

func decodeProjectInfo(m map[string]any) budget.ProjectInfo {
	info := budget.ProjectInfo{
		Name:           cast.ToString(m["name"]),
		Address:        cast.ToString(m["address"]),
		Date:           cast.ToString(m["date"]),
		Client:         cast.ToString(m["client"]),
		Allowance:      toAmount(m["allowance"]),
		SalesTaxRate:   toAmount(m["salesTaxRate"]),
		CompanyName:    cast.ToString(m["companyName"]),
		CompanyAddress: cast.ToString(m["companyAddress"]),
		CompanyPhone:   cast.ToString(m["companyPhone"]),
		CompanyEmail:   cast.ToString(m["companyEmail"]),
		LogoURL:        cast.ToString(m["logoUrl"]),
	}
	switch terms := m["terms"].(type) {
	case nil:
		info.Terms = append([]string(nil), budget.DefaultTerms...)
	case string:
		info.Terms = splitLines(terms)
	default:
		info.Terms = cast.ToStringSlice(terms)
		if info.Terms == nil {
			info.Terms = []string{}
		}
	}
	return info
}

func decodeCategory(m map[string]any) budget.Category {
	c := budget.Category{
		ID:       cast.ToString(m["id"]),
		Title:    cast.ToString(m["title"]),
		ColorTag: cast.ToString(m["colorTag"]),
		Items:    []budget.LineItem{},
	}
	raw, ok := m["items"].([]any)
	if !ok {
		return c
	}
	for _, ri := range raw {
		switch v := ri.(type) {
		case map[string]any:
			c.Items = append(c.Items, decodeItem(v))
		case []any:
			for _, inner := range v {
				if im, ok := inner.(map[string]any); ok {
					c.Items = append(c.Items, decodeItem(im))
				}
			}
		}
	}
	return c
}

func decodeItem(m map[string]any) budget.LineItem {
	it := budget.LineItem{
		ID:           toID(m["id"]),
		Manufacturer: cast.ToString(m["manufacturer"]),
		Description:  cast.ToString(m["description"]),
		Dimensions:   cast.ToString(m["dimensions"]),
		Quantity:     toAmount(m["quantity"]),
		UnitPrice:    toAmount(m["unitPrice"]),
		LeadTime:     cast.ToString(m["leadTime"]),
		Status:       budget.Status(cast.ToString(m["status"])),
		Notes:        cast.ToString(m["notes"]),
	}
	if _, ok := m["status"]; !ok {
		it.Status = budget.StatusDraft
	}
	spec, ok := m["specification"].(map[string]any)
	if !ok {
		it.Specification = budget.EmptySpecification()
		return it
	}
	it.Specification = &budget.Specification{
		DetailedDescription: cast.ToString(spec["detailedDescription"]),
		Attachments:         []budget.Attachment{},
	}
	if list, ok := spec["attachments"].([]any); ok {
		for _, ra := range list {
			if am, ok := ra.(map[string]any); ok {
				it.Specification.Attachments = append(it.Specification.Attachments, decodeAttachment(am))
			}
		}
	}
	return it
}

func decodeAttachment(m map[string]any) budget.Attachment {
	a := budget.Attachment{
		ID:       cast.ToString(m["id"]),
		Name:     cast.ToString(m["name"]),
		MimeType: cast.ToString(m["mimeType"]),
	}
	if a.ID == "" {
		a.ID = budget.NewAttachmentID()
	}
	data, declared := decodePayload(cast.ToString(m["data"]))
	a.Data = data
	if a.MimeType == "" {
		a.MimeType = declared
	}
	if a.MimeType == "" && len(a.Data) > 0 {
		a.MimeType = mimetype.Detect(a.Data).String()
	}
	a.SizeBytes = cast.ToInt64(m["sizeBytes"])
	if a.SizeBytes <= 0 {
		a.SizeBytes = int64(len(a.Data))
	}
	return a
}

// decodePayload accepts plain base64 or a data: URL and returns the bytes
// and, for data URLs, the declared media type.
func decodePayload(s string) ([]byte, string) {
	if s == "" {
		return nil, ""
	}
	var mediaType string
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		header, body, found := strings.Cut(rest, ",")
		if !found {
			return nil, ""
		}
		mediaType, _, _ = strings.Cut(header, ";")
		if !strings.Contains(header, ";base64") {
			return []byte(body), mediaType
		}
		s = body
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, mediaType
	}
	return data, mediaType
}

// toAmount coerces a stored numeric to a finite, non-negative float. Values
// that cannot be read that way become 0.
func toAmount(v any) float64 {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		s, ok := v.(string)
		if !ok {
			return 0
		}
		if f, err = budget.ParseAmount(s); err != nil {
			return 0
		}
	}
	if budget.CheckAmount(f) != nil {
		return 0
	}
	return f
}

func toID(v any) int64 {
	id, err := cast.ToInt64E(v)
	if err != nil {
		return 0
	}
	return id
}

// repairIDs gives fresh ids to items and categories whose id is missing or
// already used earlier in the document.
func repairIDs(doc *budget.Document) {
	ids := budget.NewIDSource(nil)
	ids.Observe(*doc)

	seenItems := make(map[int64]bool)
	seenCats := make(map[string]bool)
	for i := range doc.Categories {
		c := &doc.Categories[i]
		if c.ID == "" || seenCats[c.ID] {
			c.ID = budget.NewCategoryID(doc)
		}
		seenCats[c.ID] = true
		budget.ApplyVisual(c)
		for j := range c.Items {
			it := &c.Items[j]
			if it.ID <= 0 || seenItems[it.ID] {
				it.ID = ids.Next()
			}
			seenItems[it.ID] = true
		}
	}
}

func splitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
