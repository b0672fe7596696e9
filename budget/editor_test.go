package budget

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// frozenIDs returns an id source whose clock never moves, so every id after
// the first comes from the monotonic bump.
func frozenIDs() *IDSource {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return NewIDSource(func() time.Time { return at })
}

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	doc := Document{
		ProjectInfo: ProjectInfo{Allowance: 750000, SalesTaxRate: 10.25, Terms: DefaultTerms},
		Categories: []Category{
			{ID: "foh", Title: "Front of House", Items: []LineItem{
				{ID: 100, Description: "Lounge chair", Quantity: 10, UnitPrice: 400, Status: StatusDraft},
				{ID: 101, Description: "Side table", Quantity: 4, UnitPrice: 150, Status: StatusDraft},
				{ID: 102, Description: "Area rug", Quantity: 1, UnitPrice: 2200, Status: StatusApproved},
			}},
			{ID: "boh", Title: "Back of House", Items: []LineItem{
				{ID: 200, Description: "Prep table", Quantity: 2, UnitPrice: 900},
			}},
		},
	}
	return NewEditor(doc, frozenIDs(), quietLogger())
}

func itemByID(t *testing.T, doc Document, catID string, id int64) LineItem {
	t.Helper()
	c, ok := doc.Category(catID)
	if !ok {
		t.Fatalf("category %q not found", catID)
	}
	for _, it := range c.Items {
		if it.ID == id {
			return it
		}
	}
	t.Fatalf("item %d not found in %q", id, catID)
	return LineItem{}
}

func itemIDs(c *Category) []int64 {
	ids := make([]int64, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ID
	}
	return ids
}

func assertIDs(t *testing.T, got, want []int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
}

func TestUpdateItemField_RejectsNegativeQuantity(t *testing.T) {
	e := newTestEditor(t)

	res := e.UpdateItemField("foh", 100, Quantity(-5))

	if res.Outcome != Rejected {
		t.Fatalf("outcome = %v, want rejected", res.Outcome)
	}
	if res.Rejection == nil || res.Rejection.Field != "quantity" || res.Rejection.ItemID != 100 {
		t.Fatalf("unexpected rejection: %+v", res.Rejection)
	}
	if !errors.Is(res.Rejection, ErrNegative) {
		t.Errorf("rejection error = %v, want ErrNegative", res.Rejection.Err)
	}
	if got := itemByID(t, e.Document(), "foh", 100).Quantity; got != 10 {
		t.Errorf("quantity = %v, want 10", got)
	}
	if e.IsDirty() {
		t.Error("rejected update must not mark the document dirty")
	}
}

func TestUpdateItemField_NumericValidation(t *testing.T) {
	tests := []struct {
		name  string
		field ItemField
		want  Outcome
	}{
		{"positive quantity", Quantity(12), Applied},
		{"zero quantity", Quantity(0), Applied},
		{"NaN quantity", Quantity(math.NaN()), Rejected},
		{"infinite price", UnitPrice(math.Inf(1)), Rejected},
		{"negative price", UnitPrice(-0.01), Rejected},
		{"fractional price", UnitPrice(99.99), Applied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t)
			before := itemByID(t, e.Document(), "foh", 101)

			res := e.UpdateItemField("foh", 101, tt.field)
			if res.Outcome != tt.want {
				t.Fatalf("outcome = %v, want %v", res.Outcome, tt.want)
			}
			after := itemByID(t, e.Document(), "foh", 101)
			if tt.want == Rejected && (after.Quantity != before.Quantity || after.UnitPrice != before.UnitPrice) {
				t.Errorf("rejected update changed the item: %+v", after)
			}
		})
	}
}

func TestUpdateItemField_TextFieldsAcceptedUnconditionally(t *testing.T) {
	e := newTestEditor(t)

	for _, f := range []ItemField{
		Manufacturer("Knoll"),
		Description("Barcelona chair"),
		Dimensions("30\" x 30\" x 29\""),
		LeadTime("10-12 weeks"),
		Notes(""),
		Status("Backordered"),
	} {
		if res := e.UpdateItemField("foh", 100, f); !res.OK() {
			t.Fatalf("%s: outcome = %v", f.FieldName(), res.Outcome)
		}
	}

	it := itemByID(t, e.Document(), "foh", 100)
	if it.Manufacturer != "Knoll" || it.Description != "Barcelona chair" || it.LeadTime != "10-12 weeks" {
		t.Errorf("unexpected item: %+v", it)
	}
	if it.Status != "Backordered" || it.Status.Known() {
		t.Errorf("status = %q, want stored as-is and unknown", it.Status)
	}
	if !e.IsDirty() {
		t.Error("expected dirty document")
	}
}

func TestUpdateItemFieldText(t *testing.T) {
	tests := []struct {
		name  string
		field string
		raw   string
		want  Outcome
	}{
		{"quantity", "quantity", "12", Applied},
		{"price with symbol and comma", "unitPrice", "$1,250.50", Applied},
		{"garbage quantity", "quantity", "twelve", Rejected},
		{"negative price", "unitPrice", "-3", Rejected},
		{"unknown field", "colour", "red", Rejected},
		{"status free text", "status", "Whatever", Applied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t)
			res := e.UpdateItemFieldText("foh", 100, tt.field, tt.raw)
			if res.Outcome != tt.want {
				t.Fatalf("outcome = %v, want %v", res.Outcome, tt.want)
			}
			if tt.want == Rejected {
				if res.Rejection.Value != tt.raw || res.Rejection.ItemID != 100 {
					t.Errorf("diagnostic = %+v", res.Rejection)
				}
			}
		})
	}
}

func TestUpdateItemField_UnknownTargetsAreNoOps(t *testing.T) {
	e := newTestEditor(t)
	before := e.Document()

	if res := e.UpdateItemField("nope", 100, Quantity(3)); res.Outcome != NoOp {
		t.Errorf("unknown category outcome = %v", res.Outcome)
	}
	if res := e.UpdateItemField("foh", 999, Quantity(3)); res.Outcome != NoOp {
		t.Errorf("unknown item outcome = %v", res.Outcome)
	}
	if res := e.UpdateItemField("boh", 100, Quantity(3)); res.Outcome != NoOp {
		t.Errorf("item in other category outcome = %v", res.Outcome)
	}
	if got, want := itemByID(t, e.Document(), "foh", 100).Quantity, itemByID(t, before, "foh", 100).Quantity; got != want {
		t.Errorf("quantity = %v, want %v", got, want)
	}
	if e.IsDirty() {
		t.Error("no-op must not mark the document dirty")
	}
}

func TestUpdateProjectField(t *testing.T) {
	e := newTestEditor(t)

	if res := e.UpdateProjectField(Allowance(-1)); res.Outcome != Rejected {
		t.Fatalf("negative allowance outcome = %v", res.Outcome)
	}
	if res := e.UpdateProjectField(SalesTaxRate(math.NaN())); res.Outcome != Rejected {
		t.Fatalf("NaN tax outcome = %v", res.Outcome)
	}
	if res := e.UpdateProjectFieldText("salesTaxRate", "abc"); res.Outcome != Rejected {
		t.Fatalf("unparsable tax outcome = %v", res.Outcome)
	}
	info := e.Document().ProjectInfo
	if info.Allowance != 750000 || info.SalesTaxRate != 10.25 {
		t.Fatalf("numeric fields changed: %+v", info)
	}

	for _, f := range []ProjectField{
		ProjectName("Harbor Hotel"),
		ProjectDate("not a date"),
		Client("Harbor LLC"),
		Allowance(500000),
		SalesTaxRate(8.875),
	} {
		if res := e.UpdateProjectField(f); !res.OK() {
			t.Fatalf("%s: outcome = %v", f.FieldName(), res.Outcome)
		}
	}
	info = e.Document().ProjectInfo
	if info.Name != "Harbor Hotel" || info.Date != "not a date" || info.Allowance != 500000 || info.SalesTaxRate != 8.875 {
		t.Errorf("unexpected info: %+v", info)
	}

	if res := e.UpdateProjectFieldText("terms", "One\n\n Two \n"); !res.OK() {
		t.Fatalf("terms outcome = %v", res.Outcome)
	}
	if terms := e.Document().ProjectInfo.Terms; len(terms) != 2 || terms[1] != "Two" {
		t.Errorf("terms = %q", terms)
	}
}

func TestTotalsFollowMutations(t *testing.T) {
	e := newTestEditor(t)
	before := e.Totals().GrandTotal

	e.UpdateItemField("boh", 200, Quantity(3))

	after := e.Totals().GrandTotal
	if !after.Sub(before).Equal(dec("900")) {
		t.Errorf("grand total moved by %s, want 900", after.Sub(before))
	}
}

func TestRemoveItem(t *testing.T) {
	t.Run("unknown id is a no-op", func(t *testing.T) {
		e := newTestEditor(t)
		res := e.RemoveItem("foh", 999999)
		if res.Outcome != NoOp {
			t.Fatalf("outcome = %v", res.Outcome)
		}
		doc := e.Document()
		c, _ := doc.Category("foh")
		assertIDs(t, itemIDs(c), []int64{100, 101, 102})
	})

	t.Run("keeps order of the rest", func(t *testing.T) {
		e := newTestEditor(t)
		if res := e.RemoveItem("foh", 101); !res.OK() {
			t.Fatalf("outcome = %v", res.Outcome)
		}
		doc := e.Document()
		c, _ := doc.Category("foh")
		assertIDs(t, itemIDs(c), []int64{100, 102})
	})
}

func TestAddItem(t *testing.T) {
	e := newTestEditor(t)

	res := e.AddItem("boh")
	if !res.OK() {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	it := itemByID(t, e.Document(), "boh", res.ItemID)
	if it.Quantity != 1 || it.UnitPrice != 0 || it.Status != StatusDraft {
		t.Errorf("unexpected defaults: %+v", it)
	}
	if it.Specification == nil || it.Specification.DetailedDescription != "" || len(it.Specification.Attachments) != 0 {
		t.Errorf("unexpected specification: %+v", it.Specification)
	}
	if res.ItemID <= 200 {
		t.Errorf("new id %d must exceed existing ids", res.ItemID)
	}

	if res := e.AddItem("missing"); res.Outcome != NoOp {
		t.Errorf("unknown category outcome = %v", res.Outcome)
	}
}

func TestDuplicateItem(t *testing.T) {
	e := newTestEditor(t)
	e.SaveItemSpecification("foh", 100, Specification{
		DetailedDescription: "COM fabric",
		Attachments:         []Attachment{{ID: "a1", Name: "cut.pdf", Data: []byte("x")}},
	})

	res := e.DuplicateItem("foh", 100)
	if !res.OK() {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	doc := e.Document()
	c, _ := doc.Category("foh")
	assertIDs(t, itemIDs(c), []int64{100, res.ItemID, 101, 102})

	orig, dup := c.Items[0], c.Items[1]
	if dup.Description != orig.Description || dup.Quantity != orig.Quantity || dup.UnitPrice != orig.UnitPrice {
		t.Errorf("copy differs: %+v vs %+v", dup, orig)
	}
	if dup.Specification == nil || dup.Specification.DetailedDescription != "COM fabric" || len(dup.Specification.Attachments) != 1 {
		t.Fatalf("specification not copied: %+v", dup.Specification)
	}

	// The copy must not share storage with the original.
	e.UpdateItemField("foh", res.ItemID, Description("changed"))
	e.RemoveAttachment("foh", res.ItemID, "a1")
	orig = itemByID(t, e.Document(), "foh", 100)
	if orig.Description != "Lounge chair" || len(orig.Specification.Attachments) != 1 {
		t.Errorf("original changed through the copy: %+v", orig)
	}
}

func TestMoveItem(t *testing.T) {
	tests := []struct {
		name  string
		index int
		dir   Direction
		want  []int64
		out   Outcome
	}{
		{"first up is a no-op", 0, Up, []int64{100, 101, 102}, NoOp},
		{"last down is a no-op", 2, Down, []int64{100, 101, 102}, NoOp},
		{"middle up", 1, Up, []int64{101, 100, 102}, Applied},
		{"first down", 0, Down, []int64{101, 100, 102}, Applied},
		{"out of range", 7, Up, []int64{100, 101, 102}, NoOp},
		{"bad direction", 1, Direction("sideways"), []int64{100, 101, 102}, Rejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t)
			res := e.MoveItem("foh", tt.index, tt.dir)
			if res.Outcome != tt.out {
				t.Fatalf("outcome = %v, want %v", res.Outcome, tt.out)
			}
			doc := e.Document()
			c, _ := doc.Category("foh")
			assertIDs(t, itemIDs(c), tt.want)
		})
	}
}

func TestCategoryLifecycle(t *testing.T) {
	e := newTestEditor(t)

	res := e.AddCategory()
	if !res.OK() {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	doc := e.Document()
	c, ok := doc.Category(res.CategoryID)
	if !ok {
		t.Fatal("new category not found")
	}
	if c.Title != DefaultCategoryTitle || len(c.Items) != 1 || c.Items[0].ID != res.ItemID {
		t.Errorf("unexpected new category: %+v", c)
	}
	if c.IconKey != FallbackVisual.IconKey || c.ColorTag != FallbackVisual.ColorTag {
		t.Errorf("visual = %q/%q, want fallback", c.IconKey, c.ColorTag)
	}

	if res := e.UpdateCategoryTitle(res.CategoryID, "Spa"); !res.OK() {
		t.Fatalf("rename outcome = %v", res.Outcome)
	}
	if res := e.UpdateCategoryTitle("missing", "x"); res.Outcome != NoOp {
		t.Errorf("rename unknown outcome = %v", res.Outcome)
	}

	if res := e.RemoveCategory("foh"); !res.OK() {
		t.Fatalf("remove outcome = %v", res.Outcome)
	}
	doc = e.Document()
	if _, ok := doc.Category("foh"); ok {
		t.Error("foh still present")
	}
	if len(doc.Categories) != 2 {
		t.Errorf("got %d categories, want 2", len(doc.Categories))
	}
	if _, ok := e.Totals().CategoryTotals["foh"]; ok {
		t.Error("removed category still has a total")
	}
	if res := e.RemoveCategory("foh"); res.Outcome != NoOp {
		t.Errorf("second remove outcome = %v", res.Outcome)
	}
}

func TestIDUniqueness(t *testing.T) {
	e := newTestEditor(t)

	for i := 0; i < 50; i++ {
		e.AddItem("foh")
		e.DuplicateItem("boh", 200)
		e.AddCategory()
	}

	doc := e.Document()
	items := map[int64]bool{}
	cats := map[string]bool{}
	for _, c := range doc.Categories {
		if cats[c.ID] {
			t.Fatalf("duplicate category id %q", c.ID)
		}
		cats[c.ID] = true
		for _, it := range c.Items {
			if items[it.ID] {
				t.Fatalf("duplicate item id %d", it.ID)
			}
			items[it.ID] = true
		}
	}
	if len(items) != 4+50*3 {
		t.Errorf("got %d items, want %d", len(items), 4+50*3)
	}
}

func TestAttachments(t *testing.T) {
	e := newTestEditor(t)

	res := e.AddAttachment("boh", 200, Attachment{Name: "sheet.pdf", MimeType: "application/pdf", Data: []byte("%PDF-1.4")})
	if !res.OK() {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	it := itemByID(t, e.Document(), "boh", 200)
	if it.Specification == nil || len(it.Specification.Attachments) != 1 {
		t.Fatalf("attachment not stored: %+v", it.Specification)
	}
	a := it.Specification.Attachments[0]
	if a.ID == "" || a.SizeBytes != 8 {
		t.Errorf("unexpected attachment: %+v", a)
	}

	if res := e.RemoveAttachment("boh", 200, "nope"); res.Outcome != NoOp {
		t.Errorf("unknown attachment outcome = %v", res.Outcome)
	}
	if res := e.RemoveAttachment("boh", 200, a.ID); !res.OK() {
		t.Errorf("remove outcome = %v", res.Outcome)
	}
}

func TestReplaceClearsDirty(t *testing.T) {
	e := newTestEditor(t)
	e.AddItem("foh")
	if !e.IsDirty() {
		t.Fatal("expected dirty")
	}

	e.Replace(NewTemplate(frozenIDs()))
	if e.IsDirty() {
		t.Error("Replace must clear the dirty flag")
	}
	doc := e.Document()
	if _, ok := doc.Category("boh"); !ok {
		t.Error("template categories missing")
	}
}

func TestOnChangeFiresOnlyWhenApplied(t *testing.T) {
	e := newTestEditor(t)
	calls := 0
	e.OnChange(func() { calls++ })

	e.UpdateItemField("foh", 100, Quantity(-1))
	e.RemoveItem("foh", 424242)
	e.UpdateItemField("foh", 100, Quantity(2))

	if calls != 1 {
		t.Errorf("OnChange called %d times, want 1", calls)
	}
}

func TestSpecification(t *testing.T) {
	e := newTestEditor(t)
	e.SaveItemSpecification("foh", 100, Specification{
		DetailedDescription: "Walnut frame",
		Attachments:         []Attachment{{ID: "a1", Name: "cut.pdf", Data: []byte("x")}},
	})

	spec, ok := e.Specification("foh", 100)
	if !ok {
		t.Fatal("expected a specification")
	}
	if spec.DetailedDescription != "Walnut frame" || len(spec.Attachments) != 1 {
		t.Fatalf("unexpected specification %+v", spec)
	}

	// The copy must not reach back into the document.
	spec.Attachments[0].Data[0] = 'y'
	spec.DetailedDescription = "changed"
	got := itemByID(t, e.Document(), "foh", 100).Specification
	if got.DetailedDescription != "Walnut frame" || string(got.Attachments[0].Data) != "x" {
		t.Errorf("document changed through the copy: %+v", got)
	}

	tests := []struct {
		name   string
		catID  string
		itemID int64
	}{
		{"no specification", "foh", 101},
		{"unknown item", "foh", 999},
		{"unknown category", "spa", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := e.Specification(tt.catID, tt.itemID); ok {
				t.Error("expected no specification")
			}
		})
	}
}
