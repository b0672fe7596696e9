package budget

import "testing"

func TestApplyVisual(t *testing.T) {
	tests := []struct {
		name      string
		in        Category
		wantIcon  string
		wantColor string
	}{
		{"known id ignores stored color", Category{ID: "foh", ColorTag: "pink"}, "sofa", "amber"},
		{"known id without color", Category{ID: "lighting"}, "lamp", "yellow"},
		{"custom id keeps stored color", Category{ID: "custom-1", ColorTag: "rose"}, "package", "rose"},
		{"custom id without color", Category{ID: "custom-2"}, "package", "slate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.in
			ApplyVisual(&c)
			if c.IconKey != tt.wantIcon || c.ColorTag != tt.wantColor {
				t.Errorf("visual = %q/%q, want %q/%q", c.IconKey, c.ColorTag, tt.wantIcon, tt.wantColor)
			}
		})
	}
}

func TestNewTemplate(t *testing.T) {
	doc := NewTemplate(frozenIDs())

	want := []string{"foh", "boh", "guestrooms", "public", "lighting", "outdoor"}
	if len(doc.Categories) != len(want) {
		t.Fatalf("got %d categories, want %d", len(doc.Categories), len(want))
	}
	seen := map[int64]bool{}
	for i, c := range doc.Categories {
		if c.ID != want[i] {
			t.Errorf("category %d = %q, want %q", i, c.ID, want[i])
		}
		if len(c.Items) != 1 {
			t.Fatalf("%s: got %d items, want 1", c.ID, len(c.Items))
		}
		if seen[c.Items[0].ID] {
			t.Errorf("duplicate item id %d", c.Items[0].ID)
		}
		seen[c.Items[0].ID] = true
	}
	if len(doc.ProjectInfo.Terms) != len(DefaultTerms) {
		t.Errorf("terms = %q", doc.ProjectInfo.Terms)
	}

	totals := ComputeTotals(doc.ProjectInfo, doc.Categories)
	if !totals.GrandTotal.IsZero() {
		t.Errorf("template grand total = %s, want 0", totals.GrandTotal)
	}
}
