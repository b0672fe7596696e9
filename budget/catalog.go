package budget

// Visual is the presentation reference for a category. It is resolved at
// load time and never stored in a document file.
type Visual struct {
	IconKey  string
	ColorTag string
}

// FallbackVisual is used for categories the catalog does not know.
var FallbackVisual = Visual{IconKey: "package", ColorTag: "slate"}

// Well-known category ids.
const (
	CategoryFrontOfHouse = "foh"
	CategoryBackOfHouse  = "boh"
	CategoryGuestrooms   = "guestrooms"
	CategoryPublicAreas  = "public"
	CategoryLighting     = "lighting"
	CategoryOutdoor      = "outdoor"
)

var catalog = map[string]Visual{
	CategoryFrontOfHouse: {IconKey: "sofa", ColorTag: "amber"},
	CategoryBackOfHouse:  {IconKey: "chef-hat", ColorTag: "stone"},
	CategoryGuestrooms:   {IconKey: "bed", ColorTag: "indigo"},
	CategoryPublicAreas:  {IconKey: "building", ColorTag: "teal"},
	CategoryLighting:     {IconKey: "lamp", ColorTag: "yellow"},
	CategoryOutdoor:      {IconKey: "trees", ColorTag: "green"},
}

// LookupVisual returns the catalog entry for id and whether id is well known.
func LookupVisual(id string) (Visual, bool) {
	v, ok := catalog[id]
	if !ok {
		return FallbackVisual, false
	}
	return v, true
}

// ApplyVisual sets the icon and color of c. Well-known ids always get their
// fixed visual; other ids keep a stored color and fall back otherwise.
func ApplyVisual(c *Category) {
	v, known := LookupVisual(c.ID)
	c.IconKey = v.IconKey
	if known || c.ColorTag == "" {
		c.ColorTag = v.ColorTag
	}
}

// NewTemplate returns the starting document for a blank project.
func NewTemplate(ids *IDSource) Document {
	sections := []struct {
		id, title string
	}{
		{CategoryFrontOfHouse, "Front of House"},
		{CategoryBackOfHouse, "Back of House"},
		{CategoryGuestrooms, "Guest Rooms"},
		{CategoryPublicAreas, "Public Areas"},
		{CategoryLighting, "Lighting"},
		{CategoryOutdoor, "Outdoor"},
	}

	doc := Document{
		ProjectInfo: ProjectInfo{
			Terms: append([]string(nil), DefaultTerms...),
		},
		Categories: make([]Category, 0, len(sections)),
	}
	for _, s := range sections {
		c := Category{ID: s.id, Title: s.title, Items: []LineItem{NewLineItem(ids.Next())}}
		ApplyVisual(&c)
		doc.Categories = append(doc.Categories, c)
	}
	return doc
}
