package budget

import (
	"fmt"
	"log/slog"
)

// Outcome says whether a mutation changed the document.
type Outcome int

const (
	// Applied means the document changed.
	Applied Outcome = iota
	// Rejected means a value failed validation; nothing changed.
	Rejected
	// NoOp means the target did not exist or there was nothing to do.
	NoOp
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Rejected:
		return "rejected"
	default:
		return "noop"
	}
}

// Rejection describes a value the editor refused to store.
type Rejection struct {
	Field      string
	CategoryID string
	ItemID     int64
	Value      any
	Err        error
}

func (r *Rejection) Error() string {
	if r.ItemID != 0 {
		return fmt.Sprintf("rejected %s=%v on item %d: %v", r.Field, r.Value, r.ItemID, r.Err)
	}
	return fmt.Sprintf("rejected %s=%v: %v", r.Field, r.Value, r.Err)
}

func (r *Rejection) Unwrap() error { return r.Err }

// Result is returned by every mutation. CategoryID and ItemID name the
// entity created by add and duplicate operations.
type Result struct {
	Outcome    Outcome
	Rejection  *Rejection
	CategoryID string
	ItemID     int64
}

// OK reports whether the mutation took effect.
func (r Result) OK() bool { return r.Outcome == Applied }

func noop() Result { return Result{Outcome: NoOp} }

// Direction is the way MoveItem shifts an item.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// DefaultCategoryTitle is the title given to categories created by AddCategory.
const DefaultCategoryTitle = "New Category"

// Editor owns a document and applies mutations to it. It is not safe for
// concurrent use; callers serialize access.
type Editor struct {
	doc      Document
	ids      *IDSource
	dirty    bool
	logger   *slog.Logger
	onChange func()
}

// NewEditor wraps doc. Visuals are resolved and the id source is advanced
// past every id already in doc.
func NewEditor(doc Document, ids *IDSource, logger *slog.Logger) *Editor {
	if ids == nil {
		ids = NewIDSource(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Editor{ids: ids, logger: logger}
	e.install(doc)
	return e
}

// OnChange registers fn to run after every applied mutation.
func (e *Editor) OnChange(fn func()) { e.onChange = fn }

// Replace makes doc the sole active document and clears the dirty flag.
func (e *Editor) Replace(doc Document) {
	e.install(doc)
	e.dirty = false
}

func (e *Editor) install(doc Document) {
	e.doc = doc.Clone()
	for i := range e.doc.Categories {
		ApplyVisual(&e.doc.Categories[i])
	}
	e.ids.Observe(e.doc)
}

// Document returns a copy of the current document.
func (e *Editor) Document() Document { return e.doc.Clone() }

// Totals recomputes the derived totals.
func (e *Editor) Totals() Totals {
	return ComputeTotals(e.doc.ProjectInfo, e.doc.Categories)
}

// IsDirty reports whether there are unsaved changes.
func (e *Editor) IsDirty() bool { return e.dirty }

// MarkClean clears the dirty flag after a successful save.
func (e *Editor) MarkClean() { e.dirty = false }

// MarkDirty flags the document as unsaved, e.g. after a recovery load.
func (e *Editor) MarkDirty() { e.dirty = true }

func (e *Editor) changed(r Result) Result {
	e.dirty = true
	if e.onChange != nil {
		e.onChange()
	}
	return r
}

func (e *Editor) reject(r *Rejection) Result {
	e.logger.Warn("budget: rejected update",
		"field", r.Field,
		"category_id", r.CategoryID,
		"item_id", r.ItemID,
		"value", r.Value,
		"error", r.Err)
	return Result{Outcome: Rejected, Rejection: r}
}

func (e *Editor) missing(op, categoryID string, itemID int64) Result {
	e.logger.Debug("budget: target not found",
		"operation", op,
		"category_id", categoryID,
		"item_id", itemID)
	return noop()
}

func (e *Editor) item(categoryID string, itemID int64) (*Category, int, bool) {
	c, ok := e.doc.Category(categoryID)
	if !ok {
		return nil, -1, false
	}
	idx := c.itemIndex(itemID)
	if idx < 0 {
		return nil, -1, false
	}
	return c, idx, true
}

// UpdateProjectField applies f to the project metadata.
func (e *Editor) UpdateProjectField(f ProjectField) Result {
	info := e.doc.ProjectInfo
	if err := f.applyProject(&info); err != nil {
		return e.reject(&Rejection{Field: f.FieldName(), Value: fieldValue(f), Err: err})
	}
	e.doc.ProjectInfo = info
	return e.changed(Result{Outcome: Applied})
}

// UpdateItemField applies f to one item. Unknown ids are a silent no-op.
func (e *Editor) UpdateItemField(categoryID string, itemID int64, f ItemField) Result {
	c, idx, ok := e.item(categoryID, itemID)
	if !ok {
		return e.missing("update_item", categoryID, itemID)
	}
	it := c.Items[idx]
	if err := f.applyItem(&it); err != nil {
		return e.reject(&Rejection{
			Field:      f.FieldName(),
			CategoryID: categoryID,
			ItemID:     itemID,
			Value:      fieldValue(f),
			Err:        err,
		})
	}
	c.Items[idx] = it
	return e.changed(Result{Outcome: Applied, CategoryID: categoryID, ItemID: itemID})
}

// UpdateItemFieldText parses raw for the named field and applies it.
func (e *Editor) UpdateItemFieldText(categoryID string, itemID int64, field, raw string) Result {
	f, err := ParseItemField(field, raw)
	if err != nil {
		r := err.(*Rejection)
		r.CategoryID, r.ItemID = categoryID, itemID
		return e.reject(r)
	}
	return e.UpdateItemField(categoryID, itemID, f)
}

// UpdateProjectFieldText parses raw for the named field and applies it.
func (e *Editor) UpdateProjectFieldText(field, raw string) Result {
	f, err := ParseProjectField(field, raw)
	if err != nil {
		return e.reject(err.(*Rejection))
	}
	return e.UpdateProjectField(f)
}

// AddItem appends a default item to the category.
func (e *Editor) AddItem(categoryID string) Result {
	c, ok := e.doc.Category(categoryID)
	if !ok {
		return e.missing("add_item", categoryID, 0)
	}
	it := NewLineItem(e.ids.Next())
	c.Items = append(c.Items, it)
	return e.changed(Result{Outcome: Applied, CategoryID: categoryID, ItemID: it.ID})
}

// RemoveItem deletes an item, keeping the order of the rest.
func (e *Editor) RemoveItem(categoryID string, itemID int64) Result {
	c, idx, ok := e.item(categoryID, itemID)
	if !ok {
		return e.missing("remove_item", categoryID, itemID)
	}
	c.Items = append(c.Items[:idx:idx], c.Items[idx+1:]...)
	return e.changed(Result{Outcome: Applied, CategoryID: categoryID, ItemID: itemID})
}

// DuplicateItem inserts a copy of the item, specification included, right
// after the original. The copy gets a fresh id.
func (e *Editor) DuplicateItem(categoryID string, itemID int64) Result {
	c, idx, ok := e.item(categoryID, itemID)
	if !ok {
		return e.missing("duplicate_item", categoryID, itemID)
	}
	dup := c.Items[idx].clone()
	dup.ID = e.ids.Next()

	items := make([]LineItem, 0, len(c.Items)+1)
	items = append(items, c.Items[:idx+1]...)
	items = append(items, dup)
	items = append(items, c.Items[idx+1:]...)
	c.Items = items
	return e.changed(Result{Outcome: Applied, CategoryID: categoryID, ItemID: dup.ID})
}

// MoveItem swaps the item at index with its neighbor. Moving the first item
// up or the last item down does nothing.
func (e *Editor) MoveItem(categoryID string, index int, dir Direction) Result {
	c, ok := e.doc.Category(categoryID)
	if !ok {
		return e.missing("move_item", categoryID, 0)
	}
	var target int
	switch dir {
	case Up:
		target = index - 1
	case Down:
		target = index + 1
	default:
		return e.reject(&Rejection{Field: "direction", CategoryID: categoryID, Value: string(dir), Err: ErrUnknownField})
	}
	if index < 0 || index >= len(c.Items) || target < 0 || target >= len(c.Items) {
		return noop()
	}
	c.Items[index], c.Items[target] = c.Items[target], c.Items[index]
	return e.changed(Result{Outcome: Applied, CategoryID: categoryID, ItemID: c.Items[target].ID})
}

// AddCategory appends a category with the default title and one empty item.
func (e *Editor) AddCategory() Result {
	c := Category{
		ID:    NewCategoryID(&e.doc),
		Title: DefaultCategoryTitle,
		Items: []LineItem{NewLineItem(e.ids.Next())},
	}
	ApplyVisual(&c)
	e.doc.Categories = append(e.doc.Categories, c)
	return e.changed(Result{Outcome: Applied, CategoryID: c.ID, ItemID: c.Items[0].ID})
}

// UpdateCategoryTitle replaces the category title.
func (e *Editor) UpdateCategoryTitle(categoryID, title string) Result {
	c, ok := e.doc.Category(categoryID)
	if !ok {
		return e.missing("update_category_title", categoryID, 0)
	}
	c.Title = title
	return e.changed(Result{Outcome: Applied, CategoryID: categoryID})
}

// RemoveCategory deletes the category and all of its items.
func (e *Editor) RemoveCategory(categoryID string) Result {
	for i := range e.doc.Categories {
		if e.doc.Categories[i].ID == categoryID {
			e.doc.Categories = append(e.doc.Categories[:i:i], e.doc.Categories[i+1:]...)
			return e.changed(Result{Outcome: Applied, CategoryID: categoryID})
		}
	}
	return e.missing("remove_category", categoryID, 0)
}

// Specification returns a copy of the item's specification, or false when
// the item does not exist or has none.
func (e *Editor) Specification(categoryID string, itemID int64) (Specification, bool) {
	c, idx, ok := e.item(categoryID, itemID)
	if !ok || c.Items[idx].Specification == nil {
		return Specification{}, false
	}
	return *c.Items[idx].Specification.clone(), true
}

// SaveItemSpecification replaces the item's specification wholesale.
func (e *Editor) SaveItemSpecification(categoryID string, itemID int64, spec Specification) Result {
	c, idx, ok := e.item(categoryID, itemID)
	if !ok {
		return e.missing("save_specification", categoryID, itemID)
	}
	saved := spec.clone()
	if saved.Attachments == nil {
		saved.Attachments = []Attachment{}
	}
	c.Items[idx].Specification = saved
	return e.changed(Result{Outcome: Applied, CategoryID: categoryID, ItemID: itemID})
}

// AddAttachment appends a to the item's specification, creating an empty
// specification first if needed. A missing attachment id is generated.
func (e *Editor) AddAttachment(categoryID string, itemID int64, a Attachment) Result {
	c, idx, ok := e.item(categoryID, itemID)
	if !ok {
		return e.missing("add_attachment", categoryID, itemID)
	}
	if a.ID == "" {
		a.ID = NewAttachmentID()
	}
	a.Data = append([]byte(nil), a.Data...)
	if a.SizeBytes == 0 {
		a.SizeBytes = int64(len(a.Data))
	}
	it := &c.Items[idx]
	if it.Specification == nil {
		it.Specification = EmptySpecification()
	}
	it.Specification.Attachments = append(it.Specification.Attachments, a)
	return e.changed(Result{Outcome: Applied, CategoryID: categoryID, ItemID: itemID})
}

// RemoveAttachment drops one attachment from the item's specification.
func (e *Editor) RemoveAttachment(categoryID string, itemID int64, attachmentID string) Result {
	c, idx, ok := e.item(categoryID, itemID)
	if !ok {
		return e.missing("remove_attachment", categoryID, itemID)
	}
	spec := c.Items[idx].Specification
	if spec == nil {
		return noop()
	}
	for i, a := range spec.Attachments {
		if a.ID == attachmentID {
			spec.Attachments = append(spec.Attachments[:i:i], spec.Attachments[i+1:]...)
			return e.changed(Result{Outcome: Applied, CategoryID: categoryID, ItemID: itemID})
		}
	}
	return noop()
}
