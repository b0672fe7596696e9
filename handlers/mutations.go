package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pocketbase/pocketbase/core"

	"ffebudget/budget"
	"ffebudget/session"
)

// maxAttachmentSize bounds a single uploaded attachment.
const maxAttachmentSize = 25 << 20

// HandlePatchProject updates one project field from the "field" and "value"
// form values.
func HandlePatchProject(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		field := e.Request.FormValue("field")
		if field == "" {
			return ErrorToast(e, http.StatusBadRequest, "Missing field")
		}
		value := e.Request.FormValue("value")

		res := s.Mutate(func(ed *budget.Editor) budget.Result {
			return ed.UpdateProjectFieldText(field, value)
		})
		return respondMutation(e, s, res)
	}
}

// HandleAddCategory appends a category titled "New Category".
func HandleAddCategory(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		res := s.Mutate(func(ed *budget.Editor) budget.Result {
			return ed.AddCategory()
		})
		return respondMutation(e, s, res)
	}
}

// HandlePatchCategory renames a category.
func HandlePatchCategory(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		categoryID := e.Request.PathValue("categoryId")
		title := e.Request.FormValue("title")

		res := s.Mutate(func(ed *budget.Editor) budget.Result {
			return ed.UpdateCategoryTitle(categoryID, title)
		})
		return respondMutation(e, s, res)
	}
}

// HandleDeleteCategory removes a category and its items.
func HandleDeleteCategory(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		categoryID := e.Request.PathValue("categoryId")

		res := s.Mutate(func(ed *budget.Editor) budget.Result {
			return ed.RemoveCategory(categoryID)
		})
		return respondMutation(e, s, res)
	}
}

// HandleAddItem appends a default item to a category.
func HandleAddItem(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		categoryID := e.Request.PathValue("categoryId")

		res := s.Mutate(func(ed *budget.Editor) budget.Result {
			return ed.AddItem(categoryID)
		})
		return respondMutation(e, s, res)
	}
}

// HandlePatchItem updates one item field from the "field" and "value" form
// values. Numeric fields are validated by the editor.
func HandlePatchItem(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		categoryID := e.Request.PathValue("categoryId")
		id, ok := itemID(e)
		if !ok {
			return ErrorToast(e, http.StatusBadRequest, "Invalid item ID")
		}
		field := e.Request.FormValue("field")
		if field == "" {
			return ErrorToast(e, http.StatusBadRequest, "Missing field")
		}
		value := e.Request.FormValue("value")

		res := s.Mutate(func(ed *budget.Editor) budget.Result {
			return ed.UpdateItemFieldText(categoryID, id, field, value)
		})
		return respondMutation(e, s, res)
	}
}

// HandleDeleteItem removes an item.
func HandleDeleteItem(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		categoryID := e.Request.PathValue("categoryId")
		id, ok := itemID(e)
		if !ok {
			return ErrorToast(e, http.StatusBadRequest, "Invalid item ID")
		}

		res := s.Mutate(func(ed *budget.Editor) budget.Result {
			return ed.RemoveItem(categoryID, id)
		})
		return respondMutation(e, s, res)
	}
}

// HandleDuplicateItem inserts a copy of an item right after it.
func HandleDuplicateItem(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		categoryID := e.Request.PathValue("categoryId")
		id, ok := itemID(e)
		if !ok {
			return ErrorToast(e, http.StatusBadRequest, "Invalid item ID")
		}

		res := s.Mutate(func(ed *budget.Editor) budget.Result {
			return ed.DuplicateItem(categoryID, id)
		})
		return respondMutation(e, s, res)
	}
}

// HandleMoveItem swaps the item at "index" with its neighbor in "direction"
// (up or down).
func HandleMoveItem(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		categoryID := e.Request.PathValue("categoryId")
		index, err := strconv.Atoi(e.Request.FormValue("index"))
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid index")
		}
		dir := budget.Direction(e.Request.FormValue("direction"))
		if dir != budget.Up && dir != budget.Down {
			return ErrorToast(e, http.StatusBadRequest, "Direction must be up or down")
		}

		res := s.Mutate(func(ed *budget.Editor) budget.Result {
			return ed.MoveItem(categoryID, index, dir)
		})
		return respondMutation(e, s, res)
	}
}

// HandleSaveSpecification replaces an item's detailed description. The
// item's attachments are kept.
func HandleSaveSpecification(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		categoryID := e.Request.PathValue("categoryId")
		id, ok := itemID(e)
		if !ok {
			return ErrorToast(e, http.StatusBadRequest, "Invalid item ID")
		}
		description := e.Request.FormValue("detailedDescription")

		res := s.Mutate(func(ed *budget.Editor) budget.Result {
			spec, _ := ed.Specification(categoryID, id)
			spec.DetailedDescription = description
			return ed.SaveItemSpecification(categoryID, id, spec)
		})
		return respondMutation(e, s, res)
	}
}

// HandleAddAttachment stores an uploaded file (multipart field "file") on
// an item's specification. The MIME type is detected from the content.
func HandleAddAttachment(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		categoryID := e.Request.PathValue("categoryId")
		id, ok := itemID(e)
		if !ok {
			return ErrorToast(e, http.StatusBadRequest, "Invalid item ID")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Please select a file to attach")
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxAttachmentSize+1))
		if err != nil {
			return respondError(e, "add_attachment", err)
		}
		if len(data) > maxAttachmentSize {
			return ErrorToast(e, http.StatusRequestEntityTooLarge, "File is too large")
		}

		a := budget.Attachment{
			ID:        budget.NewAttachmentID(),
			Name:      header.Filename,
			MimeType:  mimetype.Detect(data).String(),
			SizeBytes: int64(len(data)),
			Data:      data,
		}
		res := s.Mutate(func(ed *budget.Editor) budget.Result {
			return ed.AddAttachment(categoryID, id, a)
		})
		return respondMutation(e, s, res)
	}
}

// HandleDeleteAttachment removes one attachment from an item.
func HandleDeleteAttachment(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		categoryID := e.Request.PathValue("categoryId")
		id, ok := itemID(e)
		if !ok {
			return ErrorToast(e, http.StatusBadRequest, "Invalid item ID")
		}
		attachmentID := e.Request.PathValue("attachmentId")

		res := s.Mutate(func(ed *budget.Editor) budget.Result {
			return ed.RemoveAttachment(categoryID, id, attachmentID)
		})
		return respondMutation(e, s, res)
	}
}
