package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"ffebudget/session"
)

// DocumentLister lists the saved documents available to open.
type DocumentLister interface {
	List() ([]string, error)
}

// formBool reads a boolean query or form value ("1", "true", "on").
func formBool(e *core.RequestEvent, key string) bool {
	v := strings.TrimSpace(e.Request.FormValue(key))
	if v == "on" {
		return true
	}
	return cast.ToBool(v)
}

// documentName validates a client supplied document name. Names are
// relative to the documents directory.
func documentName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if name == "" || filepath.IsAbs(name) || strings.Contains(name, "..") {
		return "", false
	}
	return name, true
}

// HandleGetDocument returns the project info, categories, totals and dirty flag.
func HandleGetDocument(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return e.JSON(http.StatusOK, documentView(s.State()))
	}
}

// HandleListDocuments returns the names of the saved documents.
func HandleListDocuments(files DocumentLister) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		names, err := files.List()
		if err != nil {
			return respondError(e, "list_documents", err)
		}
		return e.JSON(http.StatusOK, map[string]any{"documents": names})
	}
}

// HandleNewDocument replaces the document with a blank template. Unsaved
// changes are kept and 409 returned unless force is set.
func HandleNewDocument(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := s.New(e.Request.Context(), formBool(e, "force")); err != nil {
			return respondError(e, "new_document", err)
		}
		SetToast(e, ToastSuccess, "Started a new budget")
		return e.JSON(http.StatusOK, documentView(s.State()))
	}
}

// HandleOpenDocument loads a saved document by name.
func HandleOpenDocument(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		name, ok := documentName(e.Request.FormValue("path"))
		if !ok {
			return ErrorToast(e, http.StatusBadRequest, "Invalid document name")
		}

		if err := s.Open(e.Request.Context(), name, formBool(e, "force")); err != nil {
			return respondError(e, "open_document", err)
		}
		SetToast(e, ToastSuccess, "Opened "+name)
		return e.JSON(http.StatusOK, documentView(s.State()))
	}
}

// HandleSaveDocument writes the document. An empty path saves to the file
// the document was opened from.
func HandleSaveDocument(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		name := ""
		if raw := e.Request.FormValue("path"); strings.TrimSpace(raw) != "" {
			var ok bool
			if name, ok = documentName(raw); !ok {
				return ErrorToast(e, http.StatusBadRequest, "Invalid document name")
			}
		}

		if err := s.Save(e.Request.Context(), name); err != nil {
			return respondError(e, "save_document", err)
		}
		SetToast(e, ToastSuccess, "Budget saved")
		return e.JSON(http.StatusOK, documentView(s.State()))
	}
}

// HandleRecoveryStatus reports whether a recovery snapshot is offered.
func HandleRecoveryStatus(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		offered, err := s.CheckRecovery(e.Request.Context())
		if err != nil {
			return respondError(e, "recovery_status", err)
		}
		return e.JSON(http.StatusOK, map[string]bool{"available": offered})
	}
}

// HandleRecoveryResume replaces the document with the offered recovery
// snapshot. Unsaved changes answer 409 unless force is set.
func HandleRecoveryResume(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := s.Resume(e.Request.Context(), formBool(e, "force")); err != nil {
			return respondError(e, "recovery_resume", err)
		}
		SetToast(e, ToastSuccess, "Recovered unsaved work")
		return e.JSON(http.StatusOK, documentView(s.State()))
	}
}

// HandleRecoveryDiscard deletes the recovery snapshot.
func HandleRecoveryDiscard(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := s.Discard(e.Request.Context()); err != nil {
			return respondError(e, "recovery_discard", err)
		}
		return e.NoContent(http.StatusNoContent)
	}
}
