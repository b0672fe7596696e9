package handlers

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"ffebudget/autosave"
	"ffebudget/budget"
	"ffebudget/persistence"
	"ffebudget/session"
)

// CategoryView is a category as sent to the client, with its resolved
// icon and subtotal.
type CategoryView struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	ColorTag string            `json:"colorTag"`
	IconKey  string            `json:"iconKey"`
	Total    decimal.Decimal   `json:"total"`
	Items    []budget.LineItem `json:"items"`
}

// DocumentView is the JSON body of GET /api/document.
type DocumentView struct {
	ProjectInfo budget.ProjectInfo `json:"projectInfo"`
	Categories  []CategoryView     `json:"categories"`
	Totals      budget.Totals      `json:"totals"`
	OverBudget  bool               `json:"overBudget"`
	Dirty       bool               `json:"dirty"`
	Path        string             `json:"path"`
}

// RejectionView describes a refused mutation.
type RejectionView struct {
	Field      string `json:"field"`
	CategoryID string `json:"categoryId,omitempty"`
	ItemID     int64  `json:"itemId,omitempty"`
	Value      any    `json:"value"`
	Reason     string `json:"reason"`
}

// MutationView is the JSON body returned by every editing endpoint.
type MutationView struct {
	Applied    bool           `json:"applied"`
	Outcome    string         `json:"outcome"`
	CategoryID string         `json:"categoryId,omitempty"`
	ItemID     int64          `json:"itemId,omitempty"`
	Rejection  *RejectionView `json:"rejection,omitempty"`
	Document   *DocumentView  `json:"document,omitempty"`
}

func documentView(st session.State) DocumentView {
	v := DocumentView{
		ProjectInfo: st.Document.ProjectInfo,
		Categories:  make([]CategoryView, 0, len(st.Document.Categories)),
		Totals:      st.Totals,
		OverBudget:  st.Totals.OverBudget(),
		Dirty:       st.Dirty,
		Path:        st.Path,
	}
	for _, c := range st.Document.Categories {
		v.Categories = append(v.Categories, CategoryView{
			ID:       c.ID,
			Title:    c.Title,
			ColorTag: c.ColorTag,
			IconKey:  c.IconKey,
			Total:    st.Totals.CategoryTotals[c.ID],
			Items:    c.Items,
		})
	}
	return v
}

// respondMutation translates a mutation outcome: applied and no-op results
// are 200 with the current document, rejections are 422 with the reason.
func respondMutation(e *core.RequestEvent, s *session.Session, res budget.Result) error {
	body := MutationView{
		Applied:    res.OK(),
		Outcome:    res.Outcome.String(),
		CategoryID: res.CategoryID,
		ItemID:     res.ItemID,
	}

	if res.Outcome == budget.Rejected {
		r := res.Rejection
		body.Rejection = &RejectionView{
			Field:      r.Field,
			CategoryID: r.CategoryID,
			ItemID:     r.ItemID,
			Value:      r.Value,
			Reason:     r.Err.Error(),
		}
		SetToast(e, ToastError, "Invalid "+r.Field+": "+r.Err.Error())
		return e.JSON(http.StatusUnprocessableEntity, body)
	}

	doc := documentView(s.State())
	body.Document = &doc
	return e.JSON(http.StatusOK, body)
}

// respondError maps session and persistence errors to a status code.
// Cancelled operations leave the document untouched and answer 204.
func respondError(e *core.RequestEvent, op string, err error) error {
	switch {
	case errors.Is(err, persistence.ErrCancelled), errors.Is(err, context.Canceled):
		return e.NoContent(http.StatusNoContent)
	case errors.Is(err, session.ErrDirty):
		return ErrorToast(e, http.StatusConflict, "You have unsaved changes.")
	case errors.Is(err, session.ErrNoTarget):
		return ErrorToast(e, http.StatusBadRequest, "Choose a file name to save to.")
	case errors.Is(err, autosave.ErrNoSnapshot), errors.Is(err, fs.ErrNotExist):
		return ErrorToast(e, http.StatusNotFound, "File not found.")
	case errors.Is(err, persistence.ErrMissingProjectInfo),
		errors.Is(err, persistence.ErrMissingCategories),
		errors.Is(err, persistence.ErrMalformed):
		return ErrorToast(e, http.StatusUnprocessableEntity, "This is not a valid budget file.")
	}
	log.Printf("%s: %v", op, err)
	return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
}

// itemID reads the itemId path value.
func itemID(e *core.RequestEvent) (int64, bool) {
	id, err := strconv.ParseInt(e.Request.PathValue("itemId"), 10, 64)
	return id, err == nil
}
