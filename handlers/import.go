package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"ffebudget/budget"
	"ffebudget/services"
	"ffebudget/session"
)

// ImportView is the JSON body of the item import endpoint.
type ImportView struct {
	*services.ImportResult
	Added    []int64       `json:"added"`
	Document *DocumentView `json:"document,omitempty"`
}

// HandleImportItems validates an uploaded CSV or XLSX file (multipart field
// "file") and, when every row is valid, appends the rows to the category.
// With errors nothing is imported: the response is 422 with the errors, or
// an .xlsx error report when format=xlsx.
func HandleImportItems(s *session.Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		categoryID := e.Request.PathValue("categoryId")

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ParseItemImport(file, header.Filename)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}

		if result.ErrorRows > 0 {
			if e.Request.FormValue("format") == "xlsx" {
				report, err := services.GenerateErrorReport(result.Errors)
				if err != nil {
					log.Printf("import_items: failed to generate error report: %v", err)
					return ErrorToast(e, http.StatusInternalServerError, "Failed to generate error report")
				}
				e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
				e.Response.Header().Set("Content-Disposition", `attachment; filename="import_errors.xlsx"`)
				e.Response.WriteHeader(http.StatusUnprocessableEntity)
				e.Response.Write(report)
				return nil
			}
			SetToast(e, ToastError, fmt.Sprintf("%d of %d rows have errors", result.ErrorRows, result.TotalRows))
			return e.JSON(http.StatusUnprocessableEntity, ImportView{ImportResult: result, Added: []int64{}})
		}

		if len(result.Rows) == 0 {
			return ErrorToast(e, http.StatusBadRequest, "The file has no rows to import")
		}

		var added []int64
		res := s.Mutate(func(ed *budget.Editor) budget.Result {
			var r budget.Result
			added, r = services.ApplyItemImport(ed, categoryID, result.Rows)
			return r
		})
		if res.Outcome == budget.Rejected {
			return respondMutation(e, s, res)
		}
		if len(added) == 0 {
			return ErrorToast(e, http.StatusNotFound, "Category not found")
		}

		doc := documentView(s.State())
		SetToast(e, ToastSuccess, fmt.Sprintf("Imported %d items", len(added)))
		return e.JSON(http.StatusOK, ImportView{ImportResult: result, Added: added, Document: &doc})
	}
}
