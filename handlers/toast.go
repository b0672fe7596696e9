package handlers

import (
	"encoding/json"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// ToastType selects how the client styles a notification.
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastInfo    ToastType = "info"
	ToastWarning ToastType = "warning"
)

// ErrorView is the JSON body of a failed request.
type ErrorView struct {
	Error string `json:"error"`
}

// SetToast sets the HX-Trigger response header so the client shows a toast
// notification. If an HX-Trigger header already exists, the toast payload
// is merged into the existing JSON object.
func SetToast(e *core.RequestEvent, toastType ToastType, message string) {
	toast := map[string]any{
		"message": message,
		"type":    toastType,
	}

	trigger := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &trigger); err != nil {
			log.Printf("toast: existing HX-Trigger is not valid JSON, overwriting: %v", err)
			trigger = map[string]any{}
		}
	}
	trigger["showToast"] = toast

	data, err := json.Marshal(trigger)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger JSON: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))
}

// ErrorToast sets an error toast and answers with statusCode and a JSON
// error body. HX-Reswap: none keeps HTMX from swapping the body into the
// page while the toast still fires.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, ToastError, message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.JSON(statusCode, ErrorView{Error: message})
}
