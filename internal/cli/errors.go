package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"asa-cli/internal/appleads"
)

const maxResponseDetail = 500

// respondCommandError is the single place errors reach the user: a JSON
// object in json mode, an error panel otherwise.
func (a *app) respondCommandError(err error) {
	if a.jsonOut() {
		_ = a.out.JSON(map[string]any{"ok": false, "error": errorPayload(err)})
		return
	}

	var (
		cfgErr        *appleads.ConfigurationError
		validationErr *appleads.ValidationError
		apiErr        *appleads.APIError
	)
	switch {
	case errors.As(err, &cfgErr):
		details := []string{"", "Required Environment Variables:"}
		for _, name := range requiredSettings {
			details = append(details, "  • "+name)
		}
		a.out.Error("Configuration Error", cfgErr.Error(), details...)
	case errors.As(err, &validationErr):
		details := []string{fmt.Sprintf("Status code: %d", validationErr.StatusCode)}
		for _, field := range validationErr.SortedFields() {
			details = append(details, fmt.Sprintf("  %s: %s", field, strings.Join(validationErr.FieldErrors[field], "; ")))
		}
		a.out.Error("Validation Error", validationErr.Message, details...)
	case errors.As(err, &apiErr):
		details := []string{fmt.Sprintf("Status code: %d", apiErr.StatusCode)}
		if body := responseDetail(apiErr.Body); body != "" {
			details = append(details, "Response: "+body)
		}
		title := "API Error"
		if appleads.IsNotFound(err) {
			title = "Not Found"
		}
		a.out.Error(title, apiErr.Message, details...)
	case errors.Is(err, appleads.ErrCircuitOpen):
		a.out.Error("API Unavailable", "Too many failed requests to the Search Ads API", "Wait a moment and try again.")
	default:
		a.out.Error("Error", sentence(err.Error()))
	}
}

// sentence upper-cases the first letter of an error message for a panel.
func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if size == 0 {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

var requiredSettings = []string{
	"ASA_CLIENT_ID",
	"ASA_TEAM_ID",
	"ASA_KEY_ID",
	"ASA_ORG_ID",
	"ASA_PRIVATE_KEY_PATH (or ASA_PRIVATE_KEY)",
}

// responseDetail renders the response body when its indented JSON is short
// enough to be useful on a terminal.
func responseDetail(body map[string]any) string {
	if len(body) == 0 {
		return ""
	}
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil || len(data) >= maxResponseDetail {
		return ""
	}
	return string(data)
}

func errorPayload(err error) map[string]any {
	var (
		cfgErr        *appleads.ConfigurationError
		validationErr *appleads.ValidationError
		apiErr        *appleads.APIError
	)
	switch {
	case errors.As(err, &cfgErr):
		payload := map[string]any{"type": "configuration", "message": cfgErr.Error()}
		if len(cfgErr.Missing) > 0 {
			payload["missing"] = cfgErr.Missing
		}
		return payload
	case errors.As(err, &validationErr):
		return map[string]any{
			"type":        "validation",
			"status_code": validationErr.StatusCode,
			"message":     validationErr.Message,
			"fields":      validationErr.FieldErrors,
		}
	case errors.As(err, &apiErr):
		kind := "api"
		if appleads.IsNotFound(err) {
			kind = "not_found"
		}
		return map[string]any{"type": kind, "status_code": apiErr.StatusCode, "message": apiErr.Message}
	case errors.Is(err, appleads.ErrCircuitOpen):
		return map[string]any{"type": "unavailable", "message": err.Error()}
	}
	return map[string]any{"type": "error", "message": err.Error()}
}
