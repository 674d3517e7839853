package appleads

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
)

// APIError is a non-2xx response from the Search Ads API.
type APIError struct {
	StatusCode int
	Message    string
	Body       map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Apple Search Ads API error (%d): %s", e.StatusCode, e.Message)
}

// NotFoundError is an HTTP 404 from the API.
type NotFoundError struct {
	*APIError
}

func (e *NotFoundError) Unwrap() error { return e.APIError }

// ValidationError is an HTTP 400 carrying per-field messages.
type ValidationError struct {
	*APIError
	FieldErrors map[string][]string
}

func (e *ValidationError) Unwrap() error { return e.APIError }

// ConfigurationError reports missing or unusable ASA_* settings.
type ConfigurationError struct {
	Missing []string
	Err     error
}

func (e *ConfigurationError) Error() string {
	switch {
	case len(e.Missing) > 0 && e.Err != nil:
		return fmt.Sprintf("missing settings: %s (%v)", strings.Join(e.Missing, ", "), e.Err)
	case len(e.Missing) > 0:
		return "missing settings: " + strings.Join(e.Missing, ", ")
	case e.Err != nil:
		return "invalid configuration: " + e.Err.Error()
	}
	return "invalid configuration"
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

type apiErrorBody struct {
	Error *struct {
		Errors []struct {
			MessageCode string `json:"messageCode"`
			Message     string `json:"message"`
			Field       string `json:"field"`
		} `json:"errors"`
	} `json:"error"`
}

func newResponseError(code int, raw []byte) error {
	text := sanitizeAPIErrorMessage(strings.TrimSpace(string(raw)))
	apiErr := &APIError{StatusCode: code, Message: text}

	var body map[string]any
	if err := json.Unmarshal([]byte(text), &body); err == nil {
		apiErr.Body = body
	}

	fieldErrors := map[string][]string{}
	var parsed apiErrorBody
	if err := json.Unmarshal([]byte(text), &parsed); err == nil && parsed.Error != nil {
		messages := make([]string, 0, len(parsed.Error.Errors))
		for _, item := range parsed.Error.Errors {
			msg := strings.TrimSpace(item.Message)
			if msg == "" {
				msg = item.MessageCode
			}
			messages = append(messages, msg)
			if item.Field != "" {
				fieldErrors[item.Field] = append(fieldErrors[item.Field], msg)
			}
		}
		if len(messages) > 0 {
			apiErr.Message = strings.Join(messages, "; ")
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(code)
	}
	if apiErr.Message == "" {
		apiErr.Message = "Unknown error"
	}

	switch {
	case code == http.StatusNotFound:
		return &NotFoundError{APIError: apiErr}
	case code == http.StatusBadRequest:
		return &ValidationError{APIError: apiErr, FieldErrors: fieldErrors}
	}
	return apiErr
}

var secretPatterns = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`), "Bearer [REDACTED]"},
	{regexp.MustCompile(`(?i)(access_token|token)=[^&\s"']+`), "${1}=[REDACTED]"},
}

func sanitizeAPIErrorMessage(message string) string {
	for _, p := range secretPatterns {
		message = p.re.ReplaceAllString(message, p.repl)
	}
	return message
}

// SortedFields returns the field names of a validation error in stable order.
func (e *ValidationError) SortedFields() []string {
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
