package appleads

import (
	"strings"
	"testing"
)

func TestParseAndValidateDownloadURI(t *testing.T) {
	t.Parallel()

	valid, err := parseAndValidateDownloadURI("https://api.searchads.apple.com/report.csv?token=abc", appleAdsAPIBase)
	if err != nil {
		t.Fatalf("expected valid URI, got error: %v", err)
	}
	if valid.Hostname() != "api.searchads.apple.com" {
		t.Fatalf("unexpected host: %s", valid.Hostname())
	}

	relative, err := parseAndValidateDownloadURI("/api/v5/custom-reports/123/download?token=abc", appleAdsAPIBase)
	if err != nil {
		t.Fatalf("expected relative URI to be resolved, got error: %v", err)
	}
	if relative.Scheme != "https" {
		t.Fatalf("unexpected scheme: %s", relative.Scheme)
	}
	if relative.Hostname() != "api.searchads.apple.com" {
		t.Fatalf("unexpected host for relative URI: %s", relative.Hostname())
	}

	quoted, err := parseAndValidateDownloadURI(`"https:\/\/reports.apple.com\/x.csv"`, appleAdsAPIBase)
	if err != nil {
		t.Fatalf("expected quoted URI to be accepted, got error: %v", err)
	}
	if quoted.Path != "/x.csv" {
		t.Fatalf("unexpected path: %s", quoted.Path)
	}

	local, err := parseAndValidateDownloadURI("/download/1.csv", "http://127.0.0.1:8080/api/v5")
	if err != nil {
		t.Fatalf("expected URI on the API host to be accepted, got error: %v", err)
	}
	if local.Host != "127.0.0.1:8080" {
		t.Fatalf("unexpected host for local URI: %s", local.Host)
	}

	tests := []string{
		"http://api.searchads.apple.com/report.csv",
		"https://example.com/report.csv",
		"https://apple.com.evil.example/report.csv",
		"not-a-url",
		"",
	}
	for _, tc := range tests {
		t.Run(tc, func(t *testing.T) {
			t.Parallel()
			if _, err := parseAndValidateDownloadURI(tc, appleAdsAPIBase); err == nil {
				t.Fatalf("expected URI validation error for %q", tc)
			}
		})
	}
}

func TestSanitizeAPIErrorMessage(t *testing.T) {
	t.Parallel()

	raw := `{"message":"request failed with bearer abcd1234 and access_token=abc123 and token=zzz"}`
	got := sanitizeAPIErrorMessage(raw)
	if strings.Contains(strings.ToLower(got), "abcd1234") {
		t.Fatalf("expected bearer token redaction, got: %s", got)
	}
	if strings.Contains(got, "abc123") || strings.Contains(got, "zzz") {
		t.Fatalf("expected query secret redaction, got: %s", got)
	}
	if !strings.Contains(got, "[REDACTED]") {
		t.Fatalf("expected redaction marker, got: %s", got)
	}
}

func TestResponseErrorRedactsSecrets(t *testing.T) {
	t.Parallel()

	err := newResponseError(401, []byte(`{"error":{"errors":[{"messageCode":"UNAUTHORIZED","message":"Bearer eyJhbGciOi.abc.def rejected"}]}}`))
	if strings.Contains(err.Error(), "eyJhbGciOi") {
		t.Fatalf("expected token to be redacted, got: %s", err.Error())
	}
}
