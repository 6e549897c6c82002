package appliance

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func newResponse(status int, contentType, body string) *http.Response {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func asAPIError(t *testing.T, err error, kind ErrorKind) *APIError {
	t.Helper()
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Kind != kind {
		t.Fatalf("expected kind %s, got %s (message %q)", kind, apiErr.Kind, apiErr.Message)
	}
	return apiErr
}

func TestClassifyJSONSuccess(t *testing.T) {
	parsed, diag, err := Classify(newResponse(200, "application/json", `{"a":1}`))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	m, ok := parsed.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", parsed)
	}
	if m["a"] != float64(1) {
		t.Errorf("parsed[a] = %v, want 1", m["a"])
	}

	if diag == nil || diag.StatusCode != 200 || diag.Body != `{"a":1}` {
		t.Errorf("diagnostics not captured: %+v", diag)
	}
}

func TestClassifyJSONServerError(t *testing.T) {
	_, diag, err := Classify(newResponse(500, "application/json", `{"error":"broken"}`))

	apiErr := asAPIError(t, err, ErrServer)
	if apiErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Message, "Status Code: 500") {
		t.Errorf("message missing status: %q", apiErr.Message)
	}
	// Braces from the body must be escaped so the message is template-safe.
	if !strings.Contains(apiErr.Message, `{{"error":"broken"}}`) {
		t.Errorf("braces not escaped in %q", apiErr.Message)
	}
	if diag == nil || diag.Body != `{"error":"broken"}` {
		t.Errorf("diagnostics not captured on error: %+v", diag)
	}
}

func TestClassifyMalformedJSON(t *testing.T) {
	_, _, err := Classify(newResponse(200, "application/json", `{"a":`))
	asAPIError(t, err, ErrMalformedJSON)
}

func TestClassifyHTMLIsAlwaysError(t *testing.T) {
	page := "<html><head><title>Proxy Error</title></head><body>\n  <p>upstream unreachable</p>\n</body></html>"

	// Even a 200 status never makes HTML a success.
	_, _, err := Classify(newResponse(200, "text/html", page))
	apiErr := asAPIError(t, err, ErrUnexpectedHTML)

	if !strings.Contains(apiErr.Message, "Proxy Error") || !strings.Contains(apiErr.Message, "upstream unreachable") {
		t.Errorf("visible text not extracted: %q", apiErr.Message)
	}
}

func TestClassifyEmptyBody(t *testing.T) {
	parsed, _, err := Classify(newResponse(200, "", ""))
	if err != nil {
		t.Fatalf("empty 200 should succeed: %v", err)
	}
	if m, ok := parsed.(map[string]any); !ok || len(m) != 0 {
		t.Errorf("expected empty object, got %#v", parsed)
	}

	_, _, err = Classify(newResponse(404, "", ""))
	apiErr := asAPIError(t, err, ErrEmptyResponse)
	if apiErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestClassifyUnclassified(t *testing.T) {
	_, _, err := Classify(newResponse(200, "text/plain", "{weird} output"))
	apiErr := asAPIError(t, err, ErrUnclassified)
	if !strings.Contains(apiErr.Message, "{{weird}}") {
		t.Errorf("braces not escaped in %q", apiErr.Message)
	}
}
