package appliance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// Diagnostics is the raw response trail kept for every classification,
// success or failure. Authentication failures surface only as opaque 4xx
// bodies, so the trail is captured before any decision is made.
type Diagnostics struct {
	StatusCode int
	Headers    http.Header
	Body       string
}

// Classify interprets an appliance response. JSON bodies decode to their
// parsed value when the status is 2xx/3xx; HTML is always an error no
// matter the status; empty bodies succeed only on 200; anything else is
// unclassifiable.
func Classify(resp *http.Response) (any, *Diagnostics, error) {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &APIError{
			Kind:    ErrTransport,
			Message: fmt.Sprintf("failed to read response body: %v", err),
		}
	}

	diag := &Diagnostics{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		Body:       string(raw),
	}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "json"):
		parsed, err := classifyJSON(resp.StatusCode, raw)
		return parsed, diag, err

	case strings.Contains(contentType, "html"):
		return nil, diag, htmlError(resp.StatusCode, raw)

	case len(raw) == 0:
		if resp.StatusCode == http.StatusOK {
			return map[string]any{}, diag, nil
		}
		return nil, diag, &APIError{
			Kind:       ErrEmptyResponse,
			StatusCode: resp.StatusCode,
			Message:    "Empty response and no information in the header",
		}

	default:
		return nil, diag, &APIError{
			Kind:       ErrUnclassified,
			StatusCode: resp.StatusCode,
			Message: fmt.Sprintf("Can't process response from server. Status Code: %d Data from server: %s",
				resp.StatusCode, escapeBraces(string(raw))),
			Body: string(raw),
		}
	}
}

func classifyJSON(status int, raw []byte) (any, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &APIError{
			Kind:       ErrMalformedJSON,
			StatusCode: status,
			Message:    "Unable to parse JSON response",
			Body:       string(raw),
		}
	}

	if status >= 200 && status < 399 {
		return parsed, nil
	}

	return nil, &APIError{
		Kind:       ErrServer,
		StatusCode: status,
		Message: fmt.Sprintf("Error from server. Status Code: %d Data from server: %s",
			status, escapeBraces(string(raw))),
		Body: string(raw),
	}
}

// htmlError builds an error from an HTML page, typically a proxy error
// standing in front of the appliance. The message carries the page's
// visible text, one stripped line per line.
func htmlError(status int, raw []byte) error {
	text := visibleText(raw)
	if text == "" {
		text = "Cannot parse error details"
	}

	message := fmt.Sprintf("Status Code: %d. Data from server:\n%s\n", status, text)
	return &APIError{
		Kind:       ErrUnexpectedHTML,
		StatusCode: status,
		Message:    escapeBraces(message),
		Body:       string(raw),
	}
}

func visibleText(raw []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(raw))

	var lines []string
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(lines, "\n")
		case html.TextToken:
			for _, line := range strings.Split(string(tokenizer.Text()), "\n") {
				if trimmed := strings.TrimSpace(line); trimmed != "" {
					lines = append(lines, trimmed)
				}
			}
		}
	}
}
