package appliance

import "strings"

// ErrorKind classifies a failed appliance call.
type ErrorKind string

const (
	// ErrTransport means no response was obtained at all.
	ErrTransport ErrorKind = "transport"
	// ErrMalformedJSON means the body claimed to be JSON but did not parse.
	ErrMalformedJSON ErrorKind = "malformed_json"
	// ErrUnexpectedHTML means the server (or a proxy in front of it)
	// answered with an HTML page. HTML is never a valid payload.
	ErrUnexpectedHTML ErrorKind = "unexpected_html"
	// ErrEmptyResponse means an empty body arrived with a non-200 status.
	ErrEmptyResponse ErrorKind = "empty_response"
	// ErrUnclassified covers everything the classifier cannot interpret.
	ErrUnclassified ErrorKind = "unclassified_response"
	// ErrServer means a valid JSON envelope carried a non-2xx/3xx status.
	ErrServer ErrorKind = "server_error"
)

// APIError is a classified failure from the appliance API. Message is safe
// to embed in templates: literal braces from the response body are escaped.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return e.Message
}

// escapeBraces doubles literal brace characters so a server-supplied body
// can never be interpreted as a template placeholder downstream.
func escapeBraces(s string) string {
	s = strings.ReplaceAll(s, "{", "{{")
	return strings.ReplaceAll(s, "}", "}}")
}
