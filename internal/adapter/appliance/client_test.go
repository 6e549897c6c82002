package appliance

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, testPublicToken, testPrivateToken, false)
}

func TestModelBreachesSignedGet(t *testing.T) {
	from := time.Date(2024, 1, 1, 21, 4, 5, 0, time.UTC)
	to := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	signer := NewSigner(testPublicToken, testPrivateToken)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/modelbreaches" {
			t.Errorf("path = %s", r.URL.Path)
		}

		q := r.URL.Query()
		if q.Get("from") != "2024-01-01T21:04:05.00Z" || q.Get("to") != "2024-01-02T03:04:05.00Z" {
			t.Errorf("window params = %v", q)
		}
		if q.Get("includeacknowledged") != "true" {
			t.Error("includeacknowledged missing")
		}

		if r.Header.Get("Auth-Token") != testPublicToken {
			t.Errorf("Auth-Token = %s", r.Header.Get("Auth-Token"))
		}

		// Recompute the signature the way the appliance verifier does,
		// from the Auth-Date header and the unencoded parameters.
		date := r.Header.Get("Auth-Date")
		if _, err := time.Parse(dateLayout, date); err != nil {
			t.Errorf("Auth-Date %q does not parse: %v", date, err)
		}
		want := signer.SignParams("/modelbreaches", date, Params{
			{"from", "2024-01-01T21:04:05.00Z"},
			{"to", "2024-01-02T03:04:05.00Z"},
			{"includeacknowledged", "true"},
		})
		if got := r.Header.Get("Auth-Signature"); got != want {
			t.Errorf("Auth-Signature = %s, want %s", got, want)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"pbid":1},{"pbid":2}]`))
	}))
	defer server.Close()

	records, err := newTestClient(server.URL).ModelBreaches(context.Background(), from, to)
	if err != nil {
		t.Fatalf("ModelBreaches: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if id := records[0].Get("pbid"); id != float64(1) {
		t.Errorf("first pbid = %v, want 1", id)
	}
}

func TestPostBreachCommentSignedJSON(t *testing.T) {
	signer := NewSigner(testPublicToken, testPrivateToken)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/modelbreaches/42/comments" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}

		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		if err := json.Unmarshal(body, &payload); err != nil || payload["message"] != "noted" {
			t.Errorf("body = %s", body)
		}

		date := r.Header.Get("Auth-Date")
		want, err := signer.SignJSON("/modelbreaches/42/comments", date, body)
		if err != nil {
			t.Fatalf("SignJSON: %v", err)
		}
		if got := r.Header.Get("Auth-Signature"); got != want {
			t.Errorf("Auth-Signature = %s, want %s", got, want)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"SUCCESS"}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).PostBreachComment(context.Background(), 42, "noted")
	if err != nil {
		t.Fatalf("PostBreachComment: %v", err)
	}
	if result.GetOr("", "response") != "SUCCESS" {
		t.Errorf("result = %v", result)
	}
}

func TestAcknowledgeBreachPostsForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/modelbreaches/7/acknowledge" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "acknowledge=true" {
			t.Errorf("body = %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"SUCCESS"}`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).AcknowledgeBreach(context.Background(), 7); err != nil {
		t.Fatalf("AcknowledgeBreach: %v", err)
	}
}

func TestClientSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"no license"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).TestConnectivity(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Kind != ErrServer || apiErr.StatusCode != 500 {
		t.Errorf("got kind=%s status=%d", apiErr.Kind, apiErr.StatusCode)
	}
}

func TestClientSurfacesTransportError(t *testing.T) {
	// Closed server: the request itself fails.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newTestClient(server.URL).Device(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Kind != ErrTransport {
		t.Errorf("kind = %s, want %s", apiErr.Kind, ErrTransport)
	}
}
