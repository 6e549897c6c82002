package appliance

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// Transport issues signed HTTP requests to the appliance. One request per
// call; there is no retry or backoff here, failure handling belongs to the
// caller.
type Transport struct {
	baseURL string
	client  *http.Client
	signer  *Signer
	now     func() time.Time
}

func NewTransport(baseURL, publicToken, privateToken string, skipTLSVerify bool) *Transport {
	client := &http.Client{Timeout: requestTimeout}
	if skipTLSVerify {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		signer:  NewSigner(publicToken, privateToken),
		now:     time.Now,
	}
}

func (t *Transport) BaseURL() string {
	return t.baseURL
}

// Get issues a signed GET. The query parameters are signed unencoded but
// travel URL-encoded, which is what the appliance verifier expects.
func (t *Transport) Get(ctx context.Context, path string, params Params) (*http.Response, error) {
	date := t.signer.Timestamp(t.now())
	signature := t.signer.SignParams(path, date, params)

	u := t.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Values().Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	t.setAuthHeaders(req, date, signature)

	return t.do(req)
}

// PostForm issues a signed POST with an urlencoded form body.
func (t *Transport) PostForm(ctx context.Context, path string, params Params) (*http.Response, error) {
	date := t.signer.Timestamp(t.now())
	signature := t.signer.SignParams(path, date, params)

	body := strings.NewReader(params.Values().Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	t.setAuthHeaders(req, date, signature)

	return t.do(req)
}

// PostJSON issues a signed POST with a JSON body.
func (t *Transport) PostJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	date := t.signer.Timestamp(t.now())
	signature, err := t.signer.SignJSON(path, date, body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	t.setAuthHeaders(req, date, signature)

	return t.do(req)
}

func (t *Transport) setAuthHeaders(req *http.Request, date, signature string) {
	req.Header.Set("Auth-Token", t.signer.publicToken)
	req.Header.Set("Auth-Date", date)
	req.Header.Set("Auth-Signature", signature)
}

func (t *Transport) do(req *http.Request) (*http.Response, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &APIError{
			Kind:    ErrTransport,
			Message: fmt.Sprintf("request to %s failed: %v", req.URL.Path, err),
		}
	}
	return resp, nil
}
