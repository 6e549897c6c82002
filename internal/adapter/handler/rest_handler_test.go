package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hive-corporation/casebridge/internal/core/actions"
)

type echoAction struct{}

func (echoAction) Name() string { return "echo" }

func (echoAction) Run(ctx context.Context, params actions.Params) (any, error) {
	if params["fail"] != "" {
		return nil, errors.New("appliance unreachable")
	}
	return map[string]string{"got": params["value"]}, nil
}

func newTestRouter() http.Handler {
	registry := actions.NewRegistry(echoAction{})
	return NewRestHandler(registry).Router()
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestListActions(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/actions", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"echo"}, body["actions"])
}

func TestRunAction(t *testing.T) {
	req := httptest.NewRequest("POST", "/actions/echo", strings.NewReader(`{"value":"hi"}`))
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "echo", body["action"])
	assert.Equal(t, map[string]any{"got": "hi"}, body["result"])
}

func TestRunActionWithoutBody(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("POST", "/actions/echo", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRunActionFailure(t *testing.T) {
	req := httptest.NewRequest("POST", "/actions/echo", strings.NewReader(`{"fail":"yes"}`))
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRunActionBadBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/actions/echo", strings.NewReader(`{bad`))
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownActionIsBadGateway(t *testing.T) {
	req := httptest.NewRequest("POST", "/actions/nope", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
