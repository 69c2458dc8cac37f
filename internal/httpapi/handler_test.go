package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedricziel/migrated/internal/adapter"
	"github.com/cedricziel/migrated/internal/httpapi"
	"github.com/cedricziel/migrated/internal/mapper"
	"github.com/cedricziel/migrated/internal/mapper/qtest"
	"github.com/cedricziel/migrated/internal/mapper/zephyr"
	"github.com/cedricziel/migrated/internal/translate"
	"github.com/cedricziel/migrated/internal/workflow"
)

func newTestHandler() *httpapi.Handler {
	reg := mapper.NewRegistry()
	zephyr.Register(reg)
	qtest.Register(reg)
	svc := translate.NewService(translate.NewTransformer(reg, nil))
	adapters := adapter.NewRegistry()
	engine := workflow.NewEngine(adapters, svc, nil)
	workflows := workflow.NewRegistry()
	return httpapi.NewHandler(engine, workflows)
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestSubmitMigrationAndGetStatus(t *testing.T) {
	h := newTestHandler()

	body := `{"sourceSystem":"zephyr","targetSystem":"qtest","projectKey":"PROJ"}`
	req := httptest.NewRequest(http.MethodPost, "/api/workflows/migration", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id, ok := created["id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)
	// No adapter is registered for "zephyr"/"qtest" in this test's Adapter
	// Registry, so the submission fails at Connect Source, not Validate.
	assert.Equal(t, "FAILED", created["state"])

	getReq := httptest.NewRequest(http.MethodGet, "/api/workflows/"+id, nil)
	getRec := httptest.NewRecorder()
	h.Router().ServeHTTP(getRec, getReq)
	assert.Equal(t, http.StatusOK, getRec.Code)
}

func TestGetUnknownWorkflowReturns404(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/workflows/does-not-exist", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListWorkflowsReturnsSummaries(t *testing.T) {
	h := newTestHandler()

	body := `{"sourceSystem":"zephyr","targetSystem":"qtest","projectKey":"PROJ"}`
	submitReq := httptest.NewRequest(http.MethodPost, "/api/workflows/migration", strings.NewReader(body))
	h.Router().ServeHTTP(httptest.NewRecorder(), submitReq)

	listReq := httptest.NewRequest(http.MethodGet, "/api/workflows/", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, listReq)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestSubmitMigrationInvalidJSONReturns400(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/workflows/migration", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
