package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
)

type stubAuth struct {
	principal *Principal
	err       error
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*Principal, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.principal, nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRespondErrorMapsKinds(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	RespondError(rec, req, apperror.New(apperror.ErrInsufficientStock, "only 2 left"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "only 2 left", decode(t, rec).Error)

	rec = httptest.NewRecorder()
	RespondError(rec, req, errors.New("disk on fire"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec).Error)
}

func TestGateRequire(t *testing.T) {
	var actor string
	next := func(w http.ResponseWriter, r *http.Request) {
		actor = auditdomain.ActorFrom(r.Context())
		RespondOK(w, http.StatusOK, "", nil)
	}

	gate := NewGate(stubAuth{principal: &Principal{Username: "jane", Role: "cashier"}})

	rec := httptest.NewRecorder()
	gate.Require()(next)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec = httptest.NewRecorder()
	gate.Require()(next)(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jane", actor)

	rec = httptest.NewRecorder()
	gate.Require("admin")(next)(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	expired := NewGate(stubAuth{err: apperror.New(apperror.ErrSessionExpired, "session expired")})
	rec = httptest.NewRecorder()
	expired.Require()(next)(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsWrapCountsStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	h := m.Wrap("/api/things", func(w http.ResponseWriter, r *http.Request) {
		RespondMessage(w, http.StatusNotFound, "nope")
	})
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/things", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCounter.WithLabelValues(http.MethodGet, "/api/things", "404")))
}

func TestRequestIDMiddleware(t *testing.T) {
	h := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "fixed")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "fixed", rec.Header().Get("X-Request-ID"))
}
