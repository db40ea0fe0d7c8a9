package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakitaK/dataset-webapi-group2/pkg/config"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

func newHealthMux(store Pinger) *http.ServeMux {
	mux := http.NewServeMux()
	cfg := &config.Config{Version: "test", Env: "local"}
	NewHealthHandler(cfg, store, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestHealthReportsOK(t *testing.T) {
	mux := newHealthMux(&fakePinger{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
}

func TestHealthReportsUnavailableOnPingFailure(t *testing.T) {
	mux := newHealthMux(&fakePinger{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "Database unreachable", env.Error)
}

func TestHealthWithoutStoreSkipsCheck(t *testing.T) {
	mux := newHealthMux(nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPingIdentifiesService(t *testing.T) {
	mux := newHealthMux(&fakePinger{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp PingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "dataset-webapi", resp.Service)
	assert.Equal(t, "test", resp.Version)
}
