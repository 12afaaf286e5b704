// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/motofleet/internal/platform/ctxutil"
	"github.com/taibuivan/motofleet/internal/platform/metrics"
	"github.com/taibuivan/motofleet/internal/platform/middleware"
)

/*
TestRequestID propagates a client ID or generates one.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	// 1. Client-provided ID is kept
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "client-id")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "client-id", seen)
	assert.Equal(t, "client-id", recorder.Header().Get("X-Request-ID"))

	// 2. Missing ID is generated
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))
}

/*
TestPanicRecovery turns a panic into a generic 500.
*/
func TestPanicRecovery(t *testing.T) {
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))
	handler := middleware.PanicRecovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.JSONEq(t, `{"message":"An unexpected error occurred","code":"INTERNAL_ERROR"}`, recorder.Body.String())
	assert.Contains(t, logs.String(), "panic_recovered")
}

type corsConfig struct {
	development bool
	suffix      string
}

func (c corsConfig) IsDevelopment() bool         { return c.development }
func (c corsConfig) AllowedOriginSuffix() string { return c.suffix }

/*
TestCORS allows configured origins and answers pre-flight requests.
*/
func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	handler := middleware.CORS(corsConfig{suffix: ".motofleet.app"})(next)

	serve := func(method, origin string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(method, "/auth/login", nil)
		request.Header.Set("Origin", origin)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder
	}

	allowed := serve(http.MethodOptions, "https://admin.motofleet.app")
	assert.Equal(t, http.StatusNoContent, allowed.Code)
	assert.Equal(t, "https://admin.motofleet.app", allowed.Header().Get("Access-Control-Allow-Origin"))

	foreign := serve(http.MethodGet, "https://evil.example.com")
	assert.Equal(t, http.StatusOK, foreign.Code)
	assert.Empty(t, foreign.Header().Get("Access-Control-Allow-Origin"))
}

/*
TestRealIP prefers proxy headers over the socket address.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", middleware.RealIP(request))

	request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", middleware.RealIP(request))

	request.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", middleware.RealIP(request))
}

/*
TestInstrument labels latency by route pattern.
*/
func TestInstrument(t *testing.T) {
	recorder := metrics.New()
	router := chi.NewRouter()
	router.Use(middleware.Instrument(recorder))
	router.Get("/users/{id}", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/0190b8e4", nil))

	scrape := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(scrape.Body)
	assert.Contains(t, string(body), `route="/users/{id}",status="404"`)
	assert.NotContains(t, string(body), "0190b8e4")
}
