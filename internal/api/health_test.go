// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/motofleet/internal/api"
)

/*
TestHealth_Readiness reports each dependency and degrades to 503 when one fails.
*/
func TestHealth_Readiness(t *testing.T) {
	healthy := api.Check{Name: "postgres", Run: func(context context.Context) error {
		_, hasDeadline := context.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}}
	failing := api.Check{Name: "redis", Run: func(context.Context) error {
		return errors.New("connection refused")
	}}

	t.Run("ready", func(t *testing.T) {
		handler := api.NewHealthHandler(nil, healthy)
		recorder := httptest.NewRecorder()
		handler.Readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.JSONEq(t, `{"status":"ready","checks":[{"name":"postgres","ok":true}]}`, recorder.Body.String())
	})

	t.Run("degraded", func(t *testing.T) {
		handler := api.NewHealthHandler(nil, healthy, failing)
		recorder := httptest.NewRecorder()
		handler.Readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

		require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
		assert.JSONEq(t, `{
			"status":"degraded",
			"checks":[
				{"name":"postgres","ok":true},
				{"name":"redis","ok":false,"error":"connection refused"}
			]
		}`, recorder.Body.String())
	})
}

/*
TestHealth_Liveness always answers 200.
*/
func TestHealth_Liveness(t *testing.T) {
	handler := api.NewHealthHandler(nil, api.Check{Name: "redis", Run: func(context.Context) error {
		return errors.New("down")
	}})
	recorder := httptest.NewRecorder()
	handler.Liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}
