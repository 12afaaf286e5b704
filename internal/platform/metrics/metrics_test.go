// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/motofleet/internal/platform/metrics"
)

/*
TestMetrics_Counters verifies counters are labelled and isolated per instance.
*/
func TestMetrics_Counters(t *testing.T) {
	first := metrics.New()
	second := metrics.New()

	first.Login(metrics.LoginSuccess)
	first.Login(metrics.LoginInvalidCredentials)
	first.Login(metrics.LoginInvalidCredentials)
	first.AuthFailure("token_expired")

	count, err := testutil.GatherAndCount(first.Registry(), "motofleet_auth_authentication_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(first.Registry(), "motofleet_auth_logins_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(second.Registry(), "motofleet_auth_logins_total")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

/*
TestMetrics_NilSafe ensures a nil collector set is a no-op.
*/
func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.Login(metrics.LoginSuccess)
		m.AuthFailure("missing_header")
		m.TokenIssued("access")
		m.Registration()
		m.TokenRefresh()
		m.PasswordReset(metrics.ResetRequested)
		m.ObserveRequest(http.MethodGet, "/auth/me", http.StatusOK, time.Millisecond)
	})
}

/*
TestMetrics_Handler exposes the registry in text format.
*/
func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()
	m.Registration()
	m.ObserveRequest(http.MethodPost, "/auth/login", http.StatusOK, 20*time.Millisecond)

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, "motofleet_auth_registrations_total 1")
	assert.Contains(t, body, `motofleet_http_request_duration_seconds_count{method="POST",route="/auth/login",status="200"} 1`)
}
