// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/motofleet/internal/platform/metrics"
)

// Instrument records request latency labelled by the matched chi route
// pattern, never by the raw path.
func Instrument(recorder *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			startTime := time.Now()
			wrapped := chimiddleware.NewWrapResponseWriter(writer, request.ProtoMajor)

			next.ServeHTTP(wrapped, request)

			status := wrapped.Status()
			if status == 0 {
				status = http.StatusOK
			}

			var pattern string
			if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
				pattern = routeContext.RoutePattern()
			}
			recorder.ObserveRequest(request.Method, pattern, status, time.Since(startTime))
		})
	}
}
