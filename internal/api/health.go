// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/motofleet/internal/platform/constants"
	"github.com/taibuivan/motofleet/internal/platform/respond"
)

// Readiness states.
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusDegraded = "degraded"
)

// Check is one dependency verified by /ready.
type Check struct {
	// Name labels the dependency in the response and logs.
	Name string

	// Run returns nil while the dependency is healthy.
	Run func(context context.Context) error
}

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	checks []Check
	logger *slog.Logger
}

// NewHealthHandler creates the health handler. Checks run in the given order.
func NewHealthHandler(logger *slog.Logger, checks ...Check) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{checks: checks, logger: logger}
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Liveness handles GET /health. It answers 200 while the process runs.
func (handler *HealthHandler) Liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: StatusOK})
}

// Readiness handles GET /ready. Any failing check turns the answer into a 503.
func (handler *HealthHandler) Readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, len(handler.checks))
	isSystemReady := true

	for _, check := range handler.checks {
		result := checkResult{Name: check.Name, IsOK: true}
		if err := handler.run(request.Context(), check); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.ErrorContext(request.Context(), "readiness_check_failed",
				slog.String("dependency", check.Name), slog.Any("error", err))
		}
		results = append(results, result)
	}

	responseStatus := StatusReady
	httpStatus := http.StatusOK
	if !isSystemReady {
		responseStatus = StatusDegraded
		httpStatus = http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, map[string]any{
		constants.FieldStatus: responseStatus,
		constants.FieldChecks: results,
	})
}

func (handler *HealthHandler) run(parent context.Context, check Check) error {
	ctx, cancel := context.WithTimeout(parent, constants.HealthCheckTimeout)
	defer cancel()
	return check.Run(ctx)
}
