/*
 * Copyright 2026 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package health exposes liveness and readiness probes for a loaded
// module. A module that runs its own diagnostics HTTP listener mounts the
// handler; everything else is optional.
package health

import (
	"errors"
	"fmt"

	"github.com/heptiolabs/healthcheck"

	"github.com/srediag/plugin-hostapi/api"
	"github.com/srediag/plugin-hostapi/internal/hostabi"
	"github.com/srediag/plugin-hostapi/pkg/cluster"
)

// backlogThresholdPercent is how full the async dispatch ring may run
// before readiness fails.
const backlogThresholdPercent = 90

// Handler serves /live and /ready probes.
type Handler struct {
	healthcheck.Handler
}

// NewHandler returns a probe handler with the module's built-in checks:
// liveness fails when no host binding is installed, readiness fails when
// the async dispatch ring is nearly full.
func NewHandler() *Handler {
	h := &Handler{Handler: healthcheck.NewHandler()}
	h.AddLivenessCheck("host-bound", CheckHostBound)
	h.AddReadinessCheck("dispatch-backlog", CheckDispatchBacklog)
	return h
}

// Register adds src as a named readiness check.
func (h *Handler) Register(name string, src api.HealthSource) {
	h.AddReadinessCheck(name, src.Check)
}

// CheckHostBound fails when the module has no host binding, which means
// either the host never loaded it or it was unloaded.
func CheckHostBound() error {
	if !hostabi.Bound() {
		return errors.New("no host binding installed")
	}
	return nil
}

// CheckDispatchBacklog fails when async dispatch is enabled and its ring
// is above the backlog threshold.
func CheckDispatchBacklog() error {
	st := cluster.DispatchStats()
	if !st.AsyncEnabled || st.QueueCap == 0 {
		return nil
	}
	pct := st.QueueDepth * 100 / st.QueueCap
	if pct >= backlogThresholdPercent {
		return fmt.Errorf("dispatch ring %d%% full (%d/%d)", pct, st.QueueDepth, st.QueueCap)
	}
	return nil
}
