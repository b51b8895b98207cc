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

// Package api defines the public contracts shared between the feature
// packages and their pluggable backends.
package api

import "context"

// Direction of a cluster message as seen from this node.
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// Telemetry receives observations from the cluster and filter packages.
// Implementations must be safe for concurrent use; calls may arrive on
// host threads.
type Telemetry interface {
	// CountMessage records one cluster message moving through the module.
	CountMessage(direction string, msgType uint8, bytes int)

	// CountFilterOp records one command filter operation ("invoke",
	// "insert", "replace", "delete").
	CountFilterOp(op string)

	// Span opens a trace span around a message handler invocation. The
	// returned func closes it.
	Span(ctx context.Context, name string) (context.Context, func())
}
