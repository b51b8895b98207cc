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

package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/srediag/plugin-hostapi/api"
	"github.com/srediag/plugin-hostapi/pkg/audit"
)

func TestNewTelemetry(t *testing.T) {
	// The global providers default to no-ops, which is exactly what a
	// module without an exporter runs against.
	tele, err := NewTelemetry(otel.Meter("hostmod-test"), otel.Tracer("hostmod-test"))
	require.Nil(t, err)

	var _ api.Telemetry = tele

	tele.CountMessage(api.DirectionSent, 42, 128)
	tele.CountMessage(api.DirectionReceived, 42, 64)
	tele.CountFilterOp("invoke")

	ctx, end := tele.Span(context.Background(), "cluster.dispatch")
	assert.NotNil(t, ctx)
	end()
}

func TestLogSink(t *testing.T) {
	ev := audit.NewEvent(7, "set", 3, audit.ActionObserved, "watched")
	assert.Nil(t, LogSink{}.Record(context.Background(), ev))
}
