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

// Package adapter bridges the module's public contracts to external
// systems a deployment may already run: OpenTelemetry for telemetry, the
// internal logger for audit sinks without storage.
package adapter

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/srediag/plugin-hostapi/api"
)

// Telemetry implements api.Telemetry over OpenTelemetry instruments.
type Telemetry struct {
	messages     metric.Int64Counter
	messageBytes metric.Int64Counter
	filterOps    metric.Int64Counter
	tracer       trace.Tracer
}

var _ api.Telemetry = (*Telemetry)(nil)

// NewTelemetry builds instruments on meter and spans on tracer.
func NewTelemetry(meter metric.Meter, tracer trace.Tracer) (*Telemetry, error) {
	messages, err := meter.Int64Counter("hostmod.cluster.messages",
		metric.WithDescription("Cluster messages by direction and type."))
	if err != nil {
		return nil, fmt.Errorf("create message counter: %w", err)
	}
	messageBytes, err := meter.Int64Counter("hostmod.cluster.message_bytes",
		metric.WithDescription("Cluster message payload bytes by direction."))
	if err != nil {
		return nil, fmt.Errorf("create byte counter: %w", err)
	}
	filterOps, err := meter.Int64Counter("hostmod.filter.ops",
		metric.WithDescription("Command filter operations by kind."))
	if err != nil {
		return nil, fmt.Errorf("create filter counter: %w", err)
	}
	return &Telemetry{
		messages:     messages,
		messageBytes: messageBytes,
		filterOps:    filterOps,
		tracer:       tracer,
	}, nil
}

func (t *Telemetry) CountMessage(direction string, msgType uint8, bytes int) {
	attrs := metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.Int("type", int(msgType)),
	)
	t.messages.Add(context.Background(), 1, attrs)
	t.messageBytes.Add(context.Background(), int64(bytes),
		metric.WithAttributes(attribute.String("direction", direction)))
}

func (t *Telemetry) CountFilterOp(op string) {
	t.filterOps.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("op", op)))
}

func (t *Telemetry) Span(ctx context.Context, name string) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, func() { span.End() }
}
