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

// Package cluster wraps the host's inter-node messaging slice: register a
// typed receiver, send to one node or broadcast to all. The host owns
// membership, delivery and ordering; this package only marshals the
// boundary and routes inbound messages to the right Go handler.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unsafe"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/srediag/plugin-hostapi/api"
	"github.com/srediag/plugin-hostapi/internal/hostabi"
	"github.com/srediag/plugin-hostapi/internal/logx"
	"github.com/srediag/plugin-hostapi/internal/metrics"
	"github.com/srediag/plugin-hostapi/pkg/hostmod"
)

var (
	ErrNilHandler    = errors.New("message handler is nil")
	ErrInvalidTarget = errors.New("invalid target node id")
	ErrSendFailed    = errors.New("host failed to send cluster message")
)

// MessageHandler receives one inbound cluster message. With synchronous
// dispatch (the default) it runs on the host's thread and payload is only
// valid until it returns; with async dispatch payload is the handler's own
// copy.
type MessageHandler func(ctx *hostmod.Context, senderID string, msgType uint8, payload []byte)

// receivers is keyed by message type. The host's receiver callback carries
// no user data, so this table recovers the Go handler from the type byte.
var receivers = cmap.NewWithCustomShardingFunction[uint8, MessageHandler](
	func(key uint8) uint32 { return uint32(key) })

var (
	teleMu    sync.RWMutex
	telemetry api.Telemetry
)

// SetTelemetry installs an optional telemetry backend. Pass nil to remove.
func SetTelemetry(t api.Telemetry) {
	teleMu.Lock()
	telemetry = t
	teleMu.Unlock()
}

func tele() api.Telemetry {
	teleMu.RLock()
	defer teleMu.RUnlock()
	return telemetry
}

func init() {
	hostabi.SetClusterDispatcher(dispatch)
}

// RegisterReceiver installs handler for msgType and points the host's
// receiver for that type at the module. Re-registering a type replaces its
// handler.
func RegisterReceiver(ctx *hostmod.Context, msgType uint8, handler MessageHandler) error {
	if handler == nil {
		return ErrNilHandler
	}
	if !hostabi.Bound() {
		return hostabi.ErrUnbound
	}
	receivers.Set(msgType, handler)
	hostabi.Current().RegisterClusterReceiver(ctx.Pointer(), msgType)
	return nil
}

// Send delivers payload to the node named by targetID.
func Send(ctx *hostmod.Context, targetID string, msgType uint8, payload []byte) error {
	if targetID == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTarget)
	}
	if strings.ContainsRune(targetID, 0) {
		return fmt.Errorf("%w: contains NUL byte", ErrInvalidTarget)
	}
	return send(ctx, targetID, msgType, payload)
}

// Broadcast delivers payload to every node in the cluster.
func Broadcast(ctx *hostmod.Context, msgType uint8, payload []byte) error {
	return send(ctx, "", msgType, payload)
}

func send(ctx *hostmod.Context, targetID string, msgType uint8, payload []byte) error {
	if !hostabi.Bound() {
		return hostabi.ErrUnbound
	}
	st := hostabi.Current().SendClusterMessage(ctx.Pointer(), targetID, msgType, payload)
	if !st.OK() {
		return ErrSendFailed
	}
	metrics.ClusterSent.Inc()
	if t := tele(); t != nil {
		t.CountMessage(api.DirectionSent, msgType, len(payload))
	}
	return nil
}

// dispatch is the inbound entry point installed on the hostabi hook. It
// runs on whatever thread the host delivers from.
func dispatch(raw unsafe.Pointer, senderID string, msgType uint8, payload []byte) {
	metrics.ClusterReceived.Inc()
	if t := tele(); t != nil {
		t.CountMessage(api.DirectionReceived, msgType, len(payload))
	}
	handler, ok := receivers.Get(msgType)
	if !ok {
		dropped.Add(1)
		metrics.ClusterDropped.Inc()
		logx.Debugf("dropping cluster message type %d from %q: no receiver", msgType, senderID)
		return
	}
	if d := activeDispatcher(); d != nil {
		d.enqueue(raw, handler, senderID, msgType, payload)
		return
	}
	deliver(handler, hostmod.NewContext(raw), senderID, msgType, payload)
}

func deliver(handler MessageHandler, ctx *hostmod.Context, senderID string, msgType uint8, payload []byte) {
	start := time.Now()
	if t := tele(); t != nil {
		_, end := t.Span(context.Background(), "cluster.dispatch")
		defer end()
	}
	handler(ctx, senderID, msgType, payload)
	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	delivered.Add(1)
}
