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

// Package filter wraps the host's command filtering slice. A registered
// handler fires for every command any client issues and may inspect,
// insert, replace or delete arguments before the host executes it.
//
// Filters run synchronously on the host's execution path. A slow handler
// slows every command on the server.
package filter

import (
	"errors"
	"sync"
	"unsafe"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/srediag/plugin-hostapi/api"
	"github.com/srediag/plugin-hostapi/internal/hostabi"
	"github.com/srediag/plugin-hostapi/internal/logx"
	"github.com/srediag/plugin-hostapi/internal/metrics"
	"github.com/srediag/plugin-hostapi/pkg/hostmod"
)

var (
	ErrNilHandler       = errors.New("filter handler is nil")
	ErrNilFilter        = errors.New("filter is nil")
	ErrRegisterFailed   = errors.New("host rejected filter registration")
	ErrUnregisterFailed = errors.New("host rejected filter unregistration")
	ErrArgInsertFailed  = errors.New("host rejected argument insert")
	ErrArgReplaceFailed = errors.New("host rejected argument replace")
	ErrArgDeleteFailed  = errors.New("host rejected argument delete")
	ErrNoFilterSlots    = hostabi.ErrNoFilterSlots
)

// Flags modify a filter registration; values mirror the host's constants.
type Flags int

const (
	// FlagNoSelf keeps the filter from firing for commands this module
	// itself issues, guarding against re-entrancy loops.
	FlagNoSelf Flags = hostabi.FilterFlagNoSelf

	// FlagNoCommandLine hides filtered commands from host command-line
	// introspection.
	FlagNoCommandLine Flags = hostabi.FilterFlagNoCommandLine
)

// Handler inspects and may mutate one command before execution.
type Handler func(fctx *Context)

// Filter is a live registration handle.
type Filter struct {
	slot   int
	handle unsafe.Pointer
}

// Slot exposes the registration's trampoline slot, mainly for diagnostics.
func (f *Filter) Slot() int { return f.slot }

// handlers is keyed by trampoline slot. Each host registration is pinned
// to its own slot, so dispatch here is exact: the handler that fires is
// the one registered through the filter the host invoked.
var handlers = cmap.NewWithCustomShardingFunction[int, Handler](
	func(key int) uint32 { return uint32(key) })

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
	hostabi.SetFilterDispatcher(dispatch)
}

// Register installs handler as a command filter. At most
// hostabi.FilterSlots filters can be live at once.
func Register(ctx *hostmod.Context, handler Handler, flags Flags) (*Filter, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !hostabi.Bound() {
		return nil, hostabi.ErrUnbound
	}
	slot, err := hostabi.AllocFilterSlot()
	if err != nil {
		return nil, err
	}
	handle := hostabi.Current().RegisterCommandFilter(ctx.Pointer(), slot, int(flags))
	if handle == nil {
		hostabi.FreeFilterSlot(slot)
		return nil, ErrRegisterFailed
	}
	handlers.Set(slot, handler)
	return &Filter{slot: slot, handle: handle}, nil
}

// Unregister removes a live filter. The handler table entry and its slot
// are only released when the host confirms the unregistration; on failure
// the filter stays fully registered.
func Unregister(ctx *hostmod.Context, f *Filter) error {
	if f == nil {
		return ErrNilFilter
	}
	if !hostabi.Bound() {
		return hostabi.ErrUnbound
	}
	if st := hostabi.Current().UnregisterCommandFilter(ctx.Pointer(), f.handle); !st.OK() {
		return ErrUnregisterFailed
	}
	handlers.Remove(f.slot)
	hostabi.FreeFilterSlot(f.slot)
	return nil
}

// dispatch is the host-facing entry point installed on the hostabi hook.
func dispatch(slot int, fctx unsafe.Pointer) {
	metrics.FilterInvocations.Inc()
	if t := tele(); t != nil {
		t.CountFilterOp("invoke")
	}
	handler, ok := handlers.Get(slot)
	if !ok {
		// The host raced an unregister; nothing to run.
		logx.Debugf("filter fired for free slot %d", slot)
		return
	}
	handler(&Context{ptr: fctx})
}
