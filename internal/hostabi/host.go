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

package hostabi

import (
	"sync"
	"unsafe"

	"github.com/srediag/plugin-hostapi/internal/logx"
)

// Host log level names as the host's log entry point expects them.
const (
	LogLevelDebug   = "debug"
	LogLevelVerbose = "verbose"
	LogLevelNotice  = "notice"
	LogLevelWarning = "warning"
)

// Command filter flags, matching the host's C constants.
const (
	FilterFlagNoSelf        = 1 << 0
	FilterFlagNoCommandLine = 1 << 1
)

// ModuleHost is the module lifecycle and reply slice of the host ABI.
type ModuleHost interface {
	InitModule(ctx unsafe.Pointer, name string, version int) Status
	CreateCommand(ctx unsafe.Pointer, name, flags string, firstKey, lastKey, keyStep int) Status
	ReplyError(ctx unsafe.Pointer, msg string) Status
	ReplySimpleString(ctx unsafe.Pointer, msg string) Status
	ReplyInt64(ctx unsafe.Pointer, n int64) Status
	ReplyBulk(ctx unsafe.Pointer, b []byte) Status
	ReplyNull(ctx unsafe.Pointer) Status
	Log(ctx unsafe.Pointer, level, msg string)
	GetThreadSafeContext() unsafe.Pointer
	FreeThreadSafeContext(ctx unsafe.Pointer)
	ThreadSafeContextLock(ctx unsafe.Pointer)
	ThreadSafeContextUnlock(ctx unsafe.Pointer)
}

// ClusterHost is the inter-node messaging slice of the host ABI.
type ClusterHost interface {
	// RegisterClusterReceiver points the host's receiver for msgType at the
	// shared inbound trampoline. The host call returns nothing.
	RegisterClusterReceiver(ctx unsafe.Pointer, msgType uint8)
	// SendClusterMessage delivers payload to the node named by target, or to
	// every node when target is empty.
	SendClusterMessage(ctx unsafe.Pointer, target string, msgType uint8, payload []byte) Status
	MyClusterID(ctx unsafe.Pointer) string
}

// FilterHost is the command filtering slice of the host ABI.
type FilterHost interface {
	// RegisterCommandFilter installs the trampoline for slot and returns the
	// host's opaque filter handle, or nil on failure.
	RegisterCommandFilter(ctx unsafe.Pointer, slot int, flags int) unsafe.Pointer
	UnregisterCommandFilter(ctx unsafe.Pointer, handle unsafe.Pointer) Status
	FilterArgCount(fctx unsafe.Pointer) int
	// FilterArg returns a copy of the argument at pos, or (nil, false) when
	// pos is out of range.
	FilterArg(fctx unsafe.Pointer, pos int) ([]byte, bool)
	FilterArgInsert(fctx unsafe.Pointer, pos int, arg []byte) Status
	FilterArgReplace(fctx unsafe.Pointer, pos int, arg []byte) Status
	FilterArgDelete(fctx unsafe.Pointer, pos int) Status
	FilterClientID(fctx unsafe.Pointer) uint64
}

// Host is the full ABI surface the module reaches the host through. The ffi
// build installs the cgo-backed implementation during module load; tests
// install fakes.
type Host interface {
	ModuleHost
	ClusterHost
	FilterHost
}

var (
	bindMu  sync.RWMutex
	binding Host = unboundHost{}
	isBound bool
)

// Bind installs h as the active host binding.
func Bind(h Host) {
	bindMu.Lock()
	binding = h
	isBound = h != nil
	if h == nil {
		binding = unboundHost{}
	}
	bindMu.Unlock()
}

// Unbind removes the active host binding. Subsequent host operations fail
// with unbound results.
func Unbind() {
	Bind(nil)
}

// Bound reports whether a host binding is installed.
func Bound() bool {
	bindMu.RLock()
	defer bindMu.RUnlock()
	return isBound
}

// Current returns the active host binding, or the unbound default.
func Current() Host {
	bindMu.RLock()
	defer bindMu.RUnlock()
	return binding
}

// unboundHost fails every operation. Log falls through to the internal
// logger so early diagnostics are not lost.
type unboundHost struct{}

func (unboundHost) InitModule(unsafe.Pointer, string, int) Status { return StatusErr }
func (unboundHost) CreateCommand(unsafe.Pointer, string, string, int, int, int) Status {
	return StatusErr
}
func (unboundHost) ReplyError(unsafe.Pointer, string) Status        { return StatusErr }
func (unboundHost) ReplySimpleString(unsafe.Pointer, string) Status { return StatusErr }
func (unboundHost) ReplyInt64(unsafe.Pointer, int64) Status         { return StatusErr }
func (unboundHost) ReplyBulk(unsafe.Pointer, []byte) Status         { return StatusErr }
func (unboundHost) ReplyNull(unsafe.Pointer) Status                 { return StatusErr }

func (unboundHost) Log(_ unsafe.Pointer, level, msg string) {
	switch level {
	case LogLevelWarning:
		logx.Warnf("%s", msg)
	case LogLevelNotice:
		logx.Infof("%s", msg)
	default:
		logx.Debugf("%s", msg)
	}
}

func (unboundHost) GetThreadSafeContext() unsafe.Pointer          { return nil }
func (unboundHost) FreeThreadSafeContext(unsafe.Pointer)          {}
func (unboundHost) ThreadSafeContextLock(unsafe.Pointer)          {}
func (unboundHost) ThreadSafeContextUnlock(unsafe.Pointer)        {}
func (unboundHost) RegisterClusterReceiver(unsafe.Pointer, uint8) {}

func (unboundHost) SendClusterMessage(unsafe.Pointer, string, uint8, []byte) Status {
	return StatusErr
}

func (unboundHost) MyClusterID(unsafe.Pointer) string { return "" }

func (unboundHost) RegisterCommandFilter(unsafe.Pointer, int, int) unsafe.Pointer { return nil }
func (unboundHost) UnregisterCommandFilter(unsafe.Pointer, unsafe.Pointer) Status {
	return StatusErr
}
func (unboundHost) FilterArgCount(unsafe.Pointer) int                   { return 0 }
func (unboundHost) FilterArg(unsafe.Pointer, int) ([]byte, bool)        { return nil, false }
func (unboundHost) FilterArgInsert(unsafe.Pointer, int, []byte) Status  { return StatusErr }
func (unboundHost) FilterArgReplace(unsafe.Pointer, int, []byte) Status { return StatusErr }
func (unboundHost) FilterArgDelete(unsafe.Pointer, int) Status          { return StatusErr }
func (unboundHost) FilterClientID(unsafe.Pointer) uint64                { return 0 }
