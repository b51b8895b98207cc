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

// Hook signatures installed by the public packages. Host callbacks carry no
// user data, so routing to Go code goes through these process-wide hooks.
type (
	ClusterMessageFunc func(ctx unsafe.Pointer, senderID string, msgType uint8, payload []byte)
	CommandFilterFunc  func(slot int, fctx unsafe.Pointer)
	CommandFunc        func(ctx unsafe.Pointer, args [][]byte) Status
	LoadFunc           func(ctx unsafe.Pointer, args [][]byte) error
	UnloadFunc         func(ctx unsafe.Pointer)
)

var (
	hookMu      sync.RWMutex
	clusterHook ClusterMessageFunc
	filterHook  CommandFilterFunc
	commandHook CommandFunc
	loadHook    LoadFunc
	unloadHook  UnloadFunc
)

func SetClusterDispatcher(fn ClusterMessageFunc) {
	hookMu.Lock()
	clusterHook = fn
	hookMu.Unlock()
}

func SetFilterDispatcher(fn CommandFilterFunc) {
	hookMu.Lock()
	filterHook = fn
	hookMu.Unlock()
}

func SetCommandDispatcher(fn CommandFunc) {
	hookMu.Lock()
	commandHook = fn
	hookMu.Unlock()
}

func SetLoadHook(fn LoadFunc) {
	hookMu.Lock()
	loadHook = fn
	hookMu.Unlock()
}

func SetUnloadHook(fn UnloadFunc) {
	hookMu.Lock()
	unloadHook = fn
	hookMu.Unlock()
}

// DispatchClusterMessage routes an inbound cluster message to the installed
// dispatcher. A panic must never unwind into the host, so it is recovered
// and logged here.
func DispatchClusterMessage(ctx unsafe.Pointer, senderID string, msgType uint8, payload []byte) {
	defer rescue("cluster message dispatch")
	hookMu.RLock()
	fn := clusterHook
	hookMu.RUnlock()
	if fn == nil {
		logx.Debugf("dropping cluster message type %d: no dispatcher installed", msgType)
		return
	}
	fn(ctx, senderID, msgType, payload)
}

// DispatchCommandFilter routes a filter invocation for the given trampoline
// slot to the installed dispatcher.
func DispatchCommandFilter(slot int, fctx unsafe.Pointer) {
	defer rescue("command filter dispatch")
	hookMu.RLock()
	fn := filterHook
	hookMu.RUnlock()
	if fn == nil {
		return
	}
	fn(slot, fctx)
}

// DispatchCommand routes a command invocation to the installed dispatcher
// and reports its status back to the host.
func DispatchCommand(ctx unsafe.Pointer, args [][]byte) (st Status) {
	st = StatusErr
	defer rescue("command dispatch")
	hookMu.RLock()
	fn := commandHook
	hookMu.RUnlock()
	if fn == nil {
		return StatusErr
	}
	return fn(ctx, args)
}

// RunLoad invokes the installed load hook. A missing hook is an error: the
// host loaded a module that never registered itself.
func RunLoad(ctx unsafe.Pointer, args [][]byte) error {
	hookMu.RLock()
	fn := loadHook
	hookMu.RUnlock()
	if fn == nil {
		return ErrNoLoadHook
	}
	return fn(ctx, args)
}

// RunUnload invokes the installed unload hook, if any.
func RunUnload(ctx unsafe.Pointer) {
	defer rescue("module unload")
	hookMu.RLock()
	fn := unloadHook
	hookMu.RUnlock()
	if fn != nil {
		fn(ctx)
	}
}

func rescue(where string) {
	if r := recover(); r != nil {
		logx.Errorf("panic in %s: %v", where, r)
	}
}
