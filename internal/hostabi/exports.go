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

//go:build ffi

package hostabi

/*
#include "hostapi.h"
*/
import "C"

import (
	"unsafe"

	"github.com/srediag/plugin-hostapi/internal/logx"
)

// HostModule_OnLoad is the entry point the host calls after loading the
// shared library. It resolves the API table, installs the cgo host binding
// and hands control to the registered module definition.
//
//export HostModule_OnLoad
func HostModule_OnLoad(ctx *C.HostModuleCtx, argv **C.HostModuleString, argc C.int) (rc C.int) {
	rc = C.HOSTMODULE_ERR
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic during module load: %v", r)
			rc = C.HOSTMODULE_ERR
		}
	}()

	if ctx == nil || !resolveHostAPI(ctx).OK() {
		logx.Errorf("failed to resolve host module API")
		return C.HOSTMODULE_ERR
	}
	Bind(cHost{})

	if err := RunLoad(unsafe.Pointer(ctx), goStringArgs(argv, argc)); err != nil {
		logx.Errorf("module load failed: %v", err)
		Unbind()
		return C.HOSTMODULE_ERR
	}
	return C.HOSTMODULE_OK
}

// HostModule_OnUnload runs the registered unload hook and drops the host
// binding.
//
//export HostModule_OnUnload
func HostModule_OnUnload(ctx *C.HostModuleCtx) C.int {
	RunUnload(unsafe.Pointer(ctx))
	Unbind()
	return C.HOSTMODULE_OK
}

// goHostClusterMessage is the shared inbound trampoline target for cluster
// messages. Host memory is only valid for the duration of this call, so the
// sender id and payload are converted before dispatch.
//
//export goHostClusterMessage
func goHostClusterMessage(ctx *C.HostModuleCtx, senderID *C.char, msgType C.uint8_t, payload *C.uchar, length C.uint32_t) {
	sender := ""
	if senderID != nil {
		sender = C.GoString(senderID)
	}
	body := []byte{}
	if payload != nil && length > 0 {
		body = C.GoBytes(unsafe.Pointer(payload), C.int(length))
	}
	DispatchClusterMessage(unsafe.Pointer(ctx), sender, uint8(msgType), body)
}

// goHostCommandFilter is the trampoline target for command filter slot n.
//
//export goHostCommandFilter
func goHostCommandFilter(slot C.int, fctx *C.HostModuleCommandFilterCtx) {
	DispatchCommandFilter(int(slot), unsafe.Pointer(fctx))
}

// goHostCommand is the trampoline target for every command this module
// creates; commands are told apart by argv[0].
//
//export goHostCommand
func goHostCommand(ctx *C.HostModuleCtx, argv **C.HostModuleString, argc C.int) C.int {
	return C.int(DispatchCommand(unsafe.Pointer(ctx), goStringArgs(argv, argc)))
}
