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
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchClusterMessageRouting(t *testing.T) {
	defer SetClusterDispatcher(nil)

	var gotSender string
	var gotType uint8
	var gotPayload []byte
	SetClusterDispatcher(func(_ unsafe.Pointer, sender string, msgType uint8, payload []byte) {
		gotSender = sender
		gotType = msgType
		gotPayload = payload
	})

	DispatchClusterMessage(nil, "node-a", 42, []byte("hello"))
	assert.Equal(t, "node-a", gotSender)
	assert.Equal(t, uint8(42), gotType)
	assert.Equal(t, []byte("hello"), gotPayload)
}

func TestDispatchClusterMessageNoDispatcher(t *testing.T) {
	SetClusterDispatcher(nil)
	// Must be a silent drop.
	DispatchClusterMessage(nil, "node-a", 1, nil)
}

func TestDispatchRecoversPanic(t *testing.T) {
	defer SetClusterDispatcher(nil)
	defer SetFilterDispatcher(nil)

	SetClusterDispatcher(func(unsafe.Pointer, string, uint8, []byte) {
		panic("handler exploded")
	})
	// A panic unwinding into the host would abort the server process.
	assert.NotPanics(t, func() {
		DispatchClusterMessage(nil, "node-a", 1, nil)
	})

	SetFilterDispatcher(func(int, unsafe.Pointer) {
		panic("filter exploded")
	})
	assert.NotPanics(t, func() {
		DispatchCommandFilter(3, nil)
	})
}

func TestDispatchCommandStatus(t *testing.T) {
	defer SetCommandDispatcher(nil)

	assert.Equal(t, StatusErr, DispatchCommand(nil, nil))

	SetCommandDispatcher(func(_ unsafe.Pointer, args [][]byte) Status {
		if len(args) == 1 && string(args[0]) == "ok" {
			return StatusOK
		}
		return StatusErr
	})
	assert.Equal(t, StatusOK, DispatchCommand(nil, [][]byte{[]byte("ok")}))
	assert.Equal(t, StatusErr, DispatchCommand(nil, [][]byte{[]byte("nope")}))

	SetCommandDispatcher(func(unsafe.Pointer, [][]byte) Status {
		panic("command exploded")
	})
	assert.Equal(t, StatusErr, DispatchCommand(nil, nil))
}

func TestRunLoadRequiresHook(t *testing.T) {
	SetLoadHook(nil)
	err := RunLoad(nil, nil)
	require.ErrorIs(t, err, ErrNoLoadHook)

	var loaded [][]byte
	SetLoadHook(func(_ unsafe.Pointer, args [][]byte) error {
		loaded = args
		return nil
	})
	defer SetLoadHook(nil)

	require.Nil(t, RunLoad(nil, [][]byte{[]byte("arg0")}))
	require.Len(t, loaded, 1)
	assert.Equal(t, "arg0", string(loaded[0]))
}

func TestRunUnloadOptional(t *testing.T) {
	SetUnloadHook(nil)
	RunUnload(nil)

	ran := false
	SetUnloadHook(func(unsafe.Pointer) { ran = true })
	defer SetUnloadHook(nil)
	RunUnload(nil)
	assert.True(t, ran)
}
