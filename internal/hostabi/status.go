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

import "errors"

// Status mirrors the host's two-valued operation result codes.
type Status int32

const (
	StatusOK  Status = 0
	StatusErr Status = 1
)

var (
	// ErrUnbound reports a host operation attempted before a host binding
	// was installed, or after it was removed.
	ErrUnbound = errors.New("no host binding installed")

	// ErrNoFilterSlots reports that every command filter trampoline slot
	// is already taken.
	ErrNoFilterSlots = errors.New("all command filter slots in use")

	// ErrNoLoadHook reports that the host loaded the module before any
	// module definition was registered.
	ErrNoLoadHook = errors.New("no module registered before load")
)

// OK reports whether the status is the host's success code.
func (s Status) OK() bool {
	return s == StatusOK
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusErr:
		return "err"
	default:
		return "unknown"
	}
}
