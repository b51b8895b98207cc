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

import "sync"

// FilterSlots is the size of the fixed trampoline pool for command filters.
// The host's filter callback carries no user data, so each registration is
// pinned to one generated C trampoline that reports its own slot index.
const FilterSlots = 32

var (
	slotMu   sync.Mutex
	slotUsed [FilterSlots]bool
)

// AllocFilterSlot reserves the lowest free trampoline slot.
func AllocFilterSlot() (int, error) {
	slotMu.Lock()
	defer slotMu.Unlock()
	for i := range slotUsed {
		if !slotUsed[i] {
			slotUsed[i] = true
			return i, nil
		}
	}
	return -1, ErrNoFilterSlots
}

// FreeFilterSlot returns a slot to the pool. Out of range slots are ignored.
func FreeFilterSlot(slot int) {
	if slot < 0 || slot >= FilterSlots {
		return
	}
	slotMu.Lock()
	slotUsed[slot] = false
	slotMu.Unlock()
}

// FilterSlotsInUse reports how many trampoline slots are reserved.
func FilterSlotsInUse() int {
	slotMu.Lock()
	defer slotMu.Unlock()
	n := 0
	for i := range slotUsed {
		if slotUsed[i] {
			n++
		}
	}
	return n
}
