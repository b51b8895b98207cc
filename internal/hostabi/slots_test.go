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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAllSlots() {
	for i := 0; i < FilterSlots; i++ {
		FreeFilterSlot(i)
	}
}

func TestAllocFilterSlotLowestFirst(t *testing.T) {
	freeAllSlots()
	defer freeAllSlots()

	s0, err := AllocFilterSlot()
	require.Nil(t, err)
	s1, err := AllocFilterSlot()
	require.Nil(t, err)
	assert.Equal(t, 0, s0)
	assert.Equal(t, 1, s1)

	// Freeing the lower slot makes it the next allocation again.
	FreeFilterSlot(s0)
	s2, err := AllocFilterSlot()
	require.Nil(t, err)
	assert.Equal(t, 0, s2)
	assert.Equal(t, 2, FilterSlotsInUse())
}

func TestAllocFilterSlotExhaustion(t *testing.T) {
	freeAllSlots()
	defer freeAllSlots()

	for i := 0; i < FilterSlots; i++ {
		s, err := AllocFilterSlot()
		require.Nil(t, err)
		assert.Equal(t, i, s)
	}
	assert.Equal(t, FilterSlots, FilterSlotsInUse())

	s, err := AllocFilterSlot()
	assert.Equal(t, -1, s)
	assert.ErrorIs(t, err, ErrNoFilterSlots)

	FreeFilterSlot(7)
	s, err = AllocFilterSlot()
	require.Nil(t, err)
	assert.Equal(t, 7, s)
}

func TestFreeFilterSlotOutOfRange(t *testing.T) {
	// Must not panic or disturb accounting.
	before := FilterSlotsInUse()
	FreeFilterSlot(-1)
	FreeFilterSlot(FilterSlots)
	assert.Equal(t, before, FilterSlotsInUse())
}
