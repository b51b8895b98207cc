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

package hostmod

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugStats(t *testing.T) {
	fake := setupFake(t)
	_ = fake

	st := DebugStats()
	assert.True(t, st.HostBound)
	assert.False(t, st.BuiltWithFFI)
	assert.Greater(t, st.Goroutines, 0)

	dump := st.String()
	assert.True(t, strings.Contains(dump, "host_bound=true"))
	assert.True(t, strings.Contains(dump, "goroutines="))
}
