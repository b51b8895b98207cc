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
)

type nopHost struct {
	unboundHost
}

func (nopHost) InitModule(unsafe.Pointer, string, int) Status { return StatusOK }

func TestBindUnbind(t *testing.T) {
	assert.False(t, Bound())

	Bind(nopHost{})
	assert.True(t, Bound())
	assert.Equal(t, StatusOK, Current().InitModule(nil, "m", 1))

	Unbind()
	assert.False(t, Bound())
	assert.Equal(t, StatusErr, Current().InitModule(nil, "m", 1))
}

func TestUnboundHostFailsEverything(t *testing.T) {
	h := unboundHost{}
	assert.Equal(t, StatusErr, h.SendClusterMessage(nil, "node", 1, nil))
	assert.Equal(t, StatusErr, h.ReplyError(nil, "x"))
	assert.Equal(t, StatusErr, h.UnregisterCommandFilter(nil, nil))
	assert.Nil(t, h.RegisterCommandFilter(nil, 0, 0))
	assert.Equal(t, 0, h.FilterArgCount(nil))

	b, ok := h.FilterArg(nil, 0)
	assert.Nil(t, b)
	assert.False(t, ok)
	assert.Equal(t, "", h.MyClusterID(nil))
}

func TestStatusString(t *testing.T) {
	assert.True(t, StatusOK.OK())
	assert.False(t, StatusErr.OK())
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "err", StatusErr.String())
	assert.Equal(t, "unknown", Status(7).String())
}
