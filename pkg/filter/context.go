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

package filter

import (
	"unsafe"

	"github.com/srediag/plugin-hostapi/internal/hostabi"
	"github.com/srediag/plugin-hostapi/internal/metrics"
)

// Context gives a filter handler access to the command being filtered. It
// is only valid inside the handler invocation that received it.
type Context struct {
	ptr unsafe.Pointer
}

// ArgCount returns the number of arguments in the filtered command,
// including the command name at position 0.
func (c *Context) ArgCount() int {
	return hostabi.Current().FilterArgCount(c.ptr)
}

// Arg returns a copy of the argument at pos. The second return is false
// when pos is out of range. Copies are safe to retain past the handler.
func (c *Context) Arg(pos int) ([]byte, bool) {
	return hostabi.Current().FilterArg(c.ptr, pos)
}

// ArgString is Arg as a string, "" when out of range.
func (c *Context) ArgString(pos int) string {
	b, ok := c.Arg(pos)
	if !ok {
		return ""
	}
	return string(b)
}

// InsertArg inserts arg before position pos, shifting later arguments.
func (c *Context) InsertArg(pos int, arg []byte) error {
	if st := hostabi.Current().FilterArgInsert(c.ptr, pos, arg); !st.OK() {
		return ErrArgInsertFailed
	}
	c.countOp("insert")
	return nil
}

// ReplaceArg replaces the argument at pos.
func (c *Context) ReplaceArg(pos int, arg []byte) error {
	if st := hostabi.Current().FilterArgReplace(c.ptr, pos, arg); !st.OK() {
		return ErrArgReplaceFailed
	}
	c.countOp("replace")
	return nil
}

// DeleteArg removes the argument at pos, shifting later arguments.
func (c *Context) DeleteArg(pos int) error {
	if st := hostabi.Current().FilterArgDelete(c.ptr, pos); !st.OK() {
		return ErrArgDeleteFailed
	}
	c.countOp("delete")
	return nil
}

// ClientID returns the host's identifier for the client that issued the
// command.
func (c *Context) ClientID() uint64 {
	return hostabi.Current().FilterClientID(c.ptr)
}

func (c *Context) countOp(op string) {
	metrics.FilterArgOps.WithLabelValues(op).Inc()
	if t := tele(); t != nil {
		t.CountFilterOp(op)
	}
}
