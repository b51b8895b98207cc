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
	"fmt"
	"unsafe"

	"github.com/srediag/plugin-hostapi/internal/hostabi"
	"github.com/srediag/plugin-hostapi/internal/logx"
)

// Context wraps the opaque per-call context the host hands to command and
// callback invocations. It is only valid for the duration of the call it
// arrived with.
type Context struct {
	ptr unsafe.Pointer
}

// NewContext wraps a raw host context pointer. Feature packages use this at
// their dispatch boundary; module code never needs it.
func NewContext(p unsafe.Pointer) *Context {
	return &Context{ptr: p}
}

// Pointer returns the raw host context for handing back across the ABI.
func (c *Context) Pointer() unsafe.Pointer {
	if c == nil {
		return nil
	}
	return c.ptr
}

// ClusterID returns this node's cluster identifier, or "" when the host is
// not running in cluster mode or predates the lookup.
func (c *Context) ClusterID() string {
	return hostabi.Current().MyClusterID(c.Pointer())
}

// ReplyOK sends the conventional +OK status reply.
func (c *Context) ReplyOK() error {
	return c.ReplySimpleString("OK")
}

// ReplyError sends an error reply to the issuing client.
func (c *Context) ReplyError(msg string) error {
	if st := hostabi.Current().ReplyError(c.Pointer(), msg); !st.OK() {
		return ErrReplyFailed
	}
	return nil
}

// ReplySimpleString sends a status string reply.
func (c *Context) ReplySimpleString(msg string) error {
	if st := hostabi.Current().ReplySimpleString(c.Pointer(), msg); !st.OK() {
		return ErrReplyFailed
	}
	return nil
}

// ReplyInt64 sends an integer reply.
func (c *Context) ReplyInt64(n int64) error {
	if st := hostabi.Current().ReplyInt64(c.Pointer(), n); !st.OK() {
		return ErrReplyFailed
	}
	return nil
}

// ReplyBulk sends a binary-safe bulk string reply.
func (c *Context) ReplyBulk(b []byte) error {
	if st := hostabi.Current().ReplyBulk(c.Pointer(), b); !st.OK() {
		return ErrReplyFailed
	}
	return nil
}

// ReplyNull sends a null reply.
func (c *Context) ReplyNull() error {
	if st := hostabi.Current().ReplyNull(c.Pointer()); !st.OK() {
		return ErrReplyFailed
	}
	return nil
}

// Host log levels route through the host's own log so module output lands
// in the server log with the other modules'. When no host is bound they
// fall back to the internal logger.

func (c *Context) LogDebug(format string, a ...interface{}) {
	c.log(hostabi.LogLevelDebug, format, a...)
}

func (c *Context) LogVerbose(format string, a ...interface{}) {
	c.log(hostabi.LogLevelVerbose, format, a...)
}

func (c *Context) LogNotice(format string, a ...interface{}) {
	c.log(hostabi.LogLevelNotice, format, a...)
}

func (c *Context) LogWarning(format string, a ...interface{}) {
	c.log(hostabi.LogLevelWarning, format, a...)
}

func (c *Context) log(level, format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	if !hostabi.Bound() {
		logx.Infof("[host %s] %s", level, msg)
		return
	}
	hostabi.Current().Log(c.Pointer(), level, msg)
}
