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

// Package hostabitest provides an in-process Host implementation for tests.
// It records every call it receives and can be scripted to fail specific
// operations, which is the only way to exercise the wrapper's error paths
// without the real host runtime.
package hostabitest

import (
	"sync"
	"unsafe"

	"github.com/srediag/plugin-hostapi/internal/hostabi"
)

// SentMessage records one SendClusterMessage call. Target is "" for a
// broadcast.
type SentMessage struct {
	Target  string
	MsgType uint8
	Payload []byte
}

// CreatedCommand records one CreateCommand call.
type CreatedCommand struct {
	Name     string
	Flags    string
	FirstKey int
	LastKey  int
	KeyStep  int
}

// Reply records one reply call. Kind is one of "error", "simple", "int",
// "bulk", "null".
type Reply struct {
	Kind string
	Str  string
	N    int64
	Bulk []byte
}

// LogLine records one host Log call.
type LogLine struct {
	Level string
	Msg   string
}

// FilterReg records one live command filter registration.
type FilterReg struct {
	Slot  int
	Flags int
}

// FakeHost implements hostabi.Host. The zero value is ready to use; set the
// Fail* fields to script failures. All methods are safe for concurrent use.
type FakeHost struct {
	mu sync.Mutex

	ClusterID string

	FailInit          bool
	FailCreateCommand bool
	FailSend          bool
	FailRegisterFlt   bool
	FailUnregisterFlt bool
	FailArgOps        bool
	FailReplies       bool

	InitName    string
	InitVersion int

	Commands  []CreatedCommand
	Replies   []Reply
	Logs      []LogLine
	Receivers map[uint8]int
	Sent      []SentMessage

	filters map[unsafe.Pointer]FilterReg
}

var _ hostabi.Host = (*FakeHost)(nil)

// New returns an empty fake host.
func New() *FakeHost {
	return &FakeHost{
		Receivers: make(map[uint8]int),
		filters:   make(map[unsafe.Pointer]FilterReg),
	}
}

// Install binds the fake as the active host and returns a restore function
// for the test's cleanup.
func (f *FakeHost) Install() func() {
	hostabi.Bind(f)
	return hostabi.Unbind
}

func (f *FakeHost) status(fail bool) hostabi.Status {
	if fail {
		return hostabi.StatusErr
	}
	return hostabi.StatusOK
}

func (f *FakeHost) InitModule(_ unsafe.Pointer, name string, version int) hostabi.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailInit {
		return hostabi.StatusErr
	}
	f.InitName = name
	f.InitVersion = version
	return hostabi.StatusOK
}

func (f *FakeHost) CreateCommand(_ unsafe.Pointer, name, flags string, firstKey, lastKey, keyStep int) hostabi.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailCreateCommand {
		return hostabi.StatusErr
	}
	f.Commands = append(f.Commands, CreatedCommand{name, flags, firstKey, lastKey, keyStep})
	return hostabi.StatusOK
}

func (f *FakeHost) reply(r Reply) hostabi.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailReplies {
		return hostabi.StatusErr
	}
	f.Replies = append(f.Replies, r)
	return hostabi.StatusOK
}

func (f *FakeHost) ReplyError(_ unsafe.Pointer, msg string) hostabi.Status {
	return f.reply(Reply{Kind: "error", Str: msg})
}

func (f *FakeHost) ReplySimpleString(_ unsafe.Pointer, msg string) hostabi.Status {
	return f.reply(Reply{Kind: "simple", Str: msg})
}

func (f *FakeHost) ReplyInt64(_ unsafe.Pointer, n int64) hostabi.Status {
	return f.reply(Reply{Kind: "int", N: n})
}

func (f *FakeHost) ReplyBulk(_ unsafe.Pointer, b []byte) hostabi.Status {
	return f.reply(Reply{Kind: "bulk", Bulk: append([]byte(nil), b...)})
}

func (f *FakeHost) ReplyNull(_ unsafe.Pointer) hostabi.Status {
	return f.reply(Reply{Kind: "null"})
}

func (f *FakeHost) Log(_ unsafe.Pointer, level, msg string) {
	f.mu.Lock()
	f.Logs = append(f.Logs, LogLine{level, msg})
	f.mu.Unlock()
}

func (f *FakeHost) GetThreadSafeContext() unsafe.Pointer   { return nil }
func (f *FakeHost) FreeThreadSafeContext(unsafe.Pointer)   {}
func (f *FakeHost) ThreadSafeContextLock(unsafe.Pointer)   {}
func (f *FakeHost) ThreadSafeContextUnlock(unsafe.Pointer) {}

func (f *FakeHost) RegisterClusterReceiver(_ unsafe.Pointer, msgType uint8) {
	f.mu.Lock()
	f.Receivers[msgType]++
	f.mu.Unlock()
}

func (f *FakeHost) SendClusterMessage(_ unsafe.Pointer, target string, msgType uint8, payload []byte) hostabi.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSend {
		return hostabi.StatusErr
	}
	f.Sent = append(f.Sent, SentMessage{target, msgType, append([]byte(nil), payload...)})
	return hostabi.StatusOK
}

func (f *FakeHost) MyClusterID(unsafe.Pointer) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ClusterID
}

func (f *FakeHost) RegisterCommandFilter(_ unsafe.Pointer, slot int, flags int) unsafe.Pointer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailRegisterFlt {
		return nil
	}
	handle := unsafe.Pointer(new(int))
	f.filters[handle] = FilterReg{Slot: slot, Flags: flags}
	return handle
}

func (f *FakeHost) UnregisterCommandFilter(_ unsafe.Pointer, handle unsafe.Pointer) hostabi.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailUnregisterFlt {
		return hostabi.StatusErr
	}
	if _, ok := f.filters[handle]; !ok {
		return hostabi.StatusErr
	}
	delete(f.filters, handle)
	return hostabi.StatusOK
}

// RegisteredFlags returns the flags of the live registration on slot.
func (f *FakeHost) RegisteredFlags(slot int) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, reg := range f.filters {
		if reg.Slot == slot {
			return reg.Flags, true
		}
	}
	return 0, false
}

// LiveFilters reports how many filter registrations the host still holds.
func (f *FakeHost) LiveFilters() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filters)
}

// FilterCtx stands in for the host's per-invocation filter context. Hand
// Pointer() to dispatch and the arg accessors mutate Args, mirroring how
// the host mutates the real command.
type FilterCtx struct {
	mu     sync.Mutex
	Args   [][]byte
	Client uint64
}

// NewFilterCtx builds a filter context from string arguments.
func NewFilterCtx(client uint64, args ...string) *FilterCtx {
	c := &FilterCtx{Client: client}
	for _, a := range args {
		c.Args = append(c.Args, []byte(a))
	}
	return c
}

// Pointer returns the context's identity as the host would pass it.
func (c *FilterCtx) Pointer() unsafe.Pointer {
	return unsafe.Pointer(c)
}

// ArgStrings returns the current argument vector as strings.
func (c *FilterCtx) ArgStrings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.Args))
	for i, a := range c.Args {
		out[i] = string(a)
	}
	return out
}

func filterCtx(p unsafe.Pointer) *FilterCtx {
	return (*FilterCtx)(p)
}

func (f *FakeHost) FilterArgCount(fctx unsafe.Pointer) int {
	c := filterCtx(fctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Args)
}

func (f *FakeHost) FilterArg(fctx unsafe.Pointer, pos int) ([]byte, bool) {
	c := filterCtx(fctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos < 0 || pos >= len(c.Args) {
		return nil, false
	}
	return append([]byte(nil), c.Args[pos]...), true
}

func (f *FakeHost) FilterArgInsert(fctx unsafe.Pointer, pos int, arg []byte) hostabi.Status {
	if f.FailArgOps {
		return hostabi.StatusErr
	}
	c := filterCtx(fctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos < 0 || pos > len(c.Args) {
		return hostabi.StatusErr
	}
	cp := append([]byte(nil), arg...)
	c.Args = append(c.Args[:pos], append([][]byte{cp}, c.Args[pos:]...)...)
	return hostabi.StatusOK
}

func (f *FakeHost) FilterArgReplace(fctx unsafe.Pointer, pos int, arg []byte) hostabi.Status {
	if f.FailArgOps {
		return hostabi.StatusErr
	}
	c := filterCtx(fctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos < 0 || pos >= len(c.Args) {
		return hostabi.StatusErr
	}
	c.Args[pos] = append([]byte(nil), arg...)
	return hostabi.StatusOK
}

func (f *FakeHost) FilterArgDelete(fctx unsafe.Pointer, pos int) hostabi.Status {
	if f.FailArgOps {
		return hostabi.StatusErr
	}
	c := filterCtx(fctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos < 0 || pos >= len(c.Args) {
		return hostabi.StatusErr
	}
	c.Args = append(c.Args[:pos], c.Args[pos+1:]...)
	return hostabi.StatusOK
}

func (f *FakeHost) FilterClientID(fctx unsafe.Pointer) uint64 {
	return filterCtx(fctx).Client
}
