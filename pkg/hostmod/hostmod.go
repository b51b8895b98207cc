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

// Package hostmod is the module core: definition and registration of a
// host module, command dispatch, replies and host logging. A module built
// with this package compiles to a shared library the host loads; the host
// then drives everything through the callbacks installed here.
package hostmod

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/srediag/plugin-hostapi/internal/hostabi"
	"github.com/srediag/plugin-hostapi/internal/logx"
)

var (
	ErrNoModuleName     = errors.New("module name is empty")
	ErrBadVersion       = errors.New("module version is negative")
	ErrNoCommandName    = errors.New("command name is empty")
	ErrNilCommandFunc   = errors.New("command func is nil")
	ErrDuplicateCommand = errors.New("duplicate command name")
	ErrModuleRegistered = errors.New("a module is already registered")
	ErrInitFailed       = errors.New("host rejected module init")
	ErrReplyFailed      = errors.New("host rejected reply")
)

// CommandFunc handles one command invocation. args includes the command
// name at args[0]. A returned error is reported to the client as an error
// reply.
type CommandFunc func(ctx *Context, args [][]byte) error

// Command describes one command the module creates at load time. Flags,
// FirstKey, LastKey and KeyStep are passed to the host verbatim.
type Command struct {
	Name     string
	Flags    string
	FirstKey int
	LastKey  int
	KeyStep  int
	Func     CommandFunc
}

// Module is a complete module definition. OnLoad runs after the host
// accepted the module and every command was created; OnUnload runs when
// the host unloads the library.
type Module struct {
	Name     string
	Version  int
	Commands []Command
	OnLoad   func(ctx *Context, args [][]byte) error
	OnUnload func(ctx *Context)
}

var (
	registerMu sync.Mutex
	registered *Module

	// commands is keyed by lowercased command name; the host's command
	// callback has no user data, so dispatch goes by argv[0].
	commands = cmap.New[Command]()
)

// Register installs m as this process's module. The host calls back into
// it when it loads the shared library. Only one module can exist per
// library, matching how the host loads them.
func Register(m *Module) error {
	if err := validate(m); err != nil {
		return err
	}
	registerMu.Lock()
	defer registerMu.Unlock()
	if registered != nil {
		return ErrModuleRegistered
	}
	registered = m

	hostabi.SetLoadHook(onLoad)
	hostabi.SetUnloadHook(onUnload)
	hostabi.SetCommandDispatcher(dispatchCommand)
	return nil
}

func validate(m *Module) error {
	if m == nil || m.Name == "" {
		return ErrNoModuleName
	}
	if m.Version < 0 {
		return ErrBadVersion
	}
	seen := make(map[string]struct{}, len(m.Commands))
	for _, cmd := range m.Commands {
		if cmd.Name == "" {
			return ErrNoCommandName
		}
		if cmd.Func == nil {
			return fmt.Errorf("%w: %s", ErrNilCommandFunc, cmd.Name)
		}
		key := strings.ToLower(cmd.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCommand, cmd.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func onLoad(raw unsafe.Pointer, args [][]byte) error {
	registerMu.Lock()
	m := registered
	registerMu.Unlock()

	ctx := NewContext(raw)
	if st := hostabi.Current().InitModule(raw, m.Name, m.Version); !st.OK() {
		return fmt.Errorf("%w: %s", ErrInitFailed, m.Name)
	}
	for _, cmd := range m.Commands {
		st := hostabi.Current().CreateCommand(raw, cmd.Name, cmd.Flags,
			cmd.FirstKey, cmd.LastKey, cmd.KeyStep)
		if !st.OK() {
			return fmt.Errorf("create command %q failed", cmd.Name)
		}
		commands.Set(strings.ToLower(cmd.Name), cmd)
	}
	if m.OnLoad != nil {
		if err := m.OnLoad(ctx, args); err != nil {
			return fmt.Errorf("module OnLoad: %w", err)
		}
	}
	logx.Infof("module %s v%d loaded, %d commands", m.Name, m.Version, len(m.Commands))
	return nil
}

func onUnload(raw unsafe.Pointer) {
	registerMu.Lock()
	m := registered
	registerMu.Unlock()
	if m != nil && m.OnUnload != nil {
		m.OnUnload(NewContext(raw))
	}
	commands.Clear()
}

// dispatchCommand routes a host command invocation by argv[0]. The command
// was created by this module, so a miss means load and dispatch disagree;
// the client still gets an error reply rather than a hung connection.
func dispatchCommand(raw unsafe.Pointer, args [][]byte) hostabi.Status {
	ctx := NewContext(raw)
	if len(args) == 0 {
		_ = ctx.ReplyError("ERR empty argument vector")
		return hostabi.StatusErr
	}
	name := strings.ToLower(string(args[0]))
	cmd, ok := commands.Get(name)
	if !ok {
		logx.Warnf("dispatch miss for command %q", name)
		_ = ctx.ReplyError(fmt.Sprintf("ERR unknown command '%s'", name))
		return hostabi.StatusOK
	}
	if err := cmd.Func(ctx, args); err != nil {
		_ = ctx.ReplyError("ERR " + err.Error())
	}
	return hostabi.StatusOK
}

// reset clears module state between tests.
func reset() {
	registerMu.Lock()
	registered = nil
	registerMu.Unlock()
	commands.Clear()
	hostabi.SetLoadHook(nil)
	hostabi.SetUnloadHook(nil)
	hostabi.SetCommandDispatcher(nil)
}
