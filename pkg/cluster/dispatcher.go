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

package cluster

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/Workiva/go-datastructures/queue"
	"github.com/caarlos0/env/v11"
	"github.com/cenkalti/backoff/v4"
	"github.com/panjf2000/ants/v2"
	"github.com/valyala/bytebufferpool"

	"github.com/srediag/plugin-hostapi/internal/hostabi"
	"github.com/srediag/plugin-hostapi/internal/logx"
	"github.com/srediag/plugin-hostapi/internal/metrics"
	"github.com/srediag/plugin-hostapi/pkg/hostmod"
)

var (
	ErrDispatchEnabled  = errors.New("async dispatch already enabled")
	ErrDispatchDisabled = errors.New("async dispatch not enabled")
	ErrDrainTimeout     = errors.New("async dispatch drain timed out")
)

// DispatchConfig sizes the optional async dispatcher.
type DispatchConfig struct {
	// Workers is the handler pool size.
	Workers int `env:"HOSTMOD_DISPATCH_WORKERS" envDefault:"4"`

	// QueueCap is the admission ring capacity. A full ring falls back to
	// inline delivery on the host thread, never blocking the host.
	QueueCap int `env:"HOSTMOD_DISPATCH_QUEUE_CAP" envDefault:"1024"`

	// DrainTimeout bounds how long DisableAsyncDispatch waits for queued
	// messages and running handlers.
	DrainTimeout time.Duration `env:"HOSTMOD_DISPATCH_DRAIN_TIMEOUT" envDefault:"5s"`
}

// DefaultDispatchConfig returns the documented defaults.
func DefaultDispatchConfig() *DispatchConfig {
	return &DispatchConfig{
		Workers:      4,
		QueueCap:     1024,
		DrainTimeout: 5 * time.Second,
	}
}

// VerifyDispatchConfig checks c for values the dispatcher cannot run with.
func VerifyDispatchConfig(c *DispatchConfig) error {
	if c == nil {
		return fmt.Errorf("dispatch config is nil")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("dispatch workers %d, want > 0", c.Workers)
	}
	if c.QueueCap <= 0 {
		return fmt.Errorf("dispatch queue cap %d, want > 0", c.QueueCap)
	}
	if c.DrainTimeout <= 0 {
		return fmt.Errorf("dispatch drain timeout %v, want > 0", c.DrainTimeout)
	}
	return nil
}

// DispatchConfigFromEnv parses the HOSTMOD_DISPATCH_* environment and
// verifies the result.
func DispatchConfigFromEnv() (*DispatchConfig, error) {
	c := &DispatchConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse dispatch env config: %w", err)
	}
	if err := VerifyDispatchConfig(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Stats is a snapshot of dispatch progress since process start.
type Stats struct {
	AsyncEnabled bool
	QueueDepth   uint64
	QueueCap     uint64
	Delivered    uint64
	Inline       uint64
	Dropped      uint64
}

var (
	delivered atomic.Uint64
	inline    atomic.Uint64
	dropped   atomic.Uint64

	dispMu sync.Mutex
	disp   atomic.Pointer[dispatcher]
)

// inbound is one queued message. The payload lives in a pooled buffer that
// the worker returns after the handler finishes.
type inbound struct {
	handler  MessageHandler
	senderID string
	msgType  uint8
	buf      *bytebufferpool.ByteBuffer
}

type dispatcher struct {
	ring  *queue.RingBuffer
	pool  *ants.Pool
	tsctx unsafe.Pointer
	drain time.Duration
	done  chan struct{}
}

func activeDispatcher() *dispatcher {
	return disp.Load()
}

// EnableAsyncDispatch decouples message handlers from the host's delivery
// thread: inbound messages are copied, queued on a bounded ring and run on
// a worker pool. Opt-in; synchronous delivery stays the default.
func EnableAsyncDispatch(cfg *DispatchConfig) error {
	if cfg == nil {
		cfg = DefaultDispatchConfig()
	}
	if err := VerifyDispatchConfig(cfg); err != nil {
		return err
	}
	dispMu.Lock()
	defer dispMu.Unlock()
	if disp.Load() != nil {
		return ErrDispatchEnabled
	}
	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return fmt.Errorf("dispatch worker pool: %w", err)
	}
	d := &dispatcher{
		ring:  queue.NewRingBuffer(uint64(cfg.QueueCap)),
		pool:  pool,
		tsctx: hostabi.Current().GetThreadSafeContext(),
		drain: cfg.DrainTimeout,
		done:  make(chan struct{}),
	}
	go d.pump()
	disp.Store(d)
	return nil
}

// DisableAsyncDispatch drains queued messages and returns to synchronous
// delivery. Messages arriving during the drain are delivered inline.
func DisableAsyncDispatch() error {
	dispMu.Lock()
	defer dispMu.Unlock()
	d := disp.Load()
	if d == nil {
		return ErrDispatchDisabled
	}
	disp.Store(nil)
	return d.close()
}

// DispatchStats reports delivery counters and, when async dispatch is on,
// ring occupancy.
func DispatchStats() Stats {
	st := Stats{
		Delivered: delivered.Load(),
		Inline:    inline.Load(),
		Dropped:   dropped.Load(),
	}
	if d := disp.Load(); d != nil {
		st.AsyncEnabled = true
		st.QueueDepth = d.ring.Len()
		st.QueueCap = d.ring.Cap()
	}
	return st
}

// enqueue hands a message to the worker pool. Host-owned memory is only
// valid during the raw callback, so the payload is copied into a pooled
// buffer first. A full or closing ring delivers inline instead: the host
// thread is never blocked and no message is lost.
func (d *dispatcher) enqueue(raw unsafe.Pointer, handler MessageHandler, senderID string, msgType uint8, payload []byte) {
	buf := bytebufferpool.Get()
	_, _ = buf.Write(payload)
	ok, err := d.ring.Offer(inbound{handler: handler, senderID: senderID, msgType: msgType, buf: buf})
	if err != nil || !ok {
		bytebufferpool.Put(buf)
		inline.Add(1)
		metrics.ClusterInline.Inc()
		deliver(handler, hostmod.NewContext(raw), senderID, msgType, payload)
		return
	}
	metrics.DispatchQueueDepth.Set(float64(d.ring.Len()))
}

// pump moves messages from the ring to the worker pool until the ring is
// disposed.
func (d *dispatcher) pump() {
	defer close(d.done)
	for {
		item, err := d.ring.Poll(50 * time.Millisecond)
		if err == queue.ErrTimeout {
			continue
		}
		if err != nil {
			return
		}
		msg := item.(inbound)
		metrics.DispatchQueueDepth.Set(float64(d.ring.Len()))
		if err := d.pool.Submit(func() { d.run(msg) }); err != nil {
			// Pool closing underneath us; finish the message here.
			d.run(msg)
		}
	}
}

// run executes one queued handler under the thread safe context's lock,
// then returns the payload buffer to the pool.
func (d *dispatcher) run(msg inbound) {
	defer bytebufferpool.Put(msg.buf)
	h := hostabi.Current()
	if d.tsctx != nil {
		h.ThreadSafeContextLock(d.tsctx)
		defer h.ThreadSafeContextUnlock(d.tsctx)
	}
	deliver(msg.handler, hostmod.NewContext(d.tsctx), msg.senderID, msg.msgType, msg.buf.Bytes())
}

func (d *dispatcher) close() error {
	ring := d.ring

	// Wait for the pump to empty the ring before disposing it.
	empty := func() error {
		if ring.Len() > 0 {
			return fmt.Errorf("ring not empty: %d", ring.Len())
		}
		return nil
	}
	interval := 20 * time.Millisecond
	retries := uint64(d.drain/interval) + 1
	drainErr := backoff.Retry(empty, backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), retries))

	ring.Dispose()
	<-d.done
	if err := d.pool.ReleaseTimeout(d.drain); err != nil {
		logx.Warnf("dispatch pool release: %v", err)
	}
	if d.tsctx != nil {
		hostabi.Current().FreeThreadSafeContext(d.tsctx)
	}
	metrics.DispatchQueueDepth.Set(0)
	if drainErr != nil {
		return ErrDrainTimeout
	}
	return nil
}
