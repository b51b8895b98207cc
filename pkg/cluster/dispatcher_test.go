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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srediag/plugin-hostapi/internal/hostabi"
	"github.com/srediag/plugin-hostapi/internal/hostabi/hostabitest"
	"github.com/srediag/plugin-hostapi/pkg/hostmod"
)

func setupAsync(t *testing.T, cfg *DispatchConfig) *hostabitest.FakeHost {
	t.Helper()
	receivers.Clear()
	fake := hostabitest.New()
	restore := fake.Install()
	require.Nil(t, EnableAsyncDispatch(cfg))
	t.Cleanup(func() {
		_ = DisableAsyncDispatch()
		restore()
		receivers.Clear()
	})
	return fake
}

func TestVerifyDispatchConfig(t *testing.T) {
	require.NotNil(t, VerifyDispatchConfig(nil))

	cfg := DefaultDispatchConfig()
	require.Nil(t, VerifyDispatchConfig(cfg))

	cfg.Workers = 0
	require.NotNil(t, VerifyDispatchConfig(cfg))
	cfg.Workers = 2

	cfg.QueueCap = -1
	require.NotNil(t, VerifyDispatchConfig(cfg))
	cfg.QueueCap = 64

	cfg.DrainTimeout = 0
	require.NotNil(t, VerifyDispatchConfig(cfg))
	cfg.DrainTimeout = time.Second

	require.Nil(t, VerifyDispatchConfig(cfg))
}

func TestDispatchConfigFromEnv(t *testing.T) {
	t.Setenv("HOSTMOD_DISPATCH_WORKERS", "8")
	t.Setenv("HOSTMOD_DISPATCH_QUEUE_CAP", "256")
	t.Setenv("HOSTMOD_DISPATCH_DRAIN_TIMEOUT", "2s")

	cfg, err := DispatchConfigFromEnv()
	require.Nil(t, err)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 256, cfg.QueueCap)
	assert.Equal(t, 2*time.Second, cfg.DrainTimeout)

	t.Setenv("HOSTMOD_DISPATCH_WORKERS", "0")
	cfg, err = DispatchConfigFromEnv()
	require.NotNil(t, err)
	assert.Nil(t, cfg)
}

func TestEnableDisableLifecycle(t *testing.T) {
	setupAsync(t, &DispatchConfig{Workers: 2, QueueCap: 16, DrainTimeout: 2 * time.Second})

	assert.ErrorIs(t, EnableAsyncDispatch(nil), ErrDispatchEnabled)
	assert.True(t, DispatchStats().AsyncEnabled)

	require.Nil(t, DisableAsyncDispatch())
	assert.False(t, DispatchStats().AsyncEnabled)
	assert.ErrorIs(t, DisableAsyncDispatch(), ErrDispatchDisabled)
}

func TestAsyncDelivery(t *testing.T) {
	setupAsync(t, &DispatchConfig{Workers: 4, QueueCap: 64, DrainTimeout: 2 * time.Second})

	const n = 50
	var mu sync.Mutex
	got := make(map[string]bool, n)
	done := make(chan struct{})

	require.Nil(t, RegisterReceiver(hostmod.NewContext(nil), 42,
		func(_ *hostmod.Context, _ string, _ uint8, payload []byte) {
			mu.Lock()
			got[string(payload)] = true
			if len(got) == n {
				close(done)
			}
			mu.Unlock()
		}))

	for i := 0; i < n; i++ {
		hostabi.DispatchClusterMessage(nil, "node-a", 42, []byte{byte(i)})
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("async delivery timed out")
	}
	mu.Lock()
	assert.Len(t, got, n)
	mu.Unlock()
}

func TestAsyncDeliveryCopiesPayload(t *testing.T) {
	setupAsync(t, &DispatchConfig{Workers: 1, QueueCap: 16, DrainTimeout: 2 * time.Second})

	gotC := make(chan string, 1)
	require.Nil(t, RegisterReceiver(hostmod.NewContext(nil), 42,
		func(_ *hostmod.Context, _ string, _ uint8, payload []byte) {
			gotC <- string(payload)
		}))

	payload := []byte("hello")
	hostabi.DispatchClusterMessage(nil, "node-a", 42, payload)
	// The host reuses its buffer the moment the raw callback returns.
	payload[0] = 'X'

	select {
	case got := <-gotC:
		assert.Equal(t, "hello", got)
	case <-time.After(5 * time.Second):
		t.Fatal("async delivery timed out")
	}
}

func TestAsyncRingFullDeliversInline(t *testing.T) {
	setupAsync(t, &DispatchConfig{Workers: 1, QueueCap: 2, DrainTimeout: 2 * time.Second})

	release := make(chan struct{})
	var mu sync.Mutex
	deliveredPayloads := 0
	require.Nil(t, RegisterReceiver(hostmod.NewContext(nil), 42,
		func(_ *hostmod.Context, _ string, _ uint8, _ []byte) {
			<-release
			mu.Lock()
			deliveredPayloads++
			mu.Unlock()
		}))

	inlineBefore := DispatchStats().Inline
	deliveredBefore := DispatchStats().Delivered

	// One message occupies the worker, one sits with the pump, two fill
	// the ring. Anything past that has to go inline.
	const n = 6
	senderDone := make(chan struct{})
	go func() {
		defer close(senderDone)
		for i := 0; i < n; i++ {
			hostabi.DispatchClusterMessage(nil, "node-a", 42, []byte{byte(i)})
		}
	}()

	require.Eventually(t, func() bool {
		return DispatchStats().Inline > inlineBefore
	}, 5*time.Second, 10*time.Millisecond, "expected inline fallback")

	close(release)
	<-senderDone
	require.Eventually(t, func() bool {
		return DispatchStats().Delivered-deliveredBefore == n
	}, 5*time.Second, 10*time.Millisecond, "expected all messages delivered")

	mu.Lock()
	assert.Equal(t, n, deliveredPayloads)
	mu.Unlock()
}

func TestDisableDrainsQueue(t *testing.T) {
	setupAsync(t, &DispatchConfig{Workers: 2, QueueCap: 64, DrainTimeout: 5 * time.Second})

	var mu sync.Mutex
	count := 0
	require.Nil(t, RegisterReceiver(hostmod.NewContext(nil), 42,
		func(_ *hostmod.Context, _ string, _ uint8, _ []byte) {
			time.Sleep(time.Millisecond)
			mu.Lock()
			count++
			mu.Unlock()
		}))

	const n = 30
	for i := 0; i < n; i++ {
		hostabi.DispatchClusterMessage(nil, "node-a", 42, []byte{byte(i)})
	}

	require.Nil(t, DisableAsyncDispatch())
	mu.Lock()
	assert.Equal(t, n, count)
	mu.Unlock()
}
