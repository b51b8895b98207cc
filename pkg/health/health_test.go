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

package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srediag/plugin-hostapi/api"
	"github.com/srediag/plugin-hostapi/internal/hostabi/hostabitest"
)

func probe(t *testing.T, h http.Handler, path string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestLivenessFollowsHostBinding(t *testing.T) {
	h := NewHandler()

	assert.Equal(t, http.StatusServiceUnavailable, probe(t, h, "/live"))

	fake := hostabitest.New()
	restore := fake.Install()
	defer restore()

	assert.Equal(t, http.StatusOK, probe(t, h, "/live"))
}

func TestReadinessDefaultOK(t *testing.T) {
	fake := hostabitest.New()
	restore := fake.Install()
	defer restore()

	h := NewHandler()
	assert.Equal(t, http.StatusOK, probe(t, h, "/ready"))
}

func TestRegisterCustomSource(t *testing.T) {
	fake := hostabitest.New()
	restore := fake.Install()
	defer restore()

	h := NewHandler()
	failing := api.HealthSourceFunc(func() error { return errors.New("broken") })
	h.Register("custom", failing)

	assert.Equal(t, http.StatusServiceUnavailable, probe(t, h, "/ready"))
	// Liveness is unaffected by readiness sources.
	assert.Equal(t, http.StatusOK, probe(t, h, "/live"))
}

func TestCheckDispatchBacklogSyncMode(t *testing.T) {
	// Without async dispatch there is no backlog to report.
	require.Nil(t, CheckDispatchBacklog())
}

func TestCheckHostBound(t *testing.T) {
	require.NotNil(t, CheckHostBound())

	fake := hostabitest.New()
	restore := fake.Install()
	defer restore()
	require.Nil(t, CheckHostBound())
}
