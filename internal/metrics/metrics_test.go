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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.Nil(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestCountersIncrement(t *testing.T) {
	before := counterValue(t, ClusterSent)
	ClusterSent.Inc()
	ClusterSent.Inc()
	assert.Equal(t, before+2, counterValue(t, ClusterSent))

	before = counterValue(t, FilterInvocations)
	FilterInvocations.Inc()
	assert.Equal(t, before+1, counterValue(t, FilterInvocations))
}

func TestFilterArgOpsLabels(t *testing.T) {
	FilterArgOps.WithLabelValues("insert").Inc()
	FilterArgOps.WithLabelValues("insert").Inc()
	FilterArgOps.WithLabelValues("delete").Inc()

	assert.Equal(t, 2.0, counterValue(t, FilterArgOps.WithLabelValues("insert")))
	assert.Equal(t, 1.0, counterValue(t, FilterArgOps.WithLabelValues("delete")))
	assert.Equal(t, 0.0, counterValue(t, FilterArgOps.WithLabelValues("replace")))
}

func TestQueueDepthGauge(t *testing.T) {
	DispatchQueueDepth.Set(17)
	m := &dto.Metric{}
	require.Nil(t, DispatchQueueDepth.Write(m))
	assert.Equal(t, 17.0, m.GetGauge().GetValue())
	DispatchQueueDepth.Set(0)
}

func TestCollectorsRegistered(t *testing.T) {
	// init registered everything on the default registry; a duplicate
	// registration must collide.
	err := prometheus.Register(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hostmod_cluster_messages_sent_total",
		Help: "dup",
	}))
	assert.NotNil(t, err)
}
