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

// Package metrics holds the module's prometheus collectors. They register
// on the default registry so a module embedding its own exporter picks
// them up without extra wiring.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ClusterSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hostmod_cluster_messages_sent_total",
		Help: "Cluster messages handed to the host for delivery.",
	})

	ClusterReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hostmod_cluster_messages_received_total",
		Help: "Cluster messages the host delivered to this module.",
	})

	ClusterInline = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hostmod_cluster_dispatch_inline_total",
		Help: "Messages delivered inline because the dispatch ring was full.",
	})

	ClusterDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hostmod_cluster_messages_dropped_total",
		Help: "Messages dropped because no receiver was registered for their type.",
	})

	DispatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hostmod_cluster_dispatch_duration_seconds",
		Help:    "Time spent inside registered message handlers.",
		Buckets: prometheus.ExponentialBuckets(10e-6, 4, 10),
	})

	DispatchQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hostmod_cluster_dispatch_queue_depth",
		Help: "Messages waiting in the async dispatch ring.",
	})

	FilterInvocations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hostmod_filter_invocations_total",
		Help: "Command filter callbacks received from the host.",
	})

	FilterArgOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hostmod_filter_arg_ops_total",
		Help: "Filtered-command argument operations by kind.",
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(
		ClusterSent,
		ClusterReceived,
		ClusterInline,
		ClusterDropped,
		DispatchDuration,
		DispatchQueueDepth,
		FilterInvocations,
		FilterArgOps,
	)
}
