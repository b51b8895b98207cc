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
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/srediag/plugin-hostapi/internal/hostabi"
)

// Stats is a point-in-time snapshot of the module's footprint inside the
// host process, for a diagnostics command or log dump.
type Stats struct {
	HostBound        bool
	BuiltWithFFI     bool
	Goroutines       int
	RSSBytes         uint64
	CPUPercent       float64
	FilterSlotsInUse int
}

// DebugStats collects a Stats snapshot. Process metrics are best effort;
// the rest is always filled in.
func DebugStats() Stats {
	st := Stats{
		HostBound:        hostabi.Bound(),
		BuiltWithFFI:     hostabi.BuiltWithFFI,
		Goroutines:       runtime.NumGoroutine(),
		FilterSlotsInUse: hostabi.FilterSlotsInUse(),
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return st
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		st.RSSBytes = mem.RSS
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		st.CPUPercent = cpu
	}
	return st
}

func (s Stats) String() string {
	return fmt.Sprintf("host_bound=%v ffi=%v goroutines=%d rss=%d cpu=%.1f%% filter_slots=%d",
		s.HostBound, s.BuiltWithFFI, s.Goroutines, s.RSSBytes, s.CPUPercent, s.FilterSlotsInUse)
}
