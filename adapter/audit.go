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

package adapter

import (
	"context"

	"github.com/srediag/plugin-hostapi/api"
	"github.com/srediag/plugin-hostapi/internal/logx"
	"github.com/srediag/plugin-hostapi/pkg/audit"
)

// LogSink writes audit events to the internal logger. It is the sink for
// hosts without a writable filesystem, where the sqlite store cannot run.
type LogSink struct{}

var _ api.AuditSink = LogSink{}

func (LogSink) Record(_ context.Context, ev audit.Event) error {
	logx.Infof("audit %s client=%d cmd=%s argc=%d action=%s note=%q",
		ev.ID, ev.ClientID, ev.Command, ev.Argc, ev.Action, ev.Note)
	return nil
}
