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

package api

import (
	"context"

	"github.com/srediag/plugin-hostapi/pkg/audit"
)

// AuditSink persists command audit events. Record must not block the
// calling filter for longer than it takes to hand the event off.
type AuditSink interface {
	Record(ctx context.Context, ev audit.Event) error
}
