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

// HealthSource is anything whose health the module's probe handler should
// report. Check returns nil when healthy.
type HealthSource interface {
	Check() error
}

// HealthSourceFunc adapts a function to HealthSource.
type HealthSourceFunc func() error

func (f HealthSourceFunc) Check() error { return f() }
