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

// Package hostabi binds the host server's module ABI. It is the only
// package in the module that is allowed to import "C".
//
// The host hands a module exactly one thing at load time: a context whose
// first slot is a function that resolves the rest of the API table by name.
// This package resolves that table, converts between C and Go values at the
// boundary, and fans host callbacks out to dispatchers installed by the
// public packages. Host objects cross the package boundary as unsafe.Pointer
// only; C types never leak out of here.
//
// The real binding is built with the `ffi` build tag and CGO_ENABLED=1.
// Without the tag the package still compiles and every host operation fails
// with an unbound-host result, which is what the test suites run against via
// hostabitest.
package hostabi
