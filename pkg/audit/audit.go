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

// Package audit keeps an append-only record of commands a filter handler
// chose to report: what ran, who ran it and what the filter did about it.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action is what the filter did with the command.
type Action string

const (
	ActionObserved  Action = "observed"
	ActionRewritten Action = "rewritten"
	ActionBlocked   Action = "blocked"
)

// Event is one audited command. Events are append-only; there is no
// lifecycle beyond insert and query.
type Event struct {
	ID       string
	At       time.Time
	ClientID uint64
	Command  string
	Argc     int
	Action   Action
	Note     string
}

// NewEvent stamps a fresh event with an id and the current time.
func NewEvent(clientID uint64, command string, argc int, action Action, note string) Event {
	return Event{
		ID:       uuid.New().String(),
		At:       time.Now().UTC(),
		ClientID: clientID,
		Command:  command,
		Argc:     argc,
		Action:   action,
		Note:     note,
	}
}
