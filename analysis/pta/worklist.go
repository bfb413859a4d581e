// Copyright the Percept authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pta

// A WorkEntry is a pending propagation: the points-to set is a candidate to be unioned into the
// pointer's current set.
type WorkEntry struct {
	Pointer  Pointer
	PointsTo *PointsToSet
}

// The WorkList is a FIFO of pending propagations. Duplicate entries are allowed; propagation is
// idempotent.
type WorkList struct {
	entries []WorkEntry
}

// NewWorkList returns an empty work list
func NewWorkList() *WorkList {
	return &WorkList{}
}

// AddEntry appends an entry; it never blocks
func (w *WorkList) AddEntry(p Pointer, pts *PointsToSet) {
	w.entries = append(w.entries, WorkEntry{Pointer: p, PointsTo: pts})
}

// PollEntry removes and returns the head entry
func (w *WorkList) PollEntry() WorkEntry {
	e := w.entries[0]
	w.entries = w.entries[1:]
	return e
}

// IsEmpty returns true when no entries are pending
func (w *WorkList) IsEmpty() bool { return len(w.entries) == 0 }
