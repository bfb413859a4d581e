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

package constprop

import (
	"github.com/percept-tools/percept/analysis/ir"
)

// A Fact maps variables to lattice values. A missing key means UNDEF; storing UNDEF removes the
// key, so facts stay small and fact equality is map equality.
type Fact map[*ir.Var]Value

// NewFact returns an empty fact
func NewFact() Fact { return Fact{} }

// Get returns the value of v in the fact, UNDEF when absent
func (f Fact) Get(v *ir.Var) Value { return f[v] }

// Update sets the value of v; returns true if the fact changed
func (f Fact) Update(v *ir.Var, val Value) bool {
	old, ok := f[v]
	if val.IsUndef() {
		if ok {
			delete(f, v)
			return true
		}
		return false
	}
	if ok && old == val {
		return false
	}
	f[v] = val
	return true
}

// Remove deletes the value of v from the fact
func (f Fact) Remove(v *ir.Var) { delete(f, v) }

// Copy returns a fresh fact with the same entries
func (f Fact) Copy() Fact {
	g := make(Fact, len(f))
	for v, val := range f {
		g[v] = val
	}
	return g
}

// CopyFrom updates this fact with every entry of other; returns true if the fact changed
func (f Fact) CopyFrom(other Fact) bool {
	changed := false
	for v, val := range other {
		changed = f.Update(v, val) || changed
	}
	return changed
}
