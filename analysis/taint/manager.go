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

package taint

import (
	"github.com/percept-tools/percept/analysis/ir"
	"github.com/percept-tools/percept/analysis/pta"
)

type taintKey struct {
	site *ir.Invoke
	typ  *ir.Type
}

// The manager creates and recognizes taint objects. Creation is idempotent: one object per
// (source call site, type) pair.
type manager struct {
	taints map[taintKey]*pta.Obj
	isOurs map[*pta.Obj]bool
}

func newManager() *manager {
	return &manager{
		taints: map[taintKey]*pta.Obj{},
		isOurs: map[*pta.Obj]bool{},
	}
}

// makeTaint returns the taint object for a source call site and type
func (m *manager) makeTaint(site *ir.Invoke, typ *ir.Type) *pta.Obj {
	k := taintKey{site, typ}
	if o, ok := m.taints[k]; ok {
		return o
	}
	o := &pta.Obj{Type: typ, Source: site}
	m.taints[k] = o
	m.isOurs[o] = true
	return o
}

// isTaint returns true iff the object was produced by this manager
func (m *manager) isTaint(o *pta.Obj) bool {
	return m.isOurs[o]
}

// sourceCall returns the call site a taint object originated from
func (m *manager) sourceCall(o *pta.Obj) *ir.Invoke {
	return o.Source
}
