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

import (
	"fmt"

	"github.com/percept-tools/percept/analysis/ir"
)

// An Obj is an abstract heap object. Allocation objects are identified by their allocation site;
// taint objects are identified by the source call site and the tainted type, and carry no
// allocation site.
type Obj struct {
	// Site is the allocation statement, nil for taint objects
	Site *ir.New

	// Type is the type of the object
	Type *ir.Type

	// Source is the call site that introduced a taint object, nil for allocation objects
	Source *ir.Invoke
}

// IsTaint returns true for objects introduced by a taint source rule
func (o *Obj) IsTaint() bool { return o.Source != nil }

func (o *Obj) String() string {
	if o.IsTaint() {
		return fmt.Sprintf("taint{%s: %s}", o.Source, o.Type)
	}
	return fmt.Sprintf("new %s@%s[%d]", o.Type, o.Site.Parent(), o.Site.Index())
}

// A HeapModel maps allocation statements to abstract heap objects. The mapping must be
// deterministic per call site.
type HeapModel interface {
	GetObj(alloc *ir.New) *Obj
}

// allocSiteModel is the allocation-site heap abstraction: one abstract object per New statement
type allocSiteModel struct {
	objs map[*ir.New]*Obj
}

// NewAllocSiteModel returns the allocation-site heap model
func NewAllocSiteModel() HeapModel {
	return &allocSiteModel{objs: map[*ir.New]*Obj{}}
}

func (h *allocSiteModel) GetObj(alloc *ir.New) *Obj {
	if o, ok := h.objs[alloc]; ok {
		return o
	}
	o := &Obj{Site: alloc, Type: alloc.T}
	h.objs[alloc] = o
	return o
}
