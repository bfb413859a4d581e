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
	"golang.org/x/tools/container/intsets"
)

// A PointsToSet is a monotone set of context-qualified objects. Objects are stored by their dense
// manager id in a sparse bit set; insertion never removes elements.
type PointsToSet struct {
	mgr *CSManager
	set intsets.Sparse
}

// Add inserts an object; returns true if the set changed
func (p *PointsToSet) Add(o *CSObj) bool {
	return p.set.Insert(o.id)
}

// Has returns true if the set contains the object
func (p *PointsToSet) Has(o *CSObj) bool {
	return p.set.Has(o.id)
}

// Len returns the number of objects in the set
func (p *PointsToSet) Len() int { return p.set.Len() }

// IsEmpty returns true if the set holds no objects
func (p *PointsToSet) IsEmpty() bool { return p.set.IsEmpty() }

// ForEach calls f on every object in the set, in increasing id order
func (p *PointsToSet) ForEach(f func(*CSObj)) {
	var ids []int
	for _, id := range p.set.AppendTo(ids) {
		f(p.mgr.objs[id])
	}
}

// Objs returns the objects of the set as a slice, in increasing id order
func (p *PointsToSet) Objs() []*CSObj {
	var objs []*CSObj
	p.ForEach(func(o *CSObj) { objs = append(objs, o) })
	return objs
}

func (p *PointsToSet) String() string {
	s := "{"
	first := true
	p.ForEach(func(o *CSObj) {
		if !first {
			s += ", "
		}
		first = false
		s += o.String()
	})
	return s + "}"
}
