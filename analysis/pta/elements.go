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

// A Pointer is a node of the pointer flow graph. The concrete kinds are CSVar, InstanceField,
// StaticField and ArrayIndex; each owns its points-to set.
type Pointer interface {
	// PointsTo returns the points-to set owned by the pointer
	PointsTo() *PointsToSet

	fmt.Stringer
}

// A CSObj is a context-qualified abstract object
type CSObj struct {
	Context *Context
	Obj     *Obj

	// id indexes the object in the manager's sparse points-to sets
	id int
}

func (o *CSObj) String() string { return o.Context.String() + o.Obj.String() }

// A CSVar is a context-qualified variable
type CSVar struct {
	Context *Context
	Var     *ir.Var

	pts *PointsToSet
}

func (v *CSVar) PointsTo() *PointsToSet { return v.pts }
func (v *CSVar) String() string         { return v.Context.String() + v.Var.String() }

// An InstanceField is the field f of a context-qualified base object
type InstanceField struct {
	Base  *CSObj
	Field *ir.Field

	pts *PointsToSet
}

func (f *InstanceField) PointsTo() *PointsToSet { return f.pts }
func (f *InstanceField) String() string         { return f.Base.String() + "." + f.Field.Name }

// A StaticField is the single cell of a static field
type StaticField struct {
	Field *ir.Field

	pts *PointsToSet
}

func (f *StaticField) PointsTo() *PointsToSet { return f.pts }
func (f *StaticField) String() string         { return f.Field.String() }

// An ArrayIndex is the single cell abstracting all indices of a context-qualified array object
type ArrayIndex struct {
	Array *CSObj

	pts *PointsToSet
}

func (a *ArrayIndex) PointsTo() *PointsToSet { return a.pts }
func (a *ArrayIndex) String() string         { return a.Array.String() + "[*]" }

// A CSMethod is a context-qualified method
type CSMethod struct {
	Context *Context
	Method  *ir.Method
}

func (m *CSMethod) String() string { return m.Context.String() + m.Method.String() }

// A CSCallSite is a context-qualified invocation
type CSCallSite struct {
	Context *Context
	Site    *ir.Invoke
}

func (c *CSCallSite) String() string { return c.Context.String() + c.Site.String() }
