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
	"github.com/percept-tools/percept/analysis/config"
	"github.com/percept-tools/percept/analysis/icfg"
	"github.com/percept-tools/percept/analysis/ir"
	"github.com/percept-tools/percept/analysis/pta"
)

// ResultID is the identifier of the interprocedural constant propagation
const ResultID = "inter-constprop"

type fieldCell struct {
	obj   *pta.Obj
	field *ir.Field
}

type arrayCell struct {
	obj   *pta.Obj
	index Value
}

// InterConstProp is the alias-aware interprocedural constant propagation. Static fields have one
// global cell per field; instance fields and array cells are keyed by the abstract objects of the
// pointer analysis, so stores through one alias become visible at loads through another. Cell
// updates re-enqueue the affected load statements through the solver.
type InterConstProp struct {
	pta    *pta.Result
	logger *config.LogGroup
	graph  *icfg.Graph
	solver *InterSolver[Fact]

	staticFieldValue   map[*ir.Field]Value
	instanceFieldValue map[fieldCell]Value
	arrayIndexValue    map[arrayCell]Value

	staticFieldLoads map[*ir.Field][]ir.Stmt
}

// NewInterConstProp returns the interprocedural constant propagation over the given
// interprocedural control flow graph, querying aliasing from the pointer analysis result.
func NewInterConstProp(ptaResult *pta.Result, graph *icfg.Graph, logger *config.LogGroup) *InterConstProp {
	a := &InterConstProp{
		pta:                ptaResult,
		logger:             logger,
		graph:              graph,
		staticFieldValue:   map[*ir.Field]Value{},
		instanceFieldValue: map[fieldCell]Value{},
		arrayIndexValue:    map[arrayCell]Value{},
		staticFieldLoads:   map[*ir.Field][]ir.Stmt{},
	}
	for _, n := range graph.Nodes() {
		if load, ok := n.(*ir.LoadField); ok && load.IsStatic() {
			a.staticFieldLoads[load.Field] = append(a.staticFieldLoads[load.Field], n)
		}
	}
	return a
}

// Solve runs the analysis to its fixed point
func (a *InterConstProp) Solve() *DataflowResult[Fact] {
	a.solver = NewInterSolver[Fact](a, a.graph)
	result := a.solver.Solve()
	a.logger.Infof("interprocedural constant propagation done over %d nodes", len(a.graph.Nodes()))
	return result
}

// NewInitialFact returns the empty fact
func (a *InterConstProp) NewInitialFact() Fact { return NewFact() }

// NewBoundaryFact returns the entry fact of the method containing the entry node
func (a *InterConstProp) NewBoundaryFact(entry ir.Stmt) Fact {
	return NewBoundaryFact(a.graph.ContainingMethodOf(entry))
}

// MeetInto meets fact into target
func (a *InterConstProp) MeetInto(fact, target Fact) { MeetInto(fact, target) }

// TransferNode dispatches between call and non-call nodes
func (a *InterConstProp) TransferNode(n ir.Stmt, in, out Fact) bool {
	if _, ok := n.(*ir.Invoke); ok {
		return a.transferCallNode(n, in, out)
	}
	return a.transferNonCallNode(n, in, out)
}

// transferCallNode is the identity: flow across the call happens on the interprocedural edges
func (a *InterConstProp) transferCallNode(_ ir.Stmt, in, out Fact) bool {
	return out.CopyFrom(in)
}

func (a *InterConstProp) transferNonCallNode(n ir.Stmt, in, out Fact) bool {
	switch s := n.(type) {
	case *ir.StoreField:
		changed := out.CopyFrom(in)
		a.storeField(s, in)
		return changed
	case *ir.StoreArray:
		changed := out.CopyFrom(in)
		a.storeArray(s, in)
		return changed
	case *ir.LoadField:
		changed := out.CopyFrom(in)
		if s.LHS.Type.CanHoldInt() {
			changed = out.Update(s.LHS, a.loadField(s)) || changed
		}
		return changed
	case *ir.LoadArray:
		changed := out.CopyFrom(in)
		if iv := in.Get(s.Idx); !iv.IsUndef() && s.LHS.Type.CanHoldInt() {
			changed = out.Update(s.LHS, a.loadArray(s, iv)) || changed
		}
		return changed
	default:
		return TransferNode(n, in, out)
	}
}

// storeField meets the stored value into the affected field cells and re-enqueues the loads that
// may observe the update
func (a *InterConstProp) storeField(s *ir.StoreField, in Fact) {
	val := in.Get(s.RHS)
	if s.IsStatic() {
		old, ok := a.staticFieldValue[s.Field]
		if !ok {
			old = Undef()
		}
		merged := MeetValue(old, val)
		if merged != old {
			a.staticFieldValue[s.Field] = merged
			a.solver.AddAllToWorkList(a.staticFieldLoads[s.Field])
		}
		return
	}
	for _, obj := range a.pta.PointsToSet(s.Base) {
		cell := fieldCell{obj, s.Field}
		old, ok := a.instanceFieldValue[cell]
		if !ok {
			old = Undef()
		}
		merged := MeetValue(old, val)
		if merged != old {
			a.instanceFieldValue[cell] = merged
			a.requeueFieldLoads(obj)
		}
	}
}

func (a *InterConstProp) storeArray(s *ir.StoreArray, in Fact) {
	iv := in.Get(s.Idx)
	if iv.IsUndef() {
		return
	}
	val := in.Get(s.RHS)
	for _, obj := range a.pta.PointsToSet(s.Array) {
		cell := arrayCell{obj, iv}
		old, ok := a.arrayIndexValue[cell]
		if !ok {
			old = Undef()
		}
		merged := MeetValue(old, val)
		if merged != old {
			a.arrayIndexValue[cell] = merged
			a.requeueArrayLoads(obj)
		}
	}
}

func (a *InterConstProp) loadField(s *ir.LoadField) Value {
	if s.IsStatic() {
		if v, ok := a.staticFieldValue[s.Field]; ok {
			return v
		}
		return Undef()
	}
	val := Undef()
	for _, obj := range a.pta.PointsToSet(s.Base) {
		if v, ok := a.instanceFieldValue[fieldCell{obj, s.Field}]; ok {
			val = MeetValue(val, v)
		}
	}
	return val
}

// loadArray meets the array cells an indexed load may observe: a NAC index observes every cell
// of the object, a constant index observes the matching cell and every NAC-indexed cell
func (a *InterConstProp) loadArray(s *ir.LoadArray, iv Value) Value {
	val := Undef()
	for _, obj := range a.pta.PointsToSet(s.Array) {
		for cell, v := range a.arrayIndexValue {
			if cell.obj != obj {
				continue
			}
			if iv.IsNAC() || cell.index.IsNAC() || cell.index == iv {
				val = MeetValue(val, v)
			}
		}
	}
	return val
}

// requeueFieldLoads re-enqueues the instance field loads on every alias of obj
func (a *InterConstProp) requeueFieldLoads(obj *pta.Obj) {
	for _, alias := range a.pta.VarsAliasing(obj) {
		for _, load := range alias.LoadFields {
			a.solver.AddToWorkList(load)
		}
	}
}

// requeueArrayLoads re-enqueues the array loads on every alias of obj
func (a *InterConstProp) requeueArrayLoads(obj *pta.Obj) {
	for _, alias := range a.pta.VarsAliasing(obj) {
		for _, load := range alias.LoadArrays {
			a.solver.AddToWorkList(load)
		}
	}
}

// TransferEdge transforms an OUT fact along an interprocedural edge
func (a *InterConstProp) TransferEdge(e *icfg.Edge, out Fact) Fact {
	switch e.Kind {
	case icfg.NormalEdge:
		return out
	case icfg.CallToReturnEdge:
		// the value defined by the call arrives along the return edge; kill it here so the
		// caller-side value does not flow around the call
		result := out.Copy()
		if def := e.Source.Def(); def != nil {
			result.Remove(def)
		}
		return result
	case icfg.CallEdge:
		result := NewFact()
		call, ok := e.Source.(*ir.Invoke)
		if !ok {
			return result
		}
		for i, arg := range call.Args {
			if i >= len(e.Callee.Params) {
				break
			}
			result.Update(e.Callee.Params[i], out.Get(arg))
		}
		return result
	case icfg.ReturnEdge:
		result := NewFact()
		lhs := e.CallSite.LHS
		if lhs == nil {
			return result
		}
		val := Undef()
		for _, ret := range e.ReturnVars {
			val = MeetValue(val, out.Get(ret))
		}
		if lhs.Type.CanHoldInt() && !val.IsConstant() {
			val = NAC()
		}
		result.Update(lhs, val)
		return result
	default:
		return out
	}
}
