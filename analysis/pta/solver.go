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

// Package pta implements the context-sensitive, inclusion-based pointer analysis. The solver
// computes points-to sets and the context-sensitive call graph simultaneously: statements of
// newly reachable methods feed the pointer flow graph, propagation over the flow graph discovers
// receiver objects, and receiver objects materialize new call edges and new reachable methods.
package pta

import (
	"github.com/percept-tools/percept/analysis/callgraph"
	"github.com/percept-tools/percept/analysis/config"
	"github.com/percept-tools/percept/analysis/ir"
)

// A TaintHook observes the solver. The taint engine implements it to ride on the pointer
// propagation; the hook pushes work back through AddToWorkList rather than holding its own
// reference into the solver's structures.
type TaintHook interface {
	// HandleCall is invoked when a call edge is recorded. base and recv are nil for static calls.
	HandleCall(base *ir.Var, recv *Obj, site *CSCallSite, callee *ir.Method)

	// Propagate is invoked after objects have been added to the points-to set of a pointer
	Propagate(p Pointer, delta *PointsToSet)

	// IsTaint returns true for taint objects, which never drive call resolution
	IsTaint(o *CSObj) bool

	// OnFinish is invoked once the fixed point has been reached
	OnFinish()
}

// nopTaint is the hook used when no taint analysis is configured
type nopTaint struct{}

func (nopTaint) HandleCall(*ir.Var, *Obj, *CSCallSite, *ir.Method) {}
func (nopTaint) Propagate(Pointer, *PointsToSet)                   {}
func (nopTaint) IsTaint(*CSObj) bool                               { return false }
func (nopTaint) OnFinish()                                         {}

// The Solver runs the pointer analysis to its fixed point. All of its state is confined to the
// goroutine calling Solve; callers must not query the manager or the call graph while Solve is
// running.
type Solver struct {
	prog     *ir.Program
	logger   *config.LogGroup
	heap     HeapModel
	selector ContextSelector

	cs       *CSManager
	cg       *CSCallGraph
	pfg      *PointerFlowGraph
	worklist *WorkList
	taint    TaintHook

	result *Result
}

// NewSolver returns a solver over the given program, heap model and context selector
func NewSolver(prog *ir.Program, logger *config.LogGroup, heap HeapModel, selector ContextSelector) *Solver {
	return &Solver{
		prog:     prog,
		logger:   logger,
		heap:     heap,
		selector: selector,
		cs:       NewCSManager(),
		cg:       NewCSCallGraph(),
		pfg:      NewPointerFlowGraph(),
		worklist: NewWorkList(),
		taint:    nopTaint{},
	}
}

// CSManager returns the solver's canonicalization manager
func (s *Solver) CSManager() *CSManager { return s.cs }

// ContextSelector returns the solver's context selector
func (s *Solver) ContextSelector() ContextSelector { return s.selector }

// CallGraph returns the context-sensitive call graph
func (s *Solver) CallGraph() *CSCallGraph { return s.cg }

// FlowGraph returns the pointer flow graph
func (s *Solver) FlowGraph() *PointerFlowGraph { return s.pfg }

// Program returns the program under analysis
func (s *Solver) Program() *ir.Program { return s.prog }

// SetTaintHook installs the taint engine. Must be called before Solve.
func (s *Solver) SetTaintHook(h TaintHook) { s.taint = h }

// AddToWorkList schedules a propagation; the taint engine uses this to inject taint objects
func (s *Solver) AddToWorkList(p Pointer, pts *PointsToSet) {
	s.worklist.AddEntry(p, pts)
}

// Solve runs the analysis to its fixed point and returns the result
func (s *Solver) Solve() *Result {
	s.initialize()
	s.analyze()
	s.result = newResult(s.cs, s.cg)
	s.taint.OnFinish()
	s.logger.Infof("pointer analysis done: %d reachable methods, %d call edges",
		len(s.cg.Reachable()), len(s.cg.Edges()))
	return s.result
}

// Result returns the analysis result; nil before Solve has finished the fixed point
func (s *Solver) Result() *Result { return s.result }

func (s *Solver) initialize() {
	entryCtx := s.selector.EmptyContext()
	entry := s.cs.GetCSMethod(entryCtx, s.prog.Main)
	s.cg.SetEntry(entry)
	s.addReachable(entry)
}

// addReachable records a newly reachable context-sensitive method and processes its statements
// under the method's context
func (s *Solver) addReachable(csMethod *CSMethod) {
	if !s.cg.AddReachable(csMethod) {
		return
	}
	s.logger.Tracef("reachable: %s", csMethod)
	ctx := csMethod.Context
	for _, stmt := range csMethod.Method.Stmts {
		switch stmt := stmt.(type) {
		case *ir.New:
			obj := s.heap.GetObj(stmt)
			heapCtx := s.selector.SelectHeapContext(csMethod, obj)
			csObj := s.cs.GetCSObj(heapCtx, obj)
			s.worklist.AddEntry(s.cs.GetCSVar(ctx, stmt.LHS), s.cs.MakePointsToSet(csObj))
		case *ir.Copy:
			s.addPFGEdge(s.cs.GetCSVar(ctx, stmt.RHS), s.cs.GetCSVar(ctx, stmt.LHS))
		case *ir.StoreField:
			if stmt.IsStatic() {
				s.addPFGEdge(s.cs.GetCSVar(ctx, stmt.RHS), s.cs.GetStaticField(stmt.Field))
			}
			// instance stores are handled when the points-to set of the base grows
		case *ir.LoadField:
			if stmt.IsStatic() {
				s.addPFGEdge(s.cs.GetStaticField(stmt.Field), s.cs.GetCSVar(ctx, stmt.LHS))
			}
		case *ir.Invoke:
			if stmt.IsStatic() {
				s.processStaticCall(csMethod, stmt)
			}
			// instance calls are resolved when receiver objects are discovered
		}
	}
}

func (s *Solver) processStaticCall(caller *CSMethod, call *ir.Invoke) {
	callee := s.prog.ResolveCallee(nil, call)
	if callee == nil {
		s.logger.Warnf("unresolved static call %s", call)
		return
	}
	ctx := caller.Context
	csCallSite := s.cs.GetCSCallSite(ctx, call)
	calleeCtx := s.selector.SelectContext(csCallSite, callee)
	csCallee := s.cs.GetCSMethod(calleeCtx, callee)
	s.addCallEdges(csCallSite, csCallee, call, callee)
	s.taint.HandleCall(nil, nil, csCallSite, callee)
	if s.cg.AddEdge(CSEdge{Kind: callgraph.Static, Site: csCallSite, Callee: csCallee}) {
		s.addReachable(csCallee)
	}
}

// addCallEdges wires arguments to parameters and return variables to the call result
func (s *Solver) addCallEdges(site *CSCallSite, csCallee *CSMethod, call *ir.Invoke, callee *ir.Method) {
	callerCtx := site.Context
	calleeCtx := csCallee.Context
	for i, arg := range call.Args {
		if i >= len(callee.Params) {
			break
		}
		s.addPFGEdge(s.cs.GetCSVar(callerCtx, arg), s.cs.GetCSVar(calleeCtx, callee.Params[i]))
	}
	if call.LHS != nil {
		lhs := s.cs.GetCSVar(callerCtx, call.LHS)
		for _, ret := range callee.ReturnVars {
			s.addPFGEdge(s.cs.GetCSVar(calleeCtx, ret), lhs)
		}
	}
}

// addPFGEdge inserts src -> dst in the pointer flow graph and, when the edge is new, schedules
// the current points-to set of src at dst
func (s *Solver) addPFGEdge(src, dst Pointer) {
	if s.pfg.AddEdge(src, dst) {
		s.worklist.AddEntry(dst, src.PointsTo())
	}
}

// analyze drains the work list until the fixed point
func (s *Solver) analyze() {
	for !s.worklist.IsEmpty() {
		entry := s.worklist.PollEntry()
		diff := s.propagate(entry.Pointer, entry.PointsTo)
		if diff.IsEmpty() {
			continue
		}
		csVar, ok := entry.Pointer.(*CSVar)
		if !ok {
			continue
		}
		ctx := csVar.Context
		v := csVar.Var
		diff.ForEach(func(o *CSObj) {
			for _, store := range v.StoreFields {
				fld := s.cs.GetInstanceField(o, store.Field)
				s.addPFGEdge(s.cs.GetCSVar(ctx, store.RHS), fld)
			}
			for _, load := range v.LoadFields {
				fld := s.cs.GetInstanceField(o, load.Field)
				s.addPFGEdge(fld, s.cs.GetCSVar(ctx, load.LHS))
			}
			for _, store := range v.StoreArrays {
				s.addPFGEdge(s.cs.GetCSVar(ctx, store.RHS), s.cs.GetArrayIndex(o))
			}
			for _, load := range v.LoadArrays {
				s.addPFGEdge(s.cs.GetArrayIndex(o), s.cs.GetCSVar(ctx, load.LHS))
			}
			if !s.taint.IsTaint(o) {
				s.processCall(csVar, o)
			}
		})
	}
}

// propagate unions pts into pt(p) and schedules the difference at the successors of p. The taint
// hook receives the full difference; filtering to taint objects happens inside the engine.
func (s *Solver) propagate(p Pointer, pts *PointsToSet) *PointsToSet {
	diff := s.cs.NewPointsToSet()
	pts.ForEach(func(o *CSObj) {
		if p.PointsTo().Add(o) {
			diff.Add(o)
		}
	})
	if !diff.IsEmpty() {
		for _, succ := range s.pfg.SuccsOf(p) {
			s.worklist.AddEntry(succ, diff)
		}
		s.taint.Propagate(p, diff)
	}
	return diff
}

// processCall resolves the instance calls on recv for a newly discovered receiver object
func (s *Solver) processCall(recv *CSVar, recvObj *CSObj) {
	for _, call := range recv.Var.Invokes {
		callee := s.prog.ResolveCallee(recvObj.Obj.Type, call)
		if callee == nil {
			s.logger.Warnf("unresolved call %s for receiver %s", call, recvObj)
			continue
		}
		csCallSite := s.cs.GetCSCallSite(recv.Context, call)
		calleeCtx := s.selector.SelectCalleeContext(csCallSite, recvObj, callee)
		csCallee := s.cs.GetCSMethod(calleeCtx, callee)

		// the receiver object flows into the this-variable regardless of whether the edge is new:
		// the same callee context may be entered through distinct receiver objects
		if callee.This != nil {
			s.worklist.AddEntry(s.cs.GetCSVar(calleeCtx, callee.This), s.cs.MakePointsToSet(recvObj))
		}

		edge := CSEdge{Kind: callgraph.KindOf(call), Site: csCallSite, Callee: csCallee}
		if s.cg.AddEdge(edge) {
			s.addCallEdges(csCallSite, csCallee, call, callee)
			s.taint.HandleCall(recv.Var, recvObj.Obj, csCallSite, callee)
			s.addReachable(csCallee)
		}
	}
}
