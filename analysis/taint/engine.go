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

// Package taint implements the taint analysis piggy-backed on the pointer analysis. The engine
// observes every propagation step of the solver, introduces taint objects at configured sources,
// routes them through a dedicated information flow graph, and collects flows into configured
// sinks when the solver reaches its fixed point.
package taint

import (
	"golang.org/x/exp/slices"

	"github.com/percept-tools/percept/analysis/config"
	"github.com/percept-tools/percept/analysis/ir"
	"github.com/percept-tools/percept/analysis/pta"
)

// ResultID is the identifier under which the taint flows are stored in the pointer analysis
// result.
const ResultID = "taint-analysis"

// The Engine implements the solver's taint hook. It keeps the information flow graph separate
// from the pointer flow graph: only transfer edges carry taint, and keeping them apart leaves
// ordinary points-to propagation untouched.
type Engine struct {
	solver  *pta.Solver
	logger  *config.LogGroup
	policy  *Policy
	manager *manager

	// ifg mirrors the pointer flow graph for taint routing only
	ifg      map[pta.Pointer][]pta.Pointer
	ifgEdges map[[2]pta.Pointer]bool
}

// NewEngine creates a taint engine for the solver and installs it as the solver's taint hook.
// Must be called before the solver starts.
func NewEngine(solver *pta.Solver, policy *Policy, logger *config.LogGroup) *Engine {
	e := &Engine{
		solver:   solver,
		logger:   logger,
		policy:   policy,
		manager:  newManager(),
		ifg:      map[pta.Pointer][]pta.Pointer{},
		ifgEdges: map[[2]pta.Pointer]bool{},
	}
	solver.SetTaintHook(e)
	return e
}

// IsTaint returns true for context-sensitive objects wrapping a taint object
func (e *Engine) IsTaint(o *pta.CSObj) bool {
	return e.manager.isTaint(o.Obj)
}

// HandleCall applies the policy at a discovered call edge: transfer rules add information flow
// edges, and source rules inject fresh taint objects at the call result.
func (e *Engine) HandleCall(base *ir.Var, _ *pta.Obj, site *pta.CSCallSite, callee *ir.Method) {
	cs := e.solver.CSManager()
	call := site.Site

	for _, t := range e.policy.TransfersOf(callee) {
		var from, to pta.Pointer
		switch {
		case t.From == Base:
			if base != nil {
				from = cs.GetCSVar(site.Context, base)
			}
		case t.From == Result:
			if call.LHS != nil {
				from = cs.GetCSVar(site.Context, call.LHS)
			}
		case t.From >= 0 && t.From < len(call.Args):
			from = cs.GetCSVar(site.Context, call.Args[t.From])
		}
		switch {
		case t.To == Base:
			if base != nil {
				to = cs.GetCSVar(site.Context, base)
			}
		case t.To == Result:
			if call.LHS != nil {
				to = cs.GetCSVar(site.Context, call.LHS)
			}
		case t.To >= 0 && t.To < len(call.Args):
			to = cs.GetCSVar(site.Context, call.Args[t.To])
		}
		if from != nil && to != nil {
			e.addIFGEdge(from, to)
		}
	}

	sources := e.policy.SourcesOf(callee)
	if call.LHS != nil && len(sources) > 0 {
		emptyCtx := e.solver.ContextSelector().EmptyContext()
		pts := cs.NewPointsToSet()
		for _, src := range sources {
			pts.Add(cs.GetCSObj(emptyCtx, e.manager.makeTaint(call, src.Type)))
		}
		e.solver.AddToWorkList(cs.GetCSVar(site.Context, call.LHS), pts)
	}
}

// addIFGEdge inserts an information flow edge and pushes the taint objects already present at
// the source through it
func (e *Engine) addIFGEdge(src, dst pta.Pointer) {
	k := [2]pta.Pointer{src, dst}
	if e.ifgEdges[k] {
		return
	}
	e.ifgEdges[k] = true
	e.ifg[src] = append(e.ifg[src], dst)

	pts := e.taintSubset(src.PointsTo())
	if !pts.IsEmpty() {
		e.solver.AddToWorkList(dst, pts)
	}
}

// Propagate pushes the taint subset of a propagation delta through the information flow edges of
// the pointer
func (e *Engine) Propagate(p pta.Pointer, delta *pta.PointsToSet) {
	succs := e.ifg[p]
	if len(succs) == 0 {
		return
	}
	pts := e.taintSubset(delta)
	if pts.IsEmpty() {
		return
	}
	for _, succ := range succs {
		e.solver.AddToWorkList(succ, pts)
	}
}

func (e *Engine) taintSubset(pts *pta.PointsToSet) *pta.PointsToSet {
	out := e.solver.CSManager().NewPointsToSet()
	pts.ForEach(func(o *pta.CSObj) {
		if e.manager.isTaint(o.Obj) {
			out.Add(o)
		}
	})
	return out
}

// OnFinish collects the taint flows reaching configured sinks and stores them, sorted and
// deduplicated, in the pointer analysis result.
func (e *Engine) OnFinish() {
	flows := e.collectFlows()
	e.solver.Result().StoreResult(ResultID, flows)
	e.logger.Infof("taint analysis: %d flows", len(flows))
}

func (e *Engine) collectFlows() []Flow {
	cs := e.solver.CSManager()
	seen := map[Flow]bool{}
	var flows []Flow
	for _, edge := range e.solver.CallGraph().Edges() {
		sinks := e.policy.SinksOf(edge.Callee.Method)
		if len(sinks) == 0 {
			continue
		}
		call := edge.Site.Site
		for _, sink := range sinks {
			if sink.Index < 0 || sink.Index >= len(call.Args) {
				e.logger.Warnf("sink argument %d out of range at %s", sink.Index, call)
				continue
			}
			arg := cs.GetCSVar(edge.Site.Context, call.Args[sink.Index])
			arg.PointsTo().ForEach(func(o *pta.CSObj) {
				if !e.manager.isTaint(o.Obj) {
					return
				}
				f := Flow{Source: e.manager.sourceCall(o.Obj), Sink: call, Index: sink.Index}
				if !seen[f] {
					seen[f] = true
					flows = append(flows, f)
				}
			})
		}
	}
	slices.SortFunc(flows, func(a, b Flow) bool { return a.less(b) })
	return flows
}
