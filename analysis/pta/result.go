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
	"github.com/percept-tools/percept/analysis/ir"
)

// A Result holds the outcome of a pointer analysis run: context-collapsed points-to sets per
// variable, the inverted alias index, the context-sensitive call graph, and a store for the
// results of analyses piggy-backed on the solver (the taint flows live there).
type Result struct {
	cs *CSManager
	cg *CSCallGraph

	pointsTo map[*ir.Var][]*Obj
	aliases  map[*Obj][]*ir.Var
	vars     []*ir.Var

	stored map[string]any
}

func newResult(cs *CSManager, cg *CSCallGraph) *Result {
	r := &Result{
		cs:       cs,
		cg:       cg,
		pointsTo: map[*ir.Var][]*Obj{},
		aliases:  map[*Obj][]*ir.Var{},
		stored:   map[string]any{},
	}
	// collapse contexts: pt(v) is the union of pt(c:v) over every calling context c
	seen := map[*ir.Var]map[*Obj]bool{}
	for _, cv := range cs.CSVars() {
		v := cv.Var
		objs := seen[v]
		if objs == nil {
			objs = map[*Obj]bool{}
			seen[v] = objs
			r.vars = append(r.vars, v)
		}
		cv.PointsTo().ForEach(func(o *CSObj) {
			if !objs[o.Obj] {
				objs[o.Obj] = true
				r.pointsTo[v] = append(r.pointsTo[v], o.Obj)
			}
		})
	}
	aliasSeen := map[*Obj]map[*ir.Var]bool{}
	for _, v := range r.vars {
		for _, o := range r.pointsTo[v] {
			vs := aliasSeen[o]
			if vs == nil {
				vs = map[*ir.Var]bool{}
				aliasSeen[o] = vs
			}
			if !vs[v] {
				vs[v] = true
				r.aliases[o] = append(r.aliases[o], v)
			}
		}
	}
	return r
}

// Reachable returns the reachable methods with contexts collapsed, in discovery order
func (r *Result) Reachable() []*ir.Method {
	var ms []*ir.Method
	seen := map[*ir.Method]bool{}
	for _, cm := range r.cg.Reachable() {
		if !seen[cm.Method] {
			seen[cm.Method] = true
			ms = append(ms, cm.Method)
		}
	}
	return ms
}

// CalleesOf returns the callee methods of a call site with contexts collapsed
func (r *Result) CalleesOf(site *ir.Invoke) []*ir.Method {
	var ms []*ir.Method
	seen := map[*ir.Method]bool{}
	for _, e := range r.cg.Edges() {
		if e.Site.Site == site && !seen[e.Callee.Method] {
			seen[e.Callee.Method] = true
			ms = append(ms, e.Callee.Method)
		}
	}
	return ms
}

// Vars returns every variable the analysis touched, in discovery order
func (r *Result) Vars() []*ir.Var { return r.vars }

// PointsToSet returns the context-collapsed points-to set of a variable
func (r *Result) PointsToSet(v *ir.Var) []*Obj { return r.pointsTo[v] }

// VarsAliasing returns the variables whose points-to set contains the object. Two variables alias
// iff their points-to sets intersect; clients walk this index per object.
func (r *Result) VarsAliasing(o *Obj) []*ir.Var { return r.aliases[o] }

// CallGraph returns the context-sensitive call graph
func (r *Result) CallGraph() *CSCallGraph { return r.cg }

// CSManager returns the canonicalization manager backing the result
func (r *Result) CSManager() *CSManager { return r.cs }

// StoreResult stores the result of a piggy-backed analysis under its identifier
func (r *Result) StoreResult(id string, value any) { r.stored[id] = value }

// GetResult returns the stored result of a piggy-backed analysis, or nil
func (r *Result) GetResult(id string) any { return r.stored[id] }
