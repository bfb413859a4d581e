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

// Package icfg builds the interprocedural control flow graph consumed by the interprocedural
// dataflow analyses. Nodes are IR statements; edges within a method follow the statement-level
// control flow, and call sites are linked to their callees with call, return and call-to-return
// edges.
package icfg

import (
	"github.com/percept-tools/percept/analysis/ir"
)

// EdgeKind discriminates the edges of the interprocedural control flow graph
type EdgeKind int

const (
	// NormalEdge is an intra-method control flow edge
	NormalEdge EdgeKind = iota

	// CallEdge links a call site to a callee entry
	CallEdge

	// ReturnEdge links a callee exit to the return site of a call
	ReturnEdge

	// CallToReturnEdge bridges a call site to its return site inside the caller
	CallToReturnEdge
)

// An Edge is one interprocedural control flow edge
type Edge struct {
	Kind   EdgeKind
	Source ir.Stmt
	Target ir.Stmt

	// Callee is the target method of a CallEdge, nil otherwise
	Callee *ir.Method

	// CallSite is the invocation a ReturnEdge returns to, nil otherwise
	CallSite *ir.Invoke

	// ReturnVars are the variables returned along a ReturnEdge, nil otherwise
	ReturnVars []*ir.Var
}

// A CallGraphView is the view of a call graph the builder needs: the reachable methods and the
// callees of each call site. Both the CHA call graph and the pointer analysis call graph satisfy
// it.
type CallGraphView interface {
	Reachable() []*ir.Method
	CalleesOf(site *ir.Invoke) []*ir.Method
}

// A Graph is the interprocedural control flow graph
type Graph struct {
	nodes      []ir.Stmt
	inEdges    map[ir.Stmt][]*Edge
	outEdges   map[ir.Stmt][]*Edge
	containing map[ir.Stmt]*ir.Method
	entryOf    map[*ir.Method]ir.Stmt
	entries    []*ir.Method
}

// Nodes returns every node of the graph, grouped by method in statement order
func (g *Graph) Nodes() []ir.Stmt { return g.nodes }

// InEdgesOf returns the edges into a node
func (g *Graph) InEdgesOf(n ir.Stmt) []*Edge { return g.inEdges[n] }

// OutEdgesOf returns the edges out of a node
func (g *Graph) OutEdgesOf(n ir.Stmt) []*Edge { return g.outEdges[n] }

// ContainingMethodOf returns the method a node belongs to
func (g *Graph) ContainingMethodOf(n ir.Stmt) *ir.Method { return g.containing[n] }

// EntryOf returns the entry node of a method, nil for body-less methods
func (g *Graph) EntryOf(m *ir.Method) ir.Stmt { return g.entryOf[m] }

// EntryMethods returns the entry methods of the graph
func (g *Graph) EntryMethods() []*ir.Method { return g.entries }

func (g *Graph) addEdge(e *Edge) {
	g.outEdges[e.Source] = append(g.outEdges[e.Source], e)
	g.inEdges[e.Target] = append(g.inEdges[e.Target], e)
}

// Build constructs the interprocedural control flow graph over the methods reachable in the
// given call graph, with the program's entry method as the graph entry.
func Build(prog *ir.Program, cg CallGraphView) *Graph {
	g := &Graph{
		inEdges:    map[ir.Stmt][]*Edge{},
		outEdges:   map[ir.Stmt][]*Edge{},
		containing: map[ir.Stmt]*ir.Method{},
		entryOf:    map[*ir.Method]ir.Stmt{},
		entries:    []*ir.Method{prog.Main},
	}
	methods := cg.Reachable()
	for _, m := range methods {
		if len(m.Stmts) == 0 {
			continue
		}
		g.entryOf[m] = m.Stmts[0]
		for _, s := range m.Stmts {
			g.nodes = append(g.nodes, s)
			g.containing[s] = m
		}
	}
	for _, m := range methods {
		for i, s := range m.Stmts {
			call, isCall := s.(*ir.Invoke)
			var callees []*ir.Method
			if isCall {
				callees = cg.CalleesOf(call)
			}
			if isCall && len(callees) > 0 {
				for _, callee := range callees {
					if entry := g.entryOf[callee]; entry != nil {
						g.addEdge(&Edge{Kind: CallEdge, Source: s, Target: entry, Callee: callee})
					}
				}
				for _, si := range ir.Succs(m, i) {
					succ := m.Stmts[si]
					g.addEdge(&Edge{Kind: CallToReturnEdge, Source: s, Target: succ})
					for _, callee := range callees {
						for _, exit := range exitsOf(callee) {
							e := &Edge{Kind: ReturnEdge, Source: exit, Target: succ, CallSite: call}
							if exit.Var != nil {
								e.ReturnVars = []*ir.Var{exit.Var}
							}
							g.addEdge(e)
						}
					}
				}
				continue
			}
			for _, si := range ir.Succs(m, i) {
				g.addEdge(&Edge{Kind: NormalEdge, Source: s, Target: m.Stmts[si]})
			}
		}
	}
	return g
}

func exitsOf(m *ir.Method) []*ir.Return {
	var exits []*ir.Return
	for _, s := range m.Stmts {
		if r, ok := s.(*ir.Return); ok {
			exits = append(exits, r)
		}
	}
	return exits
}
