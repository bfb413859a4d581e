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
	"github.com/percept-tools/percept/analysis/callgraph"
)

// A CSEdge is a context-sensitive call edge
type CSEdge struct {
	Kind   callgraph.CallKind
	Site   *CSCallSite
	Callee *CSMethod
}

// The CSCallGraph is the context-sensitive call graph built on the fly by the solver. The edge
// set is the single authoritative store; per-site views are derived from it. Invariants: every
// edge target is reachable, and every reachable method other than the entry has an incoming edge.
type CSCallGraph struct {
	entry     *CSMethod
	reachable map[*CSMethod]bool
	order     []*CSMethod
	edges     map[CSEdge]bool
	edgeList  []CSEdge
}

// NewCSCallGraph returns an empty call graph
func NewCSCallGraph() *CSCallGraph {
	return &CSCallGraph{
		reachable: map[*CSMethod]bool{},
		edges:     map[CSEdge]bool{},
	}
}

// SetEntry records the entry method of the graph
func (g *CSCallGraph) SetEntry(m *CSMethod) { g.entry = m }

// Entry returns the entry method
func (g *CSCallGraph) Entry() *CSMethod { return g.entry }

// Contains returns true if the context-sensitive method has been marked reachable
func (g *CSCallGraph) Contains(m *CSMethod) bool { return g.reachable[m] }

// AddReachable marks a method reachable; returns true if it was not reachable before
func (g *CSCallGraph) AddReachable(m *CSMethod) bool {
	if g.reachable[m] {
		return false
	}
	g.reachable[m] = true
	g.order = append(g.order, m)
	return true
}

// AddEdge inserts a call edge; returns true iff the edge is new
func (g *CSCallGraph) AddEdge(e CSEdge) bool {
	if g.edges[e] {
		return false
	}
	g.edges[e] = true
	g.edgeList = append(g.edgeList, e)
	return true
}

// Reachable returns the reachable methods in discovery order
func (g *CSCallGraph) Reachable() []*CSMethod { return g.order }

// Edges returns every call edge in insertion order
func (g *CSCallGraph) Edges() []CSEdge { return g.edgeList }
