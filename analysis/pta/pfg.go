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

// The PointerFlowGraph is the directed graph of pointers whose edge p -> q means that the
// points-to set of p is included in the points-to set of q. Edges are deduplicated; self-loops
// are allowed and harmless since propagation over them is idempotent.
type PointerFlowGraph struct {
	edges map[Pointer]map[Pointer]bool
	succs map[Pointer][]Pointer

	// nodes lists every pointer that appeared in an edge, in first-seen order
	nodes []Pointer
	seen  map[Pointer]bool
}

// NewPointerFlowGraph returns an empty pointer flow graph
func NewPointerFlowGraph() *PointerFlowGraph {
	return &PointerFlowGraph{
		edges: map[Pointer]map[Pointer]bool{},
		succs: map[Pointer][]Pointer{},
		seen:  map[Pointer]bool{},
	}
}

// AddEdge inserts the edge src -> dst; returns true iff the edge is new
func (g *PointerFlowGraph) AddEdge(src, dst Pointer) bool {
	out := g.edges[src]
	if out == nil {
		out = map[Pointer]bool{}
		g.edges[src] = out
	}
	if out[dst] {
		return false
	}
	out[dst] = true
	g.succs[src] = append(g.succs[src], dst)
	g.addNode(src)
	g.addNode(dst)
	return true
}

// SuccsOf returns the successors of a pointer, in edge insertion order
func (g *PointerFlowGraph) SuccsOf(p Pointer) []Pointer {
	return g.succs[p]
}

// Nodes returns every pointer that appears in the graph, in first-seen order
func (g *PointerFlowGraph) Nodes() []Pointer { return g.nodes }

func (g *PointerFlowGraph) addNode(p Pointer) {
	if !g.seen[p] {
		g.seen[p] = true
		g.nodes = append(g.nodes, p)
	}
}
