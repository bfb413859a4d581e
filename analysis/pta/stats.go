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
	"gonum.org/v1/gonum/graph/topo"

	"github.com/percept-tools/percept/internal/graphutil"
)

// FlowGraphStats summarizes the shape of the pointer flow graph at the fixed point. Non-trivial
// strongly connected components indicate pointer cycles that amplified propagation.
type FlowGraphStats struct {
	// Pointers is the number of nodes in the flow graph
	Pointers int

	// Edges is the number of distinct flow edges
	Edges int

	// Components is the number of strongly connected components with at least two pointers
	Components int

	// MaxComponent is the size of the largest of those components, 0 when there is none
	MaxComponent int
}

// dgraphOf numbers the pointers of the flow graph and builds the adapter consumed by the graph
// libraries
func dgraphOf(pfg *PointerFlowGraph) (*graphutil.DGraph, map[Pointer]int64) {
	nodes := pfg.Nodes()
	ids := make(map[Pointer]int64, len(nodes))
	for i, p := range nodes {
		ids[p] = int64(i)
	}
	g := graphutil.NewDGraph(len(nodes))
	for _, p := range nodes {
		for _, q := range pfg.SuccsOf(p) {
			g.AddEdge(ids[p], ids[q])
		}
	}
	return g, ids
}

// ComputeStats computes flow graph statistics from the pointer flow graph
func ComputeStats(pfg *PointerFlowGraph) FlowGraphStats {
	g, _ := dgraphOf(pfg)
	stats := FlowGraphStats{Pointers: len(pfg.Nodes())}
	for _, p := range pfg.Nodes() {
		stats.Edges += len(pfg.SuccsOf(p))
	}
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) >= 2 {
			stats.Components++
			if len(scc) > stats.MaxComponent {
				stats.MaxComponent = len(scc)
			}
		}
	}
	return stats
}

// FlowCycles enumerates the elementary cycles of the pointer flow graph. This is exponential in
// the worst case; use it on small programs only.
func FlowCycles(pfg *PointerFlowGraph) [][]Pointer {
	g, _ := dgraphOf(pfg)
	nodes := pfg.Nodes()
	var cycles [][]Pointer
	for _, c := range graphutil.FindAllElementaryCycles(g) {
		cycle := make([]Pointer, len(c))
		for i, id := range c {
			cycle[i] = nodes[id]
		}
		cycles = append(cycles, cycle)
	}
	return cycles
}
