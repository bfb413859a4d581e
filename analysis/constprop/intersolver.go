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
	"github.com/percept-tools/percept/analysis/icfg"
	"github.com/percept-tools/percept/analysis/ir"
)

// An InterAnalysis provides the transfer functions of an interprocedural dataflow analysis to
// the generic worklist solver.
type InterAnalysis[Fact any] interface {
	// NewInitialFact returns the bottom fact every node starts from
	NewInitialFact() Fact

	// NewBoundaryFact returns the fact holding at the entry node of an entry method
	NewBoundaryFact(entry ir.Stmt) Fact

	// MeetInto meets fact into target, mutating target
	MeetInto(fact, target Fact)

	// TransferNode computes OUT from IN at a node, mutating out; returns true if OUT changed
	TransferNode(n ir.Stmt, in, out Fact) bool

	// TransferEdge transforms the OUT fact of an edge's source along the edge
	TransferEdge(e *icfg.Edge, out Fact) Fact
}

// A DataflowResult stores the IN and OUT facts of every node
type DataflowResult[Fact any] struct {
	in  map[ir.Stmt]Fact
	out map[ir.Stmt]Fact
}

// InFact returns the IN fact of a node
func (r *DataflowResult[Fact]) InFact(n ir.Stmt) Fact { return r.in[n] }

// OutFact returns the OUT fact of a node
func (r *DataflowResult[Fact]) OutFact(n ir.Stmt) Fact { return r.out[n] }

// The InterSolver runs an interprocedural dataflow analysis to its fixed point with a worklist.
// The transfer functions may re-enqueue nodes through AddToWorkList when facts outside the
// per-node lattice change (the alias-aware field and array cells do this).
type InterSolver[Fact any] struct {
	analysis InterAnalysis[Fact]
	graph    *icfg.Graph
	result   *DataflowResult[Fact]
	worklist []ir.Stmt
	boundary map[ir.Stmt]bool
}

// NewInterSolver returns a solver for the analysis over the graph
func NewInterSolver[Fact any](analysis InterAnalysis[Fact], graph *icfg.Graph) *InterSolver[Fact] {
	return &InterSolver[Fact]{analysis: analysis, graph: graph}
}

// AddToWorkList schedules a node for re-evaluation
func (s *InterSolver[Fact]) AddToWorkList(n ir.Stmt) {
	s.worklist = append(s.worklist, n)
}

// AddAllToWorkList schedules several nodes for re-evaluation
func (s *InterSolver[Fact]) AddAllToWorkList(nodes []ir.Stmt) {
	s.worklist = append(s.worklist, nodes...)
}

// Graph returns the interprocedural control flow graph under analysis
func (s *InterSolver[Fact]) Graph() *icfg.Graph { return s.graph }

// Solve runs the analysis to its fixed point and returns the per-node facts
func (s *InterSolver[Fact]) Solve() *DataflowResult[Fact] {
	s.initialize()
	s.doSolve()
	return s.result
}

func (s *InterSolver[Fact]) initialize() {
	s.result = &DataflowResult[Fact]{
		in:  map[ir.Stmt]Fact{},
		out: map[ir.Stmt]Fact{},
	}
	for _, n := range s.graph.Nodes() {
		s.result.in[n] = s.analysis.NewInitialFact()
		s.result.out[n] = s.analysis.NewInitialFact()
	}
	s.boundary = map[ir.Stmt]bool{}
	for _, m := range s.graph.EntryMethods() {
		entry := s.graph.EntryOf(m)
		if entry == nil {
			continue
		}
		s.boundary[entry] = true
		s.result.in[entry] = s.analysis.NewBoundaryFact(entry)
		s.result.out[entry] = s.analysis.NewBoundaryFact(entry)
	}
}

func (s *InterSolver[Fact]) doSolve() {
	s.worklist = append(s.worklist, s.graph.Nodes()...)
	for len(s.worklist) > 0 {
		n := s.worklist[0]
		s.worklist = s.worklist[1:]

		// IN is recomputed from scratch on every visit: edge transfers need not be monotone
		// across visits (the return-edge widening is not). Boundary nodes start from their
		// boundary fact instead of bottom.
		var in Fact
		if s.boundary[n] {
			in = s.analysis.NewBoundaryFact(n)
		} else {
			in = s.analysis.NewInitialFact()
		}
		for _, e := range s.graph.InEdgesOf(n) {
			s.analysis.MeetInto(s.analysis.TransferEdge(e, s.result.out[e.Source]), in)
		}
		s.result.in[n] = in

		if s.analysis.TransferNode(n, in, s.result.out[n]) {
			for _, e := range s.graph.OutEdgesOf(n) {
				s.worklist = append(s.worklist, e.Target)
			}
		}
	}
}
