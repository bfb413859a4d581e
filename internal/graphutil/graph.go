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

// Package graphutil adapts analysis graphs to existing graph libraries: a DGraph satisfies both
// the yourbasic/graph iterator and Gonum's directed graph interface, so strongly connected
// components and cycle enumeration come from those libraries instead of bespoke code.
package graphutil

import (
	"sort"

	"gonum.org/v1/gonum/graph"
)

// A DGraph is a directed graph over dense int64 node ids. It implements the methods to satisfy
// graph.Iterator of yourbasic/graph and Gonum's graph.Directed.
type DGraph struct {
	// The order of the graph
	order int

	// Keys are all the node ids, sorted
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge from x to y
	Edges map[int64]map[int64]bool

	// preds is the reversed adjacency, maintained for Gonum's To
	preds map[int64]map[int64]bool
}

// NewDGraph returns a graph with nodes 0..order-1 and no edges
func NewDGraph(order int) *DGraph {
	g := &DGraph{
		order: order,
		Keys:  make([]int64, order),
		Edges: make(map[int64]map[int64]bool, order),
		preds: make(map[int64]map[int64]bool, order),
	}
	for i := 0; i < order; i++ {
		g.Keys[i] = int64(i)
		g.Edges[int64(i)] = map[int64]bool{}
		g.preds[int64(i)] = map[int64]bool{}
	}
	return g
}

// AddEdge inserts the directed edge u -> v
func (g *DGraph) AddEdge(u, v int64) {
	g.Edges[u][v] = true
	g.preds[v][u] = true
}

// Subgraph returns a new graph restricted to the nodes in include. Only the edges with both ends
// in include are kept. The order stays the same, so node ids remain consistent across subgraphs.
func Subgraph(original *DGraph, include []int64) *DGraph {
	keep := make(map[int64]bool, len(include))
	keys := make([]int64, len(include))
	for i, id := range include {
		keep[id] = true
		keys[i] = id
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	g := &DGraph{
		order: original.order,
		Keys:  keys,
		Edges: make(map[int64]map[int64]bool, len(include)),
		preds: make(map[int64]map[int64]bool, len(include)),
	}
	for _, id := range include {
		g.Edges[id] = map[int64]bool{}
		g.preds[id] = map[int64]bool{}
	}
	for _, id := range include {
		for e := range original.Edges[id] {
			if keep[e] {
				g.AddEdge(id, e)
			}
		}
	}
	return g
}

// Order implements the graph.Iterator interface of yourbasic/graph
func (g *DGraph) Order() int {
	return g.order
}

// Visit implements the graph.Iterator interface of yourbasic/graph
func (g *DGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if _, ok := g.Edges[int64(v)]; !ok {
		return false
	}
	for w := range g.Edges[int64(v)] {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// *************** Gonum graph interface implementation **********************

// Node implements the Gonum Graph interface
func (g *DGraph) Node(id int64) graph.Node {
	if _, ok := g.Edges[id]; !ok {
		return nil
	}
	return gnode(id)
}

// Nodes returns the set of nodes in the graph
func (g *DGraph) Nodes() graph.Nodes {
	return newNodeSet(g.Keys)
}

// From returns the nodes reachable from id through one edge
func (g *DGraph) From(id int64) graph.Nodes {
	var keys []int64
	for out := range g.Edges[id] {
		keys = append(keys, out)
	}
	return newNodeSet(keys)
}

// To returns the nodes with an edge into id
func (g *DGraph) To(id int64) graph.Nodes {
	var keys []int64
	for in := range g.preds[id] {
		keys = append(keys, in)
	}
	return newNodeSet(keys)
}

// HasEdgeBetween returns true when an edge exists between the two nodes, in either direction
func (g *DGraph) HasEdgeBetween(xid, yid int64) bool {
	return g.Edges[xid][yid] || g.Edges[yid][xid]
}

// HasEdgeFromTo returns true when the directed edge u -> v exists
func (g *DGraph) HasEdgeFromTo(uid, vid int64) bool {
	return g.Edges[uid][vid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (g *DGraph) Edge(uid, vid int64) graph.Edge {
	if g.Edges[uid][vid] {
		return gedge{from: gnode(uid), to: gnode(vid)}
	}
	return nil
}

// gnode is a graph node identified by its id
type gnode int64

// ID returns the id of the node
func (n gnode) ID() int64 { return int64(n) }

// nodeSet implements the graph.Nodes interface, an iterator over a set of nodes
type nodeSet struct {
	ids []int64
	cur int
}

func newNodeSet(ids []int64) *nodeSet {
	return &nodeSet{ids: ids, cur: -1}
}

// Next moves the iterator to the next node and returns true if one exists
func (ns *nodeSet) Next() bool {
	if ns.cur < len(ns.ids)-1 {
		ns.cur++
		return true
	}
	return false
}

// Len returns the number of remaining nodes
func (ns *nodeSet) Len() int {
	return len(ns.ids) - ns.cur - 1
}

// Reset returns the iterator to its initial position
func (ns *nodeSet) Reset() {
	ns.cur = -1
}

// Node returns the current node
func (ns *nodeSet) Node() graph.Node {
	return gnode(ns.ids[ns.cur])
}

// gedge implements the graph.Edge interface
type gedge struct {
	from gnode
	to   gnode
}

// From returns the origin of the edge
func (e gedge) From() graph.Node { return e.from }

// To returns the destination of the edge
func (e gedge) To() graph.Node { return e.to }

// ReversedEdge returns a new value representing the reversed edge
func (e gedge) ReversedEdge() graph.Edge { return gedge{from: e.to, to: e.from} }
