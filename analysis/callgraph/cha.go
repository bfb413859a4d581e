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

package callgraph

import (
	"github.com/percept-tools/percept/analysis/config"
	"github.com/percept-tools/percept/analysis/ir"
)

// BuildCHA builds the call graph of the program by class hierarchy analysis, starting from the
// program's entry method. Virtual and interface call sites resolve to every non-abstract target
// in the hierarchy below the declared receiver class.
func BuildCHA(prog *ir.Program, logger *config.LogGroup) *Graph {
	b := &chaBuilder{prog: prog, logger: logger}
	return b.build()
}

type chaBuilder struct {
	prog   *ir.Program
	logger *config.LogGroup
}

func (b *chaBuilder) build() *Graph {
	entry := b.prog.Main
	cg := NewGraph(entry)
	queue := []*ir.Method{entry}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		if !cg.AddReachable(m) {
			continue
		}
		for _, stmt := range m.Stmts {
			call, ok := stmt.(*ir.Invoke)
			if !ok {
				continue
			}
			kind := KindOf(call)
			for _, callee := range b.resolve(call) {
				cg.AddEdge(Edge{Kind: kind, Site: call, Callee: callee})
				queue = append(queue, callee)
			}
		}
	}
	b.logger.Infof("CHA call graph: %d reachable methods", len(cg.Reachable()))
	return cg
}

// resolve returns all possible targets of a call site under class hierarchy analysis
func (b *chaBuilder) resolve(call *ir.Invoke) []*ir.Method {
	ref := call.Ref
	var methods []*ir.Method
	seen := map[*ir.Method]bool{}
	add := func(m *ir.Method) {
		if m != nil && !seen[m] {
			seen[m] = true
			methods = append(methods, m)
		}
	}
	switch KindOf(call) {
	case Virtual, Interface:
		// walk the hierarchy below the declared receiver: sub-interfaces and implementors of
		// interfaces, dispatch targets and subclasses of classes
		queue := []*ir.Class{ref.Class}
		visited := map[*ir.Class]bool{ref.Class: true}
		for len(queue) > 0 {
			cls := queue[0]
			queue = queue[1:]
			if cls.IsInterface {
				for _, next := range b.prog.DirectSubinterfacesOf(cls) {
					if !visited[next] {
						visited[next] = true
						queue = append(queue, next)
					}
				}
				for _, next := range b.prog.DirectImplementorsOf(cls) {
					if !visited[next] {
						visited[next] = true
						queue = append(queue, next)
					}
				}
			} else {
				add(b.prog.Dispatch(cls, ref.Subsig))
				for _, sub := range b.prog.DirectSubclassesOf(cls) {
					if !visited[sub] {
						visited[sub] = true
						queue = append(queue, sub)
					}
				}
			}
		}
	case Special:
		add(b.prog.Dispatch(ref.Class, ref.Subsig))
	case Static:
		add(ref.Class.DeclaredMethod(ref.Subsig))
	}
	if len(methods) == 0 {
		b.logger.Debugf("no callee resolved at %s", call)
	}
	return methods
}
