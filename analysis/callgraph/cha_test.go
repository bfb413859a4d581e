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
	"io"
	"testing"

	"github.com/percept-tools/percept/analysis/config"
	"github.com/percept-tools/percept/analysis/ir"
)

func testLogger() *config.LogGroup {
	l := config.NewLogGroup(config.NewDefault())
	l.SetAllOutput(io.Discard)
	return l
}

// CHA resolves a virtual call to every override below the declared receiver
func TestCHAVirtualResolvesAllOverrides(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("Object")
	c := pb.Class("C").Extends("Object")
	c.Method("m", "void").Return("")
	d := pb.Class("D").Extends("C")
	d.Method("m", "void").Return("")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("x", "C")
	main.New("x", "C")
	main.Invoke("", ir.InvokeVirtual, "x", "C", "m()")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	cg := BuildCHA(prog, testLogger())
	call := prog.Main.Stmts[1].(*ir.Invoke)
	callees := cg.CalleesOf(call)
	if len(callees) != 2 {
		t.Fatalf("CHA should resolve C.m and D.m, got %v", callees)
	}
	for _, m := range cg.Reachable() {
		if m.IsAbstract {
			t.Errorf("abstract method %s must not be reachable", m)
		}
	}
}

// interface calls walk sub-interfaces and implementors
func TestCHAInterfaceDispatch(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("Object")
	i := pb.Class("I").Interface()
	i.Method("f", "void").Abstract()
	j := pb.Class("J").Interface().Implements("I")
	j.Method("f", "void").Abstract()
	a := pb.Class("A").Extends("Object").Implements("I")
	a.Method("f", "void").Return("")
	b := pb.Class("B").Extends("Object").Implements("J")
	b.Method("f", "void").Return("")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("x", "I")
	main.New("x", "A")
	main.Invoke("", ir.InvokeInterface, "x", "I", "f()")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	cg := BuildCHA(prog, testLogger())
	call := prog.Main.Stmts[1].(*ir.Invoke)
	callees := cg.CalleesOf(call)
	if len(callees) != 2 {
		t.Errorf("interface dispatch should reach A.f and B.f, got %v", callees)
	}
}

// the edge set is authoritative: repeated insertion reports not-new
func TestGraphEdgeDeduplication(t *testing.T) {
	pb := ir.NewProgramBuilder()
	util := pb.Class("Util")
	util.Method("f", "void").Static().Return("")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Invoke("", ir.InvokeStatic, "", "Util", "f()")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	g := NewGraph(prog.Main)
	call := prog.Main.Stmts[0].(*ir.Invoke)
	f := prog.Class("Util").DeclaredMethod("f()")
	e := Edge{Kind: Static, Site: call, Callee: f}
	if !g.AddEdge(e) {
		t.Errorf("first insertion should be new")
	}
	if g.AddEdge(e) {
		t.Errorf("second insertion should not be new")
	}
	if len(g.CalleesOf(call)) != 1 {
		t.Errorf("derived per-site view should hold one callee")
	}
}
