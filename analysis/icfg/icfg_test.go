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

package icfg

import (
	"io"
	"testing"

	"github.com/percept-tools/percept/analysis/callgraph"
	"github.com/percept-tools/percept/analysis/config"
	"github.com/percept-tools/percept/analysis/ir"
)

func buildCallProgram(t *testing.T) *ir.Program {
	t.Helper()
	pb := ir.NewProgramBuilder()
	util := pb.Class("Util")
	id := util.Method("id", "int", [2]string{"p", "int"}).Static()
	id.Return("p")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("x", "int").Local("y", "int")
	main.Const("x", 1)
	main.Invoke("y", ir.InvokeStatic, "", "Util", "id(int)", "x")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return prog
}

func TestBuildEdges(t *testing.T) {
	prog := buildCallProgram(t)
	logger := config.NewLogGroup(config.NewDefault())
	logger.SetAllOutput(io.Discard)
	cg := callgraph.BuildCHA(prog, logger)
	g := Build(prog, cg)

	mainM := prog.Main
	idM := prog.Class("Util").DeclaredMethod("id(int)")
	call := mainM.Stmts[1]
	ret := mainM.Stmts[2]
	idEntry := g.EntryOf(idM)
	if idEntry == nil {
		t.Fatalf("callee entry missing")
	}

	kinds := map[EdgeKind]int{}
	for _, e := range g.OutEdgesOf(call) {
		kinds[e.Kind]++
	}
	if kinds[CallEdge] != 1 || kinds[CallToReturnEdge] != 1 {
		t.Errorf("call node should have one call edge and one call-to-return edge, got %v", kinds)
	}

	var foundReturn bool
	for _, e := range g.InEdgesOf(ret) {
		if e.Kind == ReturnEdge {
			foundReturn = true
			if e.CallSite != call {
				t.Errorf("return edge should carry its call site")
			}
			if len(e.ReturnVars) != 1 || e.ReturnVars[0] != idM.Params[0] {
				t.Errorf("return edge should carry the returned variable, got %v", e.ReturnVars)
			}
		}
	}
	if !foundReturn {
		t.Errorf("no return edge into the return site")
	}

	if g.ContainingMethodOf(call) != mainM || g.ContainingMethodOf(idEntry) != idM {
		t.Errorf("containing method index wrong")
	}
	if len(g.EntryMethods()) != 1 || g.EntryMethods()[0] != mainM {
		t.Errorf("entry methods should be exactly main")
	}
}

func TestBranchEdges(t *testing.T) {
	pb := ir.NewProgramBuilder()
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("c", "boolean").Local("x", "int")
	main.Const("x", 1) // 0
	main.If("c", 3)    // 1
	main.Const("x", 2) // 2
	main.Return("")    // 3
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	logger := config.NewLogGroup(config.NewDefault())
	logger.SetAllOutput(io.Discard)
	g := Build(prog, callgraph.BuildCHA(prog, logger))

	ifStmt := prog.Main.Stmts[1]
	if n := len(g.OutEdgesOf(ifStmt)); n != 2 {
		t.Errorf("if node should have two normal successors, got %d", n)
	}
	for _, e := range g.OutEdgesOf(ifStmt) {
		if e.Kind != NormalEdge {
			t.Errorf("branch edges are normal edges, got %v", e.Kind)
		}
	}
}
