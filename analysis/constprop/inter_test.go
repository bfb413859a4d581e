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
	"io"
	"testing"

	"github.com/percept-tools/percept/analysis/config"
	"github.com/percept-tools/percept/analysis/icfg"
	"github.com/percept-tools/percept/analysis/ir"
	"github.com/percept-tools/percept/analysis/pta"
)

func testLogger() *config.LogGroup {
	l := config.NewLogGroup(config.NewDefault())
	l.SetAllOutput(io.Discard)
	return l
}

// runICP runs the whole pipeline: pointer analysis, ICFG construction, then the interprocedural
// constant propagation
func runICP(t *testing.T, prog *ir.Program) *DataflowResult[Fact] {
	t.Helper()
	logger := testLogger()
	solver := pta.NewSolver(prog, logger, pta.NewAllocSiteModel(), pta.NewContextInsensitive())
	result := solver.Solve()
	g := icfg.Build(prog, result)
	return NewInterConstProp(result, g, logger).Solve()
}

// exitOut returns the OUT fact of the last return statement of the method
func exitOut(t *testing.T, facts *DataflowResult[Fact], m *ir.Method) Fact {
	t.Helper()
	for i := len(m.Stmts) - 1; i >= 0; i-- {
		if ret, ok := m.Stmts[i].(*ir.Return); ok {
			return facts.OutFact(ret)
		}
	}
	t.Fatalf("method %s has no return", m)
	return nil
}

// A.f = 7; y = A.f yields y = 7 through the static field cell
func TestStaticFieldConstant(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("A").Field("f", "int", true)
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("x", "int").Local("y", "int")
	main.Const("x", 7)
	main.StoreStatic("A.f", "x")
	main.LoadStatic("y", "A.f")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	facts := runICP(t, prog)
	out := exitOut(t, facts, prog.Main)
	if got := out.Get(prog.Main.Var("y")); got != MakeConstant(7) {
		t.Errorf("y = %s, want 7", got)
	}
}

// the static field cell is shared across methods: a store in one method is seen by a load in
// another
func TestStaticFieldAcrossMethods(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("A").Field("f", "int", true)
	util := pb.Class("Util")
	set := util.Method("set", "void").Static()
	set.Local("x", "int")
	set.Const("x", 9)
	set.StoreStatic("A.f", "x")
	set.Return("")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("y", "int")
	main.Invoke("", ir.InvokeStatic, "", "Util", "set()")
	main.LoadStatic("y", "A.f")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	facts := runICP(t, prog)
	out := exitOut(t, facts, prog.Main)
	if got := out.Get(prog.Main.Var("y")); got != MakeConstant(9) {
		t.Errorf("y = %s, want 9", got)
	}
}

// a.f = 5; b = a; z = b.f yields z = 5 through the aliased instance field cell
func TestInstanceFieldAliasConstant(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("Object")
	pb.Class("C").Extends("Object").Field("f", "int", false)
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("a", "C").Local("b", "C").Local("v", "int").Local("z", "int")
	main.New("a", "C")
	main.Const("v", 5)
	main.StoreField("a", "C.f", "v")
	main.Copy("b", "a")
	main.LoadField("z", "b", "C.f")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	facts := runICP(t, prog)
	out := exitOut(t, facts, prog.Main)
	if got := out.Get(prog.Main.Var("z")); got != MakeConstant(5) {
		t.Errorf("z = %s, want 5", got)
	}
}

// two stores of distinct constants to the same array cell fold the loaded value to NAC
func TestArrayConstantFold(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("Object")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("a", "int[]").Local("i", "int").Local("v1", "int").Local("v2", "int").Local("x", "int")
	main.New("a", "int[]")
	main.Const("i", 0)
	main.Const("v1", 1)
	main.Const("v2", 2)
	main.StoreArray("a", "i", "v1")
	main.StoreArray("a", "i", "v2")
	main.LoadArray("x", "a", "i")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	facts := runICP(t, prog)
	out := exitOut(t, facts, prog.Main)
	if got := out.Get(prog.Main.Var("x")); !got.IsNAC() {
		t.Errorf("x = %s, want NAC after conflicting stores", got)
	}
}

// with a NAC index both stores land in the same cell and the load observes their meet
func TestArrayNACIndexFold(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("Object")
	main := pb.Class("Main").Method("main", "void", [2]string{"i", "int"}).Static()
	main.Local("a", "int[]").Local("v1", "int").Local("v2", "int").Local("x", "int")
	main.New("a", "int[]")
	main.Const("v1", 1)
	main.Const("v2", 2)
	main.StoreArray("a", "i", "v1")
	main.StoreArray("a", "i", "v2")
	main.LoadArray("x", "a", "i")
	main.Return("")
	pb.SetMain("Main", "main(int)")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	facts := runICP(t, prog)
	out := exitOut(t, facts, prog.Main)
	if got := out.Get(prog.Main.Var("x")); !got.IsNAC() {
		t.Errorf("x = %s, want NAC with a NAC index", got)
	}
}

// an undefined index skips the store: the cell stays empty and the load reads nothing
func TestArrayUndefIndexSkipsStore(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("Object")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("a", "int[]").Local("i", "int").Local("v", "int").Local("x", "int")
	main.New("a", "int[]")
	main.Const("v", 1)
	// i is never assigned: its value is UNDEF at the store
	main.StoreArray("a", "i", "v")
	main.LoadArray("x", "a", "i")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	facts := runICP(t, prog)
	out := exitOut(t, facts, prog.Main)
	if got := out.Get(prog.Main.Var("x")); !got.IsUndef() {
		t.Errorf("x = %s, want UNDEF when the index is undefined", got)
	}
}

// constants flow into callees through call edges and back through return edges
func TestCallAndReturnEdges(t *testing.T) {
	pb := ir.NewProgramBuilder()
	util := pb.Class("Util")
	id := util.Method("id", "int", [2]string{"p", "int"}).Static()
	id.Return("p")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("x", "int").Local("y", "int")
	main.Const("x", 7)
	main.Invoke("y", ir.InvokeStatic, "", "Util", "id(int)", "x")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	facts := runICP(t, prog)
	out := exitOut(t, facts, prog.Main)
	if got := out.Get(prog.Main.Var("y")); got != MakeConstant(7) {
		t.Errorf("y = %s, want 7", got)
	}
	// the callee parameter received the argument value
	idm := prog.Class("Util").DeclaredMethod("id(int)")
	calleeOut := exitOut(t, facts, idm)
	if got := calleeOut.Get(idm.Params[0]); got != MakeConstant(7) {
		t.Errorf("p = %s in callee, want 7", got)
	}
}

// two call sites with different arguments fold the shared parameter to NAC
func TestTwoCallSitesFoldParameter(t *testing.T) {
	pb := ir.NewProgramBuilder()
	util := pb.Class("Util")
	id := util.Method("id", "int", [2]string{"p", "int"}).Static()
	id.Return("p")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("x1", "int").Local("x2", "int").Local("y1", "int").Local("y2", "int")
	main.Const("x1", 7)
	main.Const("x2", 8)
	main.Invoke("y1", ir.InvokeStatic, "", "Util", "id(int)", "x1")
	main.Invoke("y2", ir.InvokeStatic, "", "Util", "id(int)", "x2")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	facts := runICP(t, prog)
	out := exitOut(t, facts, prog.Main)
	if got := out.Get(prog.Main.Var("y1")); !got.IsNAC() {
		t.Errorf("y1 = %s, want NAC with a conflated callee", got)
	}
}

// parameters of the entry method are NAC
func TestBoundaryFact(t *testing.T) {
	pb := ir.NewProgramBuilder()
	main := pb.Class("Main").Method("main", "void", [2]string{"argc", "int"}).Static()
	main.Local("y", "int")
	main.Copy("y", "argc")
	main.Return("")
	pb.SetMain("Main", "main(int)")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	facts := runICP(t, prog)
	out := exitOut(t, facts, prog.Main)
	if got := out.Get(prog.Main.Var("y")); !got.IsNAC() {
		t.Errorf("y = %s, entry parameters should be NAC", got)
	}
}
