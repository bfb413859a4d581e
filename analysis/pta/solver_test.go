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
	"io"
	"testing"

	"github.com/percept-tools/percept/analysis/callgraph"
	"github.com/percept-tools/percept/analysis/config"
	"github.com/percept-tools/percept/analysis/ir"
)

func testLogger() *config.LogGroup {
	l := config.NewLogGroup(config.NewDefault())
	l.SetAllOutput(io.Discard)
	return l
}

func solve(t *testing.T, prog *ir.Program, selector ContextSelector) (*Solver, *Result) {
	t.Helper()
	s := NewSolver(prog, testLogger(), NewAllocSiteModel(), selector)
	return s, s.Solve()
}

func ptNames(r *Result, v *ir.Var) map[string]bool {
	names := map[string]bool{}
	for _, o := range r.PointsToSet(v) {
		names[o.String()] = true
	}
	return names
}

// x = new C(); x.m() with D overriding m: only C.m may be a target
func TestVirtualDispatchSingleTarget(t *testing.T) {
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

	_, result := solve(t, prog, NewContextInsensitive())

	cm := prog.Class("C").DeclaredMethod("m()")
	dm := prog.Class("D").DeclaredMethod("m()")
	reached := map[*ir.Method]bool{}
	for _, m := range result.Reachable() {
		reached[m] = true
	}
	if !reached[cm] {
		t.Errorf("C.m should be reachable")
	}
	if reached[dm] {
		t.Errorf("D.m should not be reachable")
	}
	edges := result.CallGraph().Edges()
	if len(edges) != 1 {
		t.Fatalf("expected exactly one call edge, got %d", len(edges))
	}
	if edges[0].Kind != callgraph.Virtual || edges[0].Callee.Method != cm {
		t.Errorf("wrong call edge: %v", edges[0])
	}
	// the receiver object reaches the this-variable of the callee
	this := cm.This
	if got := result.PointsToSet(this); len(got) != 1 {
		t.Errorf("pt(this) should hold the receiver, got %v", got)
	}
}

// y = x copies the points-to set; parameters and returns flow through calls
func TestCopyAndCallFlow(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("Object")
	c := pb.Class("C").Extends("Object")
	id := c.Method("id", "Object", [2]string{"p", "Object"})
	id.Return("p")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("c", "C").Local("o", "Object").Local("y", "Object").Local("r", "Object")
	main.New("c", "C")
	main.New("o", "Object")
	main.Copy("y", "o")
	main.Invoke("r", ir.InvokeVirtual, "c", "C", "id(Object)", "o")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	_, result := solve(t, prog, NewContextInsensitive())

	mm := prog.Main
	o := mm.Var("o")
	if got := ptNames(result, mm.Var("y")); len(got) != 1 {
		t.Errorf("pt(y) should be the object of o, got %v", got)
	}
	want := ptNames(result, o)
	if got := ptNames(result, mm.Var("r")); len(got) != 1 || !sameSet(got, want) {
		t.Errorf("pt(r) = %v, want %v", got, want)
	}
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// static field stores and loads flow through the single field cell
func TestStaticFieldFlow(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("Object")
	pb.Class("A").Field("f", "Object", true)
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("o", "Object").Local("z", "Object")
	main.New("o", "Object")
	main.StoreStatic("A.f", "o")
	main.LoadStatic("z", "A.f")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	_, result := solve(t, prog, NewContextInsensitive())
	if got := result.PointsToSet(prog.Main.Var("z")); len(got) != 1 {
		t.Errorf("pt(z) should hold the stored object, got %v", got)
	}
}

// a.f = o; b = a; z = b.f reads o through the alias
func TestInstanceFieldAlias(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("Object")
	pb.Class("C").Extends("Object").Field("f", "Object", false)
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("a", "C").Local("b", "C").Local("o", "Object").Local("z", "Object")
	main.New("a", "C")
	main.New("o", "Object")
	main.Copy("b", "a")
	main.StoreField("a", "C.f", "o")
	main.LoadField("z", "b", "C.f")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	_, result := solve(t, prog, NewContextInsensitive())
	mm := prog.Main
	if got, want := ptNames(result, mm.Var("z")), ptNames(result, mm.Var("o")); !sameSet(got, want) {
		t.Errorf("pt(z) = %v, want %v", got, want)
	}
}

// array cells are index-insensitive: a store at any index reaches a load at any index
func TestArrayFlow(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("Object")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("arr", "Object[]").Local("o", "Object").Local("z", "Object")
	main.Local("i", "int").Local("j", "int")
	main.New("arr", "Object[]")
	main.New("o", "Object")
	main.Const("i", 0)
	main.Const("j", 1)
	main.StoreArray("arr", "i", "o")
	main.LoadArray("z", "arr", "j")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	_, result := solve(t, prog, NewContextInsensitive())
	mm := prog.Main
	if got, want := ptNames(result, mm.Var("z")), ptNames(result, mm.Var("o")); !sameSet(got, want) {
		t.Errorf("pt(z) = %v, want %v", got, want)
	}
}

// every flow edge is saturated at the fixed point: o in pt(p) implies o in pt(q) for p -> q
func TestFlowGraphSaturated(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("Object")
	c := pb.Class("C").Extends("Object").Field("f", "Object", false)
	id := c.Method("id", "Object", [2]string{"p", "Object"})
	id.Return("p")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("a", "C").Local("o", "Object").Local("r", "Object").Local("z", "Object")
	main.New("a", "C")
	main.New("o", "Object")
	main.StoreField("a", "C.f", "o")
	main.LoadField("z", "a", "C.f")
	main.Invoke("r", ir.InvokeVirtual, "a", "C", "id(Object)", "z")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	solver, _ := solve(t, prog, NewContextInsensitive())
	pfg := solver.FlowGraph()
	for _, p := range pfg.Nodes() {
		for _, q := range pfg.SuccsOf(p) {
			p.PointsTo().ForEach(func(o *CSObj) {
				if !q.PointsTo().Has(o) {
					t.Errorf("edge %s -> %s not saturated for %s", p, q, o)
				}
			})
		}
	}
	if stats := ComputeStats(pfg); stats.Pointers == 0 || stats.Edges == 0 {
		t.Errorf("statistics should see a non-empty flow graph: %+v", stats)
	}
}

// with 1-call-site sensitivity, objects returned from distinct call sites stay distinct
func TestCallSiteSensitivityPrecision(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("Object")
	c := pb.Class("C").Extends("Object")
	id := c.Method("id", "Object", [2]string{"p", "Object"})
	id.Return("p")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("c", "C").Local("o1", "Object").Local("o2", "Object")
	main.Local("r1", "Object").Local("r2", "Object")
	main.New("c", "C")
	main.New("o1", "Object")
	main.New("o2", "Object")
	main.Invoke("r1", ir.InvokeVirtual, "c", "C", "id(Object)", "o1")
	main.Invoke("r2", ir.InvokeVirtual, "c", "C", "id(Object)", "o2")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	_, insens := solve(t, prog, NewContextInsensitive())
	mm := prog.Main
	if got := insens.PointsToSet(mm.Var("r1")); len(got) != 2 {
		t.Errorf("insensitive pt(r1) should conflate both objects, got %v", got)
	}

	_, sens := solve(t, prog, NewKCallSelector(1))
	if got := sens.PointsToSet(mm.Var("r1")); len(got) != 1 {
		t.Errorf("1-call pt(r1) should hold only o1's object, got %v", got)
	}
	if got := sens.PointsToSet(mm.Var("r2")); len(got) != 1 {
		t.Errorf("1-call pt(r2) should hold only o2's object, got %v", got)
	}
}

func TestCSManagerCanonicalization(t *testing.T) {
	pb := ir.NewProgramBuilder()
	pb.Class("Object")
	main := pb.Class("Main").Method("main", "void").Static()
	main.Local("x", "Object")
	main.New("x", "Object")
	main.Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	mgr := NewCSManager()
	sel := NewContextInsensitive()
	ctx := sel.EmptyContext()
	x := prog.Main.Var("x")
	if mgr.GetCSVar(ctx, x) != mgr.GetCSVar(ctx, x) {
		t.Errorf("CSVar not canonicalized")
	}
	heap := NewAllocSiteModel()
	alloc := prog.Main.Stmts[0].(*ir.New)
	if heap.GetObj(alloc) != heap.GetObj(alloc) {
		t.Errorf("heap model not deterministic per site")
	}
	obj := mgr.GetCSObj(ctx, heap.GetObj(alloc))
	if obj != mgr.GetCSObj(ctx, heap.GetObj(alloc)) {
		t.Errorf("CSObj not canonicalized")
	}
	if mgr.GetArrayIndex(obj) != mgr.GetArrayIndex(obj) {
		t.Errorf("ArrayIndex not canonicalized")
	}
}
