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

package ir

import (
	"testing"
)

func buildHierarchy(t *testing.T) *Program {
	t.Helper()
	pb := NewProgramBuilder()
	pb.Class("Object")
	c := pb.Class("C").Extends("Object")
	c.Method("m", "void").Return("")
	d := pb.Class("D").Extends("C")
	d.Method("m", "void").Return("")
	pb.Class("E").Extends("D")
	i := pb.Class("I").Interface()
	i.Method("f", "void").Abstract()
	impl := pb.Class("Impl").Extends("Object").Implements("I")
	impl.Method("f", "void").Return("")
	main := pb.Class("Main")
	main.Method("main", "void").Static().Return("")
	pb.SetMain("Main", "main()")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return prog
}

func TestDispatchWalksSuperclasses(t *testing.T) {
	prog := buildHierarchy(t)
	e := prog.Class("E")
	m := prog.Dispatch(e, "m()")
	if m == nil || m.Class != prog.Class("D") {
		t.Errorf("dispatch on E should find D.m, got %v", m)
	}
	c := prog.Class("C")
	if got := prog.Dispatch(c, "m()"); got == nil || got.Class != c {
		t.Errorf("dispatch on C should find C.m, got %v", got)
	}
}

func TestDispatchSkipsAbstract(t *testing.T) {
	prog := buildHierarchy(t)
	if got := prog.Dispatch(prog.Class("I"), "f()"); got != nil {
		t.Errorf("dispatch on interface I should not find a target, got %v", got)
	}
}

func TestResolveCalleeVirtual(t *testing.T) {
	prog := buildHierarchy(t)
	caller := prog.Class("Main").DeclaredMethod("main()")
	call := &Invoke{
		Kind: InvokeVirtual,
		Ref:  MethodRef{Class: prog.Class("C"), Subsig: "m()"},
	}
	call.stmtBase = stmtBase{method: caller, index: 0}
	dType := prog.Type("D")
	m := prog.ResolveCallee(dType, call)
	if m == nil || m.Class != prog.Class("D") {
		t.Errorf("virtual resolution on D should find D.m, got %v", m)
	}
}

func TestBuilderRejectsUndeclaredVariable(t *testing.T) {
	pb := NewProgramBuilder()
	c := pb.Class("C")
	c.Method("m", "void").Copy("x", "y").Return("")
	if _, err := pb.Build(); err == nil {
		t.Errorf("expected an error for undeclared variables")
	}
}

func TestBuilderReverseIndexes(t *testing.T) {
	pb := NewProgramBuilder()
	pb.Class("Object")
	c := pb.Class("C")
	c.Field("f", "Object", false)
	m := c.Method("m", "void")
	m.Local("a", "C").Local("b", "Object")
	m.StoreField("a", "C.f", "b")
	m.LoadField("b", "a", "C.f")
	m.Return("")
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	a := prog.Class("C").DeclaredMethod("m()").Var("a")
	if len(a.StoreFields) != 1 || len(a.LoadFields) != 1 {
		t.Errorf("expected one store and one load indexed on a, got %d and %d",
			len(a.StoreFields), len(a.LoadFields))
	}
}

const yamlProgram = `
main: Main.main()
classes:
  - name: Object
  - name: C
    extends: Object
    fields:
      - {name: f, type: int, static: true}
    methods:
      - name: id
        returns: int
        params: [{name: p, type: int}]
        body:
          - {op: return, var: p}
  - name: Main
    methods:
      - name: main
        static: true
        locals: {c: C, x: int, y: int}
        body:
          - {op: new, to: c, type: C}
          - {op: const, to: x, value: 7}
          - {op: invoke, to: y, kind: virtual, base: c, class: C, method: "id(int)", args: [x]}
          - {op: return}
`

func TestLoadProgram(t *testing.T) {
	prog, err := LoadProgram([]byte(yamlProgram))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if prog.Main == nil || prog.Main.Class.Name != "Main" {
		t.Fatalf("entry method not resolved")
	}
	if len(prog.Main.Stmts) != 4 {
		t.Errorf("expected 4 statements in main, got %d", len(prog.Main.Stmts))
	}
	c := prog.Main.Var("c")
	if len(c.Invokes) != 1 {
		t.Errorf("expected the invoke to be indexed on its receiver")
	}
	f := prog.Class("C").DeclaredField("f")
	if f == nil || !f.IsStatic {
		t.Errorf("static field f not loaded")
	}
}

func TestLoadProgramRejectsUnknownOp(t *testing.T) {
	bad := `
classes:
  - name: C
    methods:
      - name: m
        body:
          - {op: frobnicate}
`
	if _, err := LoadProgram([]byte(bad)); err == nil {
		t.Errorf("expected an error for unknown statement op")
	}
}

func TestSuccs(t *testing.T) {
	pb := NewProgramBuilder()
	c := pb.Class("C")
	m := c.Method("m", "void")
	m.Local("x", "int").Local("c", "boolean")
	m.Const("x", 1)    // 0
	m.If("c", 3)       // 1
	m.Const("x", 2)    // 2
	m.Return("")       // 3
	prog, err := pb.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	mm := prog.Class("C").DeclaredMethod("m()")
	if got := Succs(mm, 0); len(got) != 1 || got[0] != 1 {
		t.Errorf("fallthrough successor wrong: %v", got)
	}
	if got := Succs(mm, 1); len(got) != 2 {
		t.Errorf("if should have two successors: %v", got)
	}
	if got := Succs(mm, 3); got != nil {
		t.Errorf("return should have no successors: %v", got)
	}
}
