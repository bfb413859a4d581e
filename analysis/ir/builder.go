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
	"fmt"
	"strings"
)

// A ProgramBuilder constructs a Program incrementally. Classes may be referenced before they are
// declared; Build reports the references that were never resolved. The builder also maintains the
// reverse use-indexes on variables as statements are appended.
type ProgramBuilder struct {
	classes  map[string]*Class
	types    map[string]*Type
	declared map[string]bool
	main     *Method
	mainRef  [2]string
	errs     []error
}

// NewProgramBuilder returns an empty program builder
func NewProgramBuilder() *ProgramBuilder {
	return &ProgramBuilder{
		classes:  map[string]*Class{},
		types:    map[string]*Type{},
		declared: map[string]bool{},
	}
}

func (pb *ProgramBuilder) errorf(format string, args ...any) {
	pb.errs = append(pb.errs, fmt.Errorf(format, args...))
}

// classRef returns the class with the given name, creating an empty shell for forward references
func (pb *ProgramBuilder) classRef(name string) *Class {
	if c, ok := pb.classes[name]; ok {
		return c
	}
	c := &Class{Name: name, methods: map[string]*Method{}, fields: map[string]*Field{}}
	pb.classes[name] = c
	return c
}

// Type returns the canonical type for a type name. Primitive names are "int", "byte", "short",
// "char" and "boolean"; "T[]" is an array of T; anything else is a class type.
func (pb *ProgramBuilder) Type(name string) *Type {
	if t, ok := pb.types[name]; ok {
		return t
	}
	var t *Type
	switch {
	case name == "int" || name == "byte" || name == "short" || name == "char":
		t = &Type{Name: name, Kind: KindInt}
	case name == "boolean":
		t = &Type{Name: name, Kind: KindBoolean}
	case strings.HasSuffix(name, "[]"):
		t = &Type{Name: name, Kind: KindArray, Elem: pb.Type(strings.TrimSuffix(name, "[]"))}
	default:
		t = &Type{Name: name, Kind: KindClass, Class: pb.classRef(name)}
	}
	pb.types[name] = t
	return t
}

// Class declares a class and returns its builder. Declaring the same name twice returns the same
// builder.
func (pb *ProgramBuilder) Class(name string) *ClassBuilder {
	c := pb.classRef(name)
	pb.declared[name] = true
	return &ClassBuilder{pb: pb, class: c}
}

// SetMain designates the entry method of the program
func (pb *ProgramBuilder) SetMain(className, subsig string) {
	pb.mainRef = [2]string{className, subsig}
}

// Build finalizes the program: hierarchy indexes are computed and dangling references reported
func (pb *ProgramBuilder) Build() (*Program, error) {
	for name := range pb.classes {
		if !pb.declared[name] {
			pb.errorf("class %q referenced but never declared", name)
		}
	}
	if pb.mainRef[0] != "" {
		c := pb.classes[pb.mainRef[0]]
		if c == nil || c.DeclaredMethod(pb.mainRef[1]) == nil {
			pb.errorf("entry method %s.%s not found", pb.mainRef[0], pb.mainRef[1])
		} else {
			pb.main = c.DeclaredMethod(pb.mainRef[1])
		}
	}
	if len(pb.errs) > 0 {
		return nil, pb.errs[0]
	}
	p := &Program{
		Main:          pb.main,
		classes:       pb.classes,
		types:         pb.types,
		subclasses:    map[*Class][]*Class{},
		subinterfaces: map[*Class][]*Class{},
		implementors:  map[*Class][]*Class{},
	}
	for _, c := range pb.classes {
		for _, m := range c.methods {
			if !m.IsStatic && !m.IsAbstract && m.This == nil {
				v := &Var{Name: "this", Type: pb.Type(c.Name), Method: m}
				m.vars["this"] = v
				m.This = v
			}
		}
		if c.Super != nil {
			p.subclasses[c.Super] = append(p.subclasses[c.Super], c)
		}
		for _, i := range c.Interfaces {
			if c.IsInterface {
				p.subinterfaces[i] = append(p.subinterfaces[i], c)
			} else {
				p.implementors[i] = append(p.implementors[i], c)
			}
		}
	}
	return p, nil
}

// A ClassBuilder populates one class declaration
type ClassBuilder struct {
	pb    *ProgramBuilder
	class *Class
}

// Extends sets the direct superclass
func (cb *ClassBuilder) Extends(name string) *ClassBuilder {
	cb.class.Super = cb.pb.classRef(name)
	return cb
}

// Implements adds directly implemented (or extended) interfaces
func (cb *ClassBuilder) Implements(names ...string) *ClassBuilder {
	for _, n := range names {
		cb.class.Interfaces = append(cb.class.Interfaces, cb.pb.classRef(n))
	}
	return cb
}

// Interface marks the class as an interface declaration
func (cb *ClassBuilder) Interface() *ClassBuilder {
	cb.class.IsInterface = true
	return cb
}

// Field declares a field
func (cb *ClassBuilder) Field(name, typeName string, static bool) *ClassBuilder {
	if _, dup := cb.class.fields[name]; dup {
		cb.pb.errorf("duplicate field %s.%s", cb.class.Name, name)
		return cb
	}
	cb.class.fields[name] = &Field{Class: cb.class, Name: name, Type: cb.pb.Type(typeName), IsStatic: static}
	return cb
}

// Method declares a method and returns its builder. Parameters are "name type" pairs; they fix
// the subsignature and must all be given here.
func (cb *ClassBuilder) Method(name, retType string, params ...[2]string) *MethodBuilder {
	m := &Method{Class: cb.class, Name: name, vars: map[string]*Var{}}
	if retType != "void" {
		m.Ret = cb.pb.Type(retType)
	}
	for _, p := range params {
		v := &Var{Name: p[0], Type: cb.pb.Type(p[1]), Method: m}
		m.vars[p[0]] = v
		m.Params = append(m.Params, v)
	}
	sig := m.Subsignature()
	if _, dup := cb.class.methods[sig]; dup {
		cb.pb.errorf("duplicate method %s.%s", cb.class.Name, sig)
	}
	cb.class.methods[sig] = m
	mb := &MethodBuilder{pb: cb.pb, m: m}
	return mb
}

// A MethodBuilder populates one method body. Statement methods refer to variables by name; the
// variables must have been declared as parameters or locals first.
type MethodBuilder struct {
	pb *ProgramBuilder
	m  *Method
}

// Static marks the method static; static methods have no this-variable
func (mb *MethodBuilder) Static() *MethodBuilder {
	mb.m.IsStatic = true
	return mb
}

// Abstract marks the method abstract; abstract methods have no body
func (mb *MethodBuilder) Abstract() *MethodBuilder {
	mb.m.IsAbstract = true
	return mb
}

// Local declares a local variable
func (mb *MethodBuilder) Local(name, typeName string) *MethodBuilder {
	if _, dup := mb.m.vars[name]; dup {
		mb.pb.errorf("duplicate variable %s in %s", name, mb.m)
		return mb
	}
	mb.m.vars[name] = &Var{Name: name, Type: mb.pb.Type(typeName), Method: mb.m}
	return mb
}

func (mb *MethodBuilder) v(name string) *Var {
	if v := mb.m.vars[name]; v != nil {
		return v
	}
	if name == "this" && !mb.m.IsStatic {
		v := &Var{Name: "this", Type: mb.pb.Type(mb.m.Class.Name), Method: mb.m}
		mb.m.vars["this"] = v
		mb.m.This = v
		return v
	}
	mb.pb.errorf("undeclared variable %q in %s", name, mb.m)
	// return a placeholder so that building can continue and report further errors
	v := &Var{Name: name, Type: mb.pb.Type("int"), Method: mb.m}
	mb.m.vars[name] = v
	return v
}

func (mb *MethodBuilder) base(Stmt) stmtBase {
	return stmtBase{method: mb.m, index: len(mb.m.Stmts)}
}

func (mb *MethodBuilder) append(s Stmt) {
	mb.m.Stmts = append(mb.m.Stmts, s)
}

// New appends "lhs = new T"
func (mb *MethodBuilder) New(lhs, typeName string) *MethodBuilder {
	s := &New{LHS: mb.v(lhs), T: mb.pb.Type(typeName)}
	s.stmtBase = mb.base(s)
	mb.append(s)
	return mb
}

// Copy appends "lhs = rhs"
func (mb *MethodBuilder) Copy(lhs, rhs string) *MethodBuilder {
	s := &Copy{LHS: mb.v(lhs), RHS: mb.v(rhs)}
	s.stmtBase = mb.base(s)
	mb.append(s)
	return mb
}

// Const appends "lhs = value"
func (mb *MethodBuilder) Const(lhs string, value int32) *MethodBuilder {
	s := &AssignLiteral{LHS: mb.v(lhs), Value: value}
	s.stmtBase = mb.base(s)
	mb.append(s)
	return mb
}

// Binop appends "lhs = l op r"
func (mb *MethodBuilder) Binop(lhs string, l string, op BinaryOp, r string) *MethodBuilder {
	s := &Binary{LHS: mb.v(lhs), Op: op, L: mb.v(l), R: mb.v(r)}
	s.stmtBase = mb.base(s)
	mb.append(s)
	return mb
}

func (mb *MethodBuilder) fieldRef(qualified string) *Field {
	i := strings.LastIndex(qualified, ".")
	if i < 0 {
		mb.pb.errorf("malformed field reference %q in %s", qualified, mb.m)
		return &Field{Class: mb.m.Class, Name: qualified, Type: mb.pb.Type("int")}
	}
	cls := mb.pb.classRef(qualified[:i])
	f := cls.fields[qualified[i+1:]]
	if f == nil {
		// tolerate forward references: create the field on the shell class
		f = &Field{Class: cls, Name: qualified[i+1:], Type: mb.pb.Type("int")}
		cls.fields[f.Name] = f
	}
	return f
}

// LoadField appends "lhs = base.field"; field is "Class.name"
func (mb *MethodBuilder) LoadField(lhs, base, field string) *MethodBuilder {
	s := &LoadField{LHS: mb.v(lhs), Base: mb.v(base), Field: mb.fieldRef(field)}
	s.stmtBase = mb.base(s)
	mb.append(s)
	s.Base.LoadFields = append(s.Base.LoadFields, s)
	return mb
}

// LoadStatic appends "lhs = Class.field"
func (mb *MethodBuilder) LoadStatic(lhs, field string) *MethodBuilder {
	s := &LoadField{LHS: mb.v(lhs), Field: mb.fieldRef(field)}
	s.stmtBase = mb.base(s)
	mb.append(s)
	return mb
}

// StoreField appends "base.field = rhs"
func (mb *MethodBuilder) StoreField(base, field, rhs string) *MethodBuilder {
	s := &StoreField{Base: mb.v(base), Field: mb.fieldRef(field), RHS: mb.v(rhs)}
	s.stmtBase = mb.base(s)
	mb.append(s)
	s.Base.StoreFields = append(s.Base.StoreFields, s)
	return mb
}

// StoreStatic appends "Class.field = rhs"
func (mb *MethodBuilder) StoreStatic(field, rhs string) *MethodBuilder {
	s := &StoreField{Field: mb.fieldRef(field), RHS: mb.v(rhs)}
	s.stmtBase = mb.base(s)
	mb.append(s)
	return mb
}

// LoadArray appends "lhs = array[idx]"
func (mb *MethodBuilder) LoadArray(lhs, array, idx string) *MethodBuilder {
	s := &LoadArray{LHS: mb.v(lhs), Array: mb.v(array), Idx: mb.v(idx)}
	s.stmtBase = mb.base(s)
	mb.append(s)
	s.Array.LoadArrays = append(s.Array.LoadArrays, s)
	return mb
}

// StoreArray appends "array[idx] = rhs"
func (mb *MethodBuilder) StoreArray(array, idx, rhs string) *MethodBuilder {
	s := &StoreArray{Array: mb.v(array), Idx: mb.v(idx), RHS: mb.v(rhs)}
	s.stmtBase = mb.base(s)
	mb.append(s)
	s.Array.StoreArrays = append(s.Array.StoreArrays, s)
	return mb
}

// Invoke appends an invocation. lhs and base may be "" for no-result and static calls; the callee
// is named by class and subsignature.
func (mb *MethodBuilder) Invoke(lhs string, kind InvokeKind, base, class, subsig string, args ...string) *MethodBuilder {
	s := &Invoke{Kind: kind, Ref: MethodRef{Class: mb.pb.classRef(class), Subsig: subsig}}
	if lhs != "" {
		s.LHS = mb.v(lhs)
	}
	if base != "" {
		s.Base = mb.v(base)
	} else if kind != InvokeStatic {
		mb.pb.errorf("instance invocation without base in %s", mb.m)
	}
	for _, a := range args {
		s.Args = append(s.Args, mb.v(a))
	}
	s.stmtBase = mb.base(s)
	mb.append(s)
	if s.Base != nil {
		s.Base.Invokes = append(s.Base.Invokes, s)
	}
	return mb
}

// Return appends "return v"; v may be "" for void returns
func (mb *MethodBuilder) Return(v string) *MethodBuilder {
	s := &Return{}
	if v != "" {
		s.Var = mb.v(v)
		mb.m.ReturnVars = append(mb.m.ReturnVars, s.Var)
	}
	s.stmtBase = mb.base(s)
	mb.append(s)
	return mb
}

// If appends "if cond goto target"
func (mb *MethodBuilder) If(cond string, target int) *MethodBuilder {
	s := &If{Cond: mb.v(cond), Target: target}
	s.stmtBase = mb.base(s)
	mb.append(s)
	return mb
}

// Goto appends "goto target"
func (mb *MethodBuilder) Goto(target int) *MethodBuilder {
	s := &Goto{Target: target}
	s.stmtBase = mb.base(s)
	mb.append(s)
	return mb
}
