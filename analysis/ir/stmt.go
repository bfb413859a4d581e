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

import "fmt"

// Stmt is the interface of all IR statements. The concrete statement kinds form a closed tagged
// union: New, Copy, AssignLiteral, Binary, LoadField, StoreField, LoadArray, StoreArray, Invoke,
// Return, If and Goto. Analyses dispatch with a type switch over these kinds.
type Stmt interface {
	// Parent returns the method the statement belongs to
	Parent() *Method

	// Index returns the position of the statement in its method's statement list
	Index() int

	// Def returns the variable defined by the statement, or nil
	Def() *Var

	fmt.Stringer
}

// stmtBase carries the method and position shared by all statement kinds
type stmtBase struct {
	method *Method
	index  int
}

func (s *stmtBase) Parent() *Method { return s.method }
func (s *stmtBase) Index() int      { return s.index }

func (s *stmtBase) site() string {
	return fmt.Sprintf("%s[%d]", s.method, s.index)
}

// New is an allocation "x = new T". T may be a class or an array type.
type New struct {
	stmtBase
	LHS *Var
	T   *Type
}

func (s *New) Def() *Var      { return s.LHS }
func (s *New) String() string { return fmt.Sprintf("%s: %s = new %s", s.site(), s.LHS.Name, s.T) }

// Copy is a local assignment "x = y"
type Copy struct {
	stmtBase
	LHS *Var
	RHS *Var
}

func (s *Copy) Def() *Var      { return s.LHS }
func (s *Copy) String() string { return fmt.Sprintf("%s: %s = %s", s.site(), s.LHS.Name, s.RHS.Name) }

// AssignLiteral is an integer literal assignment "x = 7"
type AssignLiteral struct {
	stmtBase
	LHS   *Var
	Value int32
}

func (s *AssignLiteral) Def() *Var { return s.LHS }
func (s *AssignLiteral) String() string {
	return fmt.Sprintf("%s: %s = %d", s.site(), s.LHS.Name, s.Value)
}

// BinaryOp enumerates the binary operators of the IR
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpUshr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var opNames = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpRem: "%",
	OpAnd: "&", OpOr: "|", OpXor: "^", OpShl: "<<", OpShr: ">>", OpUshr: ">>>",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
}

func (op BinaryOp) String() string { return opNames[op] }

// Binary is a binary expression statement "x = a op b"
type Binary struct {
	stmtBase
	LHS *Var
	Op  BinaryOp
	L   *Var
	R   *Var
}

func (s *Binary) Def() *Var { return s.LHS }
func (s *Binary) String() string {
	return fmt.Sprintf("%s: %s = %s %s %s", s.site(), s.LHS.Name, s.L.Name, s.Op, s.R.Name)
}

// LoadField is a field load "x = b.f", or "x = C.f" when Base is nil (static load)
type LoadField struct {
	stmtBase
	LHS   *Var
	Base  *Var
	Field *Field
}

func (s *LoadField) Def() *Var { return s.LHS }

// IsStatic returns true for static field loads
func (s *LoadField) IsStatic() bool { return s.Base == nil }

func (s *LoadField) String() string {
	if s.IsStatic() {
		return fmt.Sprintf("%s: %s = %s", s.site(), s.LHS.Name, s.Field)
	}
	return fmt.Sprintf("%s: %s = %s.%s", s.site(), s.LHS.Name, s.Base.Name, s.Field.Name)
}

// StoreField is a field store "b.f = y", or "C.f = y" when Base is nil (static store)
type StoreField struct {
	stmtBase
	Base  *Var
	Field *Field
	RHS   *Var
}

func (s *StoreField) Def() *Var { return nil }

// IsStatic returns true for static field stores
func (s *StoreField) IsStatic() bool { return s.Base == nil }

func (s *StoreField) String() string {
	if s.IsStatic() {
		return fmt.Sprintf("%s: %s = %s", s.site(), s.Field, s.RHS.Name)
	}
	return fmt.Sprintf("%s: %s.%s = %s", s.site(), s.Base.Name, s.Field.Name, s.RHS.Name)
}

// LoadArray is an array load "x = a[i]"
type LoadArray struct {
	stmtBase
	LHS   *Var
	Array *Var
	Idx   *Var
}

func (s *LoadArray) Def() *Var { return s.LHS }
func (s *LoadArray) String() string {
	return fmt.Sprintf("%s: %s = %s[%s]", s.site(), s.LHS.Name, s.Array.Name, s.Idx.Name)
}

// StoreArray is an array store "a[i] = y"
type StoreArray struct {
	stmtBase
	Array *Var
	Idx   *Var
	RHS   *Var
}

func (s *StoreArray) Def() *Var { return nil }
func (s *StoreArray) String() string {
	return fmt.Sprintf("%s: %s[%s] = %s", s.site(), s.Array.Name, s.Idx.Name, s.RHS.Name)
}

// InvokeKind enumerates the dispatch kinds of invocations
type InvokeKind int

const (
	InvokeStatic InvokeKind = iota
	InvokeVirtual
	InvokeInterface
	InvokeSpecial
	InvokeDynamic
)

var invokeKindNames = map[InvokeKind]string{
	InvokeStatic:    "static",
	InvokeVirtual:   "virtual",
	InvokeInterface: "interface",
	InvokeSpecial:   "special",
	InvokeDynamic:   "dynamic",
}

func (k InvokeKind) String() string { return invokeKindNames[k] }

// A MethodRef names the declared target of an invocation before dispatch
type MethodRef struct {
	// Class is the class against which the reference is declared
	Class *Class

	// Subsig is the subsignature of the referenced method
	Subsig string
}

func (r MethodRef) String() string { return r.Class.Name + "." + r.Subsig }

// Invoke is an invocation "x = b.m(args)" or "x = C.m(args)". LHS may be nil when the result is
// discarded; Base is nil for static invocations.
type Invoke struct {
	stmtBase
	LHS  *Var
	Kind InvokeKind
	Base *Var
	Ref  MethodRef
	Args []*Var
}

func (s *Invoke) Def() *Var { return s.LHS }

// IsStatic returns true for static invocations
func (s *Invoke) IsStatic() bool { return s.Kind == InvokeStatic }

func (s *Invoke) String() string {
	recv := s.Ref.Class.Name
	if s.Base != nil {
		recv = s.Base.Name
	}
	lhs := ""
	if s.LHS != nil {
		lhs = s.LHS.Name + " = "
	}
	return fmt.Sprintf("%s: %sinvoke%s %s.%s", s.site(), lhs, s.Kind, recv, s.Ref.Subsig)
}

// Return exits the method, optionally returning a variable
type Return struct {
	stmtBase
	Var *Var
}

func (s *Return) Def() *Var { return nil }
func (s *Return) String() string {
	if s.Var == nil {
		return fmt.Sprintf("%s: return", s.site())
	}
	return fmt.Sprintf("%s: return %s", s.site(), s.Var.Name)
}

// If branches to Target when its condition variable is non-zero, and falls through otherwise
type If struct {
	stmtBase
	Cond   *Var
	Target int
}

func (s *If) Def() *Var      { return nil }
func (s *If) String() string { return fmt.Sprintf("%s: if %s goto %d", s.site(), s.Cond.Name, s.Target) }

// Goto branches unconditionally to Target
type Goto struct {
	stmtBase
	Target int
}

func (s *Goto) Def() *Var      { return nil }
func (s *Goto) String() string { return fmt.Sprintf("%s: goto %d", s.site(), s.Target) }

// Succs returns the indices of the intra-method successors of the statement at index i in m.
// Return statements have no successors; If statements have two.
func Succs(m *Method, i int) []int {
	switch s := m.Stmts[i].(type) {
	case *Return:
		return nil
	case *Goto:
		return []int{s.Target}
	case *If:
		if s.Target == i+1 {
			return []int{i + 1}
		}
		return []int{i + 1, s.Target}
	default:
		if i+1 < len(m.Stmts) {
			return []int{i + 1}
		}
		return nil
	}
}
