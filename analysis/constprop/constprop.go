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

// Package constprop implements constant propagation for integer values: the intraprocedural
// lattice transfer functions and the alias-aware interprocedural analysis over the
// interprocedural control flow graph.
package constprop

import (
	"github.com/percept-tools/percept/analysis/ir"
)

// NewBoundaryFact returns the entry fact of a method: every integer-holding parameter is NAC,
// everything else UNDEF.
func NewBoundaryFact(m *ir.Method) Fact {
	fact := NewFact()
	for _, p := range m.Params {
		if p.Type.CanHoldInt() {
			fact.Update(p, NAC())
		}
	}
	return fact
}

// MeetInto meets fact into target, mutating target
func MeetInto(fact, target Fact) {
	for v, val := range fact {
		target.Update(v, MeetValue(val, target.Get(v)))
	}
}

// TransferNode is the intraprocedural transfer: definitions of integer-holding variables are
// re-evaluated in the IN fact, everything else is the identity. Returns true if OUT changed.
func TransferNode(s ir.Stmt, in, out Fact) bool {
	changed := out.CopyFrom(in)
	if def := s.Def(); def != nil && def.Type.CanHoldInt() {
		changed = out.Update(def, Evaluate(s, in)) || changed
	}
	return changed
}

// Evaluate computes the lattice value produced by a definition statement under the IN fact.
// Statements that are not constant expressions evaluate to NAC.
func Evaluate(s ir.Stmt, in Fact) Value {
	switch s := s.(type) {
	case *ir.AssignLiteral:
		return MakeConstant(s.Value)
	case *ir.Copy:
		return in.Get(s.RHS)
	case *ir.Binary:
		return evalBinary(s.Op, in.Get(s.L), in.Get(s.R))
	default:
		return NAC()
	}
}

func evalBinary(op ir.BinaryOp, v1, v2 Value) Value {
	if v1.IsConstant() && v2.IsConstant() {
		return evalConst(op, v1.Constant(), v2.Constant())
	}
	if v1.IsUndef() || v2.IsUndef() {
		return Undef()
	}
	// division of NAC by constant zero is undefined, not NAC
	if v1.IsNAC() && v2.IsConstant() && v2.Constant() == 0 && (op == ir.OpDiv || op == ir.OpRem) {
		return Undef()
	}
	return NAC()
}

// evalConst computes a binary operation on two constants with wrap-around 32-bit arithmetic.
// Shift counts are taken modulo 32; comparisons yield 0 or 1.
func evalConst(op ir.BinaryOp, a, b int32) Value {
	boolVal := func(cond bool) Value {
		if cond {
			return MakeConstant(1)
		}
		return MakeConstant(0)
	}
	switch op {
	case ir.OpAdd:
		return MakeConstant(a + b)
	case ir.OpSub:
		return MakeConstant(a - b)
	case ir.OpMul:
		return MakeConstant(a * b)
	case ir.OpDiv:
		if b == 0 {
			return Undef()
		}
		return MakeConstant(a / b)
	case ir.OpRem:
		if b == 0 {
			return Undef()
		}
		return MakeConstant(a % b)
	case ir.OpAnd:
		return MakeConstant(a & b)
	case ir.OpOr:
		return MakeConstant(a | b)
	case ir.OpXor:
		return MakeConstant(a ^ b)
	case ir.OpShl:
		return MakeConstant(a << (uint32(b) & 31))
	case ir.OpShr:
		return MakeConstant(a >> (uint32(b) & 31))
	case ir.OpUshr:
		return MakeConstant(int32(uint32(a) >> (uint32(b) & 31)))
	case ir.OpEq:
		return boolVal(a == b)
	case ir.OpNe:
		return boolVal(a != b)
	case ir.OpLt:
		return boolVal(a < b)
	case ir.OpLe:
		return boolVal(a <= b)
	case ir.OpGt:
		return boolVal(a > b)
	case ir.OpGe:
		return boolVal(a >= b)
	default:
		return NAC()
	}
}
