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

import "fmt"

type valueKind int

const (
	undef valueKind = iota
	constant
	nac
)

// A Value is a point of the constant propagation lattice: UNDEF, CONST(k) or NAC. Values are
// comparable and usable as map keys.
type Value struct {
	kind valueKind
	c    int32
}

// Undef returns the undefined value, the bottom of the lattice
func Undef() Value { return Value{} }

// NAC returns the not-a-constant value, the top of the lattice
func NAC() Value { return Value{kind: nac} }

// MakeConstant returns the constant lattice value for k
func MakeConstant(k int32) Value { return Value{kind: constant, c: k} }

// IsUndef returns true for the undefined value
func (v Value) IsUndef() bool { return v.kind == undef }

// IsConstant returns true for constant values
func (v Value) IsConstant() bool { return v.kind == constant }

// IsNAC returns true for the not-a-constant value
func (v Value) IsNAC() bool { return v.kind == nac }

// Constant returns the constant held by the value. Calling it on a non-constant is a programmer
// error and panics.
func (v Value) Constant() int32 {
	if v.kind != constant {
		panic("constprop: Constant() on non-constant value")
	}
	return v.c
}

func (v Value) String() string {
	switch v.kind {
	case undef:
		return "UNDEF"
	case nac:
		return "NAC"
	default:
		return fmt.Sprintf("%d", v.c)
	}
}

// MeetValue meets two lattice values: NAC absorbs, UNDEF is the identity, and distinct constants
// meet to NAC.
func MeetValue(v1, v2 Value) Value {
	switch {
	case v1.IsNAC() || v2.IsNAC():
		return NAC()
	case v1.IsUndef():
		return v2
	case v2.IsUndef():
		return v1
	case v1 == v2:
		return v1
	default:
		return NAC()
	}
}
