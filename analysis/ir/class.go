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

// A Class is a class or interface declaration. Classes are canonicalized per program: pointer
// equality is class equality.
type Class struct {
	// Name is the fully qualified class name
	Name string

	// Super is the direct superclass, nil for the root class
	Super *Class

	// Interfaces are the directly implemented (or extended, for interfaces) interfaces
	Interfaces []*Class

	// IsInterface is true for interface declarations
	IsInterface bool

	methods map[string]*Method
	fields  map[string]*Field
}

// A Field is a field declaration. Instance fields are addressed per-object by the pointer
// analysis; static fields have a single cell per field.
type Field struct {
	// Class is the declaring class
	Class *Class

	// Name is the field name
	Name string

	// Type is the declared type of the field
	Type *Type

	// IsStatic is true for static fields
	IsStatic bool
}

func (f *Field) String() string {
	return f.Class.Name + "." + f.Name
}

// DeclaredMethod returns the method declared in this class with the given subsignature, or nil.
// It does not walk the hierarchy; see Program.Dispatch for that.
func (c *Class) DeclaredMethod(subsig string) *Method {
	return c.methods[subsig]
}

// DeclaredField returns the field declared in this class with the given name, or nil
func (c *Class) DeclaredField(name string) *Field {
	return c.fields[name]
}

// Methods returns all the methods declared in this class, in unspecified order
func (c *Class) Methods() []*Method {
	var ms []*Method
	for _, m := range c.methods {
		ms = append(ms, m)
	}
	return ms
}

func (c *Class) String() string {
	return c.Name
}

// A Method is a method declaration together with its IR body. Abstract methods have no body.
type Method struct {
	// Class is the declaring class
	Class *Class

	// Name is the method name
	Name string

	// IsStatic is true for static methods; static methods have no this-variable
	IsStatic bool

	// IsAbstract is true for abstract methods, which cannot be dispatch targets
	IsAbstract bool

	// Params are the formal parameter variables, in positional order
	Params []*Var

	// ReturnVars are the variables returned by the method's return statements
	ReturnVars []*Var

	// This is the receiver variable of an instance method, nil for static methods
	This *Var

	// Stmts is the statement list of the method body. Control flow is fallthrough except at
	// If/Goto/Return statements.
	Stmts []Stmt

	// Ret is the declared return type, nil for void methods
	Ret *Type

	vars map[string]*Var
}

// Subsignature returns the dispatch key of the method: its name together with the parameter type
// names. Methods that override each other share a subsignature.
func (m *Method) Subsignature() string {
	sig := m.Name + "("
	for i, p := range m.Params {
		if i > 0 {
			sig += ","
		}
		sig += p.Type.Name
	}
	return sig + ")"
}

// Var returns the variable with the given name declared in this method, or nil
func (m *Method) Var(name string) *Var {
	return m.vars[name]
}

func (m *Method) String() string {
	return fmt.Sprintf("%s.%s", m.Class.Name, m.Subsignature())
}

// A Var is a method-local variable. The IR maintains reverse indexes from each variable to the
// statements that use it as a receiver or as the base of a field or array access; the pointer
// analysis consumes those indexes when the points-to set of the variable grows.
type Var struct {
	// Name is the variable name, unique within the method
	Name string

	// Type is the declared type of the variable
	Type *Type

	// Method is the declaring method
	Method *Method

	// LoadFields are the instance field loads "x = v.f" whose base is this variable
	LoadFields []*LoadField

	// StoreFields are the instance field stores "v.f = y" whose base is this variable
	StoreFields []*StoreField

	// LoadArrays are the array loads "x = v[i]" whose array is this variable
	LoadArrays []*LoadArray

	// StoreArrays are the array stores "v[i] = y" whose array is this variable
	StoreArrays []*StoreArray

	// Invokes are the instance invocations "v.m(...)" whose receiver is this variable
	Invokes []*Invoke
}

func (v *Var) String() string {
	return v.Method.String() + "/" + v.Name
}
