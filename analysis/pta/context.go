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
	"fmt"
	"strings"

	"github.com/percept-tools/percept/analysis/ir"
)

// A ContextElem is one element of a context string: a call site, an abstract object or a type,
// depending on the selector in use.
type ContextElem interface {
	fmt.Stringer
}

// A Context is an interned sequence of context elements. Contexts produced by the same selector
// are canonical: two contexts with equal elements are the same *Context, so pointer equality is
// context equality and contexts can key maps directly.
type Context struct {
	elems []ContextElem
	key   string
}

// Len returns the number of elements in the context
func (c *Context) Len() int { return len(c.elems) }

func (c *Context) String() string {
	if c.key == "" {
		return "[]"
	}
	return "[" + c.key + "]"
}

// contexts is the interning table shared by the selector implementations
type contexts struct {
	table map[string]*Context
	empty *Context
}

func newContexts() *contexts {
	empty := &Context{}
	return &contexts{table: map[string]*Context{"": empty}, empty: empty}
}

// make returns the canonical context with the given elements, truncated to the last k
func (cs *contexts) make(elems []ContextElem, k int) *Context {
	if len(elems) > k {
		elems = elems[len(elems)-k:]
	}
	if len(elems) == 0 {
		return cs.empty
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.String()
	}
	key := strings.Join(parts, ", ")
	if c, ok := cs.table[key]; ok {
		return c
	}
	c := &Context{elems: append([]ContextElem(nil), elems...), key: key}
	cs.table[key] = c
	return c
}

// extend returns the canonical context of base with e appended, truncated to the last k elements
func (cs *contexts) extend(base *Context, e ContextElem, k int) *Context {
	elems := make([]ContextElem, 0, len(base.elems)+1)
	elems = append(elems, base.elems...)
	elems = append(elems, e)
	return cs.make(elems, k)
}

// A ContextSelector chooses the calling-context and heap-context abstractions of the pointer
// analysis. The solver treats contexts as opaque interned values.
type ContextSelector interface {
	// EmptyContext returns the distinguished empty context
	EmptyContext() *Context

	// SelectContext selects the callee context for a static call
	SelectContext(site *CSCallSite, callee *ir.Method) *Context

	// SelectCalleeContext selects the callee context for an instance call with receiver object recv
	SelectCalleeContext(site *CSCallSite, recv *CSObj, callee *ir.Method) *Context

	// SelectHeapContext selects the heap context for an object allocated in the given method
	SelectHeapContext(allocMethod *CSMethod, obj *Obj) *Context
}

// SelectorFor returns the context selector named by a configuration string. The empty name and
// "insens" select the context-insensitive analysis.
func SelectorFor(name string) (ContextSelector, error) {
	switch name {
	case "", "insens":
		return NewContextInsensitive(), nil
	case "1-call":
		return NewKCallSelector(1), nil
	case "2-call":
		return NewKCallSelector(2), nil
	case "1-obj":
		return NewKObjSelector(1), nil
	case "2-obj":
		return NewKObjSelector(2), nil
	case "1-type":
		return NewKTypeSelector(1), nil
	case "2-type":
		return NewKTypeSelector(2), nil
	default:
		return nil, fmt.Errorf("unknown context sensitivity %q", name)
	}
}

// contextInsensitive maps every method and object to the empty context
type contextInsensitive struct {
	cs *contexts
}

// NewContextInsensitive returns the context-insensitive selector
func NewContextInsensitive() ContextSelector {
	return &contextInsensitive{cs: newContexts()}
}

func (s *contextInsensitive) EmptyContext() *Context { return s.cs.empty }

func (s *contextInsensitive) SelectContext(*CSCallSite, *ir.Method) *Context {
	return s.cs.empty
}

func (s *contextInsensitive) SelectCalleeContext(*CSCallSite, *CSObj, *ir.Method) *Context {
	return s.cs.empty
}

func (s *contextInsensitive) SelectHeapContext(*CSMethod, *Obj) *Context {
	return s.cs.empty
}

// kCall is k-limited call-site sensitivity with k-1 heap context
type kCall struct {
	cs *contexts
	k  int
}

// NewKCallSelector returns a k-limited call-site-sensitive selector
func NewKCallSelector(k int) ContextSelector {
	return &kCall{cs: newContexts(), k: k}
}

func (s *kCall) EmptyContext() *Context { return s.cs.empty }

func (s *kCall) SelectContext(site *CSCallSite, _ *ir.Method) *Context {
	return s.cs.extend(site.Context, site.Site, s.k)
}

func (s *kCall) SelectCalleeContext(site *CSCallSite, _ *CSObj, _ *ir.Method) *Context {
	return s.cs.extend(site.Context, site.Site, s.k)
}

func (s *kCall) SelectHeapContext(allocMethod *CSMethod, _ *Obj) *Context {
	return s.cs.make(allocMethod.Context.elems, s.k-1)
}

// kObj is k-limited object sensitivity with k-1 heap context
type kObj struct {
	cs *contexts
	k  int
}

// NewKObjSelector returns a k-limited object-sensitive selector
func NewKObjSelector(k int) ContextSelector {
	return &kObj{cs: newContexts(), k: k}
}

func (s *kObj) EmptyContext() *Context { return s.cs.empty }

func (s *kObj) SelectContext(site *CSCallSite, _ *ir.Method) *Context {
	// static calls inherit the caller context
	return site.Context
}

func (s *kObj) SelectCalleeContext(_ *CSCallSite, recv *CSObj, _ *ir.Method) *Context {
	return s.cs.extend(recv.Context, recv.Obj, s.k)
}

func (s *kObj) SelectHeapContext(allocMethod *CSMethod, _ *Obj) *Context {
	return s.cs.make(allocMethod.Context.elems, s.k-1)
}

// kType is k-limited type sensitivity: like object sensitivity with objects abstracted to their
// types
type kType struct {
	cs *contexts
	k  int
}

// NewKTypeSelector returns a k-limited type-sensitive selector
func NewKTypeSelector(k int) ContextSelector {
	return &kType{cs: newContexts(), k: k}
}

func (s *kType) EmptyContext() *Context { return s.cs.empty }

func (s *kType) SelectContext(site *CSCallSite, _ *ir.Method) *Context {
	return site.Context
}

func (s *kType) SelectCalleeContext(_ *CSCallSite, recv *CSObj, _ *ir.Method) *Context {
	return s.cs.extend(recv.Context, recv.Obj.Type, s.k)
}

func (s *kType) SelectHeapContext(allocMethod *CSMethod, _ *Obj) *Context {
	return s.cs.make(allocMethod.Context.elems, s.k-1)
}
