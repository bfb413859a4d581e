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

// A Program is a closed world of classes together with a designated entry method. It owns the
// canonicalization tables for types and the hierarchy indexes used by dispatch.
type Program struct {
	// Main is the entry method of the program
	Main *Method

	classes map[string]*Class
	types   map[string]*Type

	subclasses    map[*Class][]*Class
	subinterfaces map[*Class][]*Class
	implementors  map[*Class][]*Class
}

// Class returns the class with the given name, or nil
func (p *Program) Class(name string) *Class {
	return p.classes[name]
}

// Classes returns all classes of the program, in unspecified order
func (p *Program) Classes() []*Class {
	var cs []*Class
	for _, c := range p.classes {
		cs = append(cs, c)
	}
	return cs
}

// Type returns the canonical type with the given name, or nil
func (p *Program) Type(name string) *Type {
	return p.types[name]
}

// DirectSubclassesOf returns the direct subclasses of a class
func (p *Program) DirectSubclassesOf(c *Class) []*Class { return p.subclasses[c] }

// DirectSubinterfacesOf returns the direct subinterfaces of an interface
func (p *Program) DirectSubinterfacesOf(c *Class) []*Class { return p.subinterfaces[c] }

// DirectImplementorsOf returns the classes directly implementing an interface
func (p *Program) DirectImplementorsOf(c *Class) []*Class { return p.implementors[c] }

// Dispatch resolves a subsignature against a class by walking the superclass chain until a
// non-abstract declaration is found. Returns nil when no such method exists.
func (p *Program) Dispatch(c *Class, subsig string) *Method {
	for ; c != nil; c = c.Super {
		if m := c.DeclaredMethod(subsig); m != nil && !m.IsAbstract {
			return m
		}
	}
	return nil
}

// ResolveCallee resolves the single callee of a call site given the dynamic type of the receiver
// object. For static calls recvType is ignored and may be nil. A nil return means the call cannot
// be resolved; callers treat that as a resolution failure and skip the call.
func (p *Program) ResolveCallee(recvType *Type, call *Invoke) *Method {
	switch call.Kind {
	case InvokeVirtual, InvokeInterface:
		if recvType == nil {
			return nil
		}
		cls := recvType.Class
		if recvType.Kind == KindArray {
			// array receivers dispatch against the root class
			cls = p.rootClass()
		}
		return p.Dispatch(cls, call.Ref.Subsig)
	case InvokeSpecial:
		return p.Dispatch(call.Ref.Class, call.Ref.Subsig)
	case InvokeStatic:
		return call.Ref.Class.DeclaredMethod(call.Ref.Subsig)
	default:
		return nil
	}
}

func (p *Program) rootClass() *Class {
	for _, c := range p.classes {
		if c.Super == nil && !c.IsInterface {
			return c
		}
	}
	return nil
}

// Methods calls f on every method with a body declared in the program
func (p *Program) Methods(f func(*Method)) {
	for _, c := range p.classes {
		for _, m := range c.methods {
			if !m.IsAbstract {
				f(m)
			}
		}
	}
}
