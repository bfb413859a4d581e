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
	"github.com/percept-tools/percept/analysis/ir"
)

type csVarKey struct {
	ctx *Context
	v   *ir.Var
}

type csObjKey struct {
	ctx *Context
	obj *Obj
}

type instanceFieldKey struct {
	base  *CSObj
	field *ir.Field
}

type csMethodKey struct {
	ctx *Context
	m   *ir.Method
}

type csCallSiteKey struct {
	ctx  *Context
	site *ir.Invoke
}

// The CSManager owns the canonicalization tables of every context-sensitive entity. Two requests
// with equal components return the same pointer, so structural equality coincides with pointer
// equality everywhere in the solver. Entities are created lazily on first request and live for
// the whole analysis run. The manager is confined to the single solver goroutine.
type CSManager struct {
	csVars         map[csVarKey]*CSVar
	csObjs         map[csObjKey]*CSObj
	staticFields   map[*ir.Field]*StaticField
	instanceFields map[instanceFieldKey]*InstanceField
	arrayIndexes   map[*CSObj]*ArrayIndex
	csMethods      map[csMethodKey]*CSMethod
	csCallSites    map[csCallSiteKey]*CSCallSite

	// objs indexes context-sensitive objects by their dense id, backing the sparse points-to sets
	objs []*CSObj

	varList []*CSVar
}

// NewCSManager returns an empty manager
func NewCSManager() *CSManager {
	return &CSManager{
		csVars:         map[csVarKey]*CSVar{},
		csObjs:         map[csObjKey]*CSObj{},
		staticFields:   map[*ir.Field]*StaticField{},
		instanceFields: map[instanceFieldKey]*InstanceField{},
		arrayIndexes:   map[*CSObj]*ArrayIndex{},
		csMethods:      map[csMethodKey]*CSMethod{},
		csCallSites:    map[csCallSiteKey]*CSCallSite{},
	}
}

// NewPointsToSet returns an empty points-to set bound to this manager's object ids
func (m *CSManager) NewPointsToSet() *PointsToSet {
	return &PointsToSet{mgr: m}
}

// MakePointsToSet returns a points-to set holding the given objects
func (m *CSManager) MakePointsToSet(objs ...*CSObj) *PointsToSet {
	p := m.NewPointsToSet()
	for _, o := range objs {
		p.Add(o)
	}
	return p
}

// GetCSVar returns the canonical context-qualified variable
func (m *CSManager) GetCSVar(ctx *Context, v *ir.Var) *CSVar {
	k := csVarKey{ctx, v}
	if cv, ok := m.csVars[k]; ok {
		return cv
	}
	cv := &CSVar{Context: ctx, Var: v, pts: m.NewPointsToSet()}
	m.csVars[k] = cv
	m.varList = append(m.varList, cv)
	return cv
}

// GetCSObj returns the canonical context-qualified object
func (m *CSManager) GetCSObj(heapCtx *Context, obj *Obj) *CSObj {
	k := csObjKey{heapCtx, obj}
	if co, ok := m.csObjs[k]; ok {
		return co
	}
	co := &CSObj{Context: heapCtx, Obj: obj, id: len(m.objs)}
	m.csObjs[k] = co
	m.objs = append(m.objs, co)
	return co
}

// GetStaticField returns the canonical static field cell
func (m *CSManager) GetStaticField(f *ir.Field) *StaticField {
	if sf, ok := m.staticFields[f]; ok {
		return sf
	}
	sf := &StaticField{Field: f, pts: m.NewPointsToSet()}
	m.staticFields[f] = sf
	return sf
}

// GetInstanceField returns the canonical instance field cell of a base object
func (m *CSManager) GetInstanceField(base *CSObj, f *ir.Field) *InstanceField {
	k := instanceFieldKey{base, f}
	if fld, ok := m.instanceFields[k]; ok {
		return fld
	}
	fld := &InstanceField{Base: base, Field: f, pts: m.NewPointsToSet()}
	m.instanceFields[k] = fld
	return fld
}

// GetArrayIndex returns the canonical array cell of an array object. Array cells are
// index-insensitive: all indices of one abstract array alias.
func (m *CSManager) GetArrayIndex(array *CSObj) *ArrayIndex {
	if a, ok := m.arrayIndexes[array]; ok {
		return a
	}
	a := &ArrayIndex{Array: array, pts: m.NewPointsToSet()}
	m.arrayIndexes[array] = a
	return a
}

// GetCSMethod returns the canonical context-qualified method
func (m *CSManager) GetCSMethod(ctx *Context, method *ir.Method) *CSMethod {
	k := csMethodKey{ctx, method}
	if cm, ok := m.csMethods[k]; ok {
		return cm
	}
	cm := &CSMethod{Context: ctx, Method: method}
	m.csMethods[k] = cm
	return cm
}

// GetCSCallSite returns the canonical context-qualified call site
func (m *CSManager) GetCSCallSite(ctx *Context, site *ir.Invoke) *CSCallSite {
	k := csCallSiteKey{ctx, site}
	if cc, ok := m.csCallSites[k]; ok {
		return cc
	}
	cc := &CSCallSite{Context: ctx, Site: site}
	m.csCallSites[k] = cc
	return cc
}

// CSVars returns every context-qualified variable created so far, in creation order
func (m *CSManager) CSVars() []*CSVar { return m.varList }

// Objs returns every context-qualified object created so far, in id order
func (m *CSManager) Objs() []*CSObj { return m.objs }
