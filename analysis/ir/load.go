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
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// The yaml document structure of a serialized program. Fields not meaningful for a statement kind
// are left empty in the document and ignored by the loader.

type programDoc struct {
	Main    string     `yaml:"main"`
	Classes []classDoc `yaml:"classes"`
}

type classDoc struct {
	Name       string      `yaml:"name"`
	Extends    string      `yaml:"extends"`
	Implements []string    `yaml:"implements"`
	Interface  bool        `yaml:"interface"`
	Fields     []fieldDoc  `yaml:"fields"`
	Methods    []methodDoc `yaml:"methods"`
}

type fieldDoc struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Static bool   `yaml:"static"`
}

type methodDoc struct {
	Name     string            `yaml:"name"`
	Static   bool              `yaml:"static"`
	Abstract bool              `yaml:"abstract"`
	Returns  string            `yaml:"returns"`
	Params   []fieldDoc        `yaml:"params"`
	Locals   map[string]string `yaml:"locals"`
	Body     []stmtDoc         `yaml:"body"`
}

type stmtDoc struct {
	Op     string   `yaml:"op"`
	To     string   `yaml:"to"`
	From   string   `yaml:"from"`
	Type   string   `yaml:"type"`
	Value  int32    `yaml:"value"`
	Kind   string   `yaml:"kind"`
	Left   string   `yaml:"left"`
	Right  string   `yaml:"right"`
	Base   string   `yaml:"base"`
	Field  string   `yaml:"field"`
	Array  string   `yaml:"array"`
	Index  string   `yaml:"index"`
	Class  string   `yaml:"class"`
	Method string   `yaml:"method"`
	Args   []string `yaml:"args"`
	Var    string   `yaml:"var"`
	Cond   string   `yaml:"cond"`
	Target int      `yaml:"target"`
}

var binops = map[string]BinaryOp{
	"add": OpAdd, "sub": OpSub, "mul": OpMul, "div": OpDiv, "rem": OpRem,
	"and": OpAnd, "or": OpOr, "xor": OpXor, "shl": OpShl, "shr": OpShr, "ushr": OpUshr,
	"eq": OpEq, "ne": OpNe, "lt": OpLt, "le": OpLe, "gt": OpGt, "ge": OpGe,
}

var invokeKinds = map[string]InvokeKind{
	"static":    InvokeStatic,
	"virtual":   InvokeVirtual,
	"interface": InvokeInterface,
	"special":   InvokeSpecial,
	"dynamic":   InvokeDynamic,
}

// LoadProgramFile reads a yaml program document from a file
func LoadProgramFile(filename string) (*Program, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read program file: %w", err)
	}
	return LoadProgram(b)
}

// LoadProgram decodes a yaml program document into a Program
func LoadProgram(b []byte) (*Program, error) {
	var doc programDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("could not unmarshal program: %w", err)
	}
	pb := NewProgramBuilder()
	// declare every class and its members before loading bodies, so that field and method
	// references between classes resolve regardless of declaration order
	for _, cd := range doc.Classes {
		cb := pb.Class(cd.Name)
		if cd.Extends != "" {
			cb.Extends(cd.Extends)
		}
		if len(cd.Implements) > 0 {
			cb.Implements(cd.Implements...)
		}
		if cd.Interface {
			cb.Interface()
		}
		for _, fd := range cd.Fields {
			cb.Field(fd.Name, fd.Type, fd.Static)
		}
	}
	for _, cd := range doc.Classes {
		cb := pb.Class(cd.Name)
		for _, md := range cd.Methods {
			ret := md.Returns
			if ret == "" {
				ret = "void"
			}
			var params [][2]string
			for _, p := range md.Params {
				params = append(params, [2]string{p.Name, p.Type})
			}
			mb := cb.Method(md.Name, ret, params...)
			if md.Static {
				mb.Static()
			}
			if md.Abstract {
				mb.Abstract()
				continue
			}
			for name, tn := range md.Locals {
				mb.Local(name, tn)
			}
			for _, sd := range md.Body {
				if err := loadStmt(mb, sd); err != nil {
					return nil, fmt.Errorf("in %s.%s: %w", cd.Name, md.Name, err)
				}
			}
		}
	}
	if i := strings.LastIndex(doc.Main, "."); i > 0 {
		pb.SetMain(doc.Main[:i], doc.Main[i+1:])
	}
	return pb.Build()
}

func loadStmt(mb *MethodBuilder, sd stmtDoc) error {
	switch sd.Op {
	case "new":
		mb.New(sd.To, sd.Type)
	case "copy":
		mb.Copy(sd.To, sd.From)
	case "const":
		mb.Const(sd.To, sd.Value)
	case "binop":
		op, ok := binops[sd.Kind]
		if !ok {
			return fmt.Errorf("unknown binary operator %q", sd.Kind)
		}
		mb.Binop(sd.To, sd.Left, op, sd.Right)
	case "loadfield":
		mb.LoadField(sd.To, sd.Base, sd.Field)
	case "storefield":
		mb.StoreField(sd.Base, sd.Field, sd.From)
	case "loadstatic":
		mb.LoadStatic(sd.To, sd.Field)
	case "storestatic":
		mb.StoreStatic(sd.Field, sd.From)
	case "loadarray":
		mb.LoadArray(sd.To, sd.Array, sd.Index)
	case "storearray":
		mb.StoreArray(sd.Array, sd.Index, sd.From)
	case "invoke":
		kind, ok := invokeKinds[sd.Kind]
		if !ok {
			return fmt.Errorf("unknown invoke kind %q", sd.Kind)
		}
		mb.Invoke(sd.To, kind, sd.Base, sd.Class, sd.Method, sd.Args...)
	case "return":
		mb.Return(sd.Var)
	case "if":
		mb.If(sd.Cond, sd.Target)
	case "goto":
		mb.Goto(sd.Target)
	default:
		return fmt.Errorf("unknown statement op %q", sd.Op)
	}
	return nil
}
