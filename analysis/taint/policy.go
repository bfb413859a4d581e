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

package taint

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/percept-tools/percept/analysis/config"
	"github.com/percept-tools/percept/analysis/ir"
)

// Transfer endpoint encodings. Non-negative values are argument positions.
const (
	// Base designates the receiver variable of the call
	Base = -1

	// Result designates the left-hand side of the call
	Result = -2
)

// A Source marks a method whose result becomes a fresh taint object of the given type
type Source struct {
	Method *ir.Method
	Type   *ir.Type
}

// A Sink marks an argument position of a method where taint objects are observed
type Sink struct {
	Method *ir.Method
	Index  int
}

// A Transfer routes taint across a call, from one endpoint to another. Endpoints are Base,
// Result or an argument position.
type Transfer struct {
	Method *ir.Method
	From   int
	To     int
}

// A Policy is the resolved taint configuration: the finite source, sink and transfer sets,
// indexed by callee method.
type Policy struct {
	sources   map[*ir.Method][]Source
	sinks     map[*ir.Method][]Sink
	transfers map[*ir.Method][]Transfer
}

// SourcesOf returns the source rules applicable to a callee
func (p *Policy) SourcesOf(m *ir.Method) []Source { return p.sources[m] }

// SinksOf returns the sink rules applicable to a callee
func (p *Policy) SinksOf(m *ir.Method) []Sink { return p.sinks[m] }

// TransfersOf returns the transfer rules applicable to a callee
func (p *Policy) TransfersOf(m *ir.Method) []Transfer { return p.transfers[m] }

// The yaml document structure of a taint policy
type policyDoc struct {
	Sources []struct {
		Method string `yaml:"method"`
		Type   string `yaml:"type"`
	} `yaml:"sources"`
	Sinks []struct {
		Method string `yaml:"method"`
		Index  int    `yaml:"index"`
	} `yaml:"sinks"`
	Transfers []struct {
		Method string `yaml:"method"`
		From   string `yaml:"from"`
		To     string `yaml:"to"`
	} `yaml:"transfers"`
}

// LoadPolicyFile reads a taint policy from a yaml file and resolves it against the program.
// Entries naming unknown methods or types are logged and skipped; the analysis proceeds with the
// rest of the policy.
func LoadPolicyFile(filename string, prog *ir.Program, logger *config.LogGroup) (*Policy, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read taint config: %w", err)
	}
	return LoadPolicy(b, prog, logger)
}

// LoadPolicy resolves a yaml taint policy document against the program
func LoadPolicy(b []byte, prog *ir.Program, logger *config.LogGroup) (*Policy, error) {
	var doc policyDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("could not unmarshal taint config: %w", err)
	}
	p := &Policy{
		sources:   map[*ir.Method][]Source{},
		sinks:     map[*ir.Method][]Sink{},
		transfers: map[*ir.Method][]Transfer{},
	}
	for _, s := range doc.Sources {
		m := resolveMethod(prog, s.Method)
		if m == nil {
			logger.Warnf("taint config: unknown source method %q, skipped", s.Method)
			continue
		}
		t := prog.Type(s.Type)
		if t == nil {
			logger.Warnf("taint config: unknown type %q in source %q, skipped", s.Type, s.Method)
			continue
		}
		p.sources[m] = append(p.sources[m], Source{Method: m, Type: t})
	}
	for _, s := range doc.Sinks {
		m := resolveMethod(prog, s.Method)
		if m == nil {
			logger.Warnf("taint config: unknown sink method %q, skipped", s.Method)
			continue
		}
		p.sinks[m] = append(p.sinks[m], Sink{Method: m, Index: s.Index})
	}
	for _, t := range doc.Transfers {
		m := resolveMethod(prog, t.Method)
		if m == nil {
			logger.Warnf("taint config: unknown transfer method %q, skipped", t.Method)
			continue
		}
		from, err := parseEndpoint(t.From)
		if err != nil {
			logger.Warnf("taint config: transfer on %q: %v, skipped", t.Method, err)
			continue
		}
		to, err := parseEndpoint(t.To)
		if err != nil {
			logger.Warnf("taint config: transfer on %q: %v, skipped", t.Method, err)
			continue
		}
		p.transfers[m] = append(p.transfers[m], Transfer{Method: m, From: from, To: to})
	}
	return p, nil
}

// resolveMethod resolves "Class.subsig(...)" to a declared method, or nil
func resolveMethod(prog *ir.Program, name string) *ir.Method {
	paren := strings.Index(name, "(")
	if paren < 0 {
		return nil
	}
	dot := strings.LastIndex(name[:paren], ".")
	if dot < 0 {
		return nil
	}
	cls := prog.Class(name[:dot])
	if cls == nil {
		return nil
	}
	return cls.DeclaredMethod(name[dot+1:])
}

// parseEndpoint parses a transfer endpoint: "base", "result" or an argument position
func parseEndpoint(s string) (int, error) {
	switch s {
	case "base":
		return Base, nil
	case "result":
		return Result, nil
	default:
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("bad transfer endpoint %q", s)
		}
		return n, nil
	}
}
