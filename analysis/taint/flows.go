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

	"github.com/percept-tools/percept/analysis/ir"
)

// A Flow is one detected taint flow: a taint object created at Source reached argument Index of
// a call to a sink at Sink.
type Flow struct {
	Source *ir.Invoke
	Sink   *ir.Invoke
	Index  int
}

func (f Flow) String() string {
	return fmt.Sprintf("TaintFlow{%s -> %s/%d}", f.Source, f.Sink, f.Index)
}

// less orders flows by source, then sink, then argument index
func (f Flow) less(o Flow) bool {
	if a, b := f.Source.String(), o.Source.String(); a != b {
		return a < b
	}
	if a, b := f.Sink.String(), o.Sink.String(); a != b {
		return a < b
	}
	return f.Index < o.Index
}

// FlowsOf extracts the taint flows stored in a pointer analysis result store value. It returns
// nil when no taint analysis ran.
func FlowsOf(stored any) []Flow {
	flows, _ := stored.([]Flow)
	return flows
}
