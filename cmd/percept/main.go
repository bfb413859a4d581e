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

// percept runs the whole-program analyses over a serialized IR program:
//
//	percept -config config.yaml program.yaml
//
// The pointer analysis always runs; the taint analysis runs when the configuration names a taint
// policy, and the interprocedural constant propagation runs when the configuration sets the
// "pta" option.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/percept-tools/percept/analysis/config"
	"github.com/percept-tools/percept/analysis/constprop"
	"github.com/percept-tools/percept/analysis/icfg"
	"github.com/percept-tools/percept/analysis/ir"
	"github.com/percept-tools/percept/analysis/pta"
	"github.com/percept-tools/percept/analysis/taint"
	"github.com/percept-tools/percept/internal/formatutil"
	"github.com/percept-tools/percept/internal/funcutil"
)

var (
	configPath = flag.String("config", "", "config file path")
	withStats  = flag.Bool("stats", false, "report pointer flow graph statistics")
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: percept [-config config.yaml] [-stats] program.yaml\n")
		os.Exit(2)
	}
	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", formatutil.Red("error:"), err)
		os.Exit(1)
	}
}

func run(programFile string) error {
	cfg := config.NewDefault()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return err
		}
	}
	logger := config.NewLogGroup(cfg)

	prog, err := ir.LoadProgramFile(programFile)
	if err != nil {
		return err
	}
	if prog.Main == nil {
		return fmt.Errorf("program has no entry method")
	}

	selector, err := pta.SelectorFor(cfg.Options.String("context"))
	if err != nil {
		return err
	}
	solver := pta.NewSolver(prog, logger, pta.NewAllocSiteModel(), selector)

	if path := cfg.TaintConfigPath(); path != "" {
		policy, err := taint.LoadPolicyFile(path, prog, logger)
		if err != nil {
			return err
		}
		taint.NewEngine(solver, policy, logger)
	}

	result := solver.Solve()
	printPointsTo(result)
	printCallGraph(result)
	printTaintFlows(result)

	if *withStats {
		stats := pta.ComputeStats(solver.FlowGraph())
		fmt.Printf("%s %d pointers, %d edges, %d components (max %d)\n",
			formatutil.Bold("flow graph:"), stats.Pointers, stats.Edges,
			stats.Components, stats.MaxComponent)
	}

	if cfg.Options.String("pta") != "" {
		g := icfg.Build(prog, result)
		icp := constprop.NewInterConstProp(result, g, logger)
		printConstants(icp.Solve(), g)
	}
	return nil
}

func printPointsTo(result *pta.Result) {
	fmt.Println(formatutil.Bold("points-to sets:"))
	byName := map[string][]*pta.Obj{}
	for _, v := range result.Vars() {
		byName[v.String()] = result.PointsToSet(v)
	}
	for _, name := range funcutil.SortedKeys(byName) {
		objs := funcutil.Map(byName[name], func(o *pta.Obj) string { return o.String() })
		fmt.Printf("  %s -> {%s}\n", name, strings.Join(objs, ", "))
	}
}

func printCallGraph(result *pta.Result) {
	cg := result.CallGraph()
	fmt.Printf("%s %d reachable methods\n", formatutil.Bold("call graph:"), len(cg.Reachable()))
	lines := funcutil.Map(cg.Edges(), func(e pta.CSEdge) string {
		return fmt.Sprintf("  [%s] %s -> %s", e.Kind, e.Site, e.Callee)
	})
	for _, l := range lines {
		fmt.Println(l)
	}
}

func printTaintFlows(result *pta.Result) {
	flows := taint.FlowsOf(result.GetResult(taint.ResultID))
	if flows == nil {
		return
	}
	fmt.Printf("%s %d flows\n", formatutil.Bold("taint:"), len(flows))
	for _, f := range flows {
		fmt.Printf("  %s\n", formatutil.Red(f.String()))
	}
}

func printConstants(facts *constprop.DataflowResult[constprop.Fact], g *icfg.Graph) {
	fmt.Println(formatutil.Bold("constants at exits:"))
	for _, n := range g.Nodes() {
		if _, ok := n.(*ir.Return); !ok {
			continue
		}
		byName := factByName(facts.OutFact(n))
		var parts []string
		for _, v := range funcutil.SortedKeys(byName) {
			parts = append(parts, fmt.Sprintf("%s=%s", v, byName[v]))
		}
		fmt.Printf("  %s: %s\n", n, strings.Join(parts, " "))
	}
}

func factByName(f constprop.Fact) map[string]constprop.Value {
	m := map[string]constprop.Value{}
	for v, val := range f {
		m[v.Name] = val
	}
	return m
}
