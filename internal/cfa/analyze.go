package cfa

import (
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/codepathfinder/prreview/internal/budget"
	"github.com/codepathfinder/prreview/internal/cfa/cfg"
	"github.com/codepathfinder/prreview/internal/cfa/interproc"
	"github.com/codepathfinder/prreview/internal/cfa/mitigation"
	"github.com/codepathfinder/prreview/internal/cfa/parse"
	"github.com/codepathfinder/prreview/internal/cfa/pathcov"
	"github.com/codepathfinder/prreview/internal/model"
)

// SourceReader loads the contents of a changed file at its head revision.
// Deleted files are never passed in: the caller filters them out before
// calling Analyze.
type SourceReader func(path string) ([]byte, error)

// fileGraphs is the per-file output of pass one: every function's CFG plus
// enough of the parse to re-extract calls and imports during pass two.
type fileGraphs struct {
	path    string
	imports map[string]string
	parsed  *parse.ParsedFile
	graphs  []*cfg.Graph
}

// Analyze runs the CFA core (spec §4.4) over every changed Go file: CFG
// construction, mitigation detection, bounded inter-procedural extension,
// path coverage analysis, async refinement, and finding emission. It is
// two-pass: pass one builds every function's CFG so pass two's
// inter-procedural walker can resolve same-run callees by name regardless
// of which file defines them; pass two does the actual detection and
// emits findings. Budget gates which files pass two analyzes; pass one
// always builds every CFG since the lookup map must be complete for
// cross-file resolution to work at all.
func Analyze(files []model.ChangedFile, read SourceReader, registry *mitigation.Registry, b *budget.Budget, sinks map[string]SinkSpec) ([]model.Finding, error) {
	candidates := make([]model.ChangedFile, 0, len(files))
	for _, f := range files {
		if f.IsBinary || f.Status == model.FileDeleted || !strings.HasSuffix(f.Path, ".go") {
			continue
		}
		candidates = append(candidates, f)
	}

	// Pass one: CFG construction is independent per file (spec §5), so it
	// runs with bounded concurrency. Each worker owns its own parse/graph
	// state; results land in a pre-sized slot by index so no two workers
	// ever write the same memory, and byName is folded in sequentially
	// afterward under a single writer.
	slots := make([]*fileGraphs, len(candidates))
	var g errgroup.Group
	g.SetLimit(maxAnalyzeWorkers())
	for i, f := range candidates {
		i, f := i, f
		g.Go(func() error {
			source, err := read(f.Path)
			if err != nil {
				return nil // unreadable file: skip, do not fail the whole run
			}
			parsed, err := parse.ParseFile(f.Path, source)
			if err != nil {
				return nil // unparseable file: skip, do not fail the whole run
			}

			imports := parsed.ExtractImports()
			var graphs []*cfg.Graph
			for _, fn := range parsed.IterateFunctions() {
				gr := cfg.Build(f.Path, fn, source)
				gr.Imports = imports
				graphs = append(graphs, gr)
			}
			slots[i] = &fileGraphs{path: f.Path, imports: imports, parsed: parsed, graphs: graphs}
			return nil
		})
	}
	_ = g.Wait() // workers never return an error; skips are expressed as nil slots

	var units []fileGraphs
	byName := make(map[string]*cfg.Graph)
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		for _, gr := range slot.graphs {
			byName[gr.FunctionName] = gr
		}
		units = append(units, *slot)
	}
	defer func() {
		for _, u := range units {
			u.parsed.Close()
		}
	}()

	lookup := interproc.CFGLookup(func(name string) (*cfg.Graph, bool) {
		g, ok := byName[name]
		return g, ok
	})
	walker := interproc.NewWalker(lookup, registry, b.MaxCallDepth())

	var findings []model.Finding
	for _, u := range units {
		if !b.ShouldAnalyzeFile(u.path) {
			continue
		}
		b.RecordFile(len(strings.Split(string(u.parsed.Source), "\n")))

		for _, g := range u.graphs {
			fileFindings := analyzeFunction(g, u.imports, registry, walker, sinks)
			findings = append(findings, fileFindings...)
		}
	}

	return findings, nil
}

// maxAnalyzeWorkers bounds pass-one concurrency to the host's parallelism,
// so a large changeset can't spin up one goroutine per file.
func maxAnalyzeWorkers() int {
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}
	return 1
}

func analyzeFunction(g *cfg.Graph, imports map[string]string, registry *mitigation.Registry, walker *interproc.Walker, sinks map[string]SinkSpec) []model.Finding {
	calls := make([]mitigation.CallSite, 0, len(g.CallSites))
	for _, c := range g.CallSites {
		calls = append(calls, mitigation.CallSite{Function: c.Callee, Line: c.Line})
	}

	instances := mitigation.Detect(g, calls, registry, imports)
	instances = append(instances, mitigation.DetectTypeGuards(g)...)

	instancesByNode := make(map[string][]mitigation.Instance)
	for _, inst := range instances {
		if nodeID, ok := nodeForLine(g, inst.Line); ok {
			instancesByNode[nodeID] = append(instancesByNode[nodeID], inst)
		}
	}

	// Cross-file mitigation credit: walk every resolved call site and fold
	// discovered mitigations back into the calling node's instance set, so
	// path coverage sees them exactly like a local mitigation.
	conservative := false
	conservativeReason := ""
	for _, c := range g.CallSites {
		if !c.Resolved || c.Dynamic {
			continue
		}
		result := walker.Walk(c, g.FilePath, nil)
		if result.ConservativeFallback {
			conservative = true
			conservativeReason = "call_depth_limit_reached"
		} else if result.ConservativeAssumption && !conservative {
			conservative = true
			conservativeReason = "unresolved_cross_file_call"
		}
		nodeID, ok := nodeForLine(g, c.Line)
		if !ok {
			continue
		}
		for _, cf := range result.CrossFile {
			instancesByNode[nodeID] = append(instancesByNode[nodeID], cf.Instance)
		}
	}

	var findings []model.Finding
	for _, c := range g.CallSites {
		name := c.Callee
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
		sink, ok := sinks[name]
		if !ok {
			continue
		}
		sinkNodeID, ok := nodeForLine(g, c.Line)
		if !ok {
			continue
		}

		analysis := pathcov.Analyze(g, sinkNodeID, sink.VulnKind, instancesByNode, registry, pathcov.DefaultLimits())
		if g.IsAsync {
			analysis = RefineAsync(g, sinkNodeID, instancesByNode, registry, analysis)
		}
		if analysis != nil && conservative && analysis.Status == pathcov.StatusFull {
			analysis.Status = pathcov.StatusPartial
			analysis.Degraded = true
			if analysis.DegradedReason == "" {
				analysis.DegradedReason = conservativeReason
			}
		}

		vuln := Vulnerability{Kind: sink.VulnKind, SinkNodeID: sinkNodeID, SinkLine: c.Line, BaseSeverity: sink.BaseSeverity}
		if f, ok := EmitFinding(g, vuln, analysis, nil); ok {
			f.SourceAgent = "cfa"
			findings = append(findings, f)
		}
	}

	return findings
}

func nodeForLine(g *cfg.Graph, line int) (string, bool) {
	for id, n := range g.Nodes {
		if line >= n.Lines[0] && line <= n.Lines[1] {
			return id, true
		}
	}
	return "", false
}
