package graph

import (
	"log"

	"github.com/driftforge/frame/driver"
)

// frameGraphEdge tracks every node that produces (writes) or consumes
// (reads) a given resource Handle, and the CreationType the resource
// was added with.
type frameGraphEdge struct {
	handle    Handle
	creation  CreationType
	producers []int
	consumers []int
}

// frameGraphNode is one compiled Pass: its resource bindings, split
// by usage, as returned by Pass.Resources at AddPass time.
type frameGraphNode struct {
	pass   Pass
	reads  []ResourceBinding
	writes []ResourceBinding
}

// FrameGraph is the declarative per-frame DAG of passes and resources
// described by spec components B–G: resources and passes are
// declared with AddImage/AddBuffer/AddExternal/AddPass, Compile
// topologically sorts the declared passes exactly once, and Execute
// runs every sorted pass once per frame, synchronizing each node's
// resources immediately before it runs.
//
// A FrameGraph is built once, compiled once, and then Executed every
// frame; it is not safe for concurrent use, matching the single
// render-thread model the rest of the package assumes.
type FrameGraph struct {
	reg   *Registry
	alloc *Allocator
	sync  *syncManager

	nodes []*frameGraphNode
	edges map[Handle]*frameGraphEdge

	sorted   []int
	compiled bool

	// Verbose, when true, logs each pass's name as it executes —
	// the debug-label mechanism supplemented from the original
	// engine's per-pass labeling. Neither the driver façade's
	// CmdBuffer nor the wgpu binding expose a GPU-side debug-marker
	// command, so labeling is realized as process-level logging
	// instead of an in-stream marker; see DESIGN.md.
	Verbose bool
}

// NewFrameGraph returns an empty FrameGraph backed by reg and alloc.
func NewFrameGraph(reg *Registry, alloc *Allocator) *FrameGraph {
	return &FrameGraph{
		reg:   reg,
		alloc: alloc,
		sync:  newSyncManager(),
		edges: make(map[Handle]*frameGraphEdge),
	}
}

func (g *FrameGraph) addEdge(h Handle, creation CreationType) {
	if _, ok := g.edges[h]; ok {
		return
	}
	g.edges[h] = &frameGraphEdge{handle: h, creation: creation}
}

// AddImage allocates t via the FrameGraph's Allocator, registers the
// resulting instance, and declares it as a graph resource.
func (g *FrameGraph) AddImage(t *ImageTemplate, creation CreationType) (Handle, error) {
	inst, err := g.alloc.CreateImage(t)
	if err != nil {
		return 0, err
	}
	h := g.reg.Add(inst)
	g.addEdge(h, creation)
	return h, nil
}

// AddImageArray allocates count images from t via the FrameGraph's
// Allocator, registers the resulting ImageArrayInstance as a single
// graph resource, and returns the one Handle that identifies the
// whole array. A pass binding this Handle is synchronized as one node
// input: the Synchronization Manager's visitor recurses into every
// contained image and emits one transition per element (§8 Scenario
// 5).
func (g *FrameGraph) AddImageArray(t *ImageTemplate, count int, creation CreationType) (Handle, error) {
	inst, err := g.alloc.CreateImageArray(t, count)
	if err != nil {
		return 0, err
	}
	h := g.reg.Add(inst)
	g.addEdge(h, creation)
	return h, nil
}

// AddBuffer allocates t via the FrameGraph's Allocator, registers the
// resulting instance, and declares it as a graph resource.
func (g *FrameGraph) AddBuffer(t *BufferTemplate, creation CreationType) (Handle, error) {
	inst, err := g.alloc.CreateBuffer(t)
	if err != nil {
		return 0, err
	}
	h := g.reg.Add(inst)
	g.addEdge(h, creation)
	return h, nil
}

// AddSampler allocates t via the FrameGraph's Allocator and registers
// the resulting instance. Samplers do not participate in
// synchronization, so they are not added as graph edges.
func (g *FrameGraph) AddSampler(t *SamplerTemplate) (Handle, error) {
	inst, err := g.alloc.CreateSampler(t)
	if err != nil {
		return 0, err
	}
	return g.reg.Add(inst), nil
}

// AddExternal registers an already-live instance owned by another
// subsystem (typically a swapchain image) and declares it as an
// External graph resource.
func (g *FrameGraph) AddExternal(inst ResourceInstance) Handle {
	h := g.reg.Add(inst)
	g.addEdge(h, External)
	return h
}

// AddPass declares p as a node of the graph. It validates p's
// bindings eagerly: every bound resource must already have been added
// to the graph, no (SetIndex, BindIndex) pair may repeat within p's
// reads or within p's writes, and no resource Handle may appear in
// both p's reads and p's writes (the read+write-on-one-binding rule
// always resolves to write, so declaring both is rejected rather than
// silently resolved).
func (g *FrameGraph) AddPass(p Pass) error {
	reads := p.Resources(Read)
	writes := p.Resources(Write)

	if err := validateBindings(p.Name(), "read", reads); err != nil {
		return err
	}
	if err := validateBindings(p.Name(), "write", writes); err != nil {
		return err
	}

	writeSet := make(map[Handle]bool, len(writes))
	for _, b := range writes {
		writeSet[b.Resource] = true
	}
	for _, b := range reads {
		if writeSet[b.Resource] {
			return configErrf("pass %q: resource %d is both read and written", p.Name(), b.Resource)
		}
	}

	for _, b := range append(append([]ResourceBinding{}, reads...), writes...) {
		if _, ok := g.edges[b.Resource]; !ok {
			return configErrf("pass %q: resource %d was never added to the graph", p.Name(), b.Resource)
		}
	}

	idx := len(g.nodes)
	g.nodes = append(g.nodes, &frameGraphNode{pass: p, reads: reads, writes: writes})
	for _, b := range reads {
		e := g.edges[b.Resource]
		e.consumers = append(e.consumers, idx)
	}
	for _, b := range writes {
		e := g.edges[b.Resource]
		e.producers = append(e.producers, idx)
	}
	g.compiled = false
	return nil
}

func validateBindings(passName, kind string, bindings []ResourceBinding) error {
	seen := make(map[[2]int]bool)
	for _, b := range bindings {
		if b.Resource == 0 {
			return configErrf("pass %q: nil resource in %s bindings", passName, kind)
		}
		if b.Attachment {
			continue
		}
		key := [2]int{b.SetIndex, b.BindIndex}
		if seen[key] {
			return configErrf("pass %q: duplicate %s binding at set %d, index %d", passName, kind, b.SetIndex, b.BindIndex)
		}
		seen[key] = true
	}
	return nil
}

// Compile topologically sorts the declared passes with Kahn's
// algorithm, breaking ties in declaration order (nodes are enqueued
// as their in-degree reaches zero, and the ready queue is consumed
// FIFO), and returns ErrTopology if any node's in-degree never
// reaches zero (a cycle).
//
// In-degree is computed once per distinct resource a node reads that
// has at least one producing node elsewhere in the graph — not once
// per (producer, consumer) pair. Successor propagation, conversely,
// walks per producing node and per edge it writes. For the normal
// case exercised by every pass in this repository — at most one
// writer per resource — these two counting rules agree; a
// hypothetical resource written by more than one pass would see its
// consumers' in-degrees decremented more times than counted, which is
// a known, documented limitation rather than a general algorithm (see
// DESIGN.md).
func (g *FrameGraph) Compile() error {
	n := len(g.nodes)
	indegree := make([]int, n)
	for i, node := range g.nodes {
		seen := make(map[Handle]bool)
		for _, b := range node.reads {
			if seen[b.Resource] {
				continue
			}
			seen[b.Resource] = true
			if len(g.edges[b.Resource].producers) > 0 {
				indegree[i]++
			}
		}
	}

	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	sorted := make([]int, 0, n)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		sorted = append(sorted, cur)
		for _, b := range g.nodes[cur].writes {
			for _, consumer := range g.edges[b.Resource].consumers {
				indegree[consumer]--
				if indegree[consumer] == 0 {
					queue = append(queue, consumer)
				}
			}
		}
	}

	if len(sorted) != n {
		return topologyErrf("cycle detected among %d passes", n-len(sorted))
	}
	g.sorted = sorted
	g.compiled = true
	return nil
}

// Execute runs every compiled pass once, in topological order,
// synchronizing each pass's resource bindings immediately before it
// records its commands. frameIndex selects which in-flight frame's
// Providers and mapped buffers the passes should use.
func (g *FrameGraph) Execute(cmd driver.CmdBuffer, frameIndex int) error {
	if !g.compiled {
		return configErrf("Execute called before a successful Compile")
	}
	g.alloc.Flush(cmd)
	g.sync.frameBoundary(cmd)
	for _, idx := range g.sorted {
		node := g.nodes[idx]
		g.sync.emit(cmd, g.reg, node)
		if g.Verbose {
			log.Printf("graph: executing pass %q", node.pass.Name())
		}
		node.pass.Execute(cmd, frameIndex)
	}
	g.sync.frameBoundary(cmd)
	return nil
}

// Sorted returns the node indices in the order Compile scheduled
// them, for diagnostics and tests. It returns nil if Compile has not
// succeeded.
func (g *FrameGraph) Sorted() []int {
	if !g.compiled {
		return nil
	}
	return g.sorted
}
