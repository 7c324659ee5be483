package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftforge/frame/driver"
)

// recordingPass is a graph.Pass whose Execute appends its name to a
// shared slice, so tests can observe the order Execute actually ran
// passes in.
type recordingPass struct {
	name   string
	bind   BindPoint
	reads  []ResourceBinding
	writes []ResourceBinding
	order  *[]string
}

func (p *recordingPass) Name() string         { return p.name }
func (p *recordingPass) BindPoint() BindPoint { return p.bind }
func (p *recordingPass) Resources(usage Usage) []ResourceBinding {
	if usage == Read {
		return p.reads
	}
	return p.writes
}
func (p *recordingPass) Execute(cmd driver.CmdBuffer, frameIndex int) {
	*p.order = append(*p.order, p.name)
}

func newTestGraph() (*FrameGraph, *Registry) {
	reg := NewRegistry()
	alloc := NewAllocator(driver.Dim3D{Width: 1, Height: 1, Depth: 1})
	return NewFrameGraph(reg, alloc), reg
}

func TestAddPassRejectsUnknownResource(t *testing.T) {
	g, _ := newTestGraph()
	p := &recordingPass{name: "p", reads: []ResourceBinding{{Resource: 42, Usage: Read}}}
	err := g.AddPass(p)
	require.ErrorIs(t, err, ErrConfig)
}

func TestAddPassRejectsNilResource(t *testing.T) {
	g, _ := newTestGraph()
	p := &recordingPass{name: "p", reads: []ResourceBinding{{Resource: 0, Usage: Read}}}
	err := g.AddPass(p)
	require.ErrorIs(t, err, ErrConfig)
}

func TestAddPassRejectsDuplicateBinding(t *testing.T) {
	g, reg := newTestGraph()
	h := reg.Add(&BufferInstance{name: "b"})
	g.addEdge(h, Internal)
	p := &recordingPass{name: "p", reads: []ResourceBinding{
		{Resource: h, Usage: Read, SetIndex: 0, BindIndex: 0},
		{Resource: h, Usage: Read, SetIndex: 0, BindIndex: 0},
	}}
	err := g.AddPass(p)
	require.ErrorIs(t, err, ErrConfig)
}

func TestAddPassRejectsReadAndWriteSameResource(t *testing.T) {
	g, reg := newTestGraph()
	h := reg.Add(&BufferInstance{name: "b"})
	g.addEdge(h, Internal)
	p := &recordingPass{
		name:   "p",
		reads:  []ResourceBinding{{Resource: h, Usage: Read}},
		writes: []ResourceBinding{{Resource: h, Usage: Write}},
	}
	err := g.AddPass(p)
	require.ErrorIs(t, err, ErrConfig)
}

func TestCompileLinearChain(t *testing.T) {
	g, reg := newTestGraph()
	a := reg.Add(&BufferInstance{name: "a"})
	b := reg.Add(&BufferInstance{name: "b"})
	g.addEdge(a, Internal)
	g.addEdge(b, Internal)

	var order []string
	producer := &recordingPass{name: "producer", writes: []ResourceBinding{{Resource: a, Usage: Write}}, order: &order}
	middle := &recordingPass{name: "middle",
		reads:  []ResourceBinding{{Resource: a, Usage: Read}},
		writes: []ResourceBinding{{Resource: b, Usage: Write}},
		order:  &order,
	}
	consumer := &recordingPass{name: "consumer", reads: []ResourceBinding{{Resource: b, Usage: Read}}, order: &order}

	require.NoError(t, g.AddPass(consumer))
	require.NoError(t, g.AddPass(producer))
	require.NoError(t, g.AddPass(middle))

	require.NoError(t, g.Compile())
	sorted := g.Sorted()
	require.Len(t, sorted, 3)

	names := make([]string, len(sorted))
	passes := []Pass{consumer, producer, middle}
	for i, idx := range sorted {
		names[i] = passes[idx].Name()
	}
	require.Equal(t, []string{"producer", "middle", "consumer"}, names)
}

func TestCompileDetectsCycle(t *testing.T) {
	g, reg := newTestGraph()
	a := reg.Add(&BufferInstance{name: "a"})
	b := reg.Add(&BufferInstance{name: "b"})
	g.addEdge(a, Internal)
	g.addEdge(b, Internal)

	p1 := &recordingPass{name: "p1", reads: []ResourceBinding{{Resource: b, Usage: Read}}, writes: []ResourceBinding{{Resource: a, Usage: Write}}}
	p2 := &recordingPass{name: "p2", reads: []ResourceBinding{{Resource: a, Usage: Read}}, writes: []ResourceBinding{{Resource: b, Usage: Write}}}

	require.NoError(t, g.AddPass(p1))
	require.NoError(t, g.AddPass(p2))

	err := g.Compile()
	require.ErrorIs(t, err, ErrTopology)
}

func TestExecuteFailsBeforeCompile(t *testing.T) {
	g, _ := newTestGraph()
	cmd := &fakeCmdBuffer{}
	err := g.Execute(cmd, 0)
	require.ErrorIs(t, err, ErrConfig)
}

func TestExecuteRunsPassesInSortedOrderAndBracketsFrameBoundary(t *testing.T) {
	g, reg := newTestGraph()
	a := reg.Add(&BufferInstance{name: "a"})
	g.addEdge(a, Internal)

	var order []string
	producer := &recordingPass{name: "producer", writes: []ResourceBinding{{Resource: a, Usage: Write}}, order: &order}
	consumer := &recordingPass{name: "consumer", reads: []ResourceBinding{{Resource: a, Usage: Read}}, order: &order}

	require.NoError(t, g.AddPass(consumer))
	require.NoError(t, g.AddPass(producer))
	require.NoError(t, g.Compile())

	cmd := &fakeCmdBuffer{}
	require.NoError(t, g.Execute(cmd, 0))
	require.Equal(t, []string{"producer", "consumer"}, order)
	// Exactly |sorted_nodes| + 2 emissions: one frame-boundary barrier
	// before the first node, one emission per node (regardless of
	// whether it had a resource to synchronize), and one
	// frame-boundary barrier after the last node.
	require.Equal(t, len(g.Sorted())+2, g.sync.emits)
	require.Equal(t, 4, cmd.barrierCalls)
	require.Equal(t, 0, cmd.transitionCalls)
}

func TestExecuteEmitsExactlySortedNodesPlusTwoEvenWithResourcelessPass(t *testing.T) {
	g, _ := newTestGraph()
	var order []string
	p := &recordingPass{name: "no-resources", order: &order}
	require.NoError(t, g.AddPass(p))
	require.NoError(t, g.Compile())

	cmd := &fakeCmdBuffer{}
	require.NoError(t, g.Execute(cmd, 0))
	require.Equal(t, len(g.Sorted())+2, g.sync.emits)
	// Frame boundary before, an identity barrier for the resourceless
	// node, frame boundary after: three Barrier calls, no Transitions.
	require.Equal(t, 3, cmd.barrierCalls)
	require.Equal(t, 0, cmd.transitionCalls)
}

func TestErrorSentinelsAreDistinguishable(t *testing.T) {
	require.False(t, errors.Is(ErrConfig, ErrTopology))
	require.False(t, errors.Is(ErrAllocation, ErrDevice))
}
