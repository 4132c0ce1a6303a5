package rdg

import (
	"testing"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/pass"
	"github.com/Carmen-Shannon/rdg-forge/rdg/state"
)

// producerTestPass writes a color target other passes can sample from.
type producerTestPass struct {
	pass.Base
}

func newProducerTestPass() *producerTestPass {
	p := &producerTestPass{}
	p.Base = pass.NewBase("producer")
	return p
}

func (p *producerTestPass) Reflect() *pass.PassReflection {
	refl := pass.NewPassReflection()
	refl.AddOutput("color", pass.NewTextureResourceInfo(p.ID(), pass.NewTextureInfo("color",
		pass.WithAbsoluteSize(64, 64, 1),
		pass.WithFormat(gpu.FormatRGBA8Unorm),
		pass.ConsumeAsColorAttachment(0, nil),
	)))
	return refl
}

func (p *producerTestPass) Execute(ctx *pass.Context) error { return nil }

// consumerTestPass samples the producer's output as a fragment-shader texture binding,
// triggering a color-attachment → shader-read-only transition at build time.
type consumerTestPass struct {
	pass.Base
}

func newConsumerTestPass() *consumerTestPass {
	p := &consumerTestPass{}
	p.Base = pass.NewBase("consumer")
	return p
}

func (p *consumerTestPass) Reflect() *pass.PassReflection {
	refl := pass.NewPassReflection()
	refl.AddInput("color", pass.NewTextureResourceInfo(p.ID(), pass.NewTextureInfo("color",
		pass.ConsumeAsTextureBinding(state.SubresourceRange{MipBeg: 0, MipEnd: 1, LayerBeg: 0, LayerEnd: 1}),
	)))
	return refl
}

func (p *consumerTestPass) Execute(ctx *pass.Context) error { return nil }

func buildTestGraph(t *testing.T) (*Graph, *producerTestPass, *consumerTestPass) {
	t.Helper()
	g := New(gpu.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 1}, nil)
	producer := newProducerTestPass()
	consumer := newConsumerTestPass()
	if err := g.AddPass(producer); err != nil {
		t.Fatalf("add_pass producer: %v", err)
	}
	if err := g.AddPass(consumer); err != nil {
		t.Fatalf("add_pass consumer: %v", err)
	}
	if err := g.AddEdge("producer", "color", "consumer", "color"); err != nil {
		t.Fatalf("add_edge: %v", err)
	}
	return g, producer, consumer
}

func TestBuildFlattensProducerBeforeConsumer(t *testing.T) {
	g, _, _ := buildTestGraph(t)
	device := newMockDevice()
	if err := g.Build(device); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !g.Built() {
		t.Fatalf("graph should report built")
	}
	order := g.FlattenedOrder()
	if len(order) != 2 || order[0] != "producer" || order[1] != "consumer" {
		t.Fatalf("flattened order = %v, want [producer consumer]", order)
	}
}

func TestBuildSynthesizesConsumerBarrier(t *testing.T) {
	g, _, _ := buildTestGraph(t)
	if err := g.Build(newMockDevice()); err != nil {
		t.Fatalf("build: %v", err)
	}

	barriers := g.prePassBarriers["consumer"]
	if len(barriers) == 0 {
		t.Fatalf("expected at least one barrier bucket for consumer pass")
	}
	found := false
	for _, b := range barriers {
		for _, tb := range b.TextureBarriers {
			if tb.OldLayout == gpu.LayoutColorAttachmentOptimal && tb.NewLayout == gpu.LayoutShaderReadOnlyOptimal {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected a color-attachment -> shader-read-only transition, got %+v", barriers)
	}
}

func TestBuildRejectsCyclicGraph(t *testing.T) {
	g := New(gpu.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 1}, nil)
	producer := newProducerTestPass()
	consumer := newConsumerTestPass()
	_ = g.AddPass(producer)
	_ = g.AddPass(consumer)
	_ = g.AddEdge("producer", "color", "consumer", "color")

	// consumerTestPass has no output resource, so reuse its own input-output style edge by
	// wiring a second pass cycle through a fabricated self-edge is unnecessary here: a cycle
	// is instead produced directly against the adjacency maps to exercise flattenBFS's cyclic
	// detection path without needing a third pass type.
	g.successors["consumer"]["producer"] = struct{}{}
	g.predecessors["producer"]["consumer"] = struct{}{}

	err := g.Build(newMockDevice())
	if err == nil {
		t.Fatalf("expected cyclic graph to fail Build")
	}
	if g.Built() {
		t.Fatalf("cyclic graph must not report built")
	}
	if len(g.textures) != 0 {
		t.Fatalf("cyclic graph must not allocate any physical resources, got %d textures", len(g.textures))
	}
}

func TestExecuteRunsFlattenedOrderAndPersistsState(t *testing.T) {
	g, _, _ := buildTestGraph(t)
	device := newMockDevice()
	if err := g.Build(device); err != nil {
		t.Fatalf("build: %v", err)
	}

	enc := &mockEncoder{}
	ctx := &pass.Context{Device: device, Encoder: enc}
	if err := g.Execute(ctx); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if ctx.Resources == nil {
		t.Fatalf("execute should populate ctx.Resources")
	}

	// The first call folded endState back into gpuState, so the second call's entry-state
	// transition starts from that persisted state rather than from UNDEFINED.
	enc2 := &mockEncoder{}
	ctx2 := &pass.Context{Device: device, Encoder: enc2}
	if err := g.Execute(ctx2); err != nil {
		t.Fatalf("second execute: %v", err)
	}
	for _, b := range enc2.barriers {
		for _, tb := range b.TextureBarriers {
			if tb.OldLayout == gpu.LayoutUndefined {
				t.Fatalf("second frame's entry transition should start from the persisted end state, got %+v", tb)
			}
		}
	}
}
