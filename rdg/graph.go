package rdg

import (
	"fmt"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/pass"
	"github.com/Carmen-Shannon/rdg-forge/rdg/uid"
	"github.com/charmbracelet/log"
)

// node is one registered pass plus the adjacency bookkeeping the graph needs around it.
type node struct {
	p          pass.Initializer
	reflection *pass.PassReflection
}

// Graph is the DAG of passes: a map of pass-id to Pass, the flattened pass order once Build
// runs, devirtualized physical resources, per-pass pre-computed barrier lists, DAG adjacency,
// and one marked output used for presentation.
type Graph struct {
	logger *log.Logger

	standardSize gpu.Extent3D

	order     []string // insertion order, for deterministic iteration of an otherwise unordered map
	nodes     map[string]*node
	successors map[string]map[string]struct{}
	predecessors map[string]map[string]struct{}
	edges     []Edge

	// validationErrors accumulates edges rejected at AddEdge time — the offending edge is
	// ignored, construction continues, and ValidationErrors returns every error collected.
	validationErrors []error

	flattened []string

	textures map[resourceKey]*TextureResource
	buffers  map[resourceKey]*BufferResource
	// textureOrder/bufferOrder record devirtualization ids in the order they were minted, so barrier
	// synthesis iterates resources deterministically.
	textureOrder []resourceKey
	bufferOrder  []resourceKey

	prePassBarriers map[string][]gpu.BarrierDescriptor

	outputPass, outputResource string

	built bool
}

// New creates an empty Graph. standardSize is the graph's default resolution (the
// "standard_size", default 1280x720x1) that pass.WithRelativeSize multiplies against.
func New(standardSize gpu.Extent3D, logger *log.Logger) *Graph {
	if logger == nil {
		logger = log.Default()
	}
	if standardSize == (gpu.Extent3D{}) {
		standardSize = gpu.Extent3D{Width: 1280, Height: 720, DepthOrArrayLayers: 1}
	}
	return &Graph{
		logger:          logger,
		standardSize:    standardSize,
		nodes:           make(map[string]*node),
		successors:      make(map[string]map[string]struct{}),
		predecessors:    make(map[string]map[string]struct{}),
		textures:        make(map[resourceKey]*TextureResource),
		buffers:         make(map[resourceKey]*BufferResource),
		prePassBarriers: make(map[string][]gpu.BarrierDescriptor),
	}
}

// AddPass registers a pass by pointer (it must outlive the graph) and adds a node to the
// DAG. Init is called exactly once, populating the pass's PassReflection and salting every
// resource id it declares with a hash of the pass's identifier.
func (g *Graph) AddPass(p pass.Initializer) error {
	id := p.Identifier()
	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("rdg: pass %q already registered", id)
	}
	refl := p.Init(p)
	g.nodes[id] = &node{p: p, reflection: refl}
	g.order = append(g.order, id)
	g.successors[id] = make(map[string]struct{})
	g.predecessors[id] = make(map[string]struct{})
	return nil
}

// AddEdge connects srcPass's named output (or input-output) resource to dstPass's named
// input (or input-output) resource, recording the edge in the DAG adjacency and the edge
// list (for editor visualization), and wiring dst's ResourceInfo.Prev to src's so
// devirtualization shares one physical resource along the edge.
//
// An edge naming an unregistered pass or an unknown resource name is a validation error: it
// is logged and the edge is ignored, but AddEdge still returns the error so
// callers that want to fail fast can do so. Build() does not check these errors; they are
// returned by ValidationErrors().
func (g *Graph) AddEdge(srcPass, srcResource, dstPass, dstResource string) error {
	src, ok := g.nodes[srcPass]
	if !ok {
		return g.validationError("rdg: add_edge: unknown source pass %q", srcPass)
	}
	dst, ok := g.nodes[dstPass]
	if !ok {
		return g.validationError("rdg: add_edge: unknown destination pass %q", dstPass)
	}

	srcInfo, ok := producerResource(src.reflection, srcResource)
	if !ok {
		return g.validationError("rdg: add_edge: pass %q has no output/input-output resource %q", srcPass, srcResource)
	}
	dstInfo, ok := consumerResource(dst.reflection, dstResource)
	if !ok {
		return g.validationError("rdg: add_edge: pass %q has no input/input-output resource %q", dstPass, dstResource)
	}

	dstInfo.Prev = srcInfo
	g.successors[srcPass][dstPass] = struct{}{}
	g.predecessors[dstPass][srcPass] = struct{}{}
	g.edges = append(g.edges, Edge{SrcPass: srcPass, SrcResource: srcResource, DstPass: dstPass, DstResource: dstResource})
	return nil
}

func (g *Graph) validationError(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	g.validationErrors = append(g.validationErrors, err)
	g.logger.Error(err.Error())
	return err
}

// ValidationErrors returns every validation error AddEdge has accumulated so far.
func (g *Graph) ValidationErrors() []error { return g.validationErrors }

// producerResource looks up name among a reflection's outputs then input-outputs — the two
// maps that may serve as an edge's source side.
func producerResource(refl *pass.PassReflection, name string) (*pass.ResourceInfo, bool) {
	if r, ok := refl.Outputs[name]; ok {
		return r, true
	}
	if r, ok := refl.InputOutputs[name]; ok {
		return r, true
	}
	return nil, false
}

// consumerResource looks up name among a reflection's inputs then input-outputs — the two
// maps that may serve as an edge's destination side.
func consumerResource(refl *pass.PassReflection, name string) (*pass.ResourceInfo, bool) {
	if r, ok := refl.Inputs[name]; ok {
		return r, true
	}
	if r, ok := refl.InputOutputs[name]; ok {
		return r, true
	}
	return nil, false
}

// MarkOutput records the graph's single externally-presented output: the tuple is recorded
// and a COLOR_ATTACHMENT usage bit is OR-masked into the resource's descriptor so a
// downstream presenter can blit it. Must be called before Build.
func (g *Graph) MarkOutput(passIdentifier, resourceName string) error {
	n, ok := g.nodes[passIdentifier]
	if !ok {
		return g.validationError("rdg: mark_output: unknown pass %q", passIdentifier)
	}
	info, ok := n.reflection.GetResourceInfo(resourceName)
	if !ok || info.Kind != pass.KindTexture {
		return g.validationError("rdg: mark_output: pass %q has no texture resource %q", passIdentifier, resourceName)
	}
	info.Texture.Usage |= gpu.TextureUsageRenderAttachment
	g.outputPass, g.outputResource = passIdentifier, resourceName
	return nil
}

// Output returns the graph's marked output texture, once Build has devirtualized it.
func (g *Graph) Output() (*TextureResource, bool) {
	if g.outputPass == "" {
		return nil, false
	}
	n, ok := g.nodes[g.outputPass]
	if !ok {
		return nil, false
	}
	info, ok := n.reflection.GetResourceInfo(g.outputResource)
	if !ok {
		return nil, false
	}
	tex, ok := g.textures[info.DevirtualizeID]
	return tex, ok
}

// Texture implements pass.ResourceResolver, resolving a devirtualization id to the physical
// texture Build allocated (or pinned) for it.
func (g *Graph) Texture(id uid.UID) (*gpu.Texture, bool) {
	res, ok := g.textures[id]
	if !ok {
		return nil, false
	}
	return res.Handle, true
}

// Buffer implements pass.ResourceResolver, resolving a devirtualization id to the physical
// buffer Build allocated (or pinned) for it.
func (g *Graph) Buffer(id uid.UID) (*gpu.Buffer, bool) {
	res, ok := g.buffers[id]
	if !ok {
		return nil, false
	}
	return res.Handle, true
}

// FlattenedOrder returns the topological pass order Build computed, in producer-before-
// consumer order.
func (g *Graph) FlattenedOrder() []string { return g.flattened }

// Edges returns every edge AddEdge has successfully wired, for editor visualization.
func (g *Graph) Edges() []Edge { return g.edges }
