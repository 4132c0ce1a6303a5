package pass

import "github.com/Carmen-Shannon/rdg-forge/gpu"

// PassReflection holds the four name→ResourceInfo mappings a pass declares when init() calls
// reflect(): inputs (must be produced by an upstream pass), outputs (freshly allocated),
// input-outputs (read-modify-write of an upstream resource), and internals (freshly
// allocated, not exposed as an edge endpoint — scratch textures/buffers local to the pass).
type PassReflection struct {
	Inputs       map[string]*ResourceInfo
	Outputs      map[string]*ResourceInfo
	InputOutputs map[string]*ResourceInfo
	Internals    map[string]*ResourceInfo
}

// NewPassReflection creates an empty reflection ready for AddInput/AddOutput/etc.
func NewPassReflection() *PassReflection {
	return &PassReflection{
		Inputs:       make(map[string]*ResourceInfo),
		Outputs:      make(map[string]*ResourceInfo),
		InputOutputs: make(map[string]*ResourceInfo),
		Internals:    make(map[string]*ResourceInfo),
	}
}

// AddInput declares that this pass consumes a resource produced elsewhere in the graph; the
// graph wires r.Prev when add_edge connects the producing pass's output.
func (p *PassReflection) AddInput(name string, r *ResourceInfo) *PassReflection {
	p.Inputs[name] = r
	return p
}

// AddOutput declares a freshly devirtualized resource this pass produces.
func (p *PassReflection) AddOutput(name string, r *ResourceInfo) *PassReflection {
	p.Outputs[name] = r
	return p
}

// AddInputOutput declares a read-modify-write of an upstream resource; it is a build-time
// error for the graph to find no Prev wired for one of these (see rdg.Graph.Build).
func (p *PassReflection) AddInputOutput(name string, r *ResourceInfo) *PassReflection {
	p.InputOutputs[name] = r
	return p
}

// AddInternal declares a resource scratch-local to this pass: freshly devirtualized but never
// exposed as an edge endpoint.
func (p *PassReflection) AddInternal(name string, r *ResourceInfo) *PassReflection {
	p.Internals[name] = r
	return p
}

// GetResourceInfo looks up a named resource across all four maps, in input/output/
// input-output/internal order.
func (p *PassReflection) GetResourceInfo(name string) (*ResourceInfo, bool) {
	if r, ok := p.Inputs[name]; ok {
		return r, true
	}
	if r, ok := p.Outputs[name]; ok {
		return r, true
	}
	if r, ok := p.InputOutputs[name]; ok {
		return r, true
	}
	if r, ok := p.Internals[name]; ok {
		return r, true
	}
	return nil, false
}

// allTextures yields every texture ResourceInfo this reflection declares, across all four maps.
func (p *PassReflection) allTextures() []*ResourceInfo {
	var out []*ResourceInfo
	for _, m := range []map[string]*ResourceInfo{p.Inputs, p.Outputs, p.InputOutputs, p.Internals} {
		for _, r := range m {
			if r.Kind == KindTexture {
				out = append(out, r)
			}
		}
	}
	return out
}

// DepthStencilState synthesizes a gpu.DepthStencilState by scanning every declared texture
// for a DepthStencilAttachment consume entry. Returns nil if the pass declares none.
func (p *PassReflection) DepthStencilState() *gpu.DepthStencilState {
	for _, r := range p.allTextures() {
		for _, c := range r.Texture.Consume {
			if c.Kind != ConsumeDepthStencilAttachment {
				continue
			}
			return &gpu.DepthStencilState{
				Format:            r.Texture.Format,
				DepthWriteEnabled: c.DepthWriteEnabled,
				DepthCompare:      c.DepthCompare,
			}
		}
	}
	return nil
}

// ColorTargetStates synthesizes the ordered list of gpu.ColorTargetState by scanning every
// declared texture for ColorAttachment consume entries and sorting by their Location.
func (p *PassReflection) ColorTargetStates() []gpu.ColorTargetState {
	type located struct {
		location uint32
		state    gpu.ColorTargetState
	}
	var found []located
	for _, r := range p.allTextures() {
		for _, c := range r.Texture.Consume {
			if c.Kind != ConsumeColorAttachment {
				continue
			}
			found = append(found, located{location: c.Location, state: gpu.ColorTargetState{
				Format: r.Texture.Format, Blend: c.Blend, WriteMask: gpu.ColorWriteMaskAll,
			}})
		}
	}
	// Stable-sort by location: targets are usually declared in order, but a pass may declare
	// them out of order across multiple textures.
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j-1].location > found[j].location; j-- {
			found[j-1], found[j] = found[j], found[j-1]
		}
	}
	states := make([]gpu.ColorTargetState, len(found))
	for i, f := range found {
		states[i] = f.state
	}
	return states
}
