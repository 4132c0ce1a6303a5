package pass

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
)

// setState tracks one descriptor set's layout and its per-flight bind-group contents. Bind
// groups are immutable once created (matching the underlying GPU abstraction), so
// UpdateBinding patches an entries map and marks the flight's group dirty; BindGroup lazily
// rebuilds it on next access.
type setState struct {
	layout  *gpu.BindGroupLayout
	entries [FrameFlightsCount]map[uint32]gpu.BindGroupEntry
	group   [FrameFlightsCount]*gpu.BindGroup
	dirty   [FrameFlightsCount]bool
}

// PipelinePass adds combined-shader-reflection-derived bind-group layouts, a pipeline
// layout, and FrameFlightsCount bind-groups per set to the base Pass.
type PipelinePass struct {
	Base

	reflection     *ShaderReflection
	sets           map[uint32]*setState
	pipelineLayout *gpu.PipelineLayout
}

// NewPipelinePass creates a PipelinePass embedding the given Base.
func NewPipelinePass(base Base) PipelinePass {
	return PipelinePass{Base: base, sets: make(map[uint32]*setState)}
}

// InitPipelineLayout builds per-set bind-group layouts and the overall pipeline layout from
// the combined shader reflection of every stage this pass uses. Call once, after combining
// each stage's ShaderReflection via ShaderReflection.Merge.
func (p *PipelinePass) InitPipelineLayout(device gpu.Device, reflection *ShaderReflection, label string) error {
	p.reflection = reflection

	bySet := make(map[uint32][]BindingEntry)
	bindingsBySet := make(map[uint32][]uint32)
	for sb, e := range reflection.Bindings {
		bySet[sb.Set] = append(bySet[sb.Set], e)
		bindingsBySet[sb.Set] = append(bindingsBySet[sb.Set], sb.Binding)
	}

	var setIdxs []uint32
	for set := range bySet {
		setIdxs = append(setIdxs, set)
	}
	sort.Slice(setIdxs, func(i, j int) bool { return setIdxs[i] < setIdxs[j] })

	layouts := make([]*gpu.BindGroupLayout, 0, len(setIdxs))
	for _, set := range setIdxs {
		bindings := bindingsBySet[set]
		sort.Slice(bindings, func(i, j int) bool { return bindings[i] < bindings[j] })

		entries := make([]gpu.BindGroupLayoutEntry, len(bindings))
		for i, binding := range bindings {
			e := reflection.Bindings[SetBinding{Set: set, Binding: binding}]
			entries[i] = gpu.BindGroupLayoutEntry{
				Binding: binding, Visibility: e.Visibility, Type: e.Type,
				NotReadable: e.NotReadable, NotWritable: e.NotWritable, MinBindingSize: e.MinBindingSize,
			}
		}

		layout, err := device.CreateBindGroupLayout(gpu.BindGroupLayoutDescriptor{
			Label: fmt.Sprintf("%s::set%d", label, set), Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("pass %q: create bind group layout for set %d: %w", p.Identifier(), set, err)
		}
		layouts = append(layouts, layout)
		p.sets[set] = &setState{layout: layout}
		for i := range p.sets[set].entries {
			p.sets[set].entries[i] = make(map[uint32]gpu.BindGroupEntry)
		}
	}

	pl, err := device.CreatePipelineLayout(gpu.PipelineLayoutDescriptor{
		Label: label, BindGroupLayouts: layouts, PushConstantRanges: reflection.PushConstants,
	})
	if err != nil {
		return fmt.Errorf("pass %q: create pipeline layout: %w", p.Identifier(), err)
	}
	p.pipelineLayout = pl
	return nil
}

// PipelineLayout returns the pipeline layout built by InitPipelineLayout.
func (p *PipelinePass) PipelineLayout() *gpu.PipelineLayout { return p.pipelineLayout }

// UpdateBinding patches exactly one entry of the current flight's bind-group for the named
// binding. A name absent from the combined reflection is a resource-miss: logged and skipped
// by the caller, not treated as fatal here — UpdateBinding reports it via the bool return so
// callers can decide.
func (p *PipelinePass) UpdateBinding(flight int, name string, entry gpu.BindGroupEntry) bool {
	nb, ok := p.reflection.Names[name]
	if !ok {
		return false
	}
	set, ok := p.sets[nb.Set]
	if !ok {
		return false
	}
	entry.Binding = nb.Binding
	set.entries[flight][nb.Binding] = entry
	set.dirty[flight] = true
	return true
}

// UpdateBindingScene wires the conventional scene-wide bindings (camera, geometry,
// positions, materials, lights, textures, …) this pass's reflection names, pulling each from
// scene.SceneBinding. Names the scene does not recognize are silently skipped — not every
// pass uses every conventional binding.
func (p *PipelinePass) UpdateBindingScene(flight int, scene SceneProvider) {
	if p.reflection == nil {
		return
	}
	for name := range p.reflection.Names {
		sb, ok := scene.SceneBinding(name)
		if !ok {
			continue
		}
		entry := gpu.BindGroupEntry{}
		switch {
		case sb.Buffer != nil:
			entry.Buffer = sb.Buffer
		case sb.TextureView != nil:
			entry.TextureView = sb.TextureView
		case sb.Sampler != nil:
			entry.Sampler = sb.Sampler
		default:
			continue
		}
		p.UpdateBinding(flight, name, entry)
	}
}

// BindGroup returns the current flight's bind-group for the given set, rebuilding it first
// if UpdateBinding has marked it dirty since the last call.
func (p *PipelinePass) BindGroup(device gpu.Device, flight int, set uint32) (*gpu.BindGroup, error) {
	st, ok := p.sets[set]
	if !ok {
		return nil, fmt.Errorf("pass %q: no bind group layout for set %d", p.Identifier(), set)
	}
	if st.group[flight] != nil && !st.dirty[flight] {
		return st.group[flight], nil
	}

	entries := make([]gpu.BindGroupEntry, 0, len(st.entries[flight]))
	for _, e := range st.entries[flight] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })

	bg, err := device.CreateBindGroup(gpu.BindGroupDescriptor{
		Label: fmt.Sprintf("%s::set%d::flight%d", p.Identifier(), set, flight), Layout: st.layout, Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("pass %q: create bind group for set %d: %w", p.Identifier(), set, err)
	}
	st.group[flight] = bg
	st.dirty[flight] = false
	return bg, nil
}

// Sets returns the sorted list of descriptor-set indices this pass's pipeline layout covers,
// for BindAll-style helpers in RenderPass/ComputePass.
func (p *PipelinePass) Sets() []uint32 {
	out := make([]uint32, 0, len(p.sets))
	for set := range p.sets {
		out = append(out, set)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
