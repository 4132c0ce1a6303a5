package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/rdg-forge/engine/renderer/shader"
	"github.com/Carmen-Shannon/rdg-forge/gpu"
)

// RenderPass adds a RenderPassDescriptor (color attachments, optional depth-stencil), a
// per-flight RenderPipeline, and viewport/scissor-aware bind-all helpers to PipelinePass.
// Concrete passes embed RenderPass and implement Reflect
// and Execute; InitPipeline should be called from the concrete constructor once its reflection
// and shader paths are known.
type RenderPass struct {
	PipelinePass

	descriptor RenderPassDescriptorTemplate
	pipelines  [FrameFlightsCount]*gpu.RenderPipeline
}

// RenderPassDescriptorTemplate is the per-pass-instance state InitPipeline needs beyond
// what PassReflection already synthesizes (color targets, depth-stencil state): vertex buffer
// layouts and primitive/rasterizer state, which a shader's reflection cannot derive on its own.
type RenderPassDescriptorTemplate struct {
	VertexBuffers []gpu.VertexBufferLayout
	Primitive     gpu.PrimitiveState
	SampleCount   uint32
}

// NewRenderPass creates a RenderPass embedding the given PipelinePass.
func NewRenderPass(pp PipelinePass) RenderPass {
	return RenderPass{PipelinePass: pp}
}

// InitPipeline takes the VertexMain and FragmentMain shaders, builds the pipeline
// layout from their combined reflection, and creates one
// RenderPipeline per frame-flight slot using the color-target/depth-stencil state this
// pass's own PassReflection synthesizes. Named distinctly from Base.Init (which Reflect-
// initializes the pass's PassReflection) so a concrete pass embedding RenderPass still
// promotes Base.Init(Pass) *PassReflection unshadowed, satisfying pass.Initializer.
//
// Parameters:
//   - device: the GPU device to create pipeline layout/pipelines against
//   - vert, frag: the VertexMain/FragmentMain shaders, each loaded via shader.NewShader with
//     ShaderTypeVertex/ShaderTypeFragment (from one source path or from separate files)
//   - refl: this pass's own PassReflection (see PassReflection.ColorTargetStates/DepthStencilState)
//   - tmpl: vertex buffer layout and fixed-function rasterizer state
//
// Returns:
//   - error: a compatibility error if the two stages' reflections conflict
func (r *RenderPass) InitPipeline(device gpu.Device, vert, frag shader.Shader, refl *PassReflection, tmpl RenderPassDescriptorTemplate) error {
	vertRefl := ReflectionFromShader(vert)
	fragRefl := ReflectionFromShader(frag)
	combined, err := vertRefl.Merge(fragRefl)
	if err != nil {
		return fmt.Errorf("render pass %q: combine vertex/fragment reflection: %w", r.Identifier(), err)
	}
	if err := r.InitPipelineLayout(device, combined, r.Identifier()); err != nil {
		return err
	}

	r.descriptor = tmpl
	vertMod, err := CreateShaderModule(device, vert, gpu.ShaderStageVertex)
	if err != nil {
		return fmt.Errorf("render pass %q: vertex module: %w", r.Identifier(), err)
	}
	fragMod, err := CreateShaderModule(device, frag, gpu.ShaderStageFragment)
	if err != nil {
		return fmt.Errorf("render pass %q: fragment module: %w", r.Identifier(), err)
	}

	desc := gpu.RenderPipelineDescriptor{
		Label:         r.Identifier(),
		Layout:        r.PipelineLayout(),
		Vertex:        gpu.ShaderStageDescriptor{Module: vertMod, EntryPoint: vert.EntryPoint()},
		VertexBuffers: tmpl.VertexBuffers,
		Fragment:      &gpu.ShaderStageDescriptor{Module: fragMod, EntryPoint: frag.EntryPoint()},
		ColorTargets:  refl.ColorTargetStates(),
		DepthStencil:  refl.DepthStencilState(),
		Primitive:     tmpl.Primitive,
		SampleCount:   tmpl.SampleCount,
	}
	if desc.SampleCount == 0 {
		desc.SampleCount = 1
	}

	for i := 0; i < FrameFlightsCount; i++ {
		pl, err := device.CreateRenderPipeline(desc)
		if err != nil {
			return fmt.Errorf("render pass %q: create pipeline (flight %d): %w", r.Identifier(), i, err)
		}
		r.pipelines[i] = pl
	}
	return nil
}

// Pipeline returns the render pipeline for the given frame-flight slot.
func (r *RenderPass) Pipeline(flight int) *gpu.RenderPipeline { return r.pipelines[flight] }

// BeginPass begins the render pass against target's attachments, sets viewport/scissor to
// the target's extent, binds this pass's pipeline, and binds every set's current-flight bind
// group.
func (r *RenderPass) BeginPass(ctx *Context, desc gpu.RenderPassDescriptor, width, height uint32) (gpu.RenderPassEncoder, error) {
	enc := ctx.Encoder.BeginRenderPass(&desc)
	enc.SetPipeline(r.pipelines[ctx.FlightIndex])
	enc.SetViewport(0, 0, float32(width), float32(height), 0, 1)
	enc.SetScissorRect(0, 0, width, height)
	for _, set := range r.Sets() {
		bg, err := r.BindGroup(ctx.Device, ctx.FlightIndex, set)
		if err != nil {
			return nil, fmt.Errorf("render pass %q: begin pass: %w", r.Identifier(), err)
		}
		enc.SetBindGroup(set, bg)
	}
	return enc, nil
}
