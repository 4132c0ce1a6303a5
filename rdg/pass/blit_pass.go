package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/rdg-forge/engine/renderer/shader"
	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/state"
)

// BlitPass is the graph's terminal pass: it samples a devirtualized texture (normally the
// graph's MarkOutput target) and draws a full-screen triangle into a presentation target the
// graph itself never devirtualizes — the swapchain image, acquired per-frame outside the RDG
// resource system. Grounded on many_cubes.go's single-material full-screen draw wiring,
// generalized from a per-object indexed draw to a fixed single-triangle blit with no vertex
// buffers at all (the vertex shader derives its positions from the builtin vertex index).
type BlitPass struct {
	PipelinePass

	sourceName string
	sampler    *gpu.Sampler
	pipelines  [FrameFlightsCount]*gpu.RenderPipeline

	target       *gpu.TextureView
	targetWidth  uint32
	targetHeight uint32
}

// NewBlitPass creates a BlitPass. Wire its "source" input via Graph.AddEdge before Build.
func NewBlitPass() *BlitPass {
	p := &BlitPass{sourceName: "source"}
	p.PipelinePass = NewPipelinePass(NewBase("blit"))
	return p
}

// Reflect declares the single texture-binding input this pass blits from.
func (p *BlitPass) Reflect() *PassReflection {
	refl := NewPassReflection()
	refl.AddInput(p.sourceName, NewTextureResourceInfo(p.ID(), NewTextureInfo(p.sourceName,
		ConsumeAsTextureBinding(state.SubresourceRange{MipBeg: 0, MipEnd: 1, LayerBeg: 0, LayerEnd: 1}),
	)))
	return refl
}

// InitPipeline loads the blit shaders, builds the pipeline layout and a pipeline per
// frame-flight targeting swapchainFormat, and creates the sampler every flight's bind group
// reuses. Unlike RenderPass.InitPipeline, the color target comes from swapchainFormat rather
// than from this pass's own reflection: the presentation target is never a declared resource,
// so PassReflection.ColorTargetStates would find nothing to synthesize from. Named distinctly
// from Base.Init so BlitPass still promotes Base.Init(Pass) *PassReflection unshadowed,
// satisfying pass.Initializer.
func (p *BlitPass) InitPipeline(device gpu.Device, swapchainFormat gpu.TextureFormat) error {
	vert := shader.NewShader("blit_vert", shader.ShaderTypeVertex, "assets/shaders/blit-vert.wgsl")
	frag := shader.NewShader("blit_frag", shader.ShaderTypeFragment, "assets/shaders/blit-frag.wgsl")

	vertRefl := ReflectionFromShader(vert)
	fragRefl := ReflectionFromShader(frag)
	combined, err := vertRefl.Merge(fragRefl)
	if err != nil {
		return fmt.Errorf("blit pass: combine vertex/fragment reflection: %w", err)
	}
	if err := p.InitPipelineLayout(device, combined, p.Identifier()); err != nil {
		return err
	}

	sampler, err := device.CreateSampler(gpu.SamplerDescriptor{
		AddressModeU: gpu.AddressModeClampToEdge,
		AddressModeV: gpu.AddressModeClampToEdge,
		AddressModeW: gpu.AddressModeClampToEdge,
		MagFilter:    gpu.FilterModeLinear,
		MinFilter:    gpu.FilterModeLinear,
		MipmapFilter: gpu.FilterModeNearest,
		LodMaxClamp:  1,
	})
	if err != nil {
		return fmt.Errorf("blit pass: create sampler: %w", err)
	}
	p.sampler = sampler

	vertMod, err := CreateShaderModule(device, vert, gpu.ShaderStageVertex)
	if err != nil {
		return fmt.Errorf("blit pass: vertex module: %w", err)
	}
	fragMod, err := CreateShaderModule(device, frag, gpu.ShaderStageFragment)
	if err != nil {
		return fmt.Errorf("blit pass: fragment module: %w", err)
	}

	desc := gpu.RenderPipelineDescriptor{
		Label:        p.Identifier(),
		Layout:       p.PipelineLayout(),
		Vertex:       gpu.ShaderStageDescriptor{Module: vertMod, EntryPoint: vert.EntryPoint()},
		Fragment:     &gpu.ShaderStageDescriptor{Module: fragMod, EntryPoint: frag.EntryPoint()},
		ColorTargets: []gpu.ColorTargetState{{Format: swapchainFormat, WriteMask: gpu.ColorWriteMaskAll}},
		Primitive:    gpu.PrimitiveState{Topology: gpu.PrimitiveTopologyTriangleList, CullMode: gpu.CullModeNone, FrontFace: gpu.FrontFaceCCW},
		SampleCount:  1,
	}
	for i := 0; i < FrameFlightsCount; i++ {
		pl, err := device.CreateRenderPipeline(desc)
		if err != nil {
			return fmt.Errorf("blit pass: create pipeline (flight %d): %w", i, err)
		}
		p.pipelines[i] = pl
	}
	return nil
}

// SetTarget records the presentation view this pass should blit into this frame, along with
// its pixel dimensions for viewport/scissor setup. The frame driver calls this once per frame
// after acquiring the swapchain image and before Graph.Execute.
func (p *BlitPass) SetTarget(view *gpu.TextureView, width, height uint32) {
	p.target, p.targetWidth, p.targetHeight = view, width, height
}

// Execute binds the devirtualized source texture and the fixed sampler, then draws the
// full-screen triangle into the target set by SetTarget.
func (p *BlitPass) Execute(ctx *Context) error {
	if p.target == nil {
		return fmt.Errorf("blit pass: no presentation target set, call SetTarget before Execute")
	}

	info, ok := p.Reflection().GetResourceInfo(p.sourceName)
	if !ok {
		return fmt.Errorf("blit pass: reflection has no %q resource", p.sourceName)
	}
	tex, ok := ctx.Resources.Texture(info.DevirtualizeID)
	if !ok {
		return fmt.Errorf("blit pass: source resource not devirtualized")
	}
	view, err := ctx.Device.CreateTextureView(tex, gpu.TextureViewDescriptor{
		Format: tex.Desc.Format, Aspect: gpu.AspectColor,
		MipLevelCount: 1, ArrayLayerCount: 1,
	})
	if err != nil {
		return fmt.Errorf("blit pass: create source view: %w", err)
	}

	p.UpdateBinding(ctx.FlightIndex, "blitSampler", gpu.BindGroupEntry{Sampler: p.sampler})
	p.UpdateBinding(ctx.FlightIndex, "blitSource", gpu.BindGroupEntry{TextureView: view})

	enc := ctx.Encoder.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label: p.Identifier(),
		ColorAttachments: []gpu.RenderPassColorAttachment{{
			View: p.target, LoadOp: gpu.LoadOpClear, StoreOp: gpu.StoreOpStore,
		}},
	})
	enc.SetPipeline(p.pipelines[ctx.FlightIndex])
	enc.SetViewport(0, 0, float32(p.targetWidth), float32(p.targetHeight), 0, 1)
	enc.SetScissorRect(0, 0, p.targetWidth, p.targetHeight)
	for _, set := range p.Sets() {
		bg, err := p.BindGroup(ctx.Device, ctx.FlightIndex, set)
		if err != nil {
			return fmt.Errorf("blit pass: bind group for set %d: %w", set, err)
		}
		enc.SetBindGroup(set, bg)
	}
	enc.Draw(3, 1, 0, 0)
	enc.End()
	return nil
}
