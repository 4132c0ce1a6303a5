package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/rdg-forge/engine/renderer/shader"
	"github.com/Carmen-Shannon/rdg-forge/gpu"
)

// GeometryPass is the graph's forward-shading pass: it declares a color and depth-stencil
// output, binds the scene's conventional camera/light bindings for the current flight, and
// draws every instance the SceneProvider reports. Grounded on the teacher's forward-pass
// shader pair (wgpu_renderer_backend.go's per-material draw loop) generalized from a
// Renderer-owned command encoder to the RDG's own per-pass encoder and barrier set.
type GeometryPass struct {
	RenderPass

	colorName string
	depthName string
	width     uint32
	height    uint32
}

// NewGeometryPass creates a GeometryPass targeting the named color and depth-stencil
// resources. Wire colorName/depthName as this pass's outputs via Graph.AddEdge (or leave
// depthName empty to skip the depth attachment).
func NewGeometryPass(colorName, depthName string) *GeometryPass {
	p := &GeometryPass{colorName: colorName, depthName: depthName}
	p.RenderPass = NewRenderPass(NewPipelinePass(NewBase("geometry")))
	return p
}

// Reflect declares the color output every geometry pass produces, plus a depth-stencil
// output when depthName is set.
func (p *GeometryPass) Reflect() *PassReflection {
	refl := NewPassReflection()
	refl.AddOutput(p.colorName, NewTextureResourceInfo(p.ID(), NewTextureInfo(p.colorName,
		WithRelativeSize(1, 1, 1),
		WithFormat(gpu.FormatRGBA8UnormSrgb),
		ConsumeAsColorAttachment(0, nil),
	)))
	if p.depthName != "" {
		refl.AddOutput(p.depthName, NewTextureResourceInfo(p.ID(), NewTextureInfo(p.depthName,
			WithRelativeSize(1, 1, 1),
			WithFormat(gpu.FormatDepth32Float),
			ConsumeAsDepthStencilAttachment(true, gpu.CompareFunctionLess),
		)))
	}
	return refl
}

// InitGeometryPipeline loads the given vertex/fragment shader pair and builds this pass's
// per-flight render pipelines, targeting its own reflection's color/depth-stencil state. Call
// once, after Build has resolved this pass's resource sizes.
func (p *GeometryPass) InitGeometryPipeline(device gpu.Device, vertPath, fragPath string, vertexBuffers []gpu.VertexBufferLayout) error {
	vert := shader.NewShader("geometry_vert", shader.ShaderTypeVertex, vertPath)
	frag := shader.NewShader("geometry_frag", shader.ShaderTypeFragment, fragPath)
	tmpl := RenderPassDescriptorTemplate{
		VertexBuffers: vertexBuffers,
		Primitive:     gpu.PrimitiveState{Topology: gpu.PrimitiveTopologyTriangleList, CullMode: gpu.CullModeBack, FrontFace: gpu.FrontFaceCCW},
		SampleCount:   1,
	}
	return p.InitPipeline(device, vert, frag, p.Reflection(), tmpl)
}

// Execute binds the scene's conventional camera/light buffers for the current flight, begins
// the render pass against the devirtualized color/depth targets, and hands the bound encoder
// to ctx.Scene.Draw so the SceneProvider records its draws under this pass's own
// RDG-synthesized barriers.
func (p *GeometryPass) Execute(ctx *Context) error {
	p.UpdateBindingScene(ctx.FlightIndex, ctx.Scene)

	colorInfo, ok := p.Reflection().GetResourceInfo(p.colorName)
	if !ok {
		return fmt.Errorf("geometry pass: reflection has no %q resource", p.colorName)
	}
	colorTex, ok := ctx.Resources.Texture(colorInfo.DevirtualizeID)
	if !ok {
		return fmt.Errorf("geometry pass: color target not devirtualized")
	}
	colorView, err := ctx.Device.CreateTextureView(colorTex, gpu.TextureViewDescriptor{
		Format: colorTex.Desc.Format, Aspect: gpu.AspectColor, MipLevelCount: 1, ArrayLayerCount: 1,
	})
	if err != nil {
		return fmt.Errorf("geometry pass: create color view: %w", err)
	}

	desc := gpu.RenderPassDescriptor{
		Label: p.Identifier(),
		ColorAttachments: []gpu.RenderPassColorAttachment{{
			View: colorView, LoadOp: gpu.LoadOpClear, StoreOp: gpu.StoreOpStore,
		}},
	}

	if p.depthName != "" {
		depthInfo, ok := p.Reflection().GetResourceInfo(p.depthName)
		if !ok {
			return fmt.Errorf("geometry pass: reflection has no %q resource", p.depthName)
		}
		depthTex, ok := ctx.Resources.Texture(depthInfo.DevirtualizeID)
		if !ok {
			return fmt.Errorf("geometry pass: depth target not devirtualized")
		}
		depthView, err := ctx.Device.CreateTextureView(depthTex, gpu.TextureViewDescriptor{
			Format: depthTex.Desc.Format, Aspect: gpu.AspectDepth, MipLevelCount: 1, ArrayLayerCount: 1,
		})
		if err != nil {
			return fmt.Errorf("geometry pass: create depth view: %w", err)
		}
		desc.DepthStencilAttachment = &gpu.RenderPassDepthStencilAttachment{
			View: depthView, DepthLoadOp: gpu.LoadOpClear, DepthStoreOp: gpu.StoreOpStore, DepthClearValue: 1,
		}
	}

	enc, err := p.BeginPass(ctx, desc, p.width, p.height)
	if err != nil {
		return err
	}
	ctx.Scene.Draw(enc)
	enc.End()
	return nil
}

// SetExtent records the pixel dimensions BeginPass should use for the viewport/scissor this
// frame. The frame driver calls this once per frame before Graph.Execute, mirroring
// BlitPass.SetTarget.
func (p *GeometryPass) SetExtent(width, height uint32) { p.width, p.height = width, height }

var _ Pass = (*GeometryPass)(nil)
