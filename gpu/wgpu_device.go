package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuDevice implements Device on top of github.com/cogentcore/webgpu/wgpu. WebGPU performs
// automatic resource-usage tracking and inserts its own synchronization under the hood, so
// PipelineBarrier on this backend is a documented no-op: the RDG graph still computes every
// barrier (exercising rdg/state in full), but nothing is submitted to the driver. A
// Vulkan-class backend implementing the same Device interface would translate
// BarrierDescriptor directly into vkCmdPipelineBarrier2.
type wgpuDevice struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

// NewWGPUDevice wraps an already-created wgpu device/queue pair as a gpu.Device.
func NewWGPUDevice(device *wgpu.Device, queue *wgpu.Queue) Device {
	return &wgpuDevice{device: device, queue: queue}
}

func (d *wgpuDevice) CreateBuffer(desc BufferDescriptor) (*Buffer, error) {
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: toWGPUBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create buffer %q: %w", desc.Label, err)
	}
	return &Buffer{Desc: desc, backing: buf}, nil
}

func (d *wgpuDevice) CreateTexture(desc TextureDescriptor) (*Texture, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     toWGPUTextureUsage(desc.Usage),
		Dimension: toWGPUDimension(desc.Dimension),
		Size: wgpu.Extent3D{
			Width:              desc.Size.Width,
			Height:             desc.Size.Height,
			DepthOrArrayLayers: desc.Size.DepthOrArrayLayers,
		},
		Format:        toWGPUFormat(desc.Format),
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   desc.SampleCount,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %q: %w", desc.Label, err)
	}
	return &Texture{Desc: desc, backing: tex}, nil
}

func (d *wgpuDevice) CreateTextureView(tex *Texture, desc TextureViewDescriptor) (*TextureView, error) {
	wt, ok := tex.backing.(*wgpu.Texture)
	if !ok {
		return nil, fmt.Errorf("gpu: texture %q has no wgpu backing", tex.Desc.Label)
	}
	view, err := wt.CreateView(&wgpu.TextureViewDescriptor{
		Format:          toWGPUFormat(desc.Format),
		BaseMipLevel:    desc.BaseMipLevel,
		MipLevelCount:   desc.MipLevelCount,
		BaseArrayLayer:  desc.BaseArrayLayer,
		ArrayLayerCount: desc.ArrayLayerCount,
		Aspect:          toWGPUAspect(desc.Aspect),
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture view: %w", err)
	}
	return &TextureView{Desc: desc, backing: view}, nil
}

func (d *wgpuDevice) CreateSampler(desc SamplerDescriptor) (*Sampler, error) {
	samp, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  toWGPUAddressMode(desc.AddressModeU),
		AddressModeV:  toWGPUAddressMode(desc.AddressModeV),
		AddressModeW:  toWGPUAddressMode(desc.AddressModeW),
		MagFilter:     toWGPUFilterMode(desc.MagFilter),
		MinFilter:     toWGPUFilterMode(desc.MinFilter),
		MipmapFilter:  toWGPUMipmapFilterMode(desc.MipmapFilter),
		LodMinClamp:   desc.LodMinClamp,
		LodMaxClamp:   desc.LodMaxClamp,
		MaxAnisotropy: desc.MaxAnisotropy,
		Compare:       toWGPUCompareFunction(desc.Compare),
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create sampler: %w", err)
	}
	return &Sampler{Desc: desc, backing: samp}, nil
}

func (d *wgpuDevice) CreateShaderModule(mod *ShaderModule, code string) error {
	m, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: mod.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: code,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create shader module %q: %w", mod.Label, err)
	}
	mod.backing = m
	return nil
}

func (d *wgpuDevice) CreateBindGroupLayout(desc BindGroupLayoutDescriptor) (*BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entries[i] = toWGPUBindGroupLayoutEntry(e)
	}
	layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create bind group layout %q: %w", desc.Label, err)
	}
	return &BindGroupLayout{backing: layout}, nil
}

func (d *wgpuDevice) CreateBindGroup(desc BindGroupDescriptor) (*BindGroup, error) {
	layout, ok := desc.Layout.backing.(*wgpu.BindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("gpu: bind group %q has no layout backing", desc.Label)
	}
	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		if e.Buffer != nil {
			if buf, ok := e.Buffer.backing.(*wgpu.Buffer); ok {
				entry.Buffer = buf
				entry.Offset = e.Offset
				if e.Size != 0 {
					entry.Size = e.Size
				} else {
					entry.Size = wgpu.WholeSize
				}
			}
		}
		if e.TextureView != nil {
			if tv, ok := e.TextureView.backing.(*wgpu.TextureView); ok {
				entry.TextureView = tv
			}
		}
		if e.Sampler != nil {
			if s, ok := e.Sampler.backing.(*wgpu.Sampler); ok {
				entry.Sampler = s
			}
		}
		entries[i] = entry
	}
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create bind group %q: %w", desc.Label, err)
	}
	return &BindGroup{backing: bg}, nil
}

func (d *wgpuDevice) CreatePipelineLayout(desc PipelineLayoutDescriptor) (*PipelineLayout, error) {
	layouts := make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		if l == nil {
			continue
		}
		if wl, ok := l.backing.(*wgpu.BindGroupLayout); ok {
			layouts[i] = wl
		}
	}
	pl, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create pipeline layout %q: %w", desc.Label, err)
	}
	return &PipelineLayout{backing: pl}, nil
}

func (d *wgpuDevice) CreateRenderPipeline(desc RenderPipelineDescriptor) (*RenderPipeline, error) {
	layout, _ := desc.Layout.backing.(*wgpu.PipelineLayout)
	vs, ok := desc.Vertex.Module.backing.(*wgpu.ShaderModule)
	if !ok {
		return nil, fmt.Errorf("gpu: render pipeline %q vertex shader not created", desc.Label)
	}

	buffers := make([]wgpu.VertexBufferLayout, len(desc.VertexBuffers))
	for i, b := range desc.VertexBuffers {
		attrs := make([]wgpu.VertexAttribute, len(b.Attributes))
		for j, a := range b.Attributes {
			attrs[j] = wgpu.VertexAttribute{
				Format:         toWGPUVertexFormat(a.Format),
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			}
		}
		buffers[i] = wgpu.VertexBufferLayout{ArrayStride: b.ArrayStride, Attributes: attrs}
	}

	rpDesc := &wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: desc.Vertex.EntryPoint,
			Buffers:    buffers,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  toWGPUTopology(desc.Primitive.Topology),
			FrontFace: toWGPUFrontFace(desc.Primitive.FrontFace),
			CullMode:  toWGPUCullMode(desc.Primitive.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: coalesceSampleCount(desc.SampleCount),
			Mask:  0xFFFFFFFF,
		},
	}

	if desc.Fragment != nil {
		fs, ok := desc.Fragment.Module.backing.(*wgpu.ShaderModule)
		if !ok {
			return nil, fmt.Errorf("gpu: render pipeline %q fragment shader not created", desc.Label)
		}
		targets := make([]wgpu.ColorTargetState, len(desc.ColorTargets))
		for i, t := range desc.ColorTargets {
			cts := wgpu.ColorTargetState{Format: toWGPUFormat(t.Format), WriteMask: toWGPUColorWriteMask(t.WriteMask)}
			if t.Blend != nil {
				cts.Blend = &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: toWGPUBlendFactor(t.Blend.Color.SrcFactor),
						DstFactor: toWGPUBlendFactor(t.Blend.Color.DstFactor),
						Operation: toWGPUBlendOperation(t.Blend.Color.Operation),
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: toWGPUBlendFactor(t.Blend.Alpha.SrcFactor),
						DstFactor: toWGPUBlendFactor(t.Blend.Alpha.DstFactor),
						Operation: toWGPUBlendOperation(t.Blend.Alpha.Operation),
					},
				}
			}
			targets[i] = cts
		}
		rpDesc.Fragment = &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets:    targets,
		}
	}

	if desc.DepthStencil != nil {
		rpDesc.DepthStencil = &wgpu.DepthStencilState{
			Format:            toWGPUFormat(desc.DepthStencil.Format),
			DepthWriteEnabled: desc.DepthStencil.DepthWriteEnabled,
			DepthCompare:      toWGPUCompareFunction(desc.DepthStencil.DepthCompare),
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	rp, err := d.device.CreateRenderPipeline(rpDesc)
	if err != nil {
		return nil, fmt.Errorf("gpu: create render pipeline %q: %w", desc.Label, err)
	}
	return &RenderPipeline{backing: rp}, nil
}

func (d *wgpuDevice) CreateComputePipeline(desc ComputePipelineDescriptor) (*ComputePipeline, error) {
	layout, _ := desc.Layout.backing.(*wgpu.PipelineLayout)
	mod, ok := desc.Module.backing.(*wgpu.ShaderModule)
	if !ok {
		return nil, fmt.Errorf("gpu: compute pipeline %q shader not created", desc.Label)
	}
	cp, err := d.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     mod,
			EntryPoint: desc.Entry,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create compute pipeline %q: %w", desc.Label, err)
	}
	return &ComputePipeline{backing: cp}, nil
}

func (d *wgpuDevice) CreateCommandEncoder(label string) (CommandEncoder, error) {
	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	return &wgpuCommandEncoder{encoder: enc}, nil
}

func (d *wgpuDevice) Queue() Queue {
	return &wgpuQueue{queue: d.queue}
}

func (d *wgpuDevice) WaitIdle() error {
	d.device.Poll(true, nil)
	return nil
}

type wgpuQueue struct{ queue *wgpu.Queue }

func (q *wgpuQueue) Submit(cb CommandBuffer) {
	if wcb, ok := cb.backing.(*wgpu.CommandBuffer); ok {
		q.queue.Submit(wcb)
	}
}

func (q *wgpuQueue) WriteBuffer(buf *Buffer, offset uint64, data []byte) {
	if wb, ok := buf.backing.(*wgpu.Buffer); ok {
		q.queue.WriteBuffer(wb, offset, data)
	}
}

func (q *wgpuQueue) WriteTexture(tex *Texture, data []byte, bytesPerRow, rowsPerImage uint32, extent Extent3D) {
	wt, ok := tex.backing.(*wgpu.Texture)
	if !ok {
		return
	}
	q.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: wt, MipLevel: 0, Origin: wgpu.Origin3D{}, Aspect: wgpu.TextureAspectAll},
		data,
		&wgpu.TextureDataLayout{Offset: 0, BytesPerRow: bytesPerRow, RowsPerImage: rowsPerImage},
		&wgpu.Extent3D{Width: extent.Width, Height: extent.Height, DepthOrArrayLayers: extent.DepthOrArrayLayers},
	)
}

type wgpuCommandEncoder struct {
	encoder *wgpu.CommandEncoder
}

func (e *wgpuCommandEncoder) BeginRenderPass(desc *RenderPassDescriptor) RenderPassEncoder {
	colors := make([]wgpu.RenderPassColorAttachment, len(desc.ColorAttachments))
	for i, c := range desc.ColorAttachments {
		view, _ := c.View.backing.(*wgpu.TextureView)
		colors[i] = wgpu.RenderPassColorAttachment{
			View:    view,
			LoadOp:  toWGPULoadOp(c.LoadOp),
			StoreOp: toWGPUStoreOp(c.StoreOp),
			ClearValue: wgpu.Color{R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: c.ClearColor[3]},
		}
	}
	rp := &wgpu.RenderPassDescriptor{Label: desc.Label, ColorAttachments: colors}
	if desc.DepthStencilAttachment != nil {
		view, _ := desc.DepthStencilAttachment.View.backing.(*wgpu.TextureView)
		rp.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            view,
			DepthLoadOp:     toWGPULoadOp(desc.DepthStencilAttachment.DepthLoadOp),
			DepthStoreOp:    toWGPUStoreOp(desc.DepthStencilAttachment.DepthStoreOp),
			DepthClearValue: desc.DepthStencilAttachment.DepthClearValue,
		}
	}
	pass := e.encoder.BeginRenderPass(rp)
	return &wgpuRenderPassEncoder{pass: pass}
}

func (e *wgpuCommandEncoder) BeginComputePass(label string) ComputePassEncoder {
	pass := e.encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: label})
	return &wgpuComputePassEncoder{pass: pass}
}

// PipelineBarrier is a documented no-op on the WebGPU backend — see wgpuDevice's doc comment.
func (e *wgpuCommandEncoder) PipelineBarrier(b BarrierDescriptor) {}

func (e *wgpuCommandEncoder) PushDebugGroup(label string, color [3]float32) {
	e.encoder.PushDebugGroup(label)
}

func (e *wgpuCommandEncoder) PopDebugGroup() {
	e.encoder.PopDebugGroup()
}

func (e *wgpuCommandEncoder) Finish() CommandBuffer {
	cb, err := e.encoder.Finish(nil)
	if err != nil {
		return CommandBuffer{}
	}
	return CommandBuffer{backing: cb}
}

type wgpuRenderPassEncoder struct{ pass *wgpu.RenderPassEncoder }

func (p *wgpuRenderPassEncoder) SetPipeline(pl *RenderPipeline) {
	if rp, ok := pl.backing.(*wgpu.RenderPipeline); ok {
		p.pass.SetPipeline(rp)
	}
}

func (p *wgpuRenderPassEncoder) SetBindGroup(index uint32, bg *BindGroup) {
	if wb, ok := bg.backing.(*wgpu.BindGroup); ok {
		p.pass.SetBindGroup(index, wb, nil)
	}
}

func (p *wgpuRenderPassEncoder) SetVertexBuffer(slot uint32, buf *Buffer, offset uint64) {
	if wb, ok := buf.backing.(*wgpu.Buffer); ok {
		p.pass.SetVertexBuffer(slot, wb, offset, wgpu.WholeSize)
	}
}

func (p *wgpuRenderPassEncoder) SetIndexBuffer(buf *Buffer, format IndexFormat, offset uint64) {
	if wb, ok := buf.backing.(*wgpu.Buffer); ok {
		p.pass.SetIndexBuffer(wb, toWGPUIndexFormat(format), offset, wgpu.WholeSize)
	}
}

func (p *wgpuRenderPassEncoder) SetViewport(x, y, w, h, minDepth, maxDepth float32) {
	p.pass.SetViewport(x, y, w, h, minDepth, maxDepth)
}

func (p *wgpuRenderPassEncoder) SetScissorRect(x, y, w, h uint32) {
	p.pass.SetScissorRect(x, y, w, h)
}

func (p *wgpuRenderPassEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *wgpuRenderPassEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *wgpuRenderPassEncoder) DrawIndirect(buf *Buffer, offset uint64) {
	if wb, ok := buf.backing.(*wgpu.Buffer); ok {
		p.pass.DrawIndirect(wb, offset)
	}
}

func (p *wgpuRenderPassEncoder) End() {
	p.pass.End()
}

type wgpuComputePassEncoder struct{ pass *wgpu.ComputePassEncoder }

func (p *wgpuComputePassEncoder) SetPipeline(pl *ComputePipeline) {
	if cp, ok := pl.backing.(*wgpu.ComputePipeline); ok {
		p.pass.SetPipeline(cp)
	}
}

func (p *wgpuComputePassEncoder) SetBindGroup(index uint32, bg *BindGroup) {
	if wb, ok := bg.backing.(*wgpu.BindGroup); ok {
		p.pass.SetBindGroup(index, wb, nil)
	}
}

func (p *wgpuComputePassEncoder) DispatchWorkgroups(x, y, z uint32) {
	p.pass.DispatchWorkgroups(x, y, z)
}

func (p *wgpuComputePassEncoder) End() {
	p.pass.End()
}

func coalesceSampleCount(count uint32) uint32 {
	if count == 0 {
		return 1
	}
	return count
}

// wgpuSwapchain implements Swapchain on top of a wgpu.Surface — grounded on
// wgpuRendererBackendImpl's ConfigureSurface/GetCurrentTexture/Present triplet
// (engine/renderer/wgpu_renderer_backend.go), generalized away from that file's
// fixed main-render-target assumptions (MSAA resolve targets, a cached depth
// attachment) since the graph owns attachment selection itself.
type wgpuSwapchain struct {
	device  *wgpu.Device
	adapter *wgpu.Adapter
	surface *wgpu.Surface
	format  wgpu.TextureFormat

	current *wgpu.SurfaceTexture
	view    *wgpu.TextureView
}

// NewWGPUSwapchain wraps an already-created surface as a gpu.Swapchain.
func NewWGPUSwapchain(device *wgpu.Device, adapter *wgpu.Adapter, surface *wgpu.Surface) Swapchain {
	return &wgpuSwapchain{device: device, adapter: adapter, surface: surface}
}

func (s *wgpuSwapchain) Configure(desc SwapchainDescriptor) error {
	caps := s.surface.GetCapabilities(s.adapter)
	format := caps.Formats[0]
	if desc.Format != FormatUndefined {
		format = toWGPUFormat(desc.Format)
	}
	s.format = format
	s.surface.Configure(s.adapter, s.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       desc.Width,
		Height:      desc.Height,
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	})
	return nil
}

func (s *wgpuSwapchain) AcquireNextTexture() (*TextureView, error) {
	tex, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("gpu: acquire swapchain texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("gpu: create swapchain texture view: %w", err)
	}
	s.current = tex
	s.view = view
	return &TextureView{Desc: TextureViewDescriptor{}, backing: view}, nil
}

func (s *wgpuSwapchain) Present() {
	if s.current == nil {
		return
	}
	s.surface.Present()
	s.view.Release()
	s.current.Release()
	s.current = nil
	s.view = nil
}
