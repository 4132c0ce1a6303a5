package rdg

import "github.com/Carmen-Shannon/rdg-forge/gpu"

// mockDevice is a minimal gpu.Device that allocates opaque handles without touching any real
// backend, so Graph.Build/Execute can be exercised deterministically in tests.
type mockDevice struct {
	encoder *mockEncoder
}

func newMockDevice() *mockDevice { return &mockDevice{encoder: &mockEncoder{}} }

func (d *mockDevice) CreateBuffer(desc gpu.BufferDescriptor) (*gpu.Buffer, error) {
	return &gpu.Buffer{Desc: desc}, nil
}
func (d *mockDevice) CreateTexture(desc gpu.TextureDescriptor) (*gpu.Texture, error) {
	return &gpu.Texture{Desc: desc}, nil
}
func (d *mockDevice) CreateTextureView(tex *gpu.Texture, desc gpu.TextureViewDescriptor) (*gpu.TextureView, error) {
	return &gpu.TextureView{Desc: desc}, nil
}
func (d *mockDevice) CreateSampler(desc gpu.SamplerDescriptor) (*gpu.Sampler, error) {
	return &gpu.Sampler{Desc: desc}, nil
}
func (d *mockDevice) CreateShaderModule(mod *gpu.ShaderModule, code string) error { return nil }
func (d *mockDevice) CreateBindGroupLayout(desc gpu.BindGroupLayoutDescriptor) (*gpu.BindGroupLayout, error) {
	return &gpu.BindGroupLayout{}, nil
}
func (d *mockDevice) CreateBindGroup(desc gpu.BindGroupDescriptor) (*gpu.BindGroup, error) {
	return &gpu.BindGroup{}, nil
}
func (d *mockDevice) CreatePipelineLayout(desc gpu.PipelineLayoutDescriptor) (*gpu.PipelineLayout, error) {
	return &gpu.PipelineLayout{}, nil
}
func (d *mockDevice) CreateRenderPipeline(desc gpu.RenderPipelineDescriptor) (*gpu.RenderPipeline, error) {
	return &gpu.RenderPipeline{}, nil
}
func (d *mockDevice) CreateComputePipeline(desc gpu.ComputePipelineDescriptor) (*gpu.ComputePipeline, error) {
	return &gpu.ComputePipeline{}, nil
}
func (d *mockDevice) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	return &mockEncoder{}, nil
}
func (d *mockDevice) Queue() gpu.Queue      { return &mockQueue{} }
func (d *mockDevice) WaitIdle() error       { return nil }

// mockEncoder records every barrier it is asked to submit, for assertions, and no-ops
// everything else.
type mockEncoder struct {
	barriers []gpu.BarrierDescriptor
}

func (e *mockEncoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) gpu.RenderPassEncoder {
	return &mockRenderPassEncoder{}
}
func (e *mockEncoder) BeginComputePass(label string) gpu.ComputePassEncoder {
	return &mockComputePassEncoder{}
}
func (e *mockEncoder) PipelineBarrier(b gpu.BarrierDescriptor) { e.barriers = append(e.barriers, b) }
func (e *mockEncoder) PushDebugGroup(label string, color [3]float32) {}
func (e *mockEncoder) PopDebugGroup()                                {}
func (e *mockEncoder) Finish() gpu.CommandBuffer                     { return gpu.CommandBuffer{} }

type mockRenderPassEncoder struct{}

func (mockRenderPassEncoder) SetPipeline(p *gpu.RenderPipeline)                   {}
func (mockRenderPassEncoder) SetBindGroup(index uint32, bg *gpu.BindGroup)        {}
func (mockRenderPassEncoder) SetVertexBuffer(slot uint32, buf *gpu.Buffer, offset uint64) {}
func (mockRenderPassEncoder) SetIndexBuffer(buf *gpu.Buffer, format gpu.IndexFormat, offset uint64) {
}
func (mockRenderPassEncoder) SetViewport(x, y, w, h, minDepth, maxDepth float32) {}
func (mockRenderPassEncoder) SetScissorRect(x, y, w, h uint32)                   {}
func (mockRenderPassEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
}
func (mockRenderPassEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
}
func (mockRenderPassEncoder) DrawIndirect(buf *gpu.Buffer, offset uint64) {}
func (mockRenderPassEncoder) End()                                        {}

type mockComputePassEncoder struct{}

func (mockComputePassEncoder) SetPipeline(p *gpu.ComputePipeline)          {}
func (mockComputePassEncoder) SetBindGroup(index uint32, bg *gpu.BindGroup) {}
func (mockComputePassEncoder) DispatchWorkgroups(x, y, z uint32)           {}
func (mockComputePassEncoder) End()                                        {}

type mockQueue struct{}

func (mockQueue) Submit(cb gpu.CommandBuffer)     {}
func (mockQueue) WriteBuffer(buf *gpu.Buffer, offset uint64, data []byte) {}
func (mockQueue) WriteTexture(tex *gpu.Texture, data []byte, bytesPerRow, rowsPerImage uint32, extent gpu.Extent3D) {
}

var _ gpu.Device = (*mockDevice)(nil)
