package pass

import (
	"testing"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/uid"
)

// fakeDevice is a minimal gpu.Device that allocates opaque handles, enough to drive
// GeometryPass's pipeline/view creation without a real backend.
type fakeDevice struct{}

func (fakeDevice) CreateBuffer(desc gpu.BufferDescriptor) (*gpu.Buffer, error) {
	return &gpu.Buffer{Desc: desc}, nil
}
func (fakeDevice) CreateTexture(desc gpu.TextureDescriptor) (*gpu.Texture, error) {
	return &gpu.Texture{Desc: desc}, nil
}
func (fakeDevice) CreateTextureView(tex *gpu.Texture, desc gpu.TextureViewDescriptor) (*gpu.TextureView, error) {
	return &gpu.TextureView{Desc: desc}, nil
}
func (fakeDevice) CreateSampler(desc gpu.SamplerDescriptor) (*gpu.Sampler, error) {
	return &gpu.Sampler{Desc: desc}, nil
}
func (fakeDevice) CreateShaderModule(mod *gpu.ShaderModule, code string) error { return nil }
func (fakeDevice) CreateBindGroupLayout(desc gpu.BindGroupLayoutDescriptor) (*gpu.BindGroupLayout, error) {
	return &gpu.BindGroupLayout{}, nil
}
func (fakeDevice) CreateBindGroup(desc gpu.BindGroupDescriptor) (*gpu.BindGroup, error) {
	return &gpu.BindGroup{}, nil
}
func (fakeDevice) CreatePipelineLayout(desc gpu.PipelineLayoutDescriptor) (*gpu.PipelineLayout, error) {
	return &gpu.PipelineLayout{}, nil
}
func (fakeDevice) CreateRenderPipeline(desc gpu.RenderPipelineDescriptor) (*gpu.RenderPipeline, error) {
	return &gpu.RenderPipeline{}, nil
}
func (fakeDevice) CreateComputePipeline(desc gpu.ComputePipelineDescriptor) (*gpu.ComputePipeline, error) {
	return &gpu.ComputePipeline{}, nil
}
func (fakeDevice) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) { return nil, nil }
func (fakeDevice) Queue() gpu.Queue                                              { return nil }
func (fakeDevice) WaitIdle() error                                               { return nil }

var _ gpu.Device = fakeDevice{}

// fakeResources resolves every devirtualize id to the same pre-created texture, standing in
// for the real ResourceResolver, rdg.Graph.
type fakeResources struct {
	tex *gpu.Texture
}

func (r fakeResources) Texture(id uid.UID) (*gpu.Texture, bool) { return r.tex, true }
func (r fakeResources) Buffer(id uid.UID) (*gpu.Buffer, bool)   { return nil, false }

var _ ResourceResolver = fakeResources{}

// fakeRenderPassEncoder records the draw calls issued into it.
type fakeRenderPassEncoder struct {
	draws int
}

func (e *fakeRenderPassEncoder) SetPipeline(p *gpu.RenderPipeline)            {}
func (e *fakeRenderPassEncoder) SetBindGroup(index uint32, bg *gpu.BindGroup) {}
func (e *fakeRenderPassEncoder) SetVertexBuffer(slot uint32, buf *gpu.Buffer, offset uint64) {
}
func (e *fakeRenderPassEncoder) SetIndexBuffer(buf *gpu.Buffer, format gpu.IndexFormat, offset uint64) {
}
func (e *fakeRenderPassEncoder) SetViewport(x, y, w, h, minDepth, maxDepth float32) {}
func (e *fakeRenderPassEncoder) SetScissorRect(x, y, w, h uint32)                   {}
func (e *fakeRenderPassEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
}
func (e *fakeRenderPassEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	e.draws++
}
func (e *fakeRenderPassEncoder) DrawIndirect(buf *gpu.Buffer, offset uint64) {}
func (e *fakeRenderPassEncoder) End()                                        {}

// fakeCommandEncoder hands out a single fakeRenderPassEncoder so the test can inspect it
// after Execute returns.
type fakeCommandEncoder struct {
	rp *fakeRenderPassEncoder
}

func (e *fakeCommandEncoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) gpu.RenderPassEncoder {
	e.rp = &fakeRenderPassEncoder{}
	return e.rp
}
func (e *fakeCommandEncoder) BeginComputePass(label string) gpu.ComputePassEncoder { return nil }
func (e *fakeCommandEncoder) PipelineBarrier(b gpu.BarrierDescriptor)              {}
func (e *fakeCommandEncoder) PushDebugGroup(label string, color [3]float32)        {}
func (e *fakeCommandEncoder) PopDebugGroup()                                      {}
func (e *fakeCommandEncoder) Finish() gpu.CommandBuffer                           { return gpu.CommandBuffer{} }

var _ gpu.CommandEncoder = (*fakeCommandEncoder)(nil)

// fakeScene is a minimal SceneProvider that records the encoder Draw was called with, so the
// test can assert GeometryPass.Execute actually routes the pass's own encoder into it instead
// of discarding it.
type fakeScene struct {
	drawnInto gpu.RenderPassEncoder
}

func (s *fakeScene) SceneBinding(name string) (SceneBinding, bool) { return SceneBinding{}, false }
func (s *fakeScene) Draw(enc gpu.RenderPassEncoder) {
	s.drawnInto = enc
	enc.SetVertexBuffer(0, nil, 0)
	enc.SetIndexBuffer(nil, gpu.IndexFormatUint32, 0)
	enc.DrawIndexed(3, 1, 0, 0, 0)
}

var _ SceneProvider = (*fakeScene)(nil)

func TestGeometryPassExecuteDrawsIntoItsOwnEncoder(t *testing.T) {
	p := NewGeometryPass("color", "")
	p.Init(p)

	device := fakeDevice{}
	tex := &gpu.Texture{Desc: gpu.TextureDescriptor{Format: gpu.FormatRGBA8UnormSrgb}}
	scene := &fakeScene{}
	cmd := &fakeCommandEncoder{}

	ctx := &Context{
		Device:    device,
		Encoder:   cmd,
		Scene:     scene,
		Resources: fakeResources{tex: tex},
	}

	if err := p.Execute(ctx); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if scene.drawnInto == nil {
		t.Fatalf("expected scene.Draw to receive a render pass encoder")
	}
	if cmd.rp == nil || cmd.rp != scene.drawnInto {
		t.Fatalf("expected scene.Draw to be called with the pass's own begun encoder")
	}
	if cmd.rp.draws != 1 {
		t.Fatalf("expected exactly one draw issued through the pass's encoder, got %d", cmd.rp.draws)
	}
}
