package gpu

// BufferDescriptor describes the GPU buffer to allocate. Devirtualization (rdg) derives
// one of these per physical buffer resource from the merged usage bits of every consumer.
type BufferDescriptor struct {
	Label            string
	Size             uint64
	Usage            BufferUsage
	MemoryProperties MemoryProperty
}

// Buffer is a handle to a GPU buffer allocation. The concrete backend (see wgpu_device.go)
// populates the unexported backing handle; callers treat Buffer as opaque beyond its
// descriptor fields.
type Buffer struct {
	Desc    BufferDescriptor
	backing any
}

// Backing returns the backend-specific handle (e.g. *wgpu.Buffer). Passes that need direct
// backend access (vertex/index binding, writes) type-assert this value.
func (b *Buffer) Backing() any { return b.backing }

// WrapBuffer adapts an already-created backend buffer handle (e.g. one owned by an external
// collaborator such as a scene provider's bind-group provider) into a *Buffer, so it can be
// passed through the same Buffer-shaped APIs (bind-group entries, vertex/index binding) as a
// buffer the graph itself allocated. desc need only describe what callers will inspect; it is
// not re-validated against backing.
func WrapBuffer(desc BufferDescriptor, backing any) *Buffer {
	return &Buffer{Desc: desc, backing: backing}
}

// TextureDescriptor describes the GPU texture to allocate.
type TextureDescriptor struct {
	Label         string
	Size          Extent3D
	Dimension     TextureDimension
	Format        TextureFormat
	MipLevelCount uint32
	ArrayLayers   uint32
	SampleCount   uint32
	Usage         TextureUsage
}

// Texture is a handle to a GPU texture allocation.
type Texture struct {
	Desc    TextureDescriptor
	backing any
}

// Backing returns the backend-specific handle (e.g. *wgpu.Texture).
func (t *Texture) Backing() any { return t.backing }

// TextureViewDescriptor describes a view into a subresource range of a Texture.
type TextureViewDescriptor struct {
	Format           TextureFormat
	Aspect           TextureAspect
	BaseMipLevel     uint32
	MipLevelCount    uint32
	BaseArrayLayer   uint32
	ArrayLayerCount  uint32
}

// TextureView is a handle to a GPU texture view.
type TextureView struct {
	Desc    TextureViewDescriptor
	backing any
}

// Backing returns the backend-specific handle (e.g. *wgpu.TextureView).
func (v *TextureView) Backing() any { return v.backing }

// WrapTextureView adapts an externally-created backend texture view handle into a
// *TextureView, the same way WrapBuffer does for buffers.
func WrapTextureView(desc TextureViewDescriptor, backing any) *TextureView {
	return &TextureView{Desc: desc, backing: backing}
}

// SamplerDescriptor describes the GPU sampler to allocate. Two descriptors that are
// structurally equal (field-for-field) must resolve to the same cached Sampler —
// see rdg/cache's sampler deduplication.
type SamplerDescriptor struct {
	AddressModeU, AddressModeV, AddressModeW AddressMode
	MagFilter, MinFilter, MipmapFilter       FilterMode
	LodMinClamp, LodMaxClamp                 float32
	Compare                                  CompareFunction
	MaxAnisotropy                            uint16
}

// Sampler is a handle to a GPU sampler.
type Sampler struct {
	Desc    SamplerDescriptor
	backing any
}

// Backing returns the backend-specific handle (e.g. *wgpu.Sampler).
func (s *Sampler) Backing() any { return s.backing }

// ShaderModule is a handle to a compiled/loaded GPU shader module.
type ShaderModule struct {
	Label   string
	Stage   ShaderStage
	backing any
}

// Backing returns the backend-specific handle (e.g. *wgpu.ShaderModuleDescriptor'd module).
func (m *ShaderModule) Backing() any { return m.backing }
