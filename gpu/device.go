package gpu

// BindingType enumerates the kind of resource a single bind-group-layout entry describes.
type BindingType int

const (
	BindingTypeUniformBuffer BindingType = iota
	BindingTypeStorageBuffer
	BindingTypeReadOnlyStorageBuffer
	BindingTypeSampledTexture
	BindingTypeStorageTexture
	BindingTypeSampler
	BindingTypeComparisonSampler
)

// BindGroupLayoutEntry describes one (set, binding) slot's resource type, visibility, and
// the read/write reflection flags combined per spec when merging two shader reflections:
// NotReadable/NotWritable AND together across stages (a binding is read-only only if every
// stage that declares it agrees).
type BindGroupLayoutEntry struct {
	Binding      uint32
	Visibility   ShaderStage
	Type         BindingType
	NotReadable  bool
	NotWritable  bool
	MinBindingSize uint64
}

// BindGroupLayoutDescriptor is the set of entries for one bind group (descriptor set).
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupLayout is an opaque handle to a created bind-group layout.
type BindGroupLayout struct{ backing any }

// BindGroupEntry binds one concrete GPU resource to a binding slot.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      *Buffer
	Offset      uint64
	Size        uint64
	TextureView *TextureView
	Sampler     *Sampler
}

// BindGroupDescriptor is the set of concrete resources bound against a layout.
type BindGroupDescriptor struct {
	Label   string
	Layout  *BindGroupLayout
	Entries []BindGroupEntry
}

// BindGroup is an opaque handle to a created bind group.
type BindGroup struct{ backing any }

// PushConstantRange describes one push-constant range visible to the given stages.
type PushConstantRange struct {
	Stages ShaderStage
	Offset uint32
	Size   uint32
}

// PipelineLayoutDescriptor combines bind-group layouts (by set index, in order) and
// push-constant ranges into a full pipeline layout.
type PipelineLayoutDescriptor struct {
	Label              string
	BindGroupLayouts   []*BindGroupLayout
	PushConstantRanges []PushConstantRange
}

// PipelineLayout is an opaque handle to a created pipeline layout.
type PipelineLayout struct{ backing any }

// VertexFormat enumerates the vertex attribute formats exercised by the example passes.
type VertexFormat int

const (
	VertexFormatFloat32x2 VertexFormat = iota
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUint32x4
)

// VertexAttribute describes one attribute within a VertexBufferLayout.
type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// VertexBufferLayout describes the stride and attributes of one vertex buffer slot.
type VertexBufferLayout struct {
	ArrayStride uint64
	Attributes  []VertexAttribute
}

// BlendComponent is one channel (color or alpha) of a blend state.
type BlendComponent struct {
	SrcFactor BlendFactor
	DstFactor BlendFactor
	Operation BlendOperation
}

// BlendState is the full blend configuration for a color target.
type BlendState struct {
	Color BlendComponent
	Alpha BlendComponent
}

// ColorTargetState describes one color attachment's format, blend state, and write mask
// as synthesized by PassReflection.ColorTargetStates from a pass's consume entries.
type ColorTargetState struct {
	Format    TextureFormat
	Blend     *BlendState
	WriteMask ColorWriteMask
}

// DepthStencilState describes the depth/stencil attachment configuration as synthesized
// by PassReflection.DepthStencilState from a pass's consume entries.
type DepthStencilState struct {
	Format            TextureFormat
	DepthWriteEnabled bool
	DepthCompare      CompareFunction
}

// ShaderStageDescriptor binds a shader module and entry point to a pipeline stage.
type ShaderStageDescriptor struct {
	Module     *ShaderModule
	EntryPoint string
}

// PrimitiveState describes primitive assembly and rasterization state for a render pipeline.
type PrimitiveState struct {
	Topology  PrimitiveTopology
	CullMode  CullMode
	FrontFace FrontFace
}

// RenderPipelineDescriptor fully describes a render pipeline's fixed-function and
// programmable state.
type RenderPipelineDescriptor struct {
	Label         string
	Layout        *PipelineLayout
	Vertex        ShaderStageDescriptor
	VertexBuffers []VertexBufferLayout
	Fragment      *ShaderStageDescriptor
	ColorTargets  []ColorTargetState
	DepthStencil  *DepthStencilState
	Primitive     PrimitiveState
	SampleCount   uint32
}

// RenderPipeline is an opaque handle to a created render pipeline.
type RenderPipeline struct{ backing any }

// ComputePipelineDescriptor describes a compute pipeline.
type ComputePipelineDescriptor struct {
	Label  string
	Layout *PipelineLayout
	Module *ShaderModule
	Entry  string
}

// ComputePipeline is an opaque handle to a created compute pipeline.
type ComputePipeline struct{ backing any }

// LoadOp controls how an attachment is initialized at the start of a render pass.
type LoadOp int

const (
	LoadOpLoad LoadOp = iota
	LoadOpClear
)

// StoreOp controls whether an attachment's result is written back at the end of a pass.
type StoreOp int

const (
	StoreOpStore StoreOp = iota
	StoreOpDiscard
)

// RenderPassColorAttachment binds one color target for a render pass.
type RenderPassColorAttachment struct {
	View       *TextureView
	LoadOp     LoadOp
	StoreOp    StoreOp
	ClearColor [4]float64
}

// RenderPassDepthStencilAttachment binds the depth/stencil target for a render pass.
type RenderPassDepthStencilAttachment struct {
	View            *TextureView
	DepthLoadOp     LoadOp
	DepthStoreOp    StoreOp
	DepthClearValue float32
}

// RenderPassDescriptor fully describes a render pass's attachments.
type RenderPassDescriptor struct {
	Label                string
	ColorAttachments     []RenderPassColorAttachment
	DepthStencilAttachment *RenderPassDepthStencilAttachment
}

// IndexFormat selects the width of index buffer entries.
type IndexFormat int

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// CommandBuffer is an opaque, finished command encoder ready for submission.
type CommandBuffer struct{ backing any }

// RenderPassEncoder records draw commands within one render pass.
type RenderPassEncoder interface {
	SetPipeline(p *RenderPipeline)
	SetBindGroup(index uint32, bg *BindGroup)
	SetVertexBuffer(slot uint32, buf *Buffer, offset uint64)
	SetIndexBuffer(buf *Buffer, format IndexFormat, offset uint64)
	SetViewport(x, y, w, h, minDepth, maxDepth float32)
	SetScissorRect(x, y, w, h uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	DrawIndirect(buf *Buffer, offset uint64)
	End()
}

// ComputePassEncoder records dispatch commands within one compute pass.
type ComputePassEncoder interface {
	SetPipeline(p *ComputePipeline)
	SetBindGroup(index uint32, bg *BindGroup)
	DispatchWorkgroups(x, y, z uint32)
	End()
}

// CommandEncoder records a sequence of passes and barriers into one command buffer.
type CommandEncoder interface {
	BeginRenderPass(desc *RenderPassDescriptor) RenderPassEncoder
	BeginComputePass(label string) ComputePassEncoder
	// PipelineBarrier submits an explicit synchronization point. Backends without a native
	// barrier primitive (WebGPU) may no-op this — see wgpu_device.go for the documented
	// fidelity gap — but the graph always computes and calls it, so Vulkan-class backends
	// get real barriers.
	PipelineBarrier(b BarrierDescriptor)
	PushDebugGroup(label string, color [3]float32)
	PopDebugGroup()
	Finish() CommandBuffer
}

// Queue submits finished command buffers and performs direct buffer/texture writes.
type Queue interface {
	Submit(cb CommandBuffer)
	WriteBuffer(buf *Buffer, offset uint64, data []byte)
	WriteTexture(tex *Texture, data []byte, bytesPerRow, rowsPerImage uint32, extent Extent3D)
}

// Device is the root of the GPU abstraction: it creates every resource and pipeline type
// the RDG core devirtualizes and executes against.
type Device interface {
	CreateBuffer(desc BufferDescriptor) (*Buffer, error)
	CreateTexture(desc TextureDescriptor) (*Texture, error)
	CreateTextureView(tex *Texture, desc TextureViewDescriptor) (*TextureView, error)
	CreateSampler(desc SamplerDescriptor) (*Sampler, error)
	CreateShaderModule(mod *ShaderModule, code string) error
	CreateBindGroupLayout(desc BindGroupLayoutDescriptor) (*BindGroupLayout, error)
	CreateBindGroup(desc BindGroupDescriptor) (*BindGroup, error)
	CreatePipelineLayout(desc PipelineLayoutDescriptor) (*PipelineLayout, error)
	CreateRenderPipeline(desc RenderPipelineDescriptor) (*RenderPipeline, error)
	CreateComputePipeline(desc ComputePipelineDescriptor) (*ComputePipeline, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)
	Queue() Queue
	// WaitIdle blocks until all submitted GPU work completes. Used at graph build/upload
	// boundaries only, never mid-frame.
	WaitIdle() error
}
