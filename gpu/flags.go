// Package gpu defines the explicit, Vulkan-class GPU abstraction the RDG core is built
// against: buffers, textures, texture views, samplers, shader modules, pipelines,
// bind groups, command encoders, and explicit pipeline-barrier submission. A concrete
// implementation backed by github.com/cogentcore/webgpu/wgpu is provided in wgpu_device.go;
// other backends (Vulkan, D3D12) could satisfy the same interfaces.
package gpu

// PipelineStage is a bitmask of GPU pipeline stages a barrier can synchronize against.
type PipelineStage uint32

const StageNone PipelineStage = 0

const (
	StageTopOfPipe PipelineStage = 1 << iota
	StageDrawIndirect
	StageVertexInput
	StageVertexShader
	StageFragmentShader
	StageEarlyFragmentTests
	StageLateFragmentTests
	StageColorAttachmentOutput
	StageComputeShader
	StageTransfer
	StageBottomOfPipe
	StageHost
	StageAllGraphics
	StageAllCommands
)

// AccessFlag is a bitmask of memory access types a barrier transitions between.
// readAccessMask / writeAccessMask (built in init) partition this set for the buffer
// state machine's RAW/WAR/WAW discrimination.
type AccessFlag uint32

const AccessNone AccessFlag = 0

const (
	AccessIndirectCommandRead AccessFlag = 1 << iota
	AccessIndexRead
	AccessVertexAttributeRead
	AccessUniformRead
	AccessInputAttachmentRead
	AccessShaderRead
	AccessShaderWrite
	AccessColorAttachmentRead
	AccessColorAttachmentWrite
	AccessDepthStencilAttachmentRead
	AccessDepthStencilAttachmentWrite
	AccessTransferRead
	AccessTransferWrite
	AccessHostRead
	AccessHostWrite
	AccessMemoryRead
	AccessMemoryWrite
)

// writeAccessMask and readAccessMask partition AccessFlag at the bit level, built once.
// This mirrors the source engine's AccessIsWrite table (se.gfx.resources.cpp), which
// classifies each access bit as read-only or write-capable for hazard discrimination.
var writeAccessMask AccessFlag
var readAccessMask AccessFlag

func init() {
	writeAccessMask = AccessShaderWrite | AccessColorAttachmentWrite |
		AccessDepthStencilAttachmentWrite | AccessTransferWrite | AccessHostWrite | AccessMemoryWrite
	all := AccessIndirectCommandRead | AccessIndexRead | AccessVertexAttributeRead |
		AccessUniformRead | AccessInputAttachmentRead | AccessShaderRead | AccessShaderWrite |
		AccessColorAttachmentRead | AccessColorAttachmentWrite | AccessDepthStencilAttachmentRead |
		AccessDepthStencilAttachmentWrite | AccessTransferRead | AccessTransferWrite |
		AccessHostRead | AccessHostWrite | AccessMemoryRead | AccessMemoryWrite
	readAccessMask = all &^ writeAccessMask
}

// WriteAccess returns the subset of flags that are classified as write accesses.
func WriteAccess(flags AccessFlag) AccessFlag {
	return flags & writeAccessMask
}

// ReadAccess returns the subset of flags that are classified as read accesses.
func ReadAccess(flags AccessFlag) AccessFlag {
	return flags & readAccessMask
}

// ImageLayout mirrors Vulkan's VkImageLayout — the abstract layout a texture subresource
// is currently in, used by the texture state machine and translated to barrier descriptors.
type ImageLayout int

const (
	LayoutUndefined ImageLayout = iota
	LayoutGeneral
	LayoutColorAttachmentOptimal
	LayoutDepthStencilAttachmentOptimal
	LayoutDepthStencilReadOnlyOptimal
	LayoutShaderReadOnlyOptimal
	LayoutTransferSrcOptimal
	LayoutTransferDstOptimal
	LayoutPresentSrc
)

// ShaderStage is a bitmask identifying which shader stages a binding or push-constant
// range is visible to.
type ShaderStage uint32

const ShaderStageNone ShaderStage = 0

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
	ShaderStageCompute
)

// BufferUsage is a bitmask of intended GPU usages for a buffer resource.
type BufferUsage uint32

const BufferUsageNone BufferUsage = 0

const (
	BufferUsageCopySrc BufferUsage = 1 << iota
	BufferUsageCopyDst
	BufferUsageIndex
	BufferUsageVertex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndirect
	BufferUsageMapRead
	BufferUsageMapWrite
)

// TextureUsage is a bitmask of intended GPU usages for a texture resource.
type TextureUsage uint32

const TextureUsageNone TextureUsage = 0

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

// MemoryProperty is a bitmask describing the desired memory heap properties for a buffer.
type MemoryProperty uint32

const MemoryPropertyNone MemoryProperty = 0

const (
	MemoryPropertyDeviceLocal MemoryProperty = 1 << iota
	MemoryPropertyHostVisible
	MemoryPropertyHostCoherent
	MemoryPropertyHostCached
)

// TextureFormat enumerates the texture formats the abstraction supports. Only the subset
// actually exercised by the RDG core and its example passes is listed; extend as needed.
type TextureFormat int

const (
	FormatUndefined TextureFormat = iota
	FormatRGBA8Unorm
	FormatRGBA8UnormSrgb
	FormatBGRA8UnormSrgb
	FormatR32Float
	FormatRG16Float
	FormatRGBA16Float
	FormatRGBA32Float
	FormatDepth32Float
	FormatDepth24PlusStencil8
)

// TextureAspect identifies which aspect(s) of a texture a barrier or view applies to.
type TextureAspect int

const (
	AspectColor TextureAspect = iota
	AspectDepth
	AspectStencil
	AspectDepthStencil
)

// TextureDimension identifies the dimensionality of a texture resource.
type TextureDimension int

const (
	TextureDimension1D TextureDimension = iota
	TextureDimension2D
	TextureDimension3D
)

// Extent3D describes the width/height/depth (or array-layer count for 2D arrays) of a
// texture resource.
type Extent3D struct {
	Width, Height, DepthOrArrayLayers uint32
}

// AddressMode controls how a sampler handles texture coordinates outside [0, 1].
type AddressMode int

const (
	AddressModeRepeat AddressMode = iota
	AddressModeMirrorRepeat
	AddressModeClampToEdge
)

// FilterMode controls magnification/minification sampling behavior.
type FilterMode int

const (
	FilterModeNearest FilterMode = iota
	FilterModeLinear
)

// CompareFunction enumerates the comparison functions usable by depth tests and
// comparison samplers.
type CompareFunction int

const (
	CompareFunctionNever CompareFunction = iota
	CompareFunctionLess
	CompareFunctionEqual
	CompareFunctionLessEqual
	CompareFunctionGreater
	CompareFunctionNotEqual
	CompareFunctionGreaterEqual
	CompareFunctionAlways
)

// BlendFactor enumerates the blend factors usable in a color target's blend state.
type BlendFactor int

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
)

// BlendOperation enumerates the blend operations usable in a color target's blend state.
type BlendOperation int

const (
	BlendOperationAdd BlendOperation = iota
	BlendOperationSubtract
	BlendOperationReverseSubtract
	BlendOperationMin
	BlendOperationMax
)

// CullMode selects which primitive winding to cull.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// FrontFace selects which winding order is considered front-facing.
type FrontFace int

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// PrimitiveTopology enumerates the primitive assembly modes a render pipeline supports.
type PrimitiveTopology int

const (
	PrimitiveTopologyTriangleList PrimitiveTopology = iota
	PrimitiveTopologyTriangleStrip
	PrimitiveTopologyLineList
	PrimitiveTopologyPointList
)

// ColorWriteMask is a bitmask of color channels a render pipeline writes.
type ColorWriteMask uint32

const (
	ColorWriteMaskRed ColorWriteMask = 1 << iota
	ColorWriteMaskGreen
	ColorWriteMaskBlue
	ColorWriteMaskAlpha
)

const ColorWriteMaskAll = ColorWriteMaskRed | ColorWriteMaskGreen | ColorWriteMaskBlue | ColorWriteMaskAlpha
