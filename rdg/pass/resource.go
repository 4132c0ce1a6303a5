// Package pass defines the virtual resource descriptors (BufferInfo/TextureInfo), the
// per-pass reflection that holds them, and the sealed Pass/PipelinePass/RenderPass/
// ComputePass abstraction hierarchy that the graph (package rdg) builds and executes.
package pass

import (
	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/state"
	"github.com/Carmen-Shannon/rdg-forge/rdg/uid"
)

// ResourceKind discriminates a ResourceInfo between its buffer and texture variants.
type ResourceKind int

const (
	KindBuffer ResourceKind = iota
	KindTexture
)

// SizeKind selects how a TextureInfo's dimensions are resolved at build time.
type SizeKind int

const (
	// SizeAbsolute uses Size.Absolute verbatim.
	SizeAbsolute SizeKind = iota
	// SizeRelative multiplies the graph's standard size by Size.Relative.
	SizeRelative
	// SizeRelativeToTexture multiplies another named texture's resolved size by Size.Relative.
	SizeRelativeToTexture
)

// TextureSize is a discriminated size descriptor; see SizeKind for interpretation.
type TextureSize struct {
	Kind       SizeKind
	Absolute   gpu.Extent3D
	Relative   [3]float32
	RelativeTo string
}

// TextureConsumeKind enumerates the ways a pass may consume a texture subresource.
type TextureConsumeKind int

const (
	ConsumeColorAttachment TextureConsumeKind = iota
	ConsumeDepthStencilAttachment
	ConsumeTextureBinding
	ConsumeStorageBinding
)

// TextureConsumeEntry records one pass's intended use of a texture subresource range. Kinds
// other than the two attachment kinds leave the attachment-only fields at their zero value.
type TextureConsumeEntry struct {
	Kind     TextureConsumeKind
	Stages   gpu.PipelineStage
	Access   gpu.AccessFlag
	Layout   gpu.ImageLayout
	Range    state.SubresourceRange
	Location uint32

	Blend             *gpu.BlendState
	DepthWriteEnabled bool
	DepthCompare      gpu.CompareFunction
}

// canonicalTextureConsume fills in the stage/access/layout defaults for a consume kind — each
// kind has canonical defaults the core auto-fills.
func canonicalTextureConsume(kind TextureConsumeKind) (gpu.PipelineStage, gpu.AccessFlag, gpu.ImageLayout) {
	switch kind {
	case ConsumeColorAttachment:
		return gpu.StageColorAttachmentOutput, gpu.AccessColorAttachmentRead | gpu.AccessColorAttachmentWrite, gpu.LayoutColorAttachmentOptimal
	case ConsumeDepthStencilAttachment:
		return gpu.StageEarlyFragmentTests | gpu.StageLateFragmentTests,
			gpu.AccessDepthStencilAttachmentRead | gpu.AccessDepthStencilAttachmentWrite,
			gpu.LayoutDepthStencilAttachmentOptimal
	case ConsumeStorageBinding:
		return gpu.StageComputeShader, gpu.AccessShaderRead | gpu.AccessShaderWrite, gpu.LayoutGeneral
	default: // ConsumeTextureBinding
		return gpu.StageFragmentShader, gpu.AccessShaderRead, gpu.LayoutShaderReadOnlyOptimal
	}
}

// BufferConsumeSizeWholeBuffer is the sentinel used in BufferConsumeEntry.Size meaning
// "whole buffer, to be resolved at build time".
const BufferConsumeSizeWholeBuffer int64 = -1

// BufferConsumeEntry records one pass's intended use of a buffer byte range.
type BufferConsumeEntry struct {
	Stages gpu.PipelineStage
	Access gpu.AccessFlag
	Offset int64
	Size   int64
}

// TextureInfo is the virtual descriptor for a texture resource declared inside a
// PassReflection. MipLevels of -1 means "auto from max(width, height)" — resolved by the
// graph at build time (see resolveMipLevels in rdg/sizing.go).
type TextureInfo struct {
	Name        string
	Size        TextureSize
	MipLevels   int32
	ArrayLayers uint32
	SampleCount uint32
	Format      gpu.TextureFormat
	Usage       gpu.TextureUsage
	Consume     []TextureConsumeEntry

	// Reference pins a specific pre-existing GPU handle; when set, devirtualization uses
	// this handle instead of allocating a fresh physical resource.
	Reference *gpu.Texture
}

// TextureInfoOption configures a TextureInfo under construction, following the project's
// functional-option builder idiom.
type TextureInfoOption func(*TextureInfo)

// NewTextureInfo creates a TextureInfo with the given name and options applied in order.
func NewTextureInfo(name string, opts ...TextureInfoOption) *TextureInfo {
	t := &TextureInfo{Name: name, ArrayLayers: 1, SampleCount: 1, MipLevels: 1}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithAbsoluteSize sets an absolute texture size in pixels.
//
// Parameters:
//   - w, h, depthOrLayers: the texture's dimensions
//
// Returns:
//   - TextureInfoOption: an option that applies the absolute size
func WithAbsoluteSize(w, h, depthOrLayers uint32) TextureInfoOption {
	return func(t *TextureInfo) {
		t.Size = TextureSize{Kind: SizeAbsolute, Absolute: gpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: depthOrLayers}}
	}
}

// WithRelativeSize sets a size relative to the graph's standard size.
//
// Parameters:
//   - sx, sy, sz: multipliers applied to the graph's standard size
//
// Returns:
//   - TextureInfoOption: an option that applies the relative size
func WithRelativeSize(sx, sy, sz float32) TextureInfoOption {
	return func(t *TextureInfo) {
		t.Size = TextureSize{Kind: SizeRelative, Relative: [3]float32{sx, sy, sz}}
	}
}

// WithRelativeToTextureSize sets a size relative to another named texture resolved earlier
// in the same pass reflection.
//
// Parameters:
//   - name: the other texture's local name
//   - sx, sy, sz: multipliers applied to that texture's resolved size
//
// Returns:
//   - TextureInfoOption: an option that applies the relative-to-texture size
func WithRelativeToTextureSize(name string, sx, sy, sz float32) TextureInfoOption {
	return func(t *TextureInfo) {
		t.Size = TextureSize{Kind: SizeRelativeToTexture, RelativeTo: name, Relative: [3]float32{sx, sy, sz}}
	}
}

// WithMipLevels sets the mip level count; pass -1 for "auto from max(width, height)".
func WithMipLevels(mips int32) TextureInfoOption {
	return func(t *TextureInfo) { t.MipLevels = mips }
}

// WithArrayLayers sets the array layer count.
func WithArrayLayers(layers uint32) TextureInfoOption {
	return func(t *TextureInfo) { t.ArrayLayers = layers }
}

// WithSampleCount sets the MSAA sample count.
func WithSampleCount(samples uint32) TextureInfoOption {
	return func(t *TextureInfo) { t.SampleCount = samples }
}

// WithFormat sets the texture format.
func WithFormat(format gpu.TextureFormat) TextureInfoOption {
	return func(t *TextureInfo) { t.Format = format }
}

// WithReference pins a pre-existing GPU handle, so devirtualization uses it instead of
// allocating a fresh physical resource.
func WithReference(tex *gpu.Texture) TextureInfoOption {
	return func(t *TextureInfo) { t.Reference = tex }
}

// ConsumeAsColorAttachment adds a color-attachment consume entry at the given location, with
// canonical stage/access/layout defaults, and ORs in the render-attachment usage bit.
//
// Parameters:
//   - location: the color attachment's slot index
//   - blend: optional blend state; nil disables blending for this target
//
// Returns:
//   - TextureInfoOption: an option that appends the consume entry
func ConsumeAsColorAttachment(location uint32, blend *gpu.BlendState) TextureInfoOption {
	return func(t *TextureInfo) {
		stages, access, layout := canonicalTextureConsume(ConsumeColorAttachment)
		t.Usage |= gpu.TextureUsageRenderAttachment
		t.Consume = append(t.Consume, TextureConsumeEntry{
			Kind: ConsumeColorAttachment, Stages: stages, Access: access, Layout: layout,
			Location: location, Blend: blend,
		})
	}
}

// ConsumeAsDepthStencilAttachment adds a depth-stencil-attachment consume entry.
//
// Parameters:
//   - depthWrite: whether this pass writes depth
//   - compare: the depth comparison function this pass uses
//
// Returns:
//   - TextureInfoOption: an option that appends the consume entry
func ConsumeAsDepthStencilAttachment(depthWrite bool, compare gpu.CompareFunction) TextureInfoOption {
	return func(t *TextureInfo) {
		stages, access, layout := canonicalTextureConsume(ConsumeDepthStencilAttachment)
		if !depthWrite {
			access &^= gpu.AccessDepthStencilAttachmentWrite
		}
		t.Usage |= gpu.TextureUsageRenderAttachment
		t.Consume = append(t.Consume, TextureConsumeEntry{
			Kind: ConsumeDepthStencilAttachment, Stages: stages, Access: access, Layout: layout,
			DepthWriteEnabled: depthWrite, DepthCompare: compare,
		})
	}
}

// ConsumeAsTextureBinding adds a sampled-read consume entry over the given subresource range.
func ConsumeAsTextureBinding(r state.SubresourceRange) TextureInfoOption {
	return func(t *TextureInfo) {
		stages, access, layout := canonicalTextureConsume(ConsumeTextureBinding)
		t.Usage |= gpu.TextureUsageTextureBinding
		t.Consume = append(t.Consume, TextureConsumeEntry{Kind: ConsumeTextureBinding, Stages: stages, Access: access, Layout: layout, Range: r})
	}
}

// ConsumeAsStorageBinding adds an RW-storage-image consume entry over the given subresource range.
func ConsumeAsStorageBinding(r state.SubresourceRange) TextureInfoOption {
	return func(t *TextureInfo) {
		stages, access, layout := canonicalTextureConsume(ConsumeStorageBinding)
		t.Usage |= gpu.TextureUsageStorageBinding
		t.Consume = append(t.Consume, TextureConsumeEntry{Kind: ConsumeStorageBinding, Stages: stages, Access: access, Layout: layout, Range: r})
	}
}

// BufferInfo is the virtual descriptor for a buffer resource declared inside a
// PassReflection.
type BufferInfo struct {
	Name             string
	ByteSize         uint64
	Usage            gpu.BufferUsage
	MemoryProperties gpu.MemoryProperty
	Consume          []BufferConsumeEntry

	// Reference pins a specific pre-existing GPU handle; see TextureInfo.Reference.
	Reference *gpu.Buffer
}

// BufferInfoOption configures a BufferInfo under construction.
type BufferInfoOption func(*BufferInfo)

// NewBufferInfo creates a BufferInfo with the given name and options applied in order.
func NewBufferInfo(name string, opts ...BufferInfoOption) *BufferInfo {
	b := &BufferInfo{Name: name}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithByteSize sets the buffer's size in bytes.
func WithByteSize(size uint64) BufferInfoOption {
	return func(b *BufferInfo) { b.ByteSize = size }
}

// WithBufferUsage ORs usage bits into the buffer's usage flags.
func WithBufferUsage(usage gpu.BufferUsage) BufferInfoOption {
	return func(b *BufferInfo) { b.Usage |= usage }
}

// WithMemoryProperties ORs memory-property bits into the buffer's desired heap properties.
func WithMemoryProperties(props gpu.MemoryProperty) BufferInfoOption {
	return func(b *BufferInfo) { b.MemoryProperties |= props }
}

// WithBufferReference pins a pre-existing GPU handle.
func WithBufferReference(buf *gpu.Buffer) BufferInfoOption {
	return func(b *BufferInfo) { b.Reference = buf }
}

// ConsumeBufferRange adds a buffer consume entry. Pass BufferConsumeSizeWholeBuffer for size
// to mean "whole buffer, resolved at build time".
func ConsumeBufferRange(stages gpu.PipelineStage, access gpu.AccessFlag, offset, size int64) BufferInfoOption {
	return func(b *BufferInfo) {
		b.Consume = append(b.Consume, BufferConsumeEntry{Stages: stages, Access: access, Offset: offset, Size: size})
		b.Usage |= bufferUsageForAccess(access)
	}
}

func bufferUsageForAccess(access gpu.AccessFlag) gpu.BufferUsage {
	var usage gpu.BufferUsage
	if access&gpu.AccessUniformRead != 0 {
		usage |= gpu.BufferUsageUniform
	}
	if access&(gpu.AccessShaderRead|gpu.AccessShaderWrite) != 0 {
		usage |= gpu.BufferUsageStorage
	}
	if access&gpu.AccessIndexRead != 0 {
		usage |= gpu.BufferUsageIndex
	}
	if access&gpu.AccessVertexAttributeRead != 0 {
		usage |= gpu.BufferUsageVertex
	}
	if access&gpu.AccessIndirectCommandRead != 0 {
		usage |= gpu.BufferUsageIndirect
	}
	return usage
}

// ResourceInfo is a discriminated container holding either a BufferInfo or a TextureInfo,
// salted with a UID derived from the owning pass's identifier hash and the resource's local
// name, plus a devirtualization id assigned by the graph and a pointer to the previous
// producer's ResourceInfo along the edge that feeds this one (nil for a pass's own
// internal/output resources).
type ResourceInfo struct {
	ID             uid.UID
	DevirtualizeID uid.UID
	Prev           *ResourceInfo
	Kind           ResourceKind
	Buffer         *BufferInfo
	Texture        *TextureInfo
}

// NewTextureResourceInfo wraps a TextureInfo as a ResourceInfo, salting its id from
// passID and the texture's local name.
func NewTextureResourceInfo(passID uid.UID, tex *TextureInfo) *ResourceInfo {
	return &ResourceInfo{ID: uid.Combine(passID, tex.Name), Kind: KindTexture, Texture: tex}
}

// NewBufferResourceInfo wraps a BufferInfo as a ResourceInfo, salting its id from passID
// and the buffer's local name.
func NewBufferResourceInfo(passID uid.UID, buf *BufferInfo) *ResourceInfo {
	return &ResourceInfo{ID: uid.Combine(passID, buf.Name), Kind: KindBuffer, Buffer: buf}
}
