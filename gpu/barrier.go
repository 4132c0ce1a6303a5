package gpu

// BufferMemoryBarrier describes a synchronization scope over a byte range of a single buffer.
type BufferMemoryBarrier struct {
	Buffer     *Buffer
	SrcAccess  AccessFlag
	DstAccess  AccessFlag
	Offset     uint64
	Size       uint64
}

// TextureMemoryBarrier describes a synchronization scope, and optional layout transition,
// over a subresource range of a single texture.
type TextureMemoryBarrier struct {
	Texture    *Texture
	Aspect     TextureAspect
	MipBeg     uint32
	MipCount   uint32
	LayerBeg   uint32
	LayerCount uint32
	SrcAccess  AccessFlag
	DstAccess  AccessFlag
	OldLayout  ImageLayout
	NewLayout  ImageLayout
}

// BarrierDescriptor is a single pipeline-barrier submission: a source-to-destination
// pipeline-stage transition carrying zero or more buffer and texture sub-barriers.
// This is the unit the resource state machines (rdg/state) emit and the graph
// accumulates per consuming pass.
type BarrierDescriptor struct {
	SrcStageMask PipelineStage
	DstStageMask PipelineStage
	BufferBarriers  []BufferMemoryBarrier
	TextureBarriers []TextureMemoryBarrier
}

// Empty reports whether the descriptor carries no sub-barriers and can be dropped.
func (b BarrierDescriptor) Empty() bool {
	return len(b.BufferBarriers) == 0 && len(b.TextureBarriers) == 0
}
