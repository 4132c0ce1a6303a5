// Package rdg implements the render dependency graph: DAG construction over passes,
// topological flattening, resource devirtualization, barrier synthesis, and the execution
// driver that walks the flattened pass order issuing precomputed barriers.
package rdg

import (
	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/pass"
	"github.com/Carmen-Shannon/rdg-forge/rdg/state"
	"github.com/Carmen-Shannon/rdg-forge/rdg/uid"
)

// Edge records one producer→consumer connection, kept for editor visualization in addition
// to the DAG adjacency.
type Edge struct {
	SrcPass, SrcResource string
	DstPass, DstResource string
}

// textureConsumeRecord is one pass's touch of a physical texture, in flattened pass order —
// the consume history every physical resource carries.
type textureConsumeRecord struct {
	passIdentifier string
	entry          pass.TextureConsumeEntry
}

// bufferConsumeRecord is one pass's touch of a physical buffer, in flattened pass order.
type bufferConsumeRecord struct {
	passIdentifier string
	entry          pass.BufferConsumeEntry
}

// TextureResource is a physical texture the graph owns after Build, shared by every pass
// whose virtual TextureInfo devirtualized to it.
type TextureResource struct {
	Name  string
	Desc  gpu.TextureDescriptor
	Handle *gpu.Texture

	external bool // true when pinned via TextureInfo.Reference — Build does not allocate it

	history []textureConsumeRecord

	// startState/endState are the resource's state at graph entry/exit, computed once in
	// Build. gpuState is the resource's actual GPU-side persisted state, carried across
	// Execute calls so the second and later frames only pay for an idempotent transition.
	startState *state.TextureStateMachine
	endState   *state.TextureStateMachine
	gpuState   *state.TextureStateMachine
}

// BufferResource is a physical buffer the graph owns after Build.
type BufferResource struct {
	Name   string
	Desc   gpu.BufferDescriptor
	Handle *gpu.Buffer

	external bool

	history []bufferConsumeRecord

	startState *state.BufferStateMachine
	endState   *state.BufferStateMachine
}

// effectiveRange defaults an attachment consume entry's subresource range (not supplied by
// ConsumeAsColorAttachment/ConsumeAsDepthStencilAttachment, since those don't yet know the
// texture's final mip/layer count) to its single base mip and layer — the conventional
// render-target slice. TextureBinding/StorageBinding entries always carry an explicit range.
func effectiveRange(e pass.TextureConsumeEntry) state.SubresourceRange {
	if e.Range.Empty() {
		return state.SubresourceRange{MipBeg: 0, MipEnd: 1, LayerBeg: 0, LayerEnd: 1}
	}
	return e.Range
}

// effectiveByteRange resolves BufferConsumeSizeWholeBuffer against the buffer's resolved byte
// size.
func effectiveByteRange(e pass.BufferConsumeEntry, byteSize uint64) state.ByteRange {
	if e.Size == pass.BufferConsumeSizeWholeBuffer {
		return state.ByteRange{Offset: uint64(e.Offset), End: byteSize}
	}
	return state.ByteRange{Offset: uint64(e.Offset), End: uint64(e.Offset + e.Size)}
}

// resourceKey is how the graph addresses a devirtualized physical resource: its
// devirtualization id, a fresh uid.UID minted per distinct physical resource (not the
// resource's own declaration id, which is per-virtual-declaration and salted by pass+name).
type resourceKey = uid.UID
