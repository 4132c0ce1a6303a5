package rdg

import (
	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/pass"
	"github.com/Carmen-Shannon/rdg-forge/rdg/state"
)

// synthesizeBarriers runs barrier synthesis: for each physical resource, iterate its consume
// history in pass order, run it through a fresh state machine, and
// attach every emitted barrier to the consuming pass's pre-pass barrier bucket. The first
// consume entry seeds the state machine directly (no barrier attached — that transition is
// the graph's entry state, applied separately by Execute against the resource's persisted
// GPU-side state) and the final state becomes the resource's endState.
func (g *Graph) synthesizeBarriers() {
	g.prePassBarriers = make(map[string][]gpu.BarrierDescriptor, len(g.order))

	for _, key := range g.textureOrder {
		res := g.textures[key]
		if len(res.history) == 0 {
			continue
		}
		sm := state.NewTextureStateMachine(res.Desc.MipLevelCount, res.Desc.ArrayLayers)
		first := res.history[0]
		sm.UpdateSubresource(effectiveRange(first.entry), subresourceStateOf(first.entry))
		res.startState = sm.Clone()

		for _, rec := range res.history[1:] {
			transitions := sm.UpdateSubresource(effectiveRange(rec.entry), subresourceStateOf(rec.entry))
			for _, t := range transitions {
				g.prePassBarriers[rec.passIdentifier] = append(g.prePassBarriers[rec.passIdentifier], gpu.BarrierDescriptor{
					SrcStageMask: t.Old.Stages,
					DstStageMask: t.New.Stages,
					TextureBarriers: []gpu.TextureMemoryBarrier{{
						Texture: res.Handle, Aspect: gpu.AspectColor,
						MipBeg: t.Range.MipBeg, MipCount: t.Range.MipEnd - t.Range.MipBeg,
						LayerBeg: t.Range.LayerBeg, LayerCount: t.Range.LayerEnd - t.Range.LayerBeg,
						SrcAccess: t.Old.Access, DstAccess: t.New.Access,
						OldLayout: t.Old.Layout, NewLayout: t.New.Layout,
					}},
				})
			}
		}
		res.endState = sm.Clone()
		res.gpuState = state.NewTextureStateMachine(res.Desc.MipLevelCount, res.Desc.ArrayLayers)
	}

	for _, key := range g.bufferOrder {
		res := g.buffers[key]
		if len(res.history) == 0 {
			continue
		}
		sm := state.NewBufferStateMachine()
		for _, rec := range res.history {
			r := effectiveByteRange(rec.entry, res.Desc.Size)
			s := state.BufferAccessState{Stages: rec.entry.Stages, Access: rec.entry.Access}
			transitions := sm.UpdateSubresource(r, s)
			for _, t := range transitions {
				g.prePassBarriers[rec.passIdentifier] = append(g.prePassBarriers[rec.passIdentifier], gpu.BarrierDescriptor{
					SrcStageMask: t.Old.Stages,
					DstStageMask: t.New.Stages,
					BufferBarriers: []gpu.BufferMemoryBarrier{{
						Buffer: res.Handle, SrcAccess: t.Old.Access, DstAccess: t.New.Access,
						Offset: t.Range.Offset, Size: t.Range.End - t.Range.Offset,
					}},
				})
			}
		}
		res.startState = state.NewBufferStateMachine()
		res.endState = sm.Clone()
	}

	for passID, barriers := range g.prePassBarriers {
		g.prePassBarriers[passID] = mergeBarriers(barriers)
	}
}

// subresourceStateOf projects a pass's declared texture consume entry to the (stage,
// access, layout) triple the texture state machine tracks.
func subresourceStateOf(e pass.TextureConsumeEntry) state.SubresourceState {
	return state.SubresourceState{Stages: e.Stages, Access: e.Access, Layout: e.Layout}
}

// mergeBarriers runs barrier merging: coalesce barriers with identical
// (srcStageMask, dstStageMask) by concatenating their sub-barrier vectors, then merge
// adjacent image sub-barriers with identical image/access/layout within the resulting
// bucket.
func mergeBarriers(in []gpu.BarrierDescriptor) []gpu.BarrierDescriptor {
	type key struct {
		src, dst gpu.PipelineStage
	}
	order := make([]key, 0, len(in))
	buckets := make(map[key]*gpu.BarrierDescriptor, len(in))
	for _, b := range in {
		k := key{b.SrcStageMask, b.DstStageMask}
		if existing, ok := buckets[k]; ok {
			existing.BufferBarriers = append(existing.BufferBarriers, b.BufferBarriers...)
			existing.TextureBarriers = append(existing.TextureBarriers, b.TextureBarriers...)
			continue
		}
		cp := b
		buckets[k] = &cp
		order = append(order, k)
	}

	out := make([]gpu.BarrierDescriptor, 0, len(order))
	for _, k := range order {
		b := buckets[k]
		b.TextureBarriers = mergeTextureSubBarriers(b.TextureBarriers)
		out = append(out, *b)
	}
	return out
}

// mergeTextureSubBarriers coalesces sub-barriers that share an image, aspect, access pair,
// and layout pair whose subresource ranges are axis-adjacent — the per-bucket half of
// barrier merging.
func mergeTextureSubBarriers(in []gpu.TextureMemoryBarrier) []gpu.TextureMemoryBarrier {
	out := append([]gpu.TextureMemoryBarrier(nil), in...)
	for {
		merged := false
		for i := 0; i < len(out) && !merged; i++ {
			for j := i + 1; j < len(out); j++ {
				if combined, ok := mergeAdjacentTextureBarrier(out[i], out[j]); ok {
					out[i] = combined
					out = append(out[:j], out[j+1:]...)
					merged = true
					break
				}
			}
		}
		if !merged {
			break
		}
	}
	return out
}

func mergeAdjacentTextureBarrier(a, b gpu.TextureMemoryBarrier) (gpu.TextureMemoryBarrier, bool) {
	if a.Texture != b.Texture || a.Aspect != b.Aspect || a.SrcAccess != b.SrcAccess ||
		a.DstAccess != b.DstAccess || a.OldLayout != b.OldLayout || a.NewLayout != b.NewLayout {
		return gpu.TextureMemoryBarrier{}, false
	}
	if a.LayerBeg == b.LayerBeg && a.LayerCount == b.LayerCount {
		if a.MipBeg+a.MipCount == b.MipBeg {
			a.MipCount += b.MipCount
			return a, true
		}
		if b.MipBeg+b.MipCount == a.MipBeg {
			a.MipBeg = b.MipBeg
			a.MipCount += b.MipCount
			return a, true
		}
	}
	if a.MipBeg == b.MipBeg && a.MipCount == b.MipCount {
		if a.LayerBeg+a.LayerCount == b.LayerBeg {
			a.LayerCount += b.LayerCount
			return a, true
		}
		if b.LayerBeg+b.LayerCount == a.LayerBeg {
			a.LayerBeg = b.LayerBeg
			a.LayerCount += b.LayerCount
			return a, true
		}
	}
	return gpu.TextureMemoryBarrier{}, false
}
