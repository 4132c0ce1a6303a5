package rdg

import (
	"fmt"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/pass"
)

// Execute runs the graph's execution driver. It must run after a successful Build.
// Physical textures persist their GPU-side state (gpuState) across calls, so:
//  1. every physical texture is transitioned from its persisted gpuState into the graph's
//     entry state (startState) — on the first call from UNDEFINED, on later calls from the
//     endState that step 3 below persisted;
//  2. the flattened pass order is walked, each pass's precomputed pre-pass barriers are
//     submitted, a debug marker scoped to the pass's identifier and DebugColor wraps its
//     Execute call;
//  3. every physical texture's gpuState is advanced to its endState, so the next Execute call
//     starts from where this one left off.
//
// Buffers are not carried across Execute calls (only physical textures get an entry-state
// transition); a buffer's hazard tracking exists purely to minimize in-frame barriers and
// resets at Build.
func (g *Graph) Execute(ctx *pass.Context) error {
	if !g.built {
		return fmt.Errorf("rdg: execute: graph has not been built")
	}

	ctx.Resources = g
	g.transitionTexturesToEntryState(ctx.Encoder)

	for _, passID := range g.flattened {
		n, ok := g.nodes[passID]
		if !ok {
			return fmt.Errorf("rdg: execute: flattened pass %q not found", passID)
		}

		for _, b := range g.prePassBarriers[passID] {
			if b.Empty() {
				continue
			}
			ctx.Encoder.PipelineBarrier(b)
		}

		color := [3]float32{}
		if base, ok := n.p.(interface{ DebugColor() [3]float32 }); ok {
			color = base.DebugColor()
		}
		ctx.Encoder.PushDebugGroup(passID, color)
		if err := n.p.Execute(ctx); err != nil {
			ctx.Encoder.PopDebugGroup()
			return fmt.Errorf("rdg: execute: pass %q: %w", passID, err)
		}
		ctx.Encoder.PopDebugGroup()
	}

	g.persistTextureEndStates()
	return nil
}

// transitionTexturesToEntryState moves every physical texture from its last-persisted
// gpuState into its computed startState, submitting whatever barriers that transition emits.
func (g *Graph) transitionTexturesToEntryState(enc gpu.CommandEncoder) {
	for _, key := range g.textureOrder {
		res := g.textures[key]
		if res.startState == nil || res.gpuState == nil {
			continue
		}
		transitions := res.gpuState.Transition(res.startState)
		for _, t := range transitions {
			enc.PipelineBarrier(gpu.BarrierDescriptor{
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
}

// persistTextureEndStates folds each physical texture's endState into its gpuState, so the
// next Execute call's entry transition starts from where this call left off.
func (g *Graph) persistTextureEndStates() {
	for _, key := range g.textureOrder {
		res := g.textures[key]
		if res.endState == nil {
			continue
		}
		res.gpuState = res.endState.Clone()
	}
}
