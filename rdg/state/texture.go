// Package state implements the per-subresource resource state machines that track the
// current (pipeline-stage, access, layout) triple of a texture or the current writer/reader
// set of a buffer, emitting the minimal set of barriers a consumer change requires.
package state

import (
	"sort"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
)

// SubresourceRange is a rectangle in (mip, layer) space, half-open on both axes.
type SubresourceRange struct {
	MipBeg, MipEnd     uint32
	LayerBeg, LayerEnd uint32
}

// Empty reports whether the range covers no subresources.
func (r SubresourceRange) Empty() bool {
	return r.MipBeg >= r.MipEnd || r.LayerBeg >= r.LayerEnd
}

// Equal reports whether two ranges cover exactly the same subresources.
func (r SubresourceRange) Equal(o SubresourceRange) bool {
	return r == o
}

// Intersect returns the overlapping rectangle of r and o, and whether it is non-empty.
func (r SubresourceRange) Intersect(o SubresourceRange) (SubresourceRange, bool) {
	i := SubresourceRange{
		MipBeg:   max32(r.MipBeg, o.MipBeg),
		MipEnd:   min32(r.MipEnd, o.MipEnd),
		LayerBeg: max32(r.LayerBeg, o.LayerBeg),
		LayerEnd: min32(r.LayerEnd, o.LayerEnd),
	}
	if i.Empty() {
		return SubresourceRange{}, false
	}
	return i, true
}

// SubresourceState is the (stage mask, access mask, layout) triple a texture state machine
// tracks for one subresource range.
type SubresourceState struct {
	Stages gpu.PipelineStage
	Access gpu.AccessFlag
	Layout gpu.ImageLayout
}

// TextureTransition is one emitted barrier: a state change on a specific subresource range.
// The texture state machine is not bound to a concrete *gpu.Texture — the graph attaches the
// texture handle when it turns these into gpu.TextureMemoryBarrier values.
type TextureTransition struct {
	Range SubresourceRange
	Old   SubresourceState
	New   SubresourceState
}

type textureEntry struct {
	Range SubresourceRange
	State SubresourceState
}

// TextureStateMachine tracks the current state of every subresource of one texture. Its
// entries always partition the full (mip, layer) rectangle exactly: the union of every
// entry's range is the whole texture, and no two entries' ranges intersect.
type TextureStateMachine struct {
	entries []textureEntry
}

// NewTextureStateMachine creates a state machine covering mipCount mips and layerCount array
// layers, with a single initial entry (ALL_COMMANDS, no access, UNDEFINED layout) — the state
// every subresource starts in before the graph's first consumer touches it.
func NewTextureStateMachine(mipCount, layerCount uint32) *TextureStateMachine {
	return &TextureStateMachine{
		entries: []textureEntry{{
			Range: SubresourceRange{MipBeg: 0, MipEnd: mipCount, LayerBeg: 0, LayerEnd: layerCount},
			State: SubresourceState{Stages: gpu.StageAllCommands, Access: gpu.AccessNone, Layout: gpu.LayoutUndefined},
		}},
	}
}

// Entries returns a snapshot of the current (range, state) partition, sorted by (mip, layer)
// for deterministic inspection in tests.
func (m *TextureStateMachine) Entries() []struct {
	Range SubresourceRange
	State SubresourceState
} {
	out := make([]struct {
		Range SubresourceRange
		State SubresourceState
	}, len(m.entries))
	for i, e := range m.entries {
		out[i] = struct {
			Range SubresourceRange
			State SubresourceState
		}{e.Range, e.State}
	}
	return out
}

// UpdateSubresource transitions range r to state s, emitting one TextureTransition per
// existing entry whose range overlaps r. Entries whose range is disjoint from r are left
// untouched. When an existing entry's range exactly equals r, exactly one transition is
// emitted and the scan stops immediately — the partition invariant guarantees no other entry
// can overlap r in that case, so property 4 (barrier minimality) holds for a no-op update.
func (m *TextureStateMachine) UpdateSubresource(r SubresourceRange, s SubresourceState) []TextureTransition {
	var transitions []TextureTransition
	var kept []textureEntry
	var added []textureEntry

	for _, e := range m.entries {
		if e.Range.Equal(r) {
			if e.State != s {
				transitions = append(transitions, TextureTransition{Range: r, Old: e.State, New: s})
			}
			// Exact match: by the partition invariant no other entry can intersect r, so every
			// other entry is carried over unchanged.
			out := make([]textureEntry, 0, len(m.entries))
			for _, rest := range m.entries {
				if rest.Range.Equal(e.Range) {
					out = append(out, textureEntry{Range: r, State: s})
					continue
				}
				out = append(out, rest)
			}
			m.entries = out
			m.tryMerge()
			return transitions
		}

		inter, ok := e.Range.Intersect(r)
		if !ok {
			kept = append(kept, e)
			continue
		}

		if e.State != s {
			transitions = append(transitions, TextureTransition{Range: inter, Old: e.State, New: s})
		}
		added = append(added, textureEntry{Range: inter, State: s})
		for _, piece := range diffSubresourceRange(e.Range, inter) {
			added = append(added, textureEntry{Range: piece, State: e.State})
		}
	}

	m.entries = append(kept, added...)
	m.tryMerge()
	return transitions
}

// Transition applies every entry of other, in order, to m and returns the concatenated
// barrier list. Used at graph boundaries to move a resource from its GPU-side persisted
// state into the graph's entry state (and vice versa at the end of execution).
func (m *TextureStateMachine) Transition(other *TextureStateMachine) []TextureTransition {
	var all []TextureTransition
	for _, e := range other.entries {
		all = append(all, m.UpdateSubresource(e.Range, e.State)...)
	}
	return all
}

// diffSubresourceRange returns the pieces of whole not covered by sub (sub must be a subset
// of whole). Pieces outside sub's mip range are produced first, then pieces inside sub's mip
// range but outside sub's layer range, though correctness does not depend on the order.
func diffSubresourceRange(whole, sub SubresourceRange) []SubresourceRange {
	var pieces []SubresourceRange
	if whole.MipBeg < sub.MipBeg {
		pieces = append(pieces, SubresourceRange{
			MipBeg: whole.MipBeg, MipEnd: sub.MipBeg,
			LayerBeg: whole.LayerBeg, LayerEnd: whole.LayerEnd,
		})
	}
	if sub.MipEnd < whole.MipEnd {
		pieces = append(pieces, SubresourceRange{
			MipBeg: sub.MipEnd, MipEnd: whole.MipEnd,
			LayerBeg: whole.LayerBeg, LayerEnd: whole.LayerEnd,
		})
	}
	if whole.LayerBeg < sub.LayerBeg {
		pieces = append(pieces, SubresourceRange{
			MipBeg: sub.MipBeg, MipEnd: sub.MipEnd,
			LayerBeg: whole.LayerBeg, LayerEnd: sub.LayerBeg,
		})
	}
	if sub.LayerEnd < whole.LayerEnd {
		pieces = append(pieces, SubresourceRange{
			MipBeg: sub.MipBeg, MipEnd: sub.MipEnd,
			LayerBeg: sub.LayerEnd, LayerEnd: whole.LayerEnd,
		})
	}
	return pieces
}

// tryMerge repeatedly coalesces adjacent entries with identical state until no merge
// applies — property 3 (merge correctness).
func (m *TextureStateMachine) tryMerge() {
	sort.Slice(m.entries, func(i, j int) bool {
		if m.entries[i].Range.MipBeg != m.entries[j].Range.MipBeg {
			return m.entries[i].Range.MipBeg < m.entries[j].Range.MipBeg
		}
		return m.entries[i].Range.LayerBeg < m.entries[j].Range.LayerBeg
	})

	for {
		merged := false
		for i := 0; i < len(m.entries) && !merged; i++ {
			for j := i + 1; j < len(m.entries); j++ {
				a, b := m.entries[i], m.entries[j]
				if a.State != b.State {
					continue
				}
				if combined, ok := mergeAdjacent(a.Range, b.Range); ok {
					m.entries[i] = textureEntry{Range: combined, State: a.State}
					m.entries = append(m.entries[:j], m.entries[j+1:]...)
					merged = true
					break
				}
			}
		}
		if !merged {
			break
		}
		sort.Slice(m.entries, func(i, j int) bool {
			if m.entries[i].Range.MipBeg != m.entries[j].Range.MipBeg {
				return m.entries[i].Range.MipBeg < m.entries[j].Range.MipBeg
			}
			return m.entries[i].Range.LayerBeg < m.entries[j].Range.LayerBeg
		})
	}
}

// mergeAdjacent reports whether a and b are axis-adjacent and identical on the other axis,
// returning the combined rectangle if so.
func mergeAdjacent(a, b SubresourceRange) (SubresourceRange, bool) {
	if a.LayerBeg == b.LayerBeg && a.LayerEnd == b.LayerEnd {
		if a.MipEnd == b.MipBeg {
			return SubresourceRange{MipBeg: a.MipBeg, MipEnd: b.MipEnd, LayerBeg: a.LayerBeg, LayerEnd: a.LayerEnd}, true
		}
		if b.MipEnd == a.MipBeg {
			return SubresourceRange{MipBeg: b.MipBeg, MipEnd: a.MipEnd, LayerBeg: a.LayerBeg, LayerEnd: a.LayerEnd}, true
		}
	}
	if a.MipBeg == b.MipBeg && a.MipEnd == b.MipEnd {
		if a.LayerEnd == b.LayerBeg {
			return SubresourceRange{MipBeg: a.MipBeg, MipEnd: a.MipEnd, LayerBeg: a.LayerBeg, LayerEnd: b.LayerEnd}, true
		}
		if b.LayerEnd == a.LayerBeg {
			return SubresourceRange{MipBeg: a.MipBeg, MipEnd: a.MipEnd, LayerBeg: b.LayerBeg, LayerEnd: a.LayerEnd}, true
		}
	}
	return SubresourceRange{}, false
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
