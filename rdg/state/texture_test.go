package state

import (
	"testing"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
)

// totalSubresources sums up the subresource count covered by the machine's current entries —
// used to check the coverage invariant without depending on entry ordering.
func totalSubresources(m *TextureStateMachine) uint64 {
	var total uint64
	for _, e := range m.Entries() {
		total += uint64(e.Range.MipEnd-e.Range.MipBeg) * uint64(e.Range.LayerEnd-e.Range.LayerBeg)
	}
	return total
}

func TestTextureStateMachineCoverageInvariant(t *testing.T) {
	m := NewTextureStateMachine(4, 1)
	if got, want := totalSubresources(m), uint64(4); got != want {
		t.Fatalf("initial coverage = %d, want %d", got, want)
	}

	m.UpdateSubresource(SubresourceRange{MipBeg: 0, MipEnd: 1, LayerBeg: 0, LayerEnd: 1},
		SubresourceState{Stages: gpu.StageFragmentShader, Access: gpu.AccessShaderRead, Layout: gpu.LayoutShaderReadOnlyOptimal})

	if got, want := totalSubresources(m), uint64(4); got != want {
		t.Fatalf("coverage after partial update = %d, want %d", got, want)
	}

	// No two entries may overlap.
	entries := m.Entries()
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if _, ok := entries[i].Range.Intersect(entries[j].Range); ok {
				t.Fatalf("entries %d and %d overlap: %+v, %+v", i, j, entries[i].Range, entries[j].Range)
			}
		}
	}
}

func TestTextureStateMachineBarrierMinimality(t *testing.T) {
	m := NewTextureStateMachine(1, 1)
	full := SubresourceRange{MipBeg: 0, MipEnd: 1, LayerBeg: 0, LayerEnd: 1}
	s := SubresourceState{Stages: gpu.StageFragmentShader, Access: gpu.AccessShaderRead, Layout: gpu.LayoutShaderReadOnlyOptimal}

	if n := len(m.UpdateSubresource(full, s)); n != 1 {
		t.Fatalf("first update emitted %d barriers, want 1", n)
	}
	if n := len(m.UpdateSubresource(full, s)); n != 0 {
		t.Fatalf("redundant update emitted %d barriers, want 0", n)
	}
}

func TestTextureStateMachineMergeCorrectness(t *testing.T) {
	m := NewTextureStateMachine(4, 1)
	s := SubresourceState{Stages: gpu.StageFragmentShader, Access: gpu.AccessShaderRead, Layout: gpu.LayoutShaderReadOnlyOptimal}
	m.UpdateSubresource(SubresourceRange{MipBeg: 0, MipEnd: 4, LayerBeg: 0, LayerEnd: 1}, s)

	entries := m.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected single merged entry, got %d: %+v", len(entries), entries)
	}
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].State == entries[j].State {
				if _, ok := mergeAdjacent(entries[i].Range, entries[j].Range); ok {
					t.Fatalf("entries %d and %d should have been merged", i, j)
				}
			}
		}
	}
}

// TestTextureStateMachineSplitSubresource is scenario C: a 4-mip, 1-layer texture. Apply
// update_subresource(mip 0..4, layer 0..1, S1) to establish full coverage, then
// update_subresource(mip 1..3, layer 0..1, S2), which must split the surviving S1 entry into
// a mip-before and mip-after piece.
func TestTextureStateMachineSplitSubresource(t *testing.T) {
	m := NewTextureStateMachine(4, 1)
	s1 := SubresourceState{Stages: gpu.StageFragmentShader, Access: gpu.AccessShaderRead, Layout: gpu.LayoutShaderReadOnlyOptimal}
	s2 := SubresourceState{Stages: gpu.StageColorAttachmentOutput, Access: gpu.AccessColorAttachmentWrite, Layout: gpu.LayoutColorAttachmentOptimal}

	m.UpdateSubresource(SubresourceRange{MipBeg: 0, MipEnd: 4, LayerBeg: 0, LayerEnd: 1}, s1)

	second := m.UpdateSubresource(SubresourceRange{MipBeg: 1, MipEnd: 3, LayerBeg: 0, LayerEnd: 1}, s2)
	if len(second) != 1 {
		t.Fatalf("second update emitted %d barriers, want 1", len(second))
	}

	entries := m.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries after split, got %d: %+v", len(entries), entries)
	}

	want := map[SubresourceRange]SubresourceState{
		{MipBeg: 0, MipEnd: 1, LayerBeg: 0, LayerEnd: 1}: s1,
		{MipBeg: 1, MipEnd: 3, LayerBeg: 0, LayerEnd: 1}: s2,
		{MipBeg: 3, MipEnd: 4, LayerBeg: 0, LayerEnd: 1}: s1,
	}
	for _, e := range entries {
		expect, ok := want[e.Range]
		if !ok {
			t.Fatalf("unexpected range %+v in result", e.Range)
		}
		if e.State != expect {
			t.Fatalf("range %+v has state %+v, want %+v", e.Range, e.State, expect)
		}
	}
}
