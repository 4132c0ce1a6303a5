package state

import (
	"testing"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
)

func countKind(transitions []BufferTransition, kind HazardKind) int {
	n := 0
	for _, t := range transitions {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

// TestBufferStateMachineHazardDiscrimination is testable property 5: writer then reader on
// the same range emits exactly one RAW; two writers emits one WAW; reader then writer emits
// one WAR; two readers emit zero barriers.
func TestBufferStateMachineHazardDiscrimination(t *testing.T) {
	full := ByteRange{Offset: 0, End: 256}
	write := BufferAccessState{Stages: gpu.StageComputeShader, Access: gpu.AccessShaderWrite}
	read := BufferAccessState{Stages: gpu.StageFragmentShader, Access: gpu.AccessShaderRead}

	t.Run("writer then reader = RAW", func(t *testing.T) {
		m := NewBufferStateMachine()
		m.UpdateSubresource(full, write)
		got := m.UpdateSubresource(full, read)
		if n := countKind(got, HazardRAW); n != 1 {
			t.Fatalf("RAW count = %d, want 1 (%+v)", n, got)
		}
		if len(got) != 1 {
			t.Fatalf("total barriers = %d, want 1", len(got))
		}
	})

	t.Run("writer then writer = WAW", func(t *testing.T) {
		m := NewBufferStateMachine()
		m.UpdateSubresource(full, write)
		got := m.UpdateSubresource(full, write)
		if n := countKind(got, HazardWAW); n != 1 {
			t.Fatalf("WAW count = %d, want 1 (%+v)", n, got)
		}
		if len(got) != 1 {
			t.Fatalf("total barriers = %d, want 1", len(got))
		}
	})

	t.Run("reader then writer = WAR", func(t *testing.T) {
		m := NewBufferStateMachine()
		m.UpdateSubresource(full, read)
		got := m.UpdateSubresource(full, write)
		if n := countKind(got, HazardWAR); n != 1 {
			t.Fatalf("WAR count = %d, want 1 (%+v)", n, got)
		}
		if len(got) != 1 {
			t.Fatalf("total barriers = %d, want 1", len(got))
		}
	})

	t.Run("reader then reader = none", func(t *testing.T) {
		m := NewBufferStateMachine()
		m.UpdateSubresource(full, read)
		got := m.UpdateSubresource(full, read)
		if len(got) != 0 {
			t.Fatalf("total barriers = %d, want 0 (%+v)", len(got), got)
		}
	})
}

// TestBufferStateMachineReadReadFanIn is scenario D: W writes B, then R1 reads, then R2
// reads. Between W and R1: one RAW. Between R1 and R2: zero.
func TestBufferStateMachineReadReadFanIn(t *testing.T) {
	m := NewBufferStateMachine()
	full := ByteRange{Offset: 0, End: 1024}
	write := BufferAccessState{Stages: gpu.StageComputeShader, Access: gpu.AccessShaderWrite}
	read := BufferAccessState{Stages: gpu.StageFragmentShader, Access: gpu.AccessShaderRead}

	m.UpdateSubresource(full, write)

	r1 := m.UpdateSubresource(full, read)
	if n := countKind(r1, HazardRAW); n != 1 || len(r1) != 1 {
		t.Fatalf("R1 barriers = %+v, want exactly one RAW", r1)
	}

	r2 := m.UpdateSubresource(full, read)
	if len(r2) != 0 {
		t.Fatalf("R2 barriers = %+v, want none", r2)
	}
}

func TestBufferStateMachineWriteClearsReaders(t *testing.T) {
	m := NewBufferStateMachine()
	full := ByteRange{Offset: 0, End: 64}
	write := BufferAccessState{Stages: gpu.StageComputeShader, Access: gpu.AccessShaderWrite}
	read := BufferAccessState{Stages: gpu.StageFragmentShader, Access: gpu.AccessShaderRead}

	m.UpdateSubresource(full, read)
	m.UpdateSubresource(full, write)

	if len(m.readers) != 0 {
		t.Fatalf("readers should be cleared after a write, got %+v", m.readers)
	}
	if len(m.writers) != 1 {
		t.Fatalf("expected one writer entry, got %+v", m.writers)
	}
}

func TestBufferStateMachineNonOverlappingRangesIndependent(t *testing.T) {
	m := NewBufferStateMachine()
	write := BufferAccessState{Stages: gpu.StageComputeShader, Access: gpu.AccessShaderWrite}

	m.UpdateSubresource(ByteRange{Offset: 0, End: 64}, write)
	got := m.UpdateSubresource(ByteRange{Offset: 64, End: 128}, write)
	if len(got) != 0 {
		t.Fatalf("disjoint write ranges should not hazard, got %+v", got)
	}
}
