package state

import (
	"sort"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
)

// ByteRange is a half-open byte interval [Offset, End) within a buffer.
type ByteRange struct {
	Offset, End uint64
}

// Empty reports whether the range covers no bytes.
func (r ByteRange) Empty() bool { return r.Offset >= r.End }

// Intersect returns the overlapping interval of r and o, and whether it is non-empty.
func (r ByteRange) Intersect(o ByteRange) (ByteRange, bool) {
	i := ByteRange{Offset: maxU64(r.Offset, o.Offset), End: minU64(r.End, o.End)}
	if i.Empty() {
		return ByteRange{}, false
	}
	return i, true
}

// BufferAccessState is the (stage mask, access mask) pair a buffer state machine tracks
// for one byte range's most recent writer or reader.
type BufferAccessState struct {
	Stages gpu.PipelineStage
	Access gpu.AccessFlag
}

// HazardKind identifies which of the three buffer hazard kinds a BufferTransition resolves.
type HazardKind int

const (
	HazardWAW HazardKind = iota
	HazardWAR
	HazardRAW
)

// BufferTransition is one emitted barrier over a byte range, discriminated by hazard kind.
type BufferTransition struct {
	Range ByteRange
	Kind  HazardKind
	Old   BufferAccessState
	New   BufferAccessState
}

type bufferEntry struct {
	Range ByteRange
	State BufferAccessState
}

// BufferStateMachine tracks the most recent writers and readers of a buffer's byte ranges
// independently — unlike the texture state machine, it keeps two parallel lists rather than
// one partition, to discriminate RAW/WAR/WAW hazards.
type BufferStateMachine struct {
	writers []bufferEntry
	readers []bufferEntry
}

// NewBufferStateMachine creates an empty buffer state machine: no writer or reader has
// touched any byte range yet, so the first update on any range emits no hazard barriers.
func NewBufferStateMachine() *BufferStateMachine {
	return &BufferStateMachine{}
}

// UpdateSubresource applies an incoming access s over byte range r: emit WAW/WAR against any
// write component, RAW against any read component, then update the writer list (clearing
// overlapping readers on write) and OR-merge the reader list.
func (m *BufferStateMachine) UpdateSubresource(r ByteRange, s BufferAccessState) []BufferTransition {
	var transitions []BufferTransition

	sw := gpu.WriteAccess(s.Access)
	sr := gpu.ReadAccess(s.Access)

	if sw != 0 {
		for _, w := range m.writers {
			if inter, ok := w.Range.Intersect(r); ok {
				transitions = append(transitions, BufferTransition{Range: inter, Kind: HazardWAW, Old: w.State, New: s})
			}
		}
		for _, rd := range m.readers {
			if inter, ok := rd.Range.Intersect(r); ok {
				transitions = append(transitions, BufferTransition{Range: inter, Kind: HazardWAR, Old: rd.State, New: s})
			}
		}
	}
	if sr != 0 {
		for _, w := range m.writers {
			inter, ok := w.Range.Intersect(r)
			if !ok {
				continue
			}
			for _, piece := range m.unsyncedAgainstReaders(inter, s) {
				transitions = append(transitions, BufferTransition{Range: piece, Kind: HazardRAW, Old: w.State, New: s})
			}
		}
	}

	if sw != 0 {
		m.writers = replaceOverlap(m.writers, r, s)
		m.readers = clearOverlap(m.readers, r)
	}
	if sr != 0 {
		m.readers = orMergeOverlap(m.readers, r, s)
	}

	return transitions
}

// replaceOverlap clips every entry overlapping r to its non-overlapping pieces and inserts
// a fresh entry covering all of r with newState — the writer-list update of step 4.
func replaceOverlap(entries []bufferEntry, r ByteRange, newState BufferAccessState) []bufferEntry {
	var result []bufferEntry
	for _, e := range entries {
		inter, ok := e.Range.Intersect(r)
		if !ok {
			result = append(result, e)
			continue
		}
		for _, piece := range diffByteRange(e.Range, inter) {
			result = append(result, bufferEntry{Range: piece, State: e.State})
		}
	}
	result = append(result, bufferEntry{Range: r, State: newState})
	return mergeByteEntries(result)
}

// clearOverlap clips every entry overlapping r to its non-overlapping pieces without adding
// anything back — "on write, clear the reader list over R".
func clearOverlap(entries []bufferEntry, r ByteRange) []bufferEntry {
	var result []bufferEntry
	for _, e := range entries {
		inter, ok := e.Range.Intersect(r)
		if !ok {
			result = append(result, e)
			continue
		}
		for _, piece := range diffByteRange(e.Range, inter) {
			result = append(result, bufferEntry{Range: piece, State: e.State})
		}
	}
	return mergeByteEntries(result)
}

// orMergeOverlap OR-merges incoming into every entry overlapping r (so chained reads never
// raise hazards among themselves) and fills any part of r not yet covered by a reader with a
// fresh entry carrying just the incoming state.
func orMergeOverlap(entries []bufferEntry, r ByteRange, incoming BufferAccessState) []bufferEntry {
	var result []bufferEntry
	var covered []ByteRange
	for _, e := range entries {
		inter, ok := e.Range.Intersect(r)
		if !ok {
			result = append(result, e)
			continue
		}
		for _, piece := range diffByteRange(e.Range, inter) {
			result = append(result, bufferEntry{Range: piece, State: e.State})
		}
		result = append(result, bufferEntry{
			Range: inter,
			State: BufferAccessState{Stages: e.State.Stages | incoming.Stages, Access: e.State.Access | incoming.Access},
		})
		covered = append(covered, inter)
	}
	for _, u := range subtractRanges(r, covered) {
		result = append(result, bufferEntry{Range: u, State: incoming})
	}
	return mergeByteEntries(result)
}

// unsyncedAgainstReaders returns the sub-ranges of r that still need a RAW barrier against
// incoming: any piece already covered by an existing reader entry whose (stages, access)
// already superset incoming's has already been synchronized by that prior read (commands
// within one queue execute in submission order, so a later read issued after an earlier one
// that already waited on the writer needs no second wait) and is excluded. A fresh read, or a
// read widening the synchronized stage/access set, still needs a barrier over the
// not-yet-covered portion.
func (m *BufferStateMachine) unsyncedAgainstReaders(r ByteRange, incoming BufferAccessState) []ByteRange {
	remaining := []ByteRange{r}
	for _, rd := range m.readers {
		if !coversAccess(rd.State, incoming) {
			continue
		}
		inter, ok := rd.Range.Intersect(r)
		if !ok {
			continue
		}
		var next []ByteRange
		for _, piece := range remaining {
			pi, ok := piece.Intersect(inter)
			if !ok {
				next = append(next, piece)
				continue
			}
			next = append(next, diffByteRange(piece, pi)...)
		}
		remaining = next
	}
	return remaining
}

// coversAccess reports whether have already carries every stage/access bit want needs, i.e.
// a barrier already synchronized against at least this much.
func coversAccess(have, want BufferAccessState) bool {
	return have.Stages&want.Stages == want.Stages && have.Access&want.Access == want.Access
}

// diffByteRange returns the pieces of whole not covered by sub (sub must be a subset of
// whole): at most a left remainder and a right remainder.
func diffByteRange(whole, sub ByteRange) []ByteRange {
	var pieces []ByteRange
	if whole.Offset < sub.Offset {
		pieces = append(pieces, ByteRange{Offset: whole.Offset, End: sub.Offset})
	}
	if sub.End < whole.End {
		pieces = append(pieces, ByteRange{Offset: sub.End, End: whole.End})
	}
	return pieces
}

// subtractRanges removes every range in cut (assumed pairwise disjoint, as they come from a
// single non-overlapping entry list) from r, returning the remaining pieces in offset order.
func subtractRanges(r ByteRange, cut []ByteRange) []ByteRange {
	remaining := []ByteRange{r}
	for _, c := range cut {
		var next []ByteRange
		for _, piece := range remaining {
			inter, ok := piece.Intersect(c)
			if !ok {
				next = append(next, piece)
				continue
			}
			next = append(next, diffByteRange(piece, inter)...)
		}
		remaining = next
	}
	return remaining
}

// mergeByteEntries sorts by offset and coalesces adjacent entries with identical state.
func mergeByteEntries(entries []bufferEntry) []bufferEntry {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Range.Offset < entries[j].Range.Offset })
	var merged []bufferEntry
	for _, e := range entries {
		if e.Range.Empty() {
			continue
		}
		if n := len(merged); n > 0 && merged[n-1].State == e.State && merged[n-1].Range.End == e.Range.Offset {
			merged[n-1].Range.End = e.Range.End
			continue
		}
		merged = append(merged, e)
	}
	return merged
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
