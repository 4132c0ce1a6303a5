package pass

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
)

// SetBinding addresses one (descriptor set, binding) slot.
type SetBinding struct {
	Set     uint32
	Binding uint32
}

// BindingEntry is the combined reflection record for one (set, binding) slot.
type BindingEntry struct {
	Type           gpu.BindingType
	Visibility     gpu.ShaderStage
	NotReadable    bool
	NotWritable    bool
	MinBindingSize uint64
}

// NamedBinding records the (set, binding, type) a binding's shader-source variable name
// resolves to.
type NamedBinding struct {
	Set     uint32
	Binding uint32
	Type    gpu.BindingType
}

// ShaderReflection is the combined per-binding, per-push-constant-range, and per-name
// reflection of one or more shader stages, built up via Merge: visibility masks OR together,
// not-readable/not-writable flags AND together, push-constant
// ranges with identical offsets merge and then coalesce when adjacent, and the name map is
// unioned (conflicting names are a build-time error).
type ShaderReflection struct {
	Bindings      map[SetBinding]BindingEntry
	PushConstants []gpu.PushConstantRange
	Names         map[string]NamedBinding
}

// NewShaderReflection creates an empty reflection.
func NewShaderReflection() *ShaderReflection {
	return &ShaderReflection{Bindings: make(map[SetBinding]BindingEntry), Names: make(map[string]NamedBinding)}
}

// Merge combines r and other into a fresh ShaderReflection. It returns an error (a
// compatibility error) if the two reflections declare incompatible types at the same slot,
// or the same binding name at different slots.
func (r *ShaderReflection) Merge(other *ShaderReflection) (*ShaderReflection, error) {
	out := NewShaderReflection()
	for sb, e := range r.Bindings {
		out.Bindings[sb] = e
	}
	for sb, e := range other.Bindings {
		existing, ok := out.Bindings[sb]
		if !ok {
			out.Bindings[sb] = e
			continue
		}
		if existing.Type != e.Type {
			return nil, fmt.Errorf("pass: binding conflict at set %d binding %d: %v vs %v", sb.Set, sb.Binding, existing.Type, e.Type)
		}
		out.Bindings[sb] = BindingEntry{
			Type:           existing.Type,
			Visibility:     existing.Visibility | e.Visibility,
			NotReadable:    existing.NotReadable && e.NotReadable,
			NotWritable:    existing.NotWritable && e.NotWritable,
			MinBindingSize: maxU64(existing.MinBindingSize, e.MinBindingSize),
		}
	}

	out.PushConstants = mergePushConstants(r.PushConstants, other.PushConstants)

	for name, nb := range r.Names {
		out.Names[name] = nb
	}
	for name, nb := range other.Names {
		if existing, ok := out.Names[name]; ok && existing != nb {
			return nil, fmt.Errorf("pass: binding name %q declared at conflicting slots", name)
		}
		out.Names[name] = nb
	}

	return out, nil
}

// mergePushConstants appends a and b's ranges, merges ranges with identical offsets by
// OR-ing their stage masks, then sorts by offset and coalesces ranges that abut.
func mergePushConstants(a, b []gpu.PushConstantRange) []gpu.PushConstantRange {
	byOffset := make(map[uint32]gpu.PushConstantRange)
	order := make([]uint32, 0, len(a)+len(b))
	for _, list := range [][]gpu.PushConstantRange{a, b} {
		for _, r := range list {
			if existing, ok := byOffset[r.Offset]; ok {
				existing.Stages |= r.Stages
				if r.Size > existing.Size {
					existing.Size = r.Size
				}
				byOffset[r.Offset] = existing
				continue
			}
			byOffset[r.Offset] = r
			order = append(order, r.Offset)
		}
	}

	merged := make([]gpu.PushConstantRange, 0, len(byOffset))
	for _, off := range order {
		merged = append(merged, byOffset[off])
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Offset < merged[j].Offset })

	var coalesced []gpu.PushConstantRange
	for _, r := range merged {
		if n := len(coalesced); n > 0 {
			prev := coalesced[n-1]
			if prev.Offset+prev.Size == r.Offset {
				prev.Size += r.Size
				prev.Stages |= r.Stages
				coalesced[n-1] = prev
				continue
			}
		}
		coalesced = append(coalesced, r)
	}
	return coalesced
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
