package pass

import (
	"reflect"
	"testing"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
)

func sampleReflection() *ShaderReflection {
	r := NewShaderReflection()
	r.Bindings[SetBinding{Set: 0, Binding: 0}] = BindingEntry{
		Type: gpu.BindingTypeUniformBuffer, Visibility: gpu.ShaderStageVertex, NotWritable: true,
	}
	r.PushConstants = []gpu.PushConstantRange{{Stages: gpu.ShaderStageVertex, Offset: 0, Size: 16}}
	r.Names["camera"] = NamedBinding{Set: 0, Binding: 0, Type: gpu.BindingTypeUniformBuffer}
	return r
}

// TestReflectionCompositionIdentity is testable property 7: A + empty == A up to field
// equality.
func TestReflectionCompositionIdentity(t *testing.T) {
	a := sampleReflection()
	empty := NewShaderReflection()

	merged, err := a.Merge(empty)
	if err != nil {
		t.Fatalf("merge with empty failed: %v", err)
	}
	if !reflect.DeepEqual(merged.Bindings, a.Bindings) {
		t.Fatalf("bindings changed: %+v vs %+v", merged.Bindings, a.Bindings)
	}
	if !reflect.DeepEqual(merged.PushConstants, a.PushConstants) {
		t.Fatalf("push constants changed: %+v vs %+v", merged.PushConstants, a.PushConstants)
	}
	if !reflect.DeepEqual(merged.Names, a.Names) {
		t.Fatalf("names changed: %+v vs %+v", merged.Names, a.Names)
	}
}

func TestReflectionMergeVisibilityOrsAndFlagsAnd(t *testing.T) {
	a := NewShaderReflection()
	a.Bindings[SetBinding{Set: 0, Binding: 0}] = BindingEntry{
		Type: gpu.BindingTypeStorageBuffer, Visibility: gpu.ShaderStageVertex, NotWritable: true, NotReadable: false,
	}
	b := NewShaderReflection()
	b.Bindings[SetBinding{Set: 0, Binding: 0}] = BindingEntry{
		Type: gpu.BindingTypeStorageBuffer, Visibility: gpu.ShaderStageFragment, NotWritable: false, NotReadable: false,
	}

	merged, err := a.Merge(b)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	got := merged.Bindings[SetBinding{Set: 0, Binding: 0}]
	if got.Visibility != gpu.ShaderStageVertex|gpu.ShaderStageFragment {
		t.Fatalf("visibility = %v, want vertex|fragment", got.Visibility)
	}
	if got.NotWritable {
		t.Fatalf("NotWritable should AND to false when only one stage sets it")
	}
	if got.NotReadable {
		t.Fatalf("NotReadable should remain false")
	}
}

func TestReflectionMergeTypeConflict(t *testing.T) {
	a := NewShaderReflection()
	a.Bindings[SetBinding{Set: 0, Binding: 0}] = BindingEntry{Type: gpu.BindingTypeUniformBuffer}
	b := NewShaderReflection()
	b.Bindings[SetBinding{Set: 0, Binding: 0}] = BindingEntry{Type: gpu.BindingTypeSampledTexture}

	if _, err := a.Merge(b); err == nil {
		t.Fatalf("expected a type conflict error")
	}
}

func TestReflectionMergePushConstantCoalesce(t *testing.T) {
	a := NewShaderReflection()
	a.PushConstants = []gpu.PushConstantRange{{Stages: gpu.ShaderStageVertex, Offset: 0, Size: 16}}
	b := NewShaderReflection()
	b.PushConstants = []gpu.PushConstantRange{{Stages: gpu.ShaderStageFragment, Offset: 16, Size: 16}}

	merged, err := a.Merge(b)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(merged.PushConstants) != 1 {
		t.Fatalf("expected abutting ranges to coalesce into one, got %+v", merged.PushConstants)
	}
	if merged.PushConstants[0].Size != 32 {
		t.Fatalf("coalesced size = %d, want 32", merged.PushConstants[0].Size)
	}
}
