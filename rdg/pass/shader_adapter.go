package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/rdg-forge/engine/renderer/shader"
	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// ReflectionFromShader converts one shader.Shader's parsed wgpu bind-group-layout
// descriptors and variable names into a ShaderReflection, so the WGSL reflection parser
// (engine/renderer/shader's pre_processor.go/wgsl_parser.go) can feed PipelinePass's
// combined-reflection machinery instead of being consumed directly by a single-shader
// pipeline builder the way pipeline_builder.go does.
func ReflectionFromShader(sh shader.Shader) *ShaderReflection {
	out := NewShaderReflection()
	for group, desc := range sh.BindGroupLayoutDescriptors() {
		for _, e := range desc.Entries {
			sb := SetBinding{Set: uint32(group), Binding: e.Binding}
			out.Bindings[sb] = fromWGPUBindGroupLayoutEntry(e)
			if name := sh.BindGroupVarName(group, int(e.Binding)); name != "" {
				out.Names[name] = NamedBinding{Set: sb.Set, Binding: sb.Binding, Type: out.Bindings[sb].Type}
			}
		}
	}
	return out
}

func fromWGPUBindGroupLayoutEntry(e wgpu.BindGroupLayoutEntry) BindingEntry {
	be := BindingEntry{Visibility: fromWGPUShaderStage(e.Visibility)}
	switch {
	case e.Buffer.Type == wgpu.BufferBindingTypeUniform:
		be.Type = BindingTypeUniformBuffer
		be.MinBindingSize = e.Buffer.MinBindingSize
		be.NotReadable, be.NotWritable = false, true
	case e.Buffer.Type == wgpu.BufferBindingTypeStorage:
		be.Type = BindingTypeStorageBuffer
		be.MinBindingSize = e.Buffer.MinBindingSize
	case e.Buffer.Type == wgpu.BufferBindingTypeReadOnlyStorage:
		be.Type = BindingTypeReadOnlyStorageBuffer
		be.MinBindingSize = e.Buffer.MinBindingSize
		be.NotWritable = true
	case e.Texture.ViewDimension != 0 || e.Texture.SampleType != 0:
		be.Type = BindingTypeSampledTexture
		be.NotWritable = true
	case e.StorageTexture.Access != 0 || e.StorageTexture.ViewDimension != 0:
		be.Type = BindingTypeStorageTexture
		switch e.StorageTexture.Access {
		case wgpu.StorageTextureAccessReadOnly:
			be.NotWritable = true
		case wgpu.StorageTextureAccessWriteOnly:
			be.NotReadable = true
		}
	case e.Sampler.Type == wgpu.SamplerBindingTypeComparison:
		be.Type = BindingTypeComparisonSampler
	default:
		be.Type = BindingTypeSampler
	}
	return be
}

func fromWGPUShaderStage(s wgpu.ShaderStage) gpu.ShaderStage {
	var out gpu.ShaderStage
	if s&wgpu.ShaderStageVertex != 0 {
		out |= gpu.ShaderStageVertex
	}
	if s&wgpu.ShaderStageFragment != 0 {
		out |= gpu.ShaderStageFragment
	}
	if s&wgpu.ShaderStageCompute != 0 {
		out |= gpu.ShaderStageCompute
	}
	return out
}

// CreateShaderModule wraps a loaded shader.Shader's WGSL source as a gpu.ShaderModule
// against device, for use in a RenderPipelineDescriptor/ComputePipelineDescriptor.
func CreateShaderModule(device gpu.Device, sh shader.Shader, stage gpu.ShaderStage) (*gpu.ShaderModule, error) {
	mod := &gpu.ShaderModule{Label: sh.Key(), Stage: stage}
	if err := device.CreateShaderModule(mod, sh.Source()); err != nil {
		return nil, fmt.Errorf("shader %q: create module: %w", sh.Key(), err)
	}
	return mod, nil
}
