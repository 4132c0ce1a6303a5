package gpu

import "github.com/cogentcore/webgpu/wgpu"

// This file translates the abstraction's own bitmask/enum vocabulary (flags.go, device.go)
// into github.com/cogentcore/webgpu/wgpu's concrete types. Kept separate from wgpu_device.go
// so the call-shape logic and the enum tables don't compete for attention in one file.

func toWGPUBufferUsage(u BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&BufferUsageCopySrc != 0 {
		out |= wgpu.BufferUsageCopySrc
	}
	if u&BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	if u&BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	if u&BufferUsageIndirect != 0 {
		out |= wgpu.BufferUsageIndirect
	}
	if u&BufferUsageMapRead != 0 {
		out |= wgpu.BufferUsageMapRead
	}
	if u&BufferUsageMapWrite != 0 {
		out |= wgpu.BufferUsageMapWrite
	}
	return out
}

func toWGPUTextureUsage(u TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&TextureUsageCopySrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	if u&TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&TextureUsageStorageBinding != 0 {
		out |= wgpu.TextureUsageStorageBinding
	}
	if u&TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	return out
}

func toWGPUDimension(d TextureDimension) wgpu.TextureDimension {
	switch d {
	case TextureDimension1D:
		return wgpu.TextureDimension1D
	case TextureDimension3D:
		return wgpu.TextureDimension3D
	default:
		return wgpu.TextureDimension2D
	}
}

func toWGPUAspect(a TextureAspect) wgpu.TextureAspect {
	switch a {
	case AspectDepth:
		return wgpu.TextureAspectDepthOnly
	case AspectStencil:
		return wgpu.TextureAspectStencilOnly
	default:
		return wgpu.TextureAspectAll
	}
}

func toWGPUFormat(f TextureFormat) wgpu.TextureFormat {
	switch f {
	case FormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case FormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case FormatBGRA8UnormSrgb:
		return wgpu.TextureFormatBGRA8UnormSrgb
	case FormatR32Float:
		return wgpu.TextureFormatR32Float
	case FormatRG16Float:
		return wgpu.TextureFormatRG16Float
	case FormatRGBA16Float:
		return wgpu.TextureFormatRGBA16Float
	case FormatRGBA32Float:
		return wgpu.TextureFormatRGBA32Float
	case FormatDepth32Float:
		return wgpu.TextureFormatDepth32Float
	case FormatDepth24PlusStencil8:
		return wgpu.TextureFormatDepth24PlusStencil8
	default:
		return wgpu.TextureFormatUndefined
	}
}

func toWGPUAddressMode(a AddressMode) wgpu.AddressMode {
	switch a {
	case AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	case AddressModeClampToEdge:
		return wgpu.AddressModeClampToEdge
	default:
		return wgpu.AddressModeRepeat
	}
}

func toWGPUFilterMode(f FilterMode) wgpu.FilterMode {
	if f == FilterModeLinear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func toWGPUMipmapFilterMode(f FilterMode) wgpu.MipmapFilterMode {
	if f == FilterModeLinear {
		return wgpu.MipmapFilterModeLinear
	}
	return wgpu.MipmapFilterModeNearest
}

func toWGPUCompareFunction(c CompareFunction) wgpu.CompareFunction {
	switch c {
	case CompareFunctionLess:
		return wgpu.CompareFunctionLess
	case CompareFunctionEqual:
		return wgpu.CompareFunctionEqual
	case CompareFunctionLessEqual:
		return wgpu.CompareFunctionLessEqual
	case CompareFunctionGreater:
		return wgpu.CompareFunctionGreater
	case CompareFunctionNotEqual:
		return wgpu.CompareFunctionNotEqual
	case CompareFunctionGreaterEqual:
		return wgpu.CompareFunctionGreaterEqual
	case CompareFunctionAlways:
		return wgpu.CompareFunctionAlways
	default:
		return wgpu.CompareFunctionNever
	}
}

func toWGPUVertexFormat(f VertexFormat) wgpu.VertexFormat {
	switch f {
	case VertexFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case VertexFormatFloat32x3:
		return wgpu.VertexFormatFloat32x3
	case VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	case VertexFormatUint32x4:
		return wgpu.VertexFormatUint32x4
	default:
		return wgpu.VertexFormatFloat32
	}
}

func toWGPUTopology(t PrimitiveTopology) wgpu.PrimitiveTopology {
	switch t {
	case PrimitiveTopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case PrimitiveTopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	case PrimitiveTopologyPointList:
		return wgpu.PrimitiveTopologyPointList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func toWGPUFrontFace(f FrontFace) wgpu.FrontFace {
	if f == FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func toWGPUCullMode(c CullMode) wgpu.CullMode {
	switch c {
	case CullModeFront:
		return wgpu.CullModeFront
	case CullModeBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func toWGPUBlendFactor(f BlendFactor) wgpu.BlendFactor {
	switch f {
	case BlendFactorOne:
		return wgpu.BlendFactorOne
	case BlendFactorSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case BlendFactorOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case BlendFactorDstAlpha:
		return wgpu.BlendFactorDstAlpha
	case BlendFactorOneMinusDstAlpha:
		return wgpu.BlendFactorOneMinusDstAlpha
	default:
		return wgpu.BlendFactorZero
	}
}

func toWGPUBlendOperation(o BlendOperation) wgpu.BlendOperation {
	switch o {
	case BlendOperationSubtract:
		return wgpu.BlendOperationSubtract
	case BlendOperationReverseSubtract:
		return wgpu.BlendOperationReverseSubtract
	case BlendOperationMin:
		return wgpu.BlendOperationMin
	case BlendOperationMax:
		return wgpu.BlendOperationMax
	default:
		return wgpu.BlendOperationAdd
	}
}

func toWGPUColorWriteMask(m ColorWriteMask) wgpu.ColorWriteMask {
	var out wgpu.ColorWriteMask
	if m&ColorWriteMaskRed != 0 {
		out |= wgpu.ColorWriteMaskRed
	}
	if m&ColorWriteMaskGreen != 0 {
		out |= wgpu.ColorWriteMaskGreen
	}
	if m&ColorWriteMaskBlue != 0 {
		out |= wgpu.ColorWriteMaskBlue
	}
	if m&ColorWriteMaskAlpha != 0 {
		out |= wgpu.ColorWriteMaskAlpha
	}
	return out
}

func toWGPULoadOp(op LoadOp) wgpu.LoadOp {
	if op == LoadOpClear {
		return wgpu.LoadOpClear
	}
	return wgpu.LoadOpLoad
}

func toWGPUStoreOp(op StoreOp) wgpu.StoreOp {
	if op == StoreOpDiscard {
		return wgpu.StoreOpDiscard
	}
	return wgpu.StoreOpStore
}

func toWGPUIndexFormat(f IndexFormat) wgpu.IndexFormat {
	if f == IndexFormatUint16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

func toWGPUBindGroupLayoutEntry(e BindGroupLayoutEntry) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: e.Binding, Visibility: toWGPUShaderStage(e.Visibility)}
	switch e.Type {
	case BindingTypeUniformBuffer:
		entry.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: e.MinBindingSize}
	case BindingTypeStorageBuffer:
		bindingType := wgpu.BufferBindingTypeStorage
		if e.NotWritable {
			bindingType = wgpu.BufferBindingTypeReadOnlyStorage
		}
		entry.Buffer = wgpu.BufferBindingLayout{Type: bindingType, MinBindingSize: e.MinBindingSize}
	case BindingTypeReadOnlyStorageBuffer:
		entry.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage, MinBindingSize: e.MinBindingSize}
	case BindingTypeSampledTexture:
		entry.Texture = wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeFloat, ViewDimension: wgpu.TextureViewDimension2D}
	case BindingTypeStorageTexture:
		access := wgpu.StorageTextureAccessWriteOnly
		if !e.NotReadable && !e.NotWritable {
			access = wgpu.StorageTextureAccessReadWrite
		} else if !e.NotReadable {
			access = wgpu.StorageTextureAccessReadOnly
		}
		entry.StorageTexture = wgpu.StorageTextureBindingLayout{Access: access, ViewDimension: wgpu.TextureViewDimension2D}
	case BindingTypeComparisonSampler:
		entry.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeComparison}
	default:
		entry.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}
	}
	return entry
}

func toWGPUShaderStage(s ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	if s&ShaderStageCompute != 0 {
		out |= wgpu.ShaderStageCompute
	}
	return out
}
