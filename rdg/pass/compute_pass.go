package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/rdg-forge/engine/renderer/shader"
	"github.com/Carmen-Shannon/rdg-forge/gpu"
)

// ComputePass adds a per-flight ComputePipeline to PipelinePass. Concrete passes embed
// ComputePass and implement Reflect and Execute.
type ComputePass struct {
	PipelinePass

	pipelines [FrameFlightsCount]*gpu.ComputePipeline
}

// NewComputePass creates a ComputePass embedding the given PipelinePass.
func NewComputePass(pp PipelinePass) ComputePass {
	return ComputePass{PipelinePass: pp}
}

// InitPipeline loads ComputeMain, builds the pipeline layout from its reflection, and
// creates one ComputePipeline per frame-flight
// slot. Named distinctly from Base.Init so a concrete pass embedding ComputePass still
// promotes Base.Init(Pass) *PassReflection unshadowed, satisfying pass.Initializer.
func (c *ComputePass) InitPipeline(device gpu.Device, sh shader.Shader) error {
	refl := ReflectionFromShader(sh)
	if err := c.InitPipelineLayout(device, refl, c.Identifier()); err != nil {
		return err
	}

	mod, err := CreateShaderModule(device, sh, gpu.ShaderStageCompute)
	if err != nil {
		return fmt.Errorf("compute pass %q: module: %w", c.Identifier(), err)
	}

	desc := gpu.ComputePipelineDescriptor{
		Label: c.Identifier(), Layout: c.PipelineLayout(), Module: mod, Entry: sh.EntryPoint(),
	}
	for i := 0; i < FrameFlightsCount; i++ {
		pl, err := device.CreateComputePipeline(desc)
		if err != nil {
			return fmt.Errorf("compute pass %q: create pipeline (flight %d): %w", c.Identifier(), i, err)
		}
		c.pipelines[i] = pl
	}
	return nil
}

// Pipeline returns the compute pipeline for the given frame-flight slot.
func (c *ComputePass) Pipeline(flight int) *gpu.ComputePipeline { return c.pipelines[flight] }

// BeginPass begins a compute pass, binds this pass's pipeline, and binds every set's
// current-flight bind group.
func (c *ComputePass) BeginPass(ctx *Context) (gpu.ComputePassEncoder, error) {
	enc := ctx.Encoder.BeginComputePass(c.Identifier())
	enc.SetPipeline(c.pipelines[ctx.FlightIndex])
	for _, set := range c.Sets() {
		bg, err := c.BindGroup(ctx.Device, ctx.FlightIndex, set)
		if err != nil {
			return nil, fmt.Errorf("compute pass %q: begin pass: %w", c.Identifier(), err)
		}
		enc.SetBindGroup(set, bg)
	}
	return enc, nil
}
