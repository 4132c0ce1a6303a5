package scene

import (
	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/pass"
)

// RDGProvider adapts a Scene to pass.SceneProvider, the minimal interface the RDG core
// depends on: something exposing gpu-resident bindings by conventional name and able to
// issue draw calls against an already-bound render-pass encoder.
//
// Scene's own Renderer predates the RDG: it owns its BeginFrame/EndFrame command-encoder
// lifecycle, its own per-pipeline bind-group wiring, and the Forward+ light-culling /
// shadow-map passes, all driven through renderer.Renderer rather than through a caller-
// supplied encoder. RDGProvider does not route through any of that — SceneBinding wraps the
// camera uniform and light storage buffer (both already GPU-resident on the Scene) as
// gpu.Buffer so a PipelinePass can bind them like any other named resource, and Draw records
// directly into the caller's encoder via Scene.DrawEntries (see below), never touching
// Scene.DrawCalls or renderer.Renderer.
type RDGProvider struct {
	scene Scene
}

// NewRDGProvider wraps s as a pass.SceneProvider.
func NewRDGProvider(s Scene) *RDGProvider {
	return &RDGProvider{scene: s}
}

var _ pass.SceneProvider = (*RDGProvider)(nil)

// SceneBinding resolves the conventional scene-wide binding names PipelinePass.UpdateBindingScene
// enumerates. Only "scene_camera" and "scene_lights" are backed today —
// the two buffers a bare Scene always has once a camera and (optionally) a light bind group
// are configured. Geometry/material/texture bindings live on individual Models via their own
// MeshProvider and are not scene-wide, so they are wired per-pass instead of through this
// conventional table.
func (p *RDGProvider) SceneBinding(name string) (pass.SceneBinding, bool) {
	switch name {
	case "scene_camera":
		cam := p.scene.Camera()
		if cam == nil {
			return pass.SceneBinding{}, false
		}
		bgp := cam.BindGroupProvider()
		if bgp == nil {
			return pass.SceneBinding{}, false
		}
		buf := bgp.Buffer(0)
		if buf == nil {
			return pass.SceneBinding{}, false
		}
		return pass.SceneBinding{Buffer: gpu.WrapBuffer(gpu.BufferDescriptor{Label: "scene_camera"}, buf)}, true

	case "scene_lights":
		bgp := p.scene.LightBindGroupProvider()
		if bgp == nil {
			return pass.SceneBinding{}, false
		}
		buf := bgp.Buffer(1)
		if buf == nil {
			return pass.SceneBinding{}, false
		}
		return pass.SceneBinding{Buffer: gpu.WrapBuffer(gpu.BufferDescriptor{Label: "scene_lights"}, buf)}, true

	default:
		return pass.SceneBinding{}, false
	}
}

// Draw records one instanced draw call per DrawEntry the Scene reports into enc — the
// render-pass encoder a RenderPass has already bound its own pipeline and bind groups
// against via BeginPass. This bypasses Scene.DrawCalls entirely (that method binds its own
// per-material bind groups through the old Renderer's shader-declaration matching and draws
// into whatever encoder that Renderer currently owns), so every draw this method issues is
// barrier-synchronized by the calling pass's own RDG-computed barriers rather than by
// anything Renderer-owned.
func (p *RDGProvider) Draw(enc gpu.RenderPassEncoder) {
	for _, e := range p.scene.DrawEntries() {
		vb := gpu.WrapBuffer(gpu.BufferDescriptor{Label: "scene_vertex_buffer"}, e.VertexBuffer)
		ib := gpu.WrapBuffer(gpu.BufferDescriptor{Label: "scene_index_buffer"}, e.IndexBuffer)
		enc.SetVertexBuffer(0, vb, 0)
		enc.SetIndexBuffer(ib, gpu.IndexFormatUint32, 0)
		enc.DrawIndexed(e.IndexCount, e.InstanceCount, 0, 0, 0)
	}
}
