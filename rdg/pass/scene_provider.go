package pass

import "github.com/Carmen-Shannon/rdg-forge/gpu"

// SceneBinding is one GPU-resident resource a SceneProvider exposes by conventional name —
// exactly one of its fields is populated, matching whichever BindingType the name resolves
// to in a pass's combined shader reflection.
type SceneBinding struct {
	Buffer      *gpu.Buffer
	TextureView *gpu.TextureView
	Sampler     *gpu.Sampler
}

// SceneProvider is the external collaborator the graph core assumes: something that exposes
// gpu-resident bindings (indices, positions, vertices, cameras, geometries, materials,
// lights, textures) by conventional name and can issue draw calls given a render-pass
// encoder. engine/scene adapts the kept scene/camera/light/game_object stack to this
// interface.
type SceneProvider interface {
	// SceneBinding resolves a conventional binding name (e.g. "scene_camera",
	// "scene_positions", "scene_materials") to a GPU resource. The second return value
	// reports whether the name is recognized.
	SceneBinding(name string) (SceneBinding, bool)

	// Draw issues the scene's draw calls against an already-bound render pass encoder.
	Draw(enc gpu.RenderPassEncoder)
}
