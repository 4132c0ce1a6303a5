package cache

import (
	"github.com/Carmen-Shannon/rdg-forge/engine/model"
	"github.com/Carmen-Shannon/rdg-forge/engine/renderer/material"
	"github.com/Carmen-Shannon/rdg-forge/engine/renderer/shader"
	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/uid"
)

// Manager bundles one Cache instance per resource kind — buffers, textures, samplers,
// shader modules, meshes, and materials — so a host application has a single place to load,
// release, and periodically clean every cached resource kind the core touches. Nothing in
// rdg itself requires a Manager (passes and the graph only need *Cache[T] directly), but it
// is the natural home for the "clean_cache" eviction tick loop, so it is provided here rather
// than left for every caller to wire up its own six caches by hand.
type Manager struct {
	Buffers       *Cache[*gpu.Buffer]
	Textures      *Cache[*gpu.Texture]
	Samplers      *Cache[*gpu.Sampler]
	ShaderModules *Cache[*gpu.ShaderModule]
	Meshes        *Cache[model.Model]
	Materials     *Cache[material.Material]
}

// NewManager creates an empty Manager with all six caches initialized.
func NewManager() *Manager {
	return &Manager{
		Buffers:       New[*gpu.Buffer](),
		Textures:      New[*gpu.Texture](),
		Samplers:      New[*gpu.Sampler](),
		ShaderModules: New[*gpu.ShaderModule](),
		Meshes:        New[model.Model](),
		Materials:     New[material.Material](),
	}
}

// LoadSampler loads (or looks up) a sampler by its structural descriptor hash, so identical
// sampler descriptors deduplicate to the same cached handle.
func (m *Manager) LoadSampler(desc gpu.SamplerDescriptor, device gpu.Device) (*gpu.Sampler, bool, error) {
	key := SamplerKey(desc)
	return m.Samplers.Load(key, func() (*gpu.Sampler, error) {
		return device.CreateSampler(desc)
	})
}

// LoadShaderModule loads a shader module cached under sh's key (the hash of its WGSL source,
// since this module's shader pipeline parses source rather than precompiled blobs — a
// precompiled-blob path would key the same way off its bytes). build compiles
// sh into a backend gpu.ShaderModule on a cache miss; it is passed sh so a caller's build
// closure need not capture it separately.
func (m *Manager) LoadShaderModule(sh shader.Shader, build func(shader.Shader) (*gpu.ShaderModule, error)) (*gpu.ShaderModule, bool, error) {
	return m.ShaderModules.Load(uid.FromString(sh.Key()), func() (*gpu.ShaderModule, error) {
		return build(sh)
	})
}

// CleanAll runs one eviction tick across every cache: entries whose observed reference count
// has settled at or below the cache's own hold decrement a countdown each tick and are
// evicted on the sixth consecutive idle tick. release* callbacks may be nil for a resource
// kind with nothing to release back to the backend (Meshes and Materials, for instance, own
// no GPU handle of their own beyond what their Buffers/Textures entries already track, so
// eviction there is opt-in and typically wired to nil).
func (m *Manager) CleanAll(releaseBuffer func(*gpu.Buffer), releaseTexture func(*gpu.Texture), releaseSampler func(*gpu.Sampler), releaseShaderModule func(*gpu.ShaderModule)) {
	m.Buffers.Clean(releaseBuffer)
	m.Textures.Clean(releaseTexture)
	m.Samplers.Clean(releaseSampler)
	m.ShaderModules.Clean(releaseShaderModule)
	m.Meshes.Clean(nil)
	m.Materials.Clean(nil)
}
