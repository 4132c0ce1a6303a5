package rdg

import (
	"fmt"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/pass"
	"github.com/Carmen-Shannon/rdg-forge/rdg/uid"
)

// devirtualize walks the flattened pass order and assigns a physical resource to every
// distinct virtual ResourceInfo:
//   - Internal and Output resources: allocate a fresh physical descriptor.
//   - Input resources: reuse the upstream Prev's devirtualization id, OR-ing this pass's
//     usage bits into the shared descriptor.
//   - Input-Output resources: same as Input; it is an error if Prev is nil.
//   - A Reference pins a specific pre-existing GPU handle, bypassing allocation.
func (g *Graph) devirtualize(device gpu.Device) error {
	for _, passID := range g.flattened {
		n := g.nodes[passID]
		refl := n.reflection

		for name, info := range refl.Outputs {
			if err := g.devirtualizeFresh(passID, name, refl, info); err != nil {
				return err
			}
		}
		for name, info := range refl.Internals {
			if err := g.devirtualizeFresh(passID, name, refl, info); err != nil {
				return err
			}
		}
		for name, info := range refl.Inputs {
			if err := g.devirtualizeShared(passID, name, info); err != nil {
				return err
			}
		}
		for name, info := range refl.InputOutputs {
			if info.Prev == nil {
				return fmt.Errorf("rdg: pass %q input-output %q has no producer", passID, name)
			}
			if err := g.devirtualizeShared(passID, name, info); err != nil {
				return err
			}
		}
	}

	if device != nil {
		if err := g.allocatePhysicalResources(device); err != nil {
			return err
		}
	}
	return nil
}

// devirtualizeFresh assigns info a brand-new physical resource (or wraps its pinned
// Reference, if any) and records this pass's consume entries into its history.
func (g *Graph) devirtualizeFresh(passID, name string, refl *pass.PassReflection, info *pass.ResourceInfo) error {
	switch info.Kind {
	case pass.KindTexture:
		t := info.Texture
		size, err := g.resolveTextureSize(refl, t, map[string]bool{})
		if err != nil {
			return err
		}
		mips := resolveMipLevels(t.MipLevels, size.Width, size.Height)

		key := uid.Next()
		info.DevirtualizeID = key
		res := &TextureResource{
			Name:     fmt.Sprintf("RDG::%s::%s", passID, name),
			external: t.Reference != nil,
			Desc: gpu.TextureDescriptor{
				Label: fmt.Sprintf("RDG::%s::%s", passID, name), Size: size,
				Dimension: gpu.TextureDimension2D, Format: t.Format,
				MipLevelCount: mips, ArrayLayers: t.ArrayLayers, SampleCount: t.SampleCount, Usage: t.Usage,
			},
		}
		if res.external {
			res.Handle = t.Reference
		}
		g.textures[key] = res
		g.textureOrder = append(g.textureOrder, key)
		for _, c := range t.Consume {
			res.history = append(res.history, textureConsumeRecord{passIdentifier: passID, entry: c})
		}
	case pass.KindBuffer:
		b := info.Buffer
		key := uid.Next()
		info.DevirtualizeID = key
		res := &BufferResource{
			Name:     fmt.Sprintf("RDG::%s::%s", passID, name),
			external: b.Reference != nil,
			Desc: gpu.BufferDescriptor{
				Label: fmt.Sprintf("RDG::%s::%s", passID, name), Size: b.ByteSize,
				Usage: b.Usage, MemoryProperties: b.MemoryProperties,
			},
		}
		if res.external {
			res.Handle = b.Reference
		}
		g.buffers[key] = res
		g.bufferOrder = append(g.bufferOrder, key)
		for _, c := range b.Consume {
			res.history = append(res.history, bufferConsumeRecord{passIdentifier: passID, entry: c})
		}
	}
	return nil
}

// devirtualizeShared reuses info.Prev's physical resource: it ORs this pass's usage bits
// into the shared descriptor (so the eventual GPU resource supports every consumer) and
// appends this pass's consume entries to the shared resource's history.
func (g *Graph) devirtualizeShared(passID, name string, info *pass.ResourceInfo) error {
	if info.Prev == nil {
		return fmt.Errorf("rdg: pass %q input %q has no producer (add_edge was never called for it)", passID, name)
	}
	info.DevirtualizeID = info.Prev.DevirtualizeID

	switch info.Kind {
	case pass.KindTexture:
		res, ok := g.textures[info.DevirtualizeID]
		if !ok {
			return fmt.Errorf("rdg: pass %q input %q: producer's physical texture not found", passID, name)
		}
		res.Desc.Usage |= info.Texture.Usage
		for _, c := range info.Texture.Consume {
			res.history = append(res.history, textureConsumeRecord{passIdentifier: passID, entry: c})
		}
	case pass.KindBuffer:
		res, ok := g.buffers[info.DevirtualizeID]
		if !ok {
			return fmt.Errorf("rdg: pass %q input %q: producer's physical buffer not found", passID, name)
		}
		res.Desc.Usage |= info.Buffer.Usage
		if res.Desc.Size == 0 {
			res.Desc.Size = info.Buffer.ByteSize
		}
		for _, c := range info.Buffer.Consume {
			res.history = append(res.history, bufferConsumeRecord{passIdentifier: passID, entry: c})
		}
	}
	return nil
}

// allocatePhysicalResources creates the backing GPU buffer/texture for every devirtualized
// resource that isn't pinned to a Reference.
func (g *Graph) allocatePhysicalResources(device gpu.Device) error {
	for _, key := range g.textureOrder {
		res := g.textures[key]
		if res.external {
			continue
		}
		handle, err := device.CreateTexture(res.Desc)
		if err != nil {
			return fmt.Errorf("rdg: allocate texture %q: %w", res.Name, err)
		}
		res.Handle = handle
	}
	for _, key := range g.bufferOrder {
		res := g.buffers[key]
		if res.external {
			continue
		}
		handle, err := device.CreateBuffer(res.Desc)
		if err != nil {
			return fmt.Errorf("rdg: allocate buffer %q: %w", res.Name, err)
		}
		res.Handle = handle
	}
	return nil
}
