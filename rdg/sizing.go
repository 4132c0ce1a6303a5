package rdg

import (
	"fmt"
	"math/bits"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/pass"
)

// resolveTextureSize resolves a TextureInfo's absolute pixel size: absolute sizes are used
// verbatim, relative sizes multiply the graph's
// standard_size, and relative-to-texture sizes multiply another named texture declared in
// the same PassReflection — resolved recursively (with a visited set guarding against a
// self-referential cycle, which would otherwise recurse forever).
func (g *Graph) resolveTextureSize(refl *pass.PassReflection, info *pass.TextureInfo, visiting map[string]bool) (gpu.Extent3D, error) {
	switch info.Size.Kind {
	case pass.SizeAbsolute:
		return info.Size.Absolute, nil
	case pass.SizeRelative:
		return scaleExtent(g.standardSize, info.Size.Relative), nil
	case pass.SizeRelativeToTexture:
		if visiting[info.Name] {
			return gpu.Extent3D{}, fmt.Errorf("rdg: texture %q has a cyclic relative-size reference", info.Name)
		}
		other, ok := refl.GetResourceInfo(info.Size.RelativeTo)
		if !ok || other.Kind != pass.KindTexture {
			return gpu.Extent3D{}, fmt.Errorf("rdg: texture %q is sized relative to unknown texture %q", info.Name, info.Size.RelativeTo)
		}
		visiting[info.Name] = true
		base, err := g.resolveTextureSize(refl, other.Texture, visiting)
		delete(visiting, info.Name)
		if err != nil {
			return gpu.Extent3D{}, err
		}
		return scaleExtent(base, info.Size.Relative), nil
	default:
		return gpu.Extent3D{}, fmt.Errorf("rdg: texture %q has an unknown size kind", info.Name)
	}
}

func scaleExtent(base gpu.Extent3D, scale [3]float32) gpu.Extent3D {
	return gpu.Extent3D{
		Width:              uint32(float32(base.Width) * scale[0]),
		Height:             uint32(float32(base.Height) * scale[1]),
		DepthOrArrayLayers: uint32(float32(base.DepthOrArrayLayers) * scale[2]),
	}
}

// resolveMipLevels resolves MipLevels == -1 ("auto") to floor(log2(max(width, height))) + 1.
func resolveMipLevels(mips int32, width, height uint32) uint32 {
	if mips >= 0 {
		return uint32(mips)
	}
	m := width
	if height > m {
		m = height
	}
	if m == 0 {
		return 1
	}
	return uint32(bits.Len32(m))
}
