package cache

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/uid"
)

// SamplerKey derives a 64-bit structural hash of a sampler descriptor: two descriptors equal
// field-for-field always hash to the same UID, so CreateSamplerDesc-style call sites can
// route through a Cache[*gpu.Sampler] and dedupe automatically (testable property 6).
func SamplerKey(desc gpu.SamplerDescriptor) uid.UID {
	h := fnv.New64a()
	var buf [8]byte

	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:4], v)
		_, _ = h.Write(buf[:4])
	}
	writeF32 := func(v float32) {
		binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(v))
		_, _ = h.Write(buf[:4])
	}

	writeU32(uint32(desc.AddressModeU))
	writeU32(uint32(desc.AddressModeV))
	writeU32(uint32(desc.AddressModeW))
	writeU32(uint32(desc.MagFilter))
	writeU32(uint32(desc.MinFilter))
	writeU32(uint32(desc.MipmapFilter))
	writeF32(desc.LodMinClamp)
	writeF32(desc.LodMaxClamp)
	writeU32(uint32(desc.Compare))
	writeU32(uint32(desc.MaxAnisotropy))

	return uid.UID(h.Sum64())
}
