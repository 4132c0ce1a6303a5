package cache

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/uid"
)

func TestCacheLoadHitMiss(t *testing.T) {
	c := New[int]()
	id := uid.Next()

	calls := 0
	loader := func() (int, error) {
		calls++
		return 42, nil
	}

	v, wasNew, err := c.Load(id, loader)
	if err != nil || !wasNew || v != 42 {
		t.Fatalf("first load: v=%d wasNew=%v err=%v", v, wasNew, err)
	}

	v2, wasNew2, err2 := c.Load(id, loader)
	if err2 != nil || wasNew2 || v2 != 42 {
		t.Fatalf("second load: v=%d wasNew=%v err=%v", v2, wasNew2, err2)
	}
	if calls != 1 {
		t.Fatalf("loader invoked %d times, want 1", calls)
	}
}

func TestCacheLoadPropagatesError(t *testing.T) {
	c := New[int]()
	wantErr := errors.New("boom")
	_, _, err := c.Load(uid.Next(), func() (int, error) { return 0, wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if c.Len() != 0 {
		t.Fatalf("failed load should not leave an entry, Len() = %d", c.Len())
	}
}

func TestCacheEvictionCountdown(t *testing.T) {
	c := New[int]()
	id := uid.Next()
	c.Load(id, func() (int, error) { return 1, nil })
	c.Release(id)

	released := false
	for i := 0; i < 5; i++ {
		c.Clean(func(int) { released = true })
		if released {
			t.Fatalf("entry evicted after %d ticks, want 6", i+1)
		}
	}
	c.Clean(func(int) { released = true })
	if !released || c.Len() != 0 {
		t.Fatalf("entry should be evicted after 6 idle ticks, Len() = %d", c.Len())
	}
}

func TestCacheActiveReferenceSurvivesClean(t *testing.T) {
	c := New[int]()
	id := uid.Next()
	c.Load(id, func() (int, error) { return 1, nil })
	c.Load(id, func() (int, error) { return 1, nil })
	// refCount is 2 (two outstanding handles), above Clean's <=1 idle threshold — should never
	// evict regardless of tick count.
	for i := 0; i < 20; i++ {
		c.Clean(func(int) { t.Fatalf("held entry was evicted") })
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

// TestSamplerDeduplication is testable property 6.
func TestSamplerDeduplication(t *testing.T) {
	descA := gpu.SamplerDescriptor{
		AddressModeU: gpu.AddressModeRepeat,
		AddressModeV: gpu.AddressModeRepeat,
		AddressModeW: gpu.AddressModeRepeat,
		MagFilter:    gpu.FilterModeLinear,
		MinFilter:    gpu.FilterModeLinear,
		MipmapFilter: gpu.FilterModeLinear,
		LodMinClamp:  0,
		LodMaxClamp:  32,
	}
	descB := descA // structurally identical
	descC := descA
	descC.MagFilter = gpu.FilterModeNearest

	c := New[*gpu.Sampler]()
	keyA := SamplerKey(descA)
	keyB := SamplerKey(descB)
	keyC := SamplerKey(descC)

	if keyA != keyB {
		t.Fatalf("structurally equal descriptors hashed differently: %d vs %d", keyA, keyB)
	}
	if keyA == keyC {
		t.Fatalf("structurally different descriptors hashed the same")
	}

	calls := 0
	loader := func() (*gpu.Sampler, error) {
		calls++
		return &gpu.Sampler{Desc: descA}, nil
	}

	h1, _, _ := c.Load(keyA, loader)
	h2, _, _ := c.Load(keyB, loader)
	if h1 != h2 {
		t.Fatalf("expected same cached handle for structurally equal descriptors")
	}
	if calls != 1 {
		t.Fatalf("loader invoked %d times, want 1", calls)
	}
}
