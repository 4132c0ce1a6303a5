package pass

import (
	"hash/fnv"

	"github.com/Carmen-Shannon/rdg-forge/rdg/uid"
)

// Pass is the root of the sealed polymorphic hierarchy `Pass → PipelinePass →
// {RenderPass, ComputePass}`. Rather than leak an inheritance shape,
// it is modeled as a small required interface plus two optional capability interfaces
// (Readbacker, UIRenderer) that a concrete pass may additionally implement — the graph
// type-asserts for them rather than calling through a vtable of always-present hooks.
type Pass interface {
	// Identifier returns the pass's stable name, used as its debug-marker label and as the
	// salt for every resource id it declares.
	Identifier() string
	// Reflect is called exactly once, by Init, to populate the pass's PassReflection.
	Reflect() *PassReflection
	// Execute records this pass's GPU work against ctx's command encoder.
	Execute(ctx *Context) error
}

// Initializer is the interface the graph actually registers a pass through: every concrete
// pass embeds Base by value, so *ConcretePass satisfies this automatically. Kept separate
// from Pass itself so user code writing a Pass never needs to know about ID/Init —
// those are graph-internal bookkeeping that belongs to init(), not reflect().
type Initializer interface {
	Pass
	ID() uid.UID
	Init(Pass) *PassReflection
}

// Readbacker is implemented by passes that support a CPU readback step after execution.
type Readbacker interface {
	Readback(ctx *Context) error
}

// UIRenderer is implemented by passes that render editor/debug UI.
type UIRenderer interface {
	RenderUI()
}

// DebugColor derives a deterministic RGB color from a pass identifier, via the same
// FNV-based hashing this repo uses for resource UIDs — two passes with the same identifier
// always produce the same color, and distinct identifiers are visually distinguishable in a
// GPU debugger's capture timeline.
func DebugColor(identifier string) [3]float32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identifier))
	sum := h.Sum32()
	r := float32(sum&0xFF) / 255
	g := float32((sum>>8)&0xFF) / 255
	b := float32((sum>>16)&0xFF) / 255
	return [3]float32{r, g, b}
}

// Base holds the fields every concrete Pass embeds: its salted id, its identifier, its
// memoized reflection, and its debug color. Embed Base by value; Init, which Graph.AddPass
// calls once, populates the reflection.
type Base struct {
	id         uid.UID
	identifier string
	color      [3]float32
	reflection *PassReflection
}

// NewBase creates a Base for the given identifier. The id is a stable, string-derived UID so
// two passes declaring resources with the same local name never collide (see
// rdg/pass/resource.go's uid.Combine usage in NewTextureResourceInfo/NewBufferResourceInfo).
func NewBase(identifier string) Base {
	return Base{id: uid.FromString(identifier), identifier: identifier, color: DebugColor(identifier)}
}

// ID returns this pass's salted identifier UID.
func (b *Base) ID() uid.UID { return b.id }

// Identifier returns the pass's stable name.
func (b *Base) Identifier() string { return b.identifier }

// DebugColor returns this pass's deterministic debug-marker color.
func (b *Base) DebugColor() [3]float32 { return b.color }

// Init calls p.Reflect() exactly once and memoizes the result; subsequent calls are no-ops
// that return the cached reflection. The graph calls this during add_pass.
func (b *Base) Init(p Pass) *PassReflection {
	if b.reflection == nil {
		b.reflection = p.Reflect()
	}
	return b.reflection
}

// Reflection returns the memoized reflection, or nil if Init has not run yet.
func (b *Base) Reflection() *PassReflection { return b.reflection }
