package pass

import (
	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/uid"
)

// FrameFlightsCount is the compile-time frame-in-flight constant (SE_FRAME_FLIGHTS_COUNT in
// the original engine): the number of ring slots for command buffers and bind-groups that let
// CPU frame N+1 prepare while GPU frame N executes.
const FrameFlightsCount = 2

// ResourceResolver resolves a ResourceInfo's devirtualization id back to the physical GPU
// handle the graph allocated for it. A concrete pass that needs its own declared resource's
// backing handle at Execute time (e.g. to bind it as a sampled texture) looks it up through
// ctx.Resources rather than reaching into the graph directly — pass cannot import rdg, since
// rdg already imports pass.
type ResourceResolver interface {
	Texture(id uid.UID) (*gpu.Texture, bool)
	Buffer(id uid.UID) (*gpu.Buffer, bool)
}

// Context is threaded through every Pass method. It replaces the source engine's global
// singletons (GFX/editor/slang session) with an explicit struct.
type Context struct {
	Device      gpu.Device
	Encoder     gpu.CommandEncoder
	FlightIndex int
	Scene       SceneProvider
	Resources   ResourceResolver
}
