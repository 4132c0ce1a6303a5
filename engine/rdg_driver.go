package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/rdg-forge/engine/scene"
	"github.com/Carmen-Shannon/rdg-forge/engine/window"
	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg"
	"github.com/Carmen-Shannon/rdg-forge/rdg/pass"
	"github.com/cogentcore/webgpu/wgpu"
)

// RDGDriver bootstraps a gpu.Device and gpu.Swapchain directly against a window's surface and
// drives a two-pass render graph — GeometryPass feeding BlitPass's presentation blit — through
// a ringed FrameResources. Grounded on wgpu_renderer_backend.go's newWGPURendererBackend and
// ConfigureSurface bootstrap, generalized from that type's single Renderer-owned pipeline and
// manual per-material bind-group bookkeeping to a graph whose barriers come from its own
// devirtualization step.
type RDGDriver struct {
	device    gpu.Device
	swapchain gpu.Swapchain
	frames    *rdg.FrameResources
	graph     *rdg.Graph
	geometry  *pass.GeometryPass
	blit      *pass.BlitPass

	width, height uint32
}

// NewRDGDriver creates the device/swapchain/graph triplet for win, which must already be
// initialized (win.SurfaceDescriptor must return non-nil). vertPath/fragPath name the
// geometry pass's WGSL shader pair; vertexBuffers describes the mesh vertex layout those
// shaders expect.
func NewRDGDriver(win window.Window, vertPath, fragPath string, vertexBuffers []gpu.VertexBufferLayout) (*RDGDriver, error) {
	sd := win.SurfaceDescriptor()
	if sd == nil {
		return nil, fmt.Errorf("rdg driver: window has no surface descriptor")
	}

	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(sd)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{CompatibleSurface: surface})
	if err != nil {
		return nil, fmt.Errorf("rdg driver: request adapter: %w", err)
	}
	wgpuDevice, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "rdg-forge device"})
	if err != nil {
		return nil, fmt.Errorf("rdg driver: request device: %w", err)
	}

	device := gpu.NewWGPUDevice(wgpuDevice, wgpuDevice.GetQueue())
	swapchain := gpu.NewWGPUSwapchain(wgpuDevice, adapter, surface)

	width, height := uint32(win.Width()), uint32(win.Height())
	if err := swapchain.Configure(gpu.SwapchainDescriptor{Width: width, Height: height, Format: gpu.FormatBGRA8UnormSrgb}); err != nil {
		return nil, fmt.Errorf("rdg driver: configure swapchain: %w", err)
	}

	graph := rdg.New(gpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}, nil)
	geometry := pass.NewGeometryPass("scene_color", "scene_depth")
	blit := pass.NewBlitPass()
	if err := graph.AddPass(geometry); err != nil {
		return nil, fmt.Errorf("rdg driver: add geometry pass: %w", err)
	}
	if err := graph.AddPass(blit); err != nil {
		return nil, fmt.Errorf("rdg driver: add blit pass: %w", err)
	}
	if err := graph.AddEdge("geometry", "scene_color", "blit", "source"); err != nil {
		return nil, fmt.Errorf("rdg driver: wire geometry pass into blit pass: %w", err)
	}
	if err := graph.MarkOutput("blit", "source"); err != nil {
		return nil, fmt.Errorf("rdg driver: mark output: %w", err)
	}
	if err := graph.Build(device); err != nil {
		return nil, fmt.Errorf("rdg driver: build: %w", err)
	}
	if err := geometry.InitGeometryPipeline(device, vertPath, fragPath, vertexBuffers); err != nil {
		return nil, fmt.Errorf("rdg driver: init geometry pipeline: %w", err)
	}
	if err := blit.InitPipeline(device, gpu.FormatBGRA8UnormSrgb); err != nil {
		return nil, fmt.Errorf("rdg driver: init blit pipeline: %w", err)
	}

	return &RDGDriver{
		device:    device,
		swapchain: swapchain,
		graph:     graph,
		geometry:  geometry,
		blit:      blit,
		frames:    rdg.NewFrameResources(device, swapchain),
		width:     width,
		height:    height,
	}, nil
}

// Resize reconfigures the swapchain to the window's new pixel dimensions. The graph's own
// relative-sized textures (the geometry pass's color/depth targets) were fixed at Build time
// and are not reallocated here; a resize that should also rebuild those requires a fresh
// RDGDriver.
func (d *RDGDriver) Resize(width, height int) error {
	d.width, d.height = uint32(width), uint32(height)
	return d.swapchain.Configure(gpu.SwapchainDescriptor{Width: d.width, Height: d.height, Format: gpu.FormatBGRA8UnormSrgb})
}

// RenderScene runs one frame of the graph against s: acquires the swapchain image, points the
// geometry pass's viewport and the blit pass's presentation target at this frame's dimensions,
// executes the graph — which binds s's conventional scene bindings through the geometry pass's
// Context.Scene and records its draws via SceneProvider.Draw — and presents.
func (d *RDGDriver) RenderScene(s scene.Scene) error {
	ctx, err := d.frames.FrameStart()
	if err != nil {
		return fmt.Errorf("rdg driver: frame start: %w", err)
	}
	ctx.Scene = scene.NewRDGProvider(s)

	view, ok := d.frames.AcquiredSwapchainView()
	if !ok {
		return fmt.Errorf("rdg driver: no swapchain image acquired")
	}
	d.geometry.SetExtent(d.width, d.height)
	d.blit.SetTarget(view, d.width, d.height)

	if err := d.graph.Execute(ctx); err != nil {
		return fmt.Errorf("rdg driver: execute: %w", err)
	}
	d.frames.FrameEnd()
	return nil
}
