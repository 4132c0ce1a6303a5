package rdg

import (
	"fmt"

	"github.com/Carmen-Shannon/rdg-forge/gpu"
	"github.com/Carmen-Shannon/rdg-forge/rdg/pass"
)

// flightSlot is one ring slot's owned state: its command encoder and the swapchain view
// acquired for it this frame, if any.
type flightSlot struct {
	encoder      gpu.CommandEncoder
	acquiredView *gpu.TextureView
}

// FrameResources rings FrameFlightsCount command encoders so CPU frame N+1 can begin
// recording while GPU frame N is still in flight, grounded on wgpuRendererBackendImpl's
// BeginFrame/EndFrame/Present triplet and generalized from that
// type's single swapchain-bound render pass to an arbitrary graph. The backend's per-slot
// fence is approximated with device.WaitIdle at FrameStart, since the GPU abstraction exposes
// no standalone fence/semaphore primitive — see DESIGN.md.
type FrameResources struct {
	device    gpu.Device
	swapchain gpu.Swapchain

	slots []flightSlot
	index int
}

// NewFrameResources creates a FrameResources ring. swapchain may be nil for a headless graph
// that never presents.
func NewFrameResources(device gpu.Device, swapchain gpu.Swapchain) *FrameResources {
	return &FrameResources{
		device:    device,
		swapchain: swapchain,
		slots:     make([]flightSlot, pass.FrameFlightsCount),
	}
}

// FrameStart waits for the current slot's outstanding GPU work to complete, acquires the next
// swapchain image if a swapchain is bound, and opens a fresh command encoder for the slot. The
// returned Context is ready to pass to Graph.Execute.
func (f *FrameResources) FrameStart() (*pass.Context, error) {
	if err := f.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("rdg: frame_start: wait idle: %w", err)
	}

	slot := &f.slots[f.index]
	if f.swapchain != nil {
		view, err := f.swapchain.AcquireNextTexture()
		if err != nil {
			return nil, fmt.Errorf("rdg: frame_start: acquire swapchain image: %w", err)
		}
		slot.acquiredView = view
	}

	enc, err := f.device.CreateCommandEncoder(fmt.Sprintf("frame-flight-%d", f.index))
	if err != nil {
		return nil, fmt.Errorf("rdg: frame_start: create command encoder: %w", err)
	}
	slot.encoder = enc

	return &pass.Context{Device: f.device, Encoder: enc, FlightIndex: f.index}, nil
}

// AcquiredSwapchainView returns the current slot's swapchain image view, if FrameStart
// acquired one. RDGDriver.RenderScene reads this and hands the view to BlitPass.SetTarget
// as the final blit's target.
func (f *FrameResources) AcquiredSwapchainView() (*gpu.TextureView, bool) {
	slot := &f.slots[f.index]
	return slot.acquiredView, slot.acquiredView != nil
}

// FrameEnd finishes the current slot's command buffer, submits it, presents the swapchain
// image (if bound), and advances the ring index modulo FrameFlightsCount.
func (f *FrameResources) FrameEnd() {
	slot := &f.slots[f.index]
	if slot.encoder != nil {
		cb := slot.encoder.Finish()
		f.device.Queue().Submit(cb)
		slot.encoder = nil
	}
	if f.swapchain != nil {
		f.swapchain.Present()
	}
	slot.acquiredView = nil
	f.index = (f.index + 1) % pass.FrameFlightsCount
}
