package gpu

// SwapchainDescriptor configures a Swapchain at creation or resize time.
type SwapchainDescriptor struct {
	Width, Height uint32
	Format        TextureFormat
}

// Swapchain wraps a presentable surface, grounded on wgpu_renderer_backend.go's
// ConfigureSurface/GetCurrentTexture/Present triplet. A Swapchain
// is optional: a headless graph never creates one, and FrameResources.FrameStart treats a nil
// Swapchain as "no image to acquire".
type Swapchain interface {
	// Configure (re)configures the underlying surface, e.g. after a window resize.
	Configure(desc SwapchainDescriptor) error
	// AcquireNextTexture blocks until the next presentable image is available and returns a
	// view onto it. Must be paired with Present once the frame's work targeting it is
	// recorded.
	AcquireNextTexture() (*TextureView, error)
	// Present displays the most recently acquired image and releases it.
	Present()
}
