// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"time"

	vk "github.com/devblok/vulkan"
)

// Window is the host window the renderer presents to.
type Window interface {
	// InstanceExtensions returns the instance extensions the window
	// system needs to create a surface
	InstanceExtensions() []string

	// CreateSurface creates a presentable surface for the window
	CreateSurface(instance vk.Instance) (vk.Surface, error)
}

// Driver is the set of graphics API calls the renderer is built on.
// Every create call has a matching destroy call, destroy calls never fail.
type Driver interface {
	CreateInstance(extensions, layers []string) (vk.Instance, error)
	DestroyInstance(instance vk.Instance)

	// Candidates enumerates physical devices along with their properties
	Candidates(instance vk.Instance) ([]Candidate, error)
	SurfaceSupport(device vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error)
	DestroySurface(instance vk.Instance, surface vk.Surface)

	// CreateDevice creates a logical device with a single queue
	// from the given family and returns both
	CreateDevice(physical vk.PhysicalDevice, family uint32, extensions []string) (vk.Device, vk.Queue, error)
	DeviceWaitIdle(device vk.Device) error
	DestroyDevice(device vk.Device)

	CreateCommandPool(device vk.Device, family uint32) (vk.CommandPool, error)
	DestroyCommandPool(device vk.Device, pool vk.CommandPool)

	SurfaceCapabilities(physical vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error)
	SurfaceFormats(physical vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error)
	PresentModes(physical vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error)
	DepthFormatSupported(physical vk.PhysicalDevice, format vk.Format) bool

	CreateSwapchain(device vk.Device, surface vk.Surface, desc SwapchainDescriptor, old vk.Swapchain) (vk.Swapchain, error)
	DestroySwapchain(device vk.Device, swapchain vk.Swapchain)
	SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error)
	CreateImageView(device vk.Device, image vk.Image, format vk.Format) (vk.ImageView, error)
	DestroyImageView(device vk.Device, view vk.ImageView)

	// BeginOneShot allocates a primary command buffer and begins
	// recording it for a single submission
	BeginOneShot(device vk.Device, pool vk.CommandPool) (vk.CommandBuffer, error)
	// CmdTransitionImages records a layout transition barrier for every image
	CmdTransitionImages(cmd vk.CommandBuffer, images []vk.Image, oldLayout, newLayout vk.ImageLayout) error
	// EndAndSubmit ends recording and submits the buffer, signaling fence on completion
	EndAndSubmit(queue vk.Queue, cmd vk.CommandBuffer, fence vk.Fence) error
	FreeCommandBuffer(device vk.Device, pool vk.CommandPool, cmd vk.CommandBuffer)

	CreateFence(device vk.Device) (vk.Fence, error)
	// WaitForFence blocks for at most timeout and reports the raw result
	WaitForFence(device vk.Device, fence vk.Fence, timeout time.Duration) vk.Result
	DestroyFence(device vk.Device, fence vk.Fence)

	CreateSemaphore(device vk.Device) (vk.Semaphore, error)
	DestroySemaphore(device vk.Device, semaphore vk.Semaphore)

	// AcquireNextImage signals semaphore once the returned image is available
	AcquireNextImage(device vk.Device, swapchain vk.Swapchain, semaphore vk.Semaphore) (uint32, vk.Result)
	QueuePresent(queue vk.Queue, swapchain vk.Swapchain, index uint32, wait vk.Semaphore) vk.Result

	CreateShaderModule(device vk.Device, code *ShaderCode) (vk.ShaderModule, error)
	DestroyShaderModule(device vk.Device, module vk.ShaderModule)
}
