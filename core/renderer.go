// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// NewVulkanRenderer creates a not yet created Vulkan API renderer.
// shaders may be nil when no shaders are configured.
func NewVulkanRenderer(driver Driver, window Window, shaders *ShaderLoader, cfg Configuration, logger logrus.FieldLogger) *VulkanRenderer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &VulkanRenderer{
		driver:     driver,
		window:     window,
		shaders:    shaders,
		cfg:        cfg,
		preference: DefaultDevicePreference(),
		log:        logger,
	}
}

// VulkanRenderer is a Vulkan API renderer that presents
// frames to a window. It is not safe for concurrent use.
type VulkanRenderer struct {
	driver     Driver
	window     Window
	shaders    *ShaderLoader
	cfg        Configuration
	preference DevicePreference
	log        logrus.FieldLogger

	state RendererState
	stack releaseStack

	instance  *instanceHandle
	device    *deviceHandle
	pool      *commandPoolHandle
	surface   *surfaceHandle
	swapchain *swapchainHandle
	modules   []*shaderModuleHandle
	semaphore *semaphoreHandle

	selection   Selection
	depthFormat vk.Format
}

// State returns the lifecycle state.
func (v *VulkanRenderer) State() RendererState {
	return v.state
}

// Selection returns the chosen physical device.
func (v *VulkanRenderer) Selection() Selection {
	return v.selection
}

// Descriptor returns the parameters of the current swapchain.
func (v *VulkanRenderer) Descriptor() SwapchainDescriptor {
	if v.swapchain == nil {
		return SwapchainDescriptor{}
	}
	return v.swapchain.descriptor
}

// Images returns the image set of the current swapchain.
func (v *VulkanRenderer) Images() SwapchainImageSet {
	if v.swapchain == nil {
		return SwapchainImageSet{}
	}
	return v.swapchain.images
}

// DepthFormat returns the depth format chosen for the device.
func (v *VulkanRenderer) DepthFormat() vk.Format {
	return v.depthFormat
}

func (v *VulkanRenderer) checkInitialized() error {
	switch v.state {
	case StateUninitialized:
		return ErrNotInitialized
	case StateDestroyed:
		return ErrDestroyed
	}
	return nil
}

// Create implements interface. On failure everything acquired
// is released and the renderer can not be used again.
func (v *VulkanRenderer) Create() error {
	switch v.state {
	case StateInitialized:
		return ErrAlreadyCreated
	case StateDestroyed:
		return ErrDestroyed
	}

	if err := v.create(); err != nil {
		v.stack.releaseAll()
		v.state = StateDestroyed
		return err
	}
	v.state = StateInitialized
	return nil
}

func (v *VulkanRenderer) create() error {
	extensions := appendUnique(append([]string{}, v.window.InstanceExtensions()...), v.cfg.Instance.Extensions...)
	layers := append([]string{}, v.cfg.Instance.Layers...)
	if v.cfg.Instance.DebugMode {
		layers = appendUnique(layers, ValidationLayer)
		extensions = appendUnique(extensions, DebugReportExtension)
	}

	/* Instance */
	instance, err := newInstanceHandle(v.driver, extensions, layers)
	if err != nil {
		return err
	}
	v.instance = instance
	v.stack.push(instance)
	v.log.WithField("extensions", extensions).WithField("layers", layers).Debug("instance created")

	/* Physical device */
	selection, err := v.selectDevice()
	if err != nil {
		return err
	}
	v.selection = selection
	v.log.WithFields(logrus.Fields{
		"device":      selection.Candidate.Name,
		"type":        selection.Candidate.Type,
		"queueFamily": selection.QueueFamily,
		"examined":    selection.Examined,
	}).Info("physical device selected")

	/* Logical device */
	device, err := newDeviceHandle(v.driver, selection.Candidate.Device, selection.QueueFamily, v.cfg.Renderer.DeviceExtensions)
	if err != nil {
		return err
	}
	v.device = device
	v.stack.push(device)

	/* Command pool */
	pool, err := newCommandPoolHandle(v.driver, device.handle, selection.QueueFamily)
	if err != nil {
		return err
	}
	v.pool = pool
	v.stack.push(pool)

	/* Surface */
	surface, err := newSurfaceHandle(v.driver, v.window, instance.handle)
	if err != nil {
		return err
	}
	v.surface = surface
	v.stack.push(surface)

	supported, err := v.driver.SurfaceSupport(selection.Candidate.Device, selection.QueueFamily, surface.handle)
	if err != nil {
		return err
	}
	if !supported {
		return precondition("queue family %d can not present to the window surface", selection.QueueFamily)
	}

	/* Swapchain */
	swapchain, err := v.createSwapchain(nil)
	if err != nil {
		return err
	}
	v.swapchain = swapchain
	v.stack.push(swapchain)

	/* Depth format */
	depthFormat, err := ChooseDepthFormat(DefaultDepthFormats(), func(format vk.Format) bool {
		return v.driver.DepthFormatSupported(selection.Candidate.Device, format)
	})
	if err != nil {
		return err
	}
	v.depthFormat = depthFormat

	/* Shaders */
	if err := v.loadShaders(); err != nil {
		return err
	}

	/* Synchronization */
	semaphore, err := newSemaphoreHandle(v.driver, device.handle)
	if err != nil {
		return err
	}
	v.semaphore = semaphore
	v.stack.push(semaphore)

	return nil
}

// selectDevice picks the physical device, presentation support
// is checked against a surface that only lives for the selection.
func (v *VulkanRenderer) selectDevice() (Selection, error) {
	candidates, err := v.driver.Candidates(v.instance.handle)
	if err != nil {
		return Selection{}, err
	}

	probe, err := newSurfaceHandle(v.driver, v.window, v.instance.handle)
	if err != nil {
		return Selection{}, err
	}
	defer probe.Destroy()

	return v.preference.Select(candidates, func(device vk.PhysicalDevice, family uint32) (bool, error) {
		return v.driver.SurfaceSupport(device, family, probe.handle)
	})
}

// createSwapchain builds a swapchain from current surface properties,
// moves its images into color attachment layout and creates their views.
func (v *VulkanRenderer) createSwapchain(old *swapchainHandle) (*swapchainHandle, error) {
	physical := v.selection.Candidate.Device

	caps, err := v.driver.SurfaceCapabilities(physical, v.surface.handle)
	if err != nil {
		return nil, err
	}
	modes, err := v.driver.PresentModes(physical, v.surface.handle)
	if err != nil {
		return nil, err
	}
	formats, err := v.driver.SurfaceFormats(physical, v.surface.handle)
	if err != nil {
		return nil, err
	}

	desc, err := NewSwapchainDescriptor(caps, modes, formats, v.requestedExtent())
	if err != nil {
		return nil, err
	}

	var oldSwapchain vk.Swapchain
	if old != nil {
		oldSwapchain = old.handle
	}
	handle, err := v.driver.CreateSwapchain(v.device.handle, v.surface.handle, desc, oldSwapchain)
	if err != nil {
		return nil, err
	}
	swapchain := &swapchainHandle{
		driver:     v.driver,
		device:     v.device.handle,
		handle:     handle,
		descriptor: desc,
	}

	images, err := v.driver.SwapchainImages(v.device.handle, handle)
	if err != nil {
		swapchain.Destroy()
		return nil, err
	}

	if err := v.transitionImages(images); err != nil {
		swapchain.Destroy()
		return nil, err
	}

	pairs := make([]SwapchainImage, 0, len(images))
	for idx, img := range images {
		view, err := v.driver.CreateImageView(v.device.handle, img, desc.Format)
		if err != nil {
			swapchain.images = NewSwapchainImageSet(pairs)
			swapchain.Destroy()
			return nil, errors.Wrapf(err, "image %d", idx)
		}
		pairs = append(pairs, SwapchainImage{Image: img, View: view})
	}
	swapchain.images = NewSwapchainImageSet(pairs)

	v.log.WithFields(logrus.Fields{
		"presentMode": desc.PresentMode,
		"extent":      []uint32{desc.Extent.Width, desc.Extent.Height},
		"images":      len(pairs),
		"format":      desc.Format,
	}).Info("swapchain created")
	return swapchain, nil
}

func (v *VulkanRenderer) requestedExtent() vk.Extent2D {
	return vk.Extent2D{
		Width:  v.cfg.Renderer.ScreenWidth,
		Height: v.cfg.Renderer.ScreenHeight,
	}
}

// transitionImages records and submits a one shot command buffer
// that moves every image from undefined to color attachment layout,
// then waits for it to complete.
func (v *VulkanRenderer) transitionImages(images []vk.Image) error {
	cmd, err := v.driver.BeginOneShot(v.device.handle, v.pool.handle)
	if err != nil {
		return err
	}
	defer v.driver.FreeCommandBuffer(v.device.handle, v.pool.handle, cmd)

	fence, err := newFenceHandle(v.driver, v.device.handle)
	if err != nil {
		return err
	}
	defer fence.Destroy()

	if err := v.driver.CmdTransitionImages(cmd, images, vk.ImageLayoutUndefined, vk.ImageLayoutColorAttachmentOptimal); err != nil {
		return err
	}
	if err := v.driver.EndAndSubmit(v.device.queue, cmd, fence.handle); err != nil {
		return err
	}
	return v.waitForFence(fence.handle)
}

// waitForFence waits in FenceTimeout slices until the fence is signaled.
func (v *VulkanRenderer) waitForFence(fence vk.Fence) error {
	for attempt := 1; ; attempt++ {
		result := v.driver.WaitForFence(v.device.handle, fence, v.cfg.Renderer.FenceTimeout)
		switch result {
		case vk.Success:
			return nil
		case vk.Timeout:
			v.log.WithField("attempt", attempt).Debug("fence wait timed out, retrying")
		default:
			return resultError("vk.WaitForFences()", result)
		}
	}
}

// loadShaders creates modules for the configured shaders. The bytecode
// is dropped as soon as the module exists.
func (v *VulkanRenderer) loadShaders() error {
	configured := []struct {
		name string
		kind ShaderType
	}{
		{v.cfg.Renderer.VertexShader, VertexShaderType},
		{v.cfg.Renderer.FragmentShader, FragmentShaderType},
	}

	for _, s := range configured {
		if s.name == "" {
			continue
		}
		if v.shaders == nil {
			return precondition("%s shader %q configured without a shader loader", s.kind, s.name)
		}

		code, err := v.shaders.Load(s.name, s.kind)
		if err != nil {
			return err
		}
		module, err := newShaderModuleHandle(v.driver, v.device.handle, s.name, s.kind, code)
		if err != nil {
			return err
		}
		v.modules = append(v.modules, module)
		v.stack.push(module)

		if err := code.Release(); err != nil {
			return err
		}
		v.log.WithField("shader", s.name).WithField("kind", s.kind).Debug("shader module created")
	}
	return nil
}

// Render implements interface. It acquires the next swapchain image
// and presents it, a surface that went out of date is recreated.
func (v *VulkanRenderer) Render() error {
	if err := v.checkInitialized(); err != nil {
		return err
	}

	idx, result := v.driver.AcquireNextImage(v.device.handle, v.swapchain.handle, v.semaphore.handle)
	switch result {
	case vk.Success, vk.Suboptimal:
	case vk.ErrorOutOfDate:
		return v.Recreate()
	default:
		return resultError("vk.AcquireNextImage()", result)
	}

	if err := v.swapchain.images.SetCurrent(idx); err != nil {
		return err
	}

	result = v.driver.QueuePresent(v.device.queue, v.swapchain.handle, idx, v.semaphore.handle)
	switch result {
	case vk.Success, vk.Suboptimal:
		return nil
	case vk.ErrorOutOfDate:
		return v.Recreate()
	}
	return resultError("vk.QueuePresent()", result)
}

// Recreate replaces the swapchain with one matching the current
// surface properties, along with all of its images.
func (v *VulkanRenderer) Recreate() error {
	if err := v.checkInitialized(); err != nil {
		return err
	}

	if err := v.driver.DeviceWaitIdle(v.device.handle); err != nil {
		return err
	}

	// a minimized window has no area, the next frame tries again
	caps, err := v.driver.SurfaceCapabilities(v.selection.Candidate.Device, v.surface.handle)
	if err != nil {
		return errors.Wrap(err, "recreate swapchain")
	}
	if extent := ResolveExtent(caps, v.requestedExtent()); extent.Width == 0 || extent.Height == 0 {
		v.log.Debug("surface has zero extent, keeping swapchain")
		return nil
	}

	swapchain, err := v.createSwapchain(v.swapchain)
	if err != nil {
		return errors.Wrap(err, "recreate swapchain")
	}

	old := v.swapchain
	v.stack.replace(old, swapchain)
	v.swapchain = swapchain
	old.Destroy()
	return nil
}

// Destroy implements interface. Waits for the device to finish
// and releases everything in reverse order of creation.
func (v *VulkanRenderer) Destroy() error {
	if err := v.checkInitialized(); err != nil {
		return err
	}

	err := v.driver.DeviceWaitIdle(v.device.handle)
	v.stack.releaseAll()
	v.state = StateDestroyed
	v.modules = nil
	v.log.Info("renderer destroyed")
	return err
}
