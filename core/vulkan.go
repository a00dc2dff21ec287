// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"time"
	"unsafe"

	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

// Debug layer and extension enabled with InstanceConfiguration.DebugMode
const (
	ValidationLayer      = "VK_LAYER_LUNARG_standard_validation"
	DebugReportExtension = "VK_EXT_debug_report"
)

// NewVulkanApplicationInfo describes a Vulkan application
func NewVulkanApplicationInfo(name string) *vk.ApplicationInfo {
	return &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         vk.MakeVersion(1, 0, 0),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PApplicationName:   safeString(name),
		PEngineName:        safeString("vkframe"),
	}
}

// NewVulkanDriver loads the Vulkan API. procAddr is the vkGetInstanceProcAddr
// of the window system, when nil the default loader is used.
func NewVulkanDriver(procAddr unsafe.Pointer, appInfo *vk.ApplicationInfo) (*VulkanDriver, error) {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vk.Init()")
	}

	return &VulkanDriver{
		appInfo: appInfo,
	}, nil
}

// VulkanDriver implements Driver with Vulkan API calls
type VulkanDriver struct {
	appInfo *vk.ApplicationInfo
}

// CreateInstance implements interface
func (d *VulkanDriver) CreateInstance(extensions, layers []string) (vk.Instance, error) {
	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        d.appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}

	var instance vk.Instance
	if err := resultError("vk.CreateInstance()", vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, err
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "vk.InitInstance()")
	}
	return instance, nil
}

// DestroyInstance implements interface
func (d *VulkanDriver) DestroyInstance(instance vk.Instance) {
	vk.DestroyInstance(instance, nil)
}

func enumerateDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := resultError("vk.EnumeratePhysicalDevices()", vk.EnumeratePhysicalDevices(instance, &deviceCount, nil)); err != nil {
		return nil, err
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := resultError("vk.EnumeratePhysicalDevices()", vk.EnumeratePhysicalDevices(instance, &deviceCount, availableDevices)); err != nil {
		return nil, err
	}
	return availableDevices[:deviceCount], nil
}

// Candidates implements interface
func (d *VulkanDriver) Candidates(instance vk.Instance) ([]Candidate, error) {
	devices, err := enumerateDevices(instance)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, len(devices))
	for i, device := range devices {
		candidate := &candidates[i]
		candidate.Device = device

		// Get extension info
		var numDeviceExtensions uint32
		if err := resultError("vk.EnumerateDeviceExtensionProperties()", vk.EnumerateDeviceExtensionProperties(device, "", &numDeviceExtensions, nil)); err != nil {
			return nil, err
		}
		deviceExt := make([]vk.ExtensionProperties, numDeviceExtensions)
		if err := resultError("vk.EnumerateDeviceExtensionProperties()", vk.EnumerateDeviceExtensionProperties(device, "", &numDeviceExtensions, deviceExt)); err != nil {
			return nil, err
		}
		for _, ext := range deviceExt[:numDeviceExtensions] {
			ext.Deref()
			candidate.Extensions = append(candidate.Extensions, vk.ToString(ext.ExtensionName[:]))
		}

		// Get memory info
		var memoryProperties vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(device, &memoryProperties)
		memoryProperties.Deref()
		for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
			memoryProperties.MemoryHeaps[iMem].Deref()
			candidate.Memory += uint(memoryProperties.MemoryHeaps[iMem].Size)
		}

		// Get general device info
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(device, &properties)
		properties.Deref()
		candidate.ID = int(properties.DeviceID)
		candidate.VendorID = int(properties.VendorID)
		candidate.Name = vk.ToString(properties.DeviceName[:])
		candidate.DriverVersion = int(properties.DriverVersion)
		candidate.Type = properties.DeviceType

		// Get queue families
		var queueFamilyCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
		queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)
		for _, family := range queueFamilies[:queueFamilyCount] {
			family.Deref()
			candidate.QueueFamilies = append(candidate.QueueFamilies, family.QueueFlags)
		}
	}
	return candidates, nil
}

// SurfaceSupport implements interface
func (d *VulkanDriver) SurfaceSupport(device vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	var supported vk.Bool32
	if err := resultError("vk.GetPhysicalDeviceSurfaceSupport()", vk.GetPhysicalDeviceSurfaceSupport(device, family, surface, &supported)); err != nil {
		return false, err
	}
	return supported.B(), nil
}

// DestroySurface implements interface
func (d *VulkanDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

// CreateDevice implements interface
func (d *VulkanDriver) CreateDevice(physical vk.PhysicalDevice, family uint32, extensions []string) (vk.Device, vk.Queue, error) {
	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: family,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}

	var device vk.Device
	if err := resultError("vk.CreateDevice()", vk.CreateDevice(physical, &dci, nil, &device)); err != nil {
		return nil, nil, err
	}

	var queue vk.Queue
	vk.GetDeviceQueue(device, family, 0, &queue)
	return device, queue, nil
}

// DeviceWaitIdle implements interface
func (d *VulkanDriver) DeviceWaitIdle(device vk.Device) error {
	return resultError("vk.DeviceWaitIdle()", vk.DeviceWaitIdle(device))
}

// DestroyDevice implements interface
func (d *VulkanDriver) DestroyDevice(device vk.Device) {
	vk.DestroyDevice(device, nil)
}

// CreateCommandPool implements interface
func (d *VulkanDriver) CreateCommandPool(device vk.Device, family uint32) (vk.CommandPool, error) {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}

	var commandPool vk.CommandPool
	if err := resultError("vk.CreateCommandPool()", vk.CreateCommandPool(device, &cpci, nil, &commandPool)); err != nil {
		return nil, err
	}
	return commandPool, nil
}

// DestroyCommandPool implements interface
func (d *VulkanDriver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	vk.DestroyCommandPool(device, pool, nil)
}

// SurfaceCapabilities implements interface
func (d *VulkanDriver) SurfaceCapabilities(physical vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if err := resultError("vk.GetPhysicalDeviceSurfaceCapabilities()", vk.GetPhysicalDeviceSurfaceCapabilities(physical, surface, &caps)); err != nil {
		return caps, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps, nil
}

// SurfaceFormats implements interface
func (d *VulkanDriver) SurfaceFormats(physical vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var surfaceFormatCount uint32
	if err := resultError("vk.GetPhysicalDeviceSurfaceFormats()", vk.GetPhysicalDeviceSurfaceFormats(physical, surface, &surfaceFormatCount, nil)); err != nil {
		return nil, err
	}

	surfaceFormats := make([]vk.SurfaceFormat, surfaceFormatCount)
	if err := resultError("vk.GetPhysicalDeviceSurfaceFormats()", vk.GetPhysicalDeviceSurfaceFormats(physical, surface, &surfaceFormatCount, surfaceFormats)); err != nil {
		return nil, err
	}
	for idx := range surfaceFormats {
		surfaceFormats[idx].Deref()
	}
	return surfaceFormats[:surfaceFormatCount], nil
}

// PresentModes implements interface
func (d *VulkanDriver) PresentModes(physical vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	var modeCount uint32
	if err := resultError("vk.GetPhysicalDeviceSurfacePresentModes()", vk.GetPhysicalDeviceSurfacePresentModes(physical, surface, &modeCount, nil)); err != nil {
		return nil, err
	}

	modes := make([]vk.PresentMode, modeCount)
	if err := resultError("vk.GetPhysicalDeviceSurfacePresentModes()", vk.GetPhysicalDeviceSurfacePresentModes(physical, surface, &modeCount, modes)); err != nil {
		return nil, err
	}
	return modes[:modeCount], nil
}

// DepthFormatSupported implements interface
func (d *VulkanDriver) DepthFormatSupported(physical vk.PhysicalDevice, format vk.Format) bool {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(physical, format, &props)
	props.Deref()
	return props.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit) != 0
}

// CreateSwapchain implements interface
func (d *VulkanDriver) CreateSwapchain(device vk.Device, surface vk.Surface, desc SwapchainDescriptor, old vk.Swapchain) (vk.Swapchain, error) {
	scci := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    desc.ImageCount,
		ImageFormat:      desc.Format,
		ImageColorSpace:  desc.ColorSpace,
		ImageExtent:      desc.Extent,
		ImageUsage:       desc.Usage,
		PreTransform:     desc.Transform,
		CompositeAlpha:   desc.CompositeAlpha,
		PresentMode:      desc.PresentMode,
		Clipped:          vk.True,
		ImageArrayLayers: 1,
		ImageSharingMode: desc.SharingMode,
		OldSwapchain:     old,
	}

	var swapchain vk.Swapchain
	if err := resultError("vk.CreateSwapchain()", vk.CreateSwapchain(device, &scci, nil, &swapchain)); err != nil {
		return nil, err
	}
	return swapchain, nil
}

// DestroySwapchain implements interface
func (d *VulkanDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	vk.DestroySwapchain(device, swapchain, nil)
}

// SwapchainImages implements interface
func (d *VulkanDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	var numImages uint32
	if err := resultError("vk.GetSwapchainImages()", vk.GetSwapchainImages(device, swapchain, &numImages, nil)); err != nil {
		return nil, err
	}

	images := make([]vk.Image, numImages)
	if err := resultError("vk.GetSwapchainImages()", vk.GetSwapchainImages(device, swapchain, &numImages, images)); err != nil {
		return nil, err
	}
	return images[:numImages], nil
}

// CreateImageView implements interface
func (d *VulkanDriver) CreateImageView(device vk.Device, image vk.Image, format vk.Format) (vk.ImageView, error) {
	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: colorSubresourceRange(),
	}

	var imageView vk.ImageView
	if err := resultError("vk.CreateImageView()", vk.CreateImageView(device, &ivci, nil, &imageView)); err != nil {
		return nil, err
	}
	return imageView, nil
}

// DestroyImageView implements interface
func (d *VulkanDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	vk.DestroyImageView(device, view, nil)
}

func colorSubresourceRange() vk.ImageSubresourceRange {
	return vk.ImageSubresourceRange{
		AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
		BaseMipLevel:   0,
		LevelCount:     1,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}
}

// BeginOneShot implements interface
func (d *VulkanDriver) BeginOneShot(device vk.Device, pool vk.CommandPool) (vk.CommandBuffer, error) {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		Level:              vk.CommandBufferLevelPrimary,
		CommandPool:        pool,
		CommandBufferCount: 1,
	}

	commandBuffers := make([]vk.CommandBuffer, 1)
	if err := resultError("vk.AllocateCommandBuffers()", vk.AllocateCommandBuffers(device, &cbai, commandBuffers)); err != nil {
		return nil, err
	}
	commandBuffer := commandBuffers[0]

	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}

	if err := resultError("vk.BeginCommandBuffer()", vk.BeginCommandBuffer(commandBuffer, &cbbi)); err != nil {
		vk.FreeCommandBuffers(device, pool, 1, []vk.CommandBuffer{commandBuffer})
		return nil, err
	}
	return commandBuffer, nil
}

// CmdTransitionImages implements interface
func (d *VulkanDriver) CmdTransitionImages(cmd vk.CommandBuffer, images []vk.Image, oldLayout, newLayout vk.ImageLayout) error {
	var (
		srcAccess, dstAccess vk.AccessFlags
		srcStage, dstStage   vk.PipelineStageFlags
	)
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutColorAttachmentOptimal:
		dstAccess = vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutPresentSrc:
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		dstAccess = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	default:
		return precondition("unsupported layout transition %d -> %d", oldLayout, newLayout)
	}

	barriers := make([]vk.ImageMemoryBarrier, 0, len(images))
	for _, img := range images {
		barriers = append(barriers, vk.ImageMemoryBarrier{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       srcAccess,
			DstAccessMask:       dstAccess,
			OldLayout:           oldLayout,
			NewLayout:           newLayout,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               img,
			SubresourceRange:    colorSubresourceRange(),
		})
	}

	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, uint32(len(barriers)), barriers)
	return nil
}

// EndAndSubmit implements interface
func (d *VulkanDriver) EndAndSubmit(queue vk.Queue, cmd vk.CommandBuffer, fence vk.Fence) error {
	if err := resultError("vk.EndCommandBuffer()", vk.EndCommandBuffer(cmd)); err != nil {
		return err
	}

	si := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}
	return resultError("vk.QueueSubmit()", vk.QueueSubmit(queue, 1, []vk.SubmitInfo{si}, fence))
}

// FreeCommandBuffer implements interface
func (d *VulkanDriver) FreeCommandBuffer(device vk.Device, pool vk.CommandPool, cmd vk.CommandBuffer) {
	vk.FreeCommandBuffers(device, pool, 1, []vk.CommandBuffer{cmd})
}

// CreateFence implements interface
func (d *VulkanDriver) CreateFence(device vk.Device) (vk.Fence, error) {
	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}

	var fence vk.Fence
	if err := resultError("vk.CreateFence()", vk.CreateFence(device, &fci, nil, &fence)); err != nil {
		return nil, err
	}
	return fence, nil
}

// noTimeout makes a wait block until it completes.
const noTimeout = ^uint(0)

// nanoseconds converts d into the timeout unit of the bindings,
// saturating where uint is narrower than the duration.
func nanoseconds(d time.Duration) uint {
	if d <= 0 {
		return 0
	}
	if uint64(d) > uint64(noTimeout) {
		return noTimeout
	}
	return uint(d)
}

// WaitForFence implements interface
func (d *VulkanDriver) WaitForFence(device vk.Device, fence vk.Fence, timeout time.Duration) vk.Result {
	return vk.WaitForFences(device, 1, []vk.Fence{fence}, vk.True, nanoseconds(timeout))
}

// DestroyFence implements interface
func (d *VulkanDriver) DestroyFence(device vk.Device, fence vk.Fence) {
	vk.DestroyFence(device, fence, nil)
}

// CreateSemaphore implements interface
func (d *VulkanDriver) CreateSemaphore(device vk.Device) (vk.Semaphore, error) {
	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var semaphore vk.Semaphore
	if err := resultError("vk.CreateSemaphore()", vk.CreateSemaphore(device, &sci, nil, &semaphore)); err != nil {
		return nil, err
	}
	return semaphore, nil
}

// DestroySemaphore implements interface
func (d *VulkanDriver) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	vk.DestroySemaphore(device, semaphore, nil)
}

// AcquireNextImage implements interface
func (d *VulkanDriver) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, semaphore vk.Semaphore) (uint32, vk.Result) {
	var imageIndex uint32
	result := vk.AcquireNextImage(device, swapchain, noTimeout, semaphore, nil, &imageIndex)
	return imageIndex, result
}

// QueuePresent implements interface
func (d *VulkanDriver) QueuePresent(queue vk.Queue, swapchain vk.Swapchain, index uint32, wait vk.Semaphore) vk.Result {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{swapchain},
		PImageIndices:      []uint32{index},
	}
	return vk.QueuePresent(queue, &presentInfo)
}

// CreateShaderModule implements interface
func (d *VulkanDriver) CreateShaderModule(device vk.Device, code *ShaderCode) (vk.ShaderModule, error) {
	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(code.Len()),
		PCode:    code.Words(),
	}

	var shader vk.ShaderModule
	if err := resultError("vk.CreateShaderModule()", vk.CreateShaderModule(device, &smci, nil, &shader)); err != nil {
		return nil, err
	}
	return shader, nil
}

// DestroyShaderModule implements interface
func (d *VulkanDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	vk.DestroyShaderModule(device, module, nil)
}
