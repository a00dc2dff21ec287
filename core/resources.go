// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

// released guards a handle against being destroyed twice.
type released bool

func (r *released) release() bool {
	if *r {
		return false
	}
	*r = true
	return true
}

type instanceHandle struct {
	released
	driver Driver
	handle vk.Instance
}

func newInstanceHandle(driver Driver, extensions, layers []string) (*instanceHandle, error) {
	instance, err := driver.CreateInstance(extensions, layers)
	if err != nil {
		return nil, err
	}
	return &instanceHandle{driver: driver, handle: instance}, nil
}

func (h *instanceHandle) Destroy() {
	if h.release() {
		h.driver.DestroyInstance(h.handle)
	}
}

type surfaceHandle struct {
	released
	driver   Driver
	instance vk.Instance
	handle   vk.Surface
}

func newSurfaceHandle(driver Driver, window Window, instance vk.Instance) (*surfaceHandle, error) {
	surface, err := window.CreateSurface(instance)
	if err != nil {
		return nil, errors.Wrap(err, "window.CreateSurface()")
	}
	return &surfaceHandle{driver: driver, instance: instance, handle: surface}, nil
}

func (h *surfaceHandle) Destroy() {
	if h.release() {
		h.driver.DestroySurface(h.instance, h.handle)
	}
}

type deviceHandle struct {
	released
	driver Driver
	handle vk.Device
	queue  vk.Queue
}

func newDeviceHandle(driver Driver, physical vk.PhysicalDevice, family uint32, extensions []string) (*deviceHandle, error) {
	device, queue, err := driver.CreateDevice(physical, family, extensions)
	if err != nil {
		return nil, err
	}
	return &deviceHandle{driver: driver, handle: device, queue: queue}, nil
}

func (h *deviceHandle) Destroy() {
	if h.release() {
		h.driver.DestroyDevice(h.handle)
	}
}

type commandPoolHandle struct {
	released
	driver Driver
	device vk.Device
	handle vk.CommandPool
}

func newCommandPoolHandle(driver Driver, device vk.Device, family uint32) (*commandPoolHandle, error) {
	pool, err := driver.CreateCommandPool(device, family)
	if err != nil {
		return nil, err
	}
	return &commandPoolHandle{driver: driver, device: device, handle: pool}, nil
}

func (h *commandPoolHandle) Destroy() {
	if h.release() {
		h.driver.DestroyCommandPool(h.device, h.handle)
	}
}

// swapchainHandle owns the swapchain along with the views of its images.
type swapchainHandle struct {
	released
	driver     Driver
	device     vk.Device
	handle     vk.Swapchain
	descriptor SwapchainDescriptor
	images     SwapchainImageSet
}

func (h *swapchainHandle) Destroy() {
	if !h.release() {
		return
	}
	for _, img := range h.images.Images() {
		h.driver.DestroyImageView(h.device, img.View)
	}
	h.driver.DestroySwapchain(h.device, h.handle)
}

type shaderModuleHandle struct {
	released
	driver Driver
	device vk.Device
	handle vk.ShaderModule
	name   string
	kind   ShaderType
}

func newShaderModuleHandle(driver Driver, device vk.Device, name string, kind ShaderType, code *ShaderCode) (*shaderModuleHandle, error) {
	module, err := driver.CreateShaderModule(device, code)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", name)
	}
	return &shaderModuleHandle{driver: driver, device: device, handle: module, name: name, kind: kind}, nil
}

func (h *shaderModuleHandle) Destroy() {
	if h.release() {
		h.driver.DestroyShaderModule(h.device, h.handle)
	}
}

type fenceHandle struct {
	released
	driver Driver
	device vk.Device
	handle vk.Fence
}

func newFenceHandle(driver Driver, device vk.Device) (*fenceHandle, error) {
	fence, err := driver.CreateFence(device)
	if err != nil {
		return nil, err
	}
	return &fenceHandle{driver: driver, device: device, handle: fence}, nil
}

func (h *fenceHandle) Destroy() {
	if h.release() {
		h.driver.DestroyFence(h.device, h.handle)
	}
}

type semaphoreHandle struct {
	released
	driver Driver
	device vk.Device
	handle vk.Semaphore
}

func newSemaphoreHandle(driver Driver, device vk.Device) (*semaphoreHandle, error) {
	semaphore, err := driver.CreateSemaphore(device)
	if err != nil {
		return nil, err
	}
	return &semaphoreHandle{driver: driver, device: device, handle: semaphore}, nil
}

func (h *semaphoreHandle) Destroy() {
	if h.release() {
		h.driver.DestroySemaphore(h.device, h.handle)
	}
}

// releaseStack releases what was pushed onto it in reverse order.
type releaseStack struct {
	entries []Destroyable
}

func (s *releaseStack) push(d Destroyable) {
	s.entries = append(s.entries, d)
}

// replace swaps old for d keeping its position in the release order.
func (s *releaseStack) replace(old, d Destroyable) {
	for idx, entry := range s.entries {
		if entry == old {
			s.entries[idx] = d
			return
		}
	}
	s.push(d)
}

func (s *releaseStack) releaseAll() {
	for idx := len(s.entries) - 1; idx >= 0; idx-- {
		s.entries[idx].Destroy()
	}
	s.entries = nil
}
