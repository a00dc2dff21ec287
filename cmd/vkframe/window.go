// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// sdlWindow lets the renderer create surfaces on an SDL window.
type sdlWindow struct {
	window *sdl.Window
}

func newWindow(title string, width, height uint32) (*sdlWindow, error) {
	window, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width),
		int32(height),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}
	return &sdlWindow{window: window}, nil
}

func (w *sdlWindow) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

func (w *sdlWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	p, err := w.window.VulkanCreateSurface(instance)
	if err != nil {
		return nil, errors.Wrap(err, "sdl.VulkanCreateSurface()")
	}
	return vk.SurfaceFromPointer(uintptr(p)), nil
}

func (w *sdlWindow) Destroy() {
	w.window.Destroy()
}
