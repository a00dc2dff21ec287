// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	vk "github.com/devblok/vulkan"
)

// DefaultDepthFormats lists depth formats from most to least preferred.
func DefaultDepthFormats() []vk.Format {
	return []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
		vk.FormatD16UnormS8Uint,
		vk.FormatD16Unorm,
	}
}

// ChooseDepthFormat returns the first format in candidates that the
// device supports as an optimally tiled depth attachment.
func ChooseDepthFormat(candidates []vk.Format, supported func(vk.Format) bool) (vk.Format, error) {
	for _, format := range candidates {
		if supported(format) {
			return format, nil
		}
	}
	return vk.FormatUndefined, ErrNoDepthFormat
}

// ChooseSurfaceFormat picks the swapchain image format. A single undefined
// entry means the surface has no preference.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	preferred := vk.SurfaceFormat{
		Format:     vk.FormatB8g8r8a8Unorm,
		ColorSpace: vk.ColorSpaceSrgbNonlinear,
	}

	switch {
	case len(formats) == 0:
		return vk.SurfaceFormat{}, precondition("surface reports no formats")
	case len(formats) == 1 && formats[0].Format == vk.FormatUndefined:
		return preferred, nil
	}

	for _, f := range formats {
		if f.Format == preferred.Format && f.ColorSpace == preferred.ColorSpace {
			return f, nil
		}
	}
	return formats[0], nil
}
