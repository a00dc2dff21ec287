// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	vk "github.com/devblok/vulkan"
	qt "github.com/frankban/quicktest"

	"github.com/devblok/vkframe/core"
)

func supports(formats ...vk.Format) func(vk.Format) bool {
	return func(f vk.Format) bool {
		for _, s := range formats {
			if s == f {
				return true
			}
		}
		return false
	}
}

func TestChooseDepthFormat(t *testing.T) {
	c := qt.New(t)
	candidates := core.DefaultDepthFormats()

	f, err := core.ChooseDepthFormat(candidates, supports(vk.FormatD16Unorm, vk.FormatD24UnormS8Uint))
	c.Assert(err, qt.IsNil)
	c.Assert(f, qt.Equals, vk.FormatD24UnormS8Uint)

	f, err = core.ChooseDepthFormat(candidates, supports(vk.FormatD32Sfloat, vk.FormatD16Unorm))
	c.Assert(err, qt.IsNil)
	c.Assert(f, qt.Equals, vk.FormatD32Sfloat)

	_, err = core.ChooseDepthFormat(candidates, supports())
	c.Assert(err, qt.Equals, core.ErrNoDepthFormat)
}

func TestDefaultDepthFormatsOrder(t *testing.T) {
	c := qt.New(t)
	c.Assert(core.DefaultDepthFormats(), qt.DeepEquals, []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
		vk.FormatD16UnormS8Uint,
		vk.FormatD16Unorm,
	})
}

func TestChooseSurfaceFormat(t *testing.T) {
	c := qt.New(t)
	preferred := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	f, err := core.ChooseSurfaceFormat([]vk.SurfaceFormat{{Format: vk.FormatUndefined}})
	c.Assert(err, qt.IsNil)
	c.Assert(f, vkDeepEquals, preferred)

	f, err = core.ChooseSurfaceFormat([]vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		preferred,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(f, vkDeepEquals, preferred)

	first := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	f, err = core.ChooseSurfaceFormat([]vk.SurfaceFormat{
		first,
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(f, vkDeepEquals, first)

	_, err = core.ChooseSurfaceFormat(nil)
	c.Assert(err, qt.ErrorMatches, "precondition violated: surface reports no formats")
}
