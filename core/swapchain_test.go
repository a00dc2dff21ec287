// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	vk "github.com/devblok/vulkan"
	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/devblok/vkframe/core"
)

// vkDeepEquals compares binding structs, which carry unexported cgo bookkeeping.
var vkDeepEquals = qt.CmpEquals(cmpopts.IgnoreUnexported(vk.Extent2D{}, vk.SurfaceFormat{}))

func TestResolveExtent(t *testing.T) {
	c := qt.New(t)
	requested := vk.Extent2D{Width: 640, Height: 480}

	undefined := vk.SurfaceCapabilities{
		CurrentExtent: vk.Extent2D{Width: core.UndefinedExtent, Height: core.UndefinedExtent},
	}
	c.Assert(core.ResolveExtent(undefined, requested), vkDeepEquals, requested)

	fixed := vk.SurfaceCapabilities{
		CurrentExtent: vk.Extent2D{Width: 1024, Height: 768},
	}
	c.Assert(core.ResolveExtent(fixed, requested), vkDeepEquals, vk.Extent2D{Width: 1024, Height: 768})

	// the sentinel needs both dimensions
	partial := vk.SurfaceCapabilities{
		CurrentExtent: vk.Extent2D{Width: core.UndefinedExtent, Height: 768},
	}
	c.Assert(core.ResolveExtent(partial, requested), vkDeepEquals, vk.Extent2D{Width: core.UndefinedExtent, Height: 768})
}

func TestChoosePresentMode(t *testing.T) {
	c := qt.New(t)
	for _, test := range []struct {
		modes    []vk.PresentMode
		expected vk.PresentMode
	}{
		{[]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate, vk.PresentModeMailbox}, vk.PresentModeMailbox},
		{[]vk.PresentMode{vk.PresentModeMailbox, vk.PresentModeImmediate}, vk.PresentModeMailbox},
		{[]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate}, vk.PresentModeImmediate},
		{[]vk.PresentMode{vk.PresentModeFifoRelaxed, vk.PresentModeFifo}, vk.PresentModeFifo},
		{nil, vk.PresentModeFifo},
	} {
		c.Check(core.ChoosePresentMode(test.modes), qt.Equals, test.expected, qt.Commentf("%v", test.modes))
	}
}

func TestImageCount(t *testing.T) {
	c := qt.New(t)
	c.Assert(core.ImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}), qt.Equals, uint32(3))
	c.Assert(core.ImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}), qt.Equals, uint32(2))
	c.Assert(core.ImageCount(vk.SurfaceCapabilities{MinImageCount: 3, MaxImageCount: 0}), qt.Equals, uint32(4))
}

func TestChooseTransform(t *testing.T) {
	c := qt.New(t)
	c.Assert(core.ChooseTransform(vk.SurfaceCapabilities{
		SupportedTransforms: vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit | vk.SurfaceTransformRotate90Bit),
		CurrentTransform:    vk.SurfaceTransformRotate90Bit,
	}), qt.Equals, vk.SurfaceTransformIdentityBit)

	c.Assert(core.ChooseTransform(vk.SurfaceCapabilities{
		SupportedTransforms: vk.SurfaceTransformFlags(vk.SurfaceTransformRotate90Bit),
		CurrentTransform:    vk.SurfaceTransformRotate90Bit,
	}), qt.Equals, vk.SurfaceTransformRotate90Bit)
}

func TestNewSwapchainDescriptor(t *testing.T) {
	c := qt.New(t)
	caps := vk.SurfaceCapabilities{
		MinImageCount:       2,
		MaxImageCount:       3,
		CurrentExtent:       vk.Extent2D{Width: core.UndefinedExtent, Height: core.UndefinedExtent},
		SupportedTransforms: vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit),
		CurrentTransform:    vk.SurfaceTransformIdentityBit,
	}

	desc, err := core.NewSwapchainDescriptor(caps,
		[]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate},
		[]vk.SurfaceFormat{{Format: vk.FormatUndefined}},
		vk.Extent2D{Width: 640, Height: 480})
	c.Assert(err, qt.IsNil)
	c.Assert(desc, vkDeepEquals, core.SwapchainDescriptor{
		Format:         vk.FormatB8g8r8a8Unorm,
		ColorSpace:     vk.ColorSpaceSrgbNonlinear,
		PresentMode:    vk.PresentModeImmediate,
		ImageCount:     3,
		Extent:         vk.Extent2D{Width: 640, Height: 480},
		Transform:      vk.SurfaceTransformIdentityBit,
		Usage:          vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
		CompositeAlpha: vk.CompositeAlphaOpaqueBit,
		SharingMode:    vk.SharingModeExclusive,
	})

	_, err = core.NewSwapchainDescriptor(caps, nil, nil, vk.Extent2D{})
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestSwapchainImageSet(t *testing.T) {
	c := qt.New(t)
	set := core.NewSwapchainImageSet(make([]core.SwapchainImage, 3))

	c.Assert(set.Len(), qt.Equals, 3)
	c.Assert(set.CurrentIndex(), qt.Equals, uint32(0))

	c.Assert(set.SetCurrent(2), qt.IsNil)
	c.Assert(set.CurrentIndex(), qt.Equals, uint32(2))

	err := set.SetCurrent(3)
	c.Assert(err, qt.ErrorMatches, `precondition violated: swapchain image index 3 out of range \[0, 3\)`)
	c.Assert(set.CurrentIndex(), qt.Equals, uint32(2))

	_, ok := set.Current()
	c.Assert(ok, qt.Equals, true)
}

func TestSwapchainImageSetEmpty(t *testing.T) {
	c := qt.New(t)

	var set core.SwapchainImageSet
	_, ok := set.Current()
	c.Assert(ok, qt.Equals, false)

	driver := newFakeDriver()
	renderer, _ := newTestRenderer(c, driver, core.DefaultConfiguration(), nil)
	images := renderer.Images()
	c.Assert(images.Len(), qt.Equals, 0)
	_, ok = images.Current()
	c.Assert(ok, qt.Equals, false)
}
