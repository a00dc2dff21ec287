// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	vk "github.com/devblok/vulkan"
)

// UndefinedExtent is the value a surface reports in both dimensions of its
// current extent when the swapchain decides the size.
const UndefinedExtent = ^uint32(0)

// SwapchainDescriptor holds every parameter a swapchain is created with.
type SwapchainDescriptor struct {
	Format         vk.Format
	ColorSpace     vk.ColorSpace
	PresentMode    vk.PresentMode
	ImageCount     uint32
	Extent         vk.Extent2D
	Transform      vk.SurfaceTransformFlagBits
	Usage          vk.ImageUsageFlags
	CompositeAlpha vk.CompositeAlphaFlagBits
	SharingMode    vk.SharingMode
}

// NewSwapchainDescriptor derives swapchain parameters from what the surface reports.
func NewSwapchainDescriptor(caps vk.SurfaceCapabilities, modes []vk.PresentMode, formats []vk.SurfaceFormat, requested vk.Extent2D) (SwapchainDescriptor, error) {
	format, err := ChooseSurfaceFormat(formats)
	if err != nil {
		return SwapchainDescriptor{}, err
	}

	return SwapchainDescriptor{
		Format:         format.Format,
		ColorSpace:     format.ColorSpace,
		PresentMode:    ChoosePresentMode(modes),
		ImageCount:     ImageCount(caps),
		Extent:         ResolveExtent(caps, requested),
		Transform:      ChooseTransform(caps),
		Usage:          vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
		CompositeAlpha: vk.CompositeAlphaOpaqueBit,
		SharingMode:    vk.SharingModeExclusive,
	}, nil
}

// ResolveExtent returns the requested size when the surface leaves the
// choice to the swapchain, and the surface extent otherwise.
func ResolveExtent(caps vk.SurfaceCapabilities, requested vk.Extent2D) vk.Extent2D {
	current := caps.CurrentExtent
	if current.Width == UndefinedExtent && current.Height == UndefinedExtent {
		return vk.Extent2D{
			Width:  requested.Width,
			Height: requested.Height,
		}
	}
	return vk.Extent2D{
		Width:  current.Width,
		Height: current.Height,
	}
}

// presentModePriority is searched in order, FIFO is always available.
var presentModePriority = []vk.PresentMode{
	vk.PresentModeMailbox,
	vk.PresentModeImmediate,
}

// ChoosePresentMode prefers mailbox, then immediate, then FIFO,
// regardless of the order the modes are reported in.
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, want := range presentModePriority {
		for _, mode := range modes {
			if mode == want {
				return mode
			}
		}
	}
	return vk.PresentModeFifo
}

// ImageCount asks for one image more than the minimum, staying within
// the maximum when the surface has one. A maximum of zero means unbounded.
func ImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// ChooseTransform prefers the identity transform.
func ChooseTransform(caps vk.SurfaceCapabilities) vk.SurfaceTransformFlagBits {
	if caps.SupportedTransforms&vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit) != 0 {
		return vk.SurfaceTransformIdentityBit
	}
	return caps.CurrentTransform
}

// SwapchainImage pairs a swapchain image with its view.
type SwapchainImage struct {
	Image vk.Image
	View  vk.ImageView
}

// SwapchainImageSet holds the images of one swapchain in presentation
// order, along with the image currently in use.
type SwapchainImageSet struct {
	images  []SwapchainImage
	current uint32
}

// NewSwapchainImageSet creates a set with the cursor on the first image.
func NewSwapchainImageSet(images []SwapchainImage) SwapchainImageSet {
	return SwapchainImageSet{
		images: images,
	}
}

// Len returns the number of images.
func (s *SwapchainImageSet) Len() int {
	return len(s.images)
}

// Images returns the image and view pairs in presentation order.
func (s *SwapchainImageSet) Images() []SwapchainImage {
	return s.images
}

// Current returns the image under the cursor, false when the set is empty.
func (s *SwapchainImageSet) Current() (SwapchainImage, bool) {
	if int(s.current) >= len(s.images) {
		return SwapchainImage{}, false
	}
	return s.images[s.current], true
}

// CurrentIndex returns the cursor position.
func (s *SwapchainImageSet) CurrentIndex() uint32 {
	return s.current
}

// SetCurrent moves the cursor.
func (s *SwapchainImageSet) SetCurrent(idx uint32) error {
	if int(idx) >= len(s.images) {
		return precondition("swapchain image index %d out of range [0, %d)", idx, len(s.images))
	}
	s.current = idx
	return nil
}
