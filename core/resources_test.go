// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"testing"
	"time"

	vk "github.com/devblok/vulkan"
	qt "github.com/frankban/quicktest"
)

// destroyRecorder only implements the calls these tests reach.
type destroyRecorder struct {
	Driver
	calls []string
}

func (d *destroyRecorder) DestroyFence(vk.Device, vk.Fence) {
	d.calls = append(d.calls, "fence")
}

func (d *destroyRecorder) DestroySemaphore(vk.Device, vk.Semaphore) {
	d.calls = append(d.calls, "semaphore")
}

func (d *destroyRecorder) DestroyImageView(vk.Device, vk.ImageView) {
	d.calls = append(d.calls, "view")
}

func (d *destroyRecorder) DestroySwapchain(vk.Device, vk.Swapchain) {
	d.calls = append(d.calls, "swapchain")
}

func TestHandleDestroyIsIdempotent(t *testing.T) {
	c := qt.New(t)
	driver := &destroyRecorder{}

	fence := &fenceHandle{driver: driver}
	fence.Destroy()
	fence.Destroy()
	c.Assert(driver.calls, qt.DeepEquals, []string{"fence"})
}

func TestReleaseStackOrder(t *testing.T) {
	c := qt.New(t)
	driver := &destroyRecorder{}

	var stack releaseStack
	fence := &fenceHandle{driver: driver}
	swapchain := &swapchainHandle{
		driver: driver,
		images: NewSwapchainImageSet(make([]SwapchainImage, 2)),
	}
	stack.push(fence)
	stack.push(swapchain)
	stack.push(&semaphoreHandle{driver: driver})

	// already released entries are skipped
	fence.Destroy()

	stack.releaseAll()
	c.Assert(driver.calls, qt.DeepEquals, []string{"fence", "semaphore", "view", "view", "swapchain"})

	stack.releaseAll()
	c.Assert(len(driver.calls), qt.Equals, 5)
}

func TestReleaseStackReplace(t *testing.T) {
	c := qt.New(t)
	driver := &destroyRecorder{}

	var stack releaseStack
	old := &swapchainHandle{driver: driver}
	stack.push(&fenceHandle{driver: driver})
	stack.push(old)
	stack.push(&semaphoreHandle{driver: driver})

	replacement := &swapchainHandle{driver: driver}
	stack.replace(old, replacement)
	old.Destroy()

	stack.releaseAll()
	c.Assert(driver.calls, qt.DeepEquals, []string{"swapchain", "semaphore", "swapchain", "fence"})
}

func TestAppendUnique(t *testing.T) {
	c := qt.New(t)
	c.Assert(appendUnique([]string{"a", "b"}, "b", "c", "c"), qt.DeepEquals, []string{"a", "b", "c"})
	c.Assert(safeStrings([]string{"a"}), qt.DeepEquals, []string{"a\x00"})
}

func TestNanosecondsTimeout(t *testing.T) {
	c := qt.New(t)
	c.Assert(nanoseconds(time.Second), qt.Equals, uint(1000000000))
	c.Assert(nanoseconds(-time.Second), qt.Equals, uint(0))
	c.Assert(nanoseconds(0), qt.Equals, uint(0))
	if uint64(noTimeout) < uint64(1<<63) {
		// 32 bit uint saturates
		c.Assert(nanoseconds(time.Hour), qt.Equals, noTimeout)
	}
	c.Assert(noTimeout, qt.Equals, ^uint(0))
}
