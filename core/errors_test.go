// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	vk "github.com/devblok/vulkan"
	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"

	"github.com/devblok/vkframe/core"
)

func TestResultName(t *testing.T) {
	c := qt.New(t)
	c.Assert(core.ResultName(vk.Success), qt.Equals, "VK_SUCCESS")
	c.Assert(core.ResultName(vk.ErrorDeviceLost), qt.Equals, "VK_ERROR_DEVICE_LOST")
	c.Assert(core.ResultName(vk.ErrorOutOfDate), qt.Equals, "VK_ERROR_OUT_OF_DATE_KHR")
	c.Assert(core.ResultName(vk.Result(-424242)), qt.Equals, "VkResult(-424242)")
}

func TestPlatformError(t *testing.T) {
	c := qt.New(t)
	var err error = &core.PlatformError{Call: "vk.CreateDevice()", Result: vk.ErrorInitializationFailed}
	c.Assert(err, qt.ErrorMatches, `vk.CreateDevice\(\): VK_ERROR_INITIALIZATION_FAILED`)

	wrapped := errors.Wrap(err, "create")
	c.Assert(core.IsResult(wrapped, vk.ErrorInitializationFailed), qt.Equals, true)
	c.Assert(core.IsResult(wrapped, vk.ErrorDeviceLost), qt.Equals, false)
	c.Assert(core.IsResult(errors.New("plain"), vk.ErrorDeviceLost), qt.Equals, false)
}

func TestPreconditionError(t *testing.T) {
	c := qt.New(t)
	c.Assert(core.ErrNotInitialized, qt.ErrorMatches, "precondition violated: renderer is not initialized")

	var pe *core.PreconditionError
	c.Assert(errors.As(errors.Wrap(core.ErrDestroyed, "render"), &pe), qt.Equals, true)
	c.Assert(pe.Condition, qt.Equals, "renderer is destroyed")
}
