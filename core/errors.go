// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

// Package errors
var (
	ErrNoDevices        = errors.New("no physical devices enumerated")
	ErrNoSuitableDevice = errors.New("no physical device exposes a graphics queue with present support")
	ErrNoDepthFormat    = errors.New("no supported depth format")
	ErrShaderNotFound   = errors.New("shader file not found")
	ErrShaderEmpty      = errors.New("shader file is empty")
	ErrShaderMisaligned = errors.New("shader size is not a multiple of 4")

	ErrNotInitialized = &PreconditionError{Condition: "renderer is not initialized"}
	ErrAlreadyCreated = &PreconditionError{Condition: "renderer is already created"}
	ErrDestroyed      = &PreconditionError{Condition: "renderer is destroyed"}
)

var resultNames = map[vk.Result]string{
	vk.Success:                   "VK_SUCCESS",
	vk.NotReady:                  "VK_NOT_READY",
	vk.Timeout:                   "VK_TIMEOUT",
	vk.EventSet:                  "VK_EVENT_SET",
	vk.EventReset:                "VK_EVENT_RESET",
	vk.Incomplete:                "VK_INCOMPLETE",
	vk.Suboptimal:                "VK_SUBOPTIMAL_KHR",
	vk.ErrorOutOfHostMemory:      "VK_ERROR_OUT_OF_HOST_MEMORY",
	vk.ErrorOutOfDeviceMemory:    "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	vk.ErrorInitializationFailed: "VK_ERROR_INITIALIZATION_FAILED",
	vk.ErrorDeviceLost:           "VK_ERROR_DEVICE_LOST",
	vk.ErrorMemoryMapFailed:      "VK_ERROR_MEMORY_MAP_FAILED",
	vk.ErrorLayerNotPresent:      "VK_ERROR_LAYER_NOT_PRESENT",
	vk.ErrorExtensionNotPresent:  "VK_ERROR_EXTENSION_NOT_PRESENT",
	vk.ErrorFeatureNotPresent:    "VK_ERROR_FEATURE_NOT_PRESENT",
	vk.ErrorIncompatibleDriver:   "VK_ERROR_INCOMPATIBLE_DRIVER",
	vk.ErrorTooManyObjects:       "VK_ERROR_TOO_MANY_OBJECTS",
	vk.ErrorFormatNotSupported:   "VK_ERROR_FORMAT_NOT_SUPPORTED",
	vk.ErrorSurfaceLost:          "VK_ERROR_SURFACE_LOST_KHR",
	vk.ErrorOutOfDate:            "VK_ERROR_OUT_OF_DATE_KHR",
	vk.ErrorIncompatibleDisplay:  "VK_ERROR_INCOMPATIBLE_DISPLAY_KHR",
	vk.ErrorNativeWindowInUse:    "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR",
	vk.ErrorValidationFailed:     "VK_ERROR_VALIDATION_FAILED_EXT",
}

// ResultName returns the symbolic name of a result code,
// or its numeric value when the code is not known.
func ResultName(result vk.Result) string {
	if name, ok := resultNames[result]; ok {
		return name
	}
	return fmt.Sprintf("VkResult(%d)", int32(result))
}

// PlatformError is returned when a graphics API call does not succeed.
type PlatformError struct {
	Call   string
	Result vk.Result
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: %s", e.Call, ResultName(e.Result))
}

// resultError returns nil on vk.Success and a *PlatformError otherwise.
func resultError(call string, result vk.Result) error {
	if result == vk.Success {
		return nil
	}
	return &PlatformError{
		Call:   call,
		Result: result,
	}
}

// IsResult reports whether err carries a PlatformError with the given result.
func IsResult(err error, result vk.Result) bool {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.Result == result
	}
	return false
}

// PreconditionError describes an internal invariant that did not hold.
type PreconditionError struct {
	Condition string
}

func (e *PreconditionError) Error() string {
	return "precondition violated: " + e.Condition
}

func precondition(format string, args ...interface{}) error {
	return &PreconditionError{Condition: fmt.Sprintf(format, args...)}
}
