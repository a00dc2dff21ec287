// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	vk "github.com/devblok/vulkan"
)

// Candidate describes an enumerated physical device along with
// the properties the selector and the command line tools care about.
type Candidate struct {
	Device vk.PhysicalDevice `json:"-"`

	ID            int
	VendorID      int
	DriverVersion int
	Name          string
	Type          vk.PhysicalDeviceType
	Memory        uint
	Extensions    []string

	// QueueFamilies holds the capability flags of every queue
	// family, indexed by family index.
	QueueFamilies []vk.QueueFlags
}

// PresentProbe reports whether the given queue family of a device
// can present to the target surface.
type PresentProbe func(device vk.PhysicalDevice, family uint32) (bool, error)

// Selection is the outcome of device selection.
type Selection struct {
	Candidate   Candidate
	Index       int
	QueueFamily uint32

	// Examined is the number of candidates looked at before
	// the scan finished.
	Examined int
}

// DevicePreference is an ordered list of device categories,
// the most preferred first. It is not modified after creation.
type DevicePreference []vk.PhysicalDeviceType

// DefaultDevicePreference prefers discrete GPUs, then integrated,
// virtual, CPU and finally anything else.
func DefaultDevicePreference() DevicePreference {
	return DevicePreference{
		vk.PhysicalDeviceTypeDiscreteGpu,
		vk.PhysicalDeviceTypeIntegratedGpu,
		vk.PhysicalDeviceTypeVirtualGpu,
		vk.PhysicalDeviceTypeCpu,
		vk.PhysicalDeviceTypeOther,
	}
}

// Rank returns the position of t in the preference list.
// Categories not present in the list rank after all listed ones.
func (p DevicePreference) Rank(t vk.PhysicalDeviceType) int {
	for idx, pt := range p {
		if pt == t {
			return idx
		}
	}
	return len(p)
}

// Superior reports whether newType is strictly preferred over oldType.
func (p DevicePreference) Superior(newType, oldType vk.PhysicalDeviceType) bool {
	return p.Rank(newType) < p.Rank(oldType)
}

// Select picks the most preferred usable candidate in one pass.
// A candidate is usable when one of its queue families supports graphics
// and presentation. Equally ranked candidates resolve to the earliest one,
// and the scan stops as soon as a top ranked candidate is chosen.
func (p DevicePreference) Select(candidates []Candidate, probe PresentProbe) (Selection, error) {
	if len(candidates) == 0 {
		return Selection{}, ErrNoDevices
	}

	var (
		selection Selection
		found     bool
	)
	for idx, candidate := range candidates {
		selection.Examined = idx + 1

		family, ok, err := graphicsPresentFamily(candidate, probe)
		if err != nil {
			return Selection{}, err
		}
		if !ok {
			continue
		}

		if !found || p.Superior(candidate.Type, selection.Candidate.Type) {
			selection.Candidate = candidate
			selection.Index = idx
			selection.QueueFamily = family
			found = true
		}

		if p.Rank(selection.Candidate.Type) == 0 {
			break
		}
	}

	if !found {
		return Selection{}, ErrNoSuitableDevice
	}
	return selection, nil
}

// graphicsPresentFamily finds the first queue family of the candidate
// that has the graphics bit set and can present.
func graphicsPresentFamily(candidate Candidate, probe PresentProbe) (uint32, bool, error) {
	for idx, flags := range candidate.QueueFamilies {
		if flags&vk.QueueFlags(vk.QueueGraphicsBit) == 0 {
			continue
		}
		supported, err := probe(candidate.Device, uint32(idx))
		if err != nil {
			return 0, false, err
		}
		if supported {
			return uint32(idx), true, nil
		}
	}
	return 0, false, nil
}
