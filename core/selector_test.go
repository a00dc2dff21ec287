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

var graphics = vk.QueueFlags(vk.QueueGraphicsBit)

func candidate(name string, t vk.PhysicalDeviceType, families ...vk.QueueFlags) core.Candidate {
	return core.Candidate{
		Name:          name,
		Type:          t,
		QueueFamilies: families,
	}
}

// presentOn returns a probe that reports present support only on the given families.
func presentOn(families ...uint32) (core.PresentProbe, *int) {
	calls := 0
	return func(_ vk.PhysicalDevice, family uint32) (bool, error) {
		calls++
		for _, f := range families {
			if f == family {
				return true, nil
			}
		}
		return false, nil
	}, &calls
}

func TestDefaultDevicePreferenceRank(t *testing.T) {
	c := qt.New(t)
	p := core.DefaultDevicePreference()

	c.Assert(p.Rank(vk.PhysicalDeviceTypeDiscreteGpu), qt.Equals, 0)
	c.Assert(p.Rank(vk.PhysicalDeviceTypeIntegratedGpu), qt.Equals, 1)
	c.Assert(p.Rank(vk.PhysicalDeviceTypeVirtualGpu), qt.Equals, 2)
	c.Assert(p.Rank(vk.PhysicalDeviceTypeCpu), qt.Equals, 3)
	c.Assert(p.Rank(vk.PhysicalDeviceTypeOther), qt.Equals, 4)
	c.Assert(p.Rank(vk.PhysicalDeviceType(42)), qt.Equals, 5)

	c.Assert(p.Superior(vk.PhysicalDeviceTypeDiscreteGpu, vk.PhysicalDeviceTypeIntegratedGpu), qt.Equals, true)
	c.Assert(p.Superior(vk.PhysicalDeviceTypeIntegratedGpu, vk.PhysicalDeviceTypeDiscreteGpu), qt.Equals, false)
	c.Assert(p.Superior(vk.PhysicalDeviceTypeCpu, vk.PhysicalDeviceTypeCpu), qt.Equals, false)
	c.Assert(p.Superior(vk.PhysicalDeviceTypeOther, vk.PhysicalDeviceType(42)), qt.Equals, true)
}

func TestSelectPrefersDiscrete(t *testing.T) {
	c := qt.New(t)
	probe, _ := presentOn(0)

	sel, err := core.DefaultDevicePreference().Select([]core.Candidate{
		candidate("integrated", vk.PhysicalDeviceTypeIntegratedGpu, graphics),
		candidate("cpu", vk.PhysicalDeviceTypeCpu, graphics),
		candidate("discrete", vk.PhysicalDeviceTypeDiscreteGpu, graphics),
		candidate("second discrete", vk.PhysicalDeviceTypeDiscreteGpu, graphics),
	}, probe)
	c.Assert(err, qt.IsNil)
	c.Assert(sel.Candidate.Name, qt.Equals, "discrete")
	c.Assert(sel.Index, qt.Equals, 2)
	c.Assert(sel.QueueFamily, qt.Equals, uint32(0))
	// scan stops at the first discrete device
	c.Assert(sel.Examined, qt.Equals, 3)
}

func TestSelectEarliestWinsTies(t *testing.T) {
	c := qt.New(t)
	probe, _ := presentOn(0)

	sel, err := core.DefaultDevicePreference().Select([]core.Candidate{
		candidate("cpu", vk.PhysicalDeviceTypeCpu, graphics),
		candidate("first", vk.PhysicalDeviceTypeIntegratedGpu, graphics),
		candidate("second", vk.PhysicalDeviceTypeIntegratedGpu, graphics),
	}, probe)
	c.Assert(err, qt.IsNil)
	c.Assert(sel.Candidate.Name, qt.Equals, "first")
	c.Assert(sel.Index, qt.Equals, 1)
	c.Assert(sel.Examined, qt.Equals, 3)
}

func TestSelectSingleCandidate(t *testing.T) {
	c := qt.New(t)
	probe, _ := presentOn(0)

	sel, err := core.DefaultDevicePreference().Select([]core.Candidate{
		candidate("other", vk.PhysicalDeviceTypeOther, graphics),
	}, probe)
	c.Assert(err, qt.IsNil)
	c.Assert(sel.Candidate.Name, qt.Equals, "other")
	c.Assert(sel.Index, qt.Equals, 0)
}

func TestSelectSkipsUnusable(t *testing.T) {
	c := qt.New(t)
	compute := vk.QueueFlags(vk.QueueComputeBit)
	// only family 1 can present
	probe, calls := presentOn(1)

	sel, err := core.DefaultDevicePreference().Select([]core.Candidate{
		candidate("discrete compute only", vk.PhysicalDeviceTypeDiscreteGpu, compute, compute),
		candidate("discrete without present", vk.PhysicalDeviceTypeDiscreteGpu, graphics),
		candidate("integrated", vk.PhysicalDeviceTypeIntegratedGpu, compute, graphics|compute),
	}, probe)
	c.Assert(err, qt.IsNil)
	c.Assert(sel.Candidate.Name, qt.Equals, "integrated")
	c.Assert(sel.QueueFamily, qt.Equals, uint32(1))
	// families without the graphics bit are never probed
	c.Assert(*calls, qt.Equals, 2)
}

func TestSelectNoDevices(t *testing.T) {
	c := qt.New(t)
	probe, _ := presentOn(0)

	_, err := core.DefaultDevicePreference().Select(nil, probe)
	c.Assert(err, qt.Equals, core.ErrNoDevices)
}

func TestSelectNoSuitableDevice(t *testing.T) {
	c := qt.New(t)
	probe, _ := presentOn()

	_, err := core.DefaultDevicePreference().Select([]core.Candidate{
		candidate("discrete", vk.PhysicalDeviceTypeDiscreteGpu, graphics),
		candidate("no families", vk.PhysicalDeviceTypeIntegratedGpu),
	}, probe)
	c.Assert(err, qt.Equals, core.ErrNoSuitableDevice)
}

func TestSelectProbeFailure(t *testing.T) {
	c := qt.New(t)
	lost := errors.New("surface lost")

	_, err := core.DefaultDevicePreference().Select([]core.Candidate{
		candidate("discrete", vk.PhysicalDeviceTypeDiscreteGpu, graphics),
	}, func(vk.PhysicalDevice, uint32) (bool, error) {
		return false, lost
	})
	c.Assert(err, qt.Equals, lost)
}

func TestSelectCustomPreference(t *testing.T) {
	c := qt.New(t)
	probe, _ := presentOn(0)
	p := core.DevicePreference{vk.PhysicalDeviceTypeCpu, vk.PhysicalDeviceTypeIntegratedGpu}

	sel, err := p.Select([]core.Candidate{
		candidate("discrete", vk.PhysicalDeviceTypeDiscreteGpu, graphics),
		candidate("integrated", vk.PhysicalDeviceTypeIntegratedGpu, graphics),
		candidate("cpu", vk.PhysicalDeviceTypeCpu, graphics),
	}, probe)
	c.Assert(err, qt.IsNil)
	c.Assert(sel.Candidate.Name, qt.Equals, "cpu")
}
