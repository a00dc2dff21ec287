// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"flag"
	"os"

	vk "github.com/devblok/vulkan"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/vkframe/core"
)

var (
	debug  = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	indent = flag.Bool("pretty", false, "Indent the JSON output")
)

type report struct {
	Devices  []core.Candidate
	Selected *core.Selection `json:",omitempty"`
}

func main() {
	flag.Parse()

	driver, err := core.NewVulkanDriver(nil, core.NewVulkanApplicationInfo("vkframecli"))
	if err != nil {
		log.WithError(err).Fatal("vulkan loader")
	}

	var layers, extensions []string
	if *debug {
		layers = append(layers, core.ValidationLayer)
		extensions = append(extensions, core.DebugReportExtension)
	}

	instance, err := driver.CreateInstance(extensions, layers)
	if err != nil {
		log.WithError(err).Fatal("create instance")
	}
	defer driver.DestroyInstance(instance)

	candidates, err := driver.Candidates(instance)
	if err != nil {
		log.WithError(err).Fatal("enumerate devices")
	}

	out := report{Devices: candidates}

	// There is no surface to ask, any graphics family is assumed to present.
	assumePresent := func(vk.PhysicalDevice, uint32) (bool, error) { return true, nil }
	if sel, err := core.DefaultDevicePreference().Select(candidates, assumePresent); err == nil {
		out.Selected = &sel
	} else {
		log.WithError(err).Warn("no device would be selected")
	}

	enc := json.NewEncoder(os.Stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		log.WithError(err).Fatal("encode")
	}
}
