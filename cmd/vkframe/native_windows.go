// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

// logNativeHost records the process the window belongs to.
func logNativeHost(logger logrus.FieldLogger) {
	version, err := windows.GetVersion()
	if err != nil {
		logger.WithError(err).Warn("unable to query windows version")
		return
	}
	logger.WithFields(logrus.Fields{
		"pid":   windows.GetCurrentProcessId(),
		"major": byte(version),
		"minor": uint8(version >> 8),
		"build": uint16(version >> 16),
	}).Debug("native host")
}
