// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// +build !windows

package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func logNativeHost(logger logrus.FieldLogger) {
	logger.WithField("pid", os.Getpid()).Debug("native host")
}
