// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"

	"github.com/devblok/vkframe/core"
)

func TestNewLogger(t *testing.T) {
	c := qt.New(t)

	logger, err := core.NewLogger("debug")
	c.Assert(err, qt.IsNil)
	c.Assert(logger.GetLevel(), qt.Equals, logrus.DebugLevel)

	_, err = core.NewLogger("loud")
	c.Assert(err, qt.ErrorMatches, `log level: not a valid logrus Level: "loud"`)
}
