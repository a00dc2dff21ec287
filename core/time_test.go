// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/vkframe/core"
)

func TestTime(t *testing.T) {
	c := qt.New(t)

	ts := core.NewTime(core.TimeConfiguration{FramesPerSecond: 60, EventPollDelay: 5})
	defer ts.Stop()
	c.Assert(ts.Fps(), qt.Equals, 60)
	c.Assert(ts.EventPollDelay(), qt.Equals, 5*time.Millisecond)

	select {
	case <-ts.EventTicker().C:
	case <-time.After(time.Second):
		c.Fatal("event ticker did not fire")
	}
}

func TestTimeZeroDelay(t *testing.T) {
	c := qt.New(t)

	ts := core.NewTime(core.TimeConfiguration{})
	defer ts.Stop()
	c.Assert(ts.EventPollDelay(), qt.Equals, time.Millisecond)
}
