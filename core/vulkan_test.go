// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/vkframe/core"
)

func TestSliceUint32(t *testing.T) {
	c := qt.New(t)

	data := make([]byte, 10)
	binary.LittleEndian.PutUint32(data[0:], 0x07230203)
	binary.LittleEndian.PutUint32(data[4:], 42)

	words := core.SliceUint32(data)
	c.Assert(len(words), qt.Equals, 2)
	if nativeLittleEndian() {
		c.Assert(words[0], qt.Equals, uint32(0x07230203))
		c.Assert(words[1], qt.Equals, uint32(42))
	}

	c.Assert(len(core.SliceUint32([]byte{1, 2})), qt.Equals, 0)
}

func nativeLittleEndian() bool {
	words := core.SliceUint32([]byte{1, 0, 0, 0})
	return words[0] == 1
}

func BenchmarkSliceUint32Small(b *testing.B) {
	data := make([]byte, 100)
	for idx := 0; idx < b.N; idx++ {
		core.SliceUint32(data)
	}
}

func BenchmarkSliceUint32Medium(b *testing.B) {
	data := make([]byte, 1000)
	for idx := 0; idx < b.N; idx++ {
		core.SliceUint32(data)
	}
}

func BenchmarkSliceUint32Big(b *testing.B) {
	data := make([]byte, 100000)
	for idx := 0; idx < b.N; idx++ {
		core.SliceUint32(data)
	}
}
