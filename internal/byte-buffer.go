// starparser: a tool for manipulating RELION STAR files.
// Copyright (c) 2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/starparser/blob/master/LICENSE.txt>.

package internal

import "sync"

// maxPooledBuffer is the largest capacity kept in the pool.
const maxPooledBuffer = 64 << 20

var bufPool = sync.Pool{New: func() interface{} {
	return make([]byte, 0, 64<<10)
}}

// ReserveByteBuffer returns an empty byte slice from a pool, possibly
// with a large capacity left over from a previous STAR file. The parts
// of a split command share their buffers this way.
func ReserveByteBuffer() []byte {
	return bufPool.Get().([]byte)[:0]
}

// ReleaseByteBuffer returns a byte slice obtained from
// ReserveByteBuffer, or grown from one, to the pool. Slices beyond
// maxPooledBuffer are left to the garbage collector.
func ReleaseByteBuffer(buf []byte) {
	if cap(buf) > maxPooledBuffer {
		return
	}
	bufPool.Put(buf[:0])
}
