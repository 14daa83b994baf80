// Copyright 2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package uper

import "math/bits"

type bitWriter struct {
	buf []byte
	n   int // bits written
}

func (w *bitWriter) writeBit(set bool) {
	if w.n%8 == 0 {
		w.buf = append(w.buf, 0)
	}
	if set {
		w.buf[len(w.buf)-1] |= 0x80 >> (w.n % 8)
	}
	w.n++
}

// writeBits writes the low count bits of v, most significant first.
func (w *bitWriter) writeBits(v uint64, count int) {
	for i := count - 1; i >= 0; i-- {
		w.writeBit(v&(1<<uint(i)) != 0)
	}
}

func (w *bitWriter) writeBytes(p []byte) {
	if w.n%8 == 0 {
		w.buf = append(w.buf, p...)
		w.n += len(p) * 8
		return
	}
	for _, b := range p {
		w.writeBits(uint64(b), 8)
	}
}

// complete returns the octets written so far, as a complete encoding: at
// least one octet, with the final octet zero-padded.
func (w *bitWriter) complete() []byte {
	if len(w.buf) == 0 {
		return []byte{0}
	}
	return w.buf
}

type bitReader struct {
	buf []byte
	pos int // bits consumed
}

func (r *bitReader) remaining() int {
	return len(r.buf)*8 - r.pos
}

func (r *bitReader) readBit() (bool, error) {
	if r.remaining() < 1 {
		return false, errTruncatedAt(r.pos)
	}
	set := r.buf[r.pos/8]&(0x80>>(r.pos%8)) != 0
	r.pos++
	return set, nil
}

func (r *bitReader) readBits(count int) (uint64, error) {
	if count > 64 {
		return 0, errTooWide(count)
	}
	if r.remaining() < count {
		return 0, errTruncatedAt(r.pos)
	}
	var v uint64
	for i := 0; i < count; i++ {
		set := r.buf[r.pos/8]&(0x80>>(r.pos%8)) != 0
		v <<= 1
		if set {
			v |= 1
		}
		r.pos++
	}
	return v, nil
}

func (r *bitReader) readBytes(count int) ([]byte, error) {
	if count < 0 || r.remaining() < count*8 {
		return nil, errTruncatedAt(r.pos)
	}
	out := make([]byte, count)
	if r.pos%8 == 0 {
		copy(out, r.buf[r.pos/8:])
		r.pos += count * 8
		return out, nil
	}
	for i := range out {
		v, err := r.readBits(8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}

// rangeBits is the number of bits needed for a constrained whole number
// with the given range size minus one.
func rangeBits(span uint64) int {
	return bits.Len64(span)
}
