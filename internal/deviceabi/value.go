// Package deviceabi defines the wire types shared by the guest runtime
// adapter, the async future table, and the physics stepper: the fixed
// 8-byte DeviceValue payload, the DeviceOperation request variants, and
// the FutureHandle returned for outstanding async requests.
package deviceabi

import "encoding/binary"

// Value is the sole data carrier for device reads: 8 bytes, addressable
// as up to 8 u8 / 4 i16|u16 / 2 i32|u32, little-endian. Every view
// addresses the same 8 bytes, so a value written through one view (With*
// returns the updated copy) reads back through another as the latest write.
type Value [8]byte

// U8 returns the i-th byte lane (i in [0,8)).
func (v Value) U8(i int) uint8 { return v[i] }

// WithU8 returns a copy of v with lane i set to x.
func (v Value) WithU8(i int, x uint8) Value {
	v[i] = x
	return v
}

// U16 returns the i-th u16 lane (i in [0,4)), little-endian.
func (v Value) U16(i int) uint16 {
	return binary.LittleEndian.Uint16(v[i*2 : i*2+2])
}

// WithU16 returns a copy of v with u16 lane i set to x.
func (v Value) WithU16(i int, x uint16) Value {
	binary.LittleEndian.PutUint16(v[i*2:i*2+2], x)
	return v
}

// I16 returns the i-th i16 lane (i in [0,4)), little-endian.
func (v Value) I16(i int) int16 { return int16(v.U16(i)) }

// WithI16 returns a copy of v with i16 lane i set to x.
func (v Value) WithI16(i int, x int16) Value { return v.WithU16(i, uint16(x)) }

// U32 returns the i-th u32 lane (i in [0,2)), little-endian.
func (v Value) U32(i int) uint32 {
	return binary.LittleEndian.Uint32(v[i*4 : i*4+4])
}

// WithU32 returns a copy of v with u32 lane i set to x.
func (v Value) WithU32(i int, x uint32) Value {
	binary.LittleEndian.PutUint32(v[i*4:i*4+4], x)
	return v
}

// I32 returns the i-th i32 lane (i in [0,2)), little-endian.
func (v Value) I32(i int) int32 { return int32(v.U32(i)) }

// WithI32 returns a copy of v with i32 lane i set to x.
func (v Value) WithI32(i int, x int32) Value { return v.WithU32(i, uint32(x)) }

// Bytes returns the raw 8-byte payload.
func (v Value) Bytes() []byte { return v[:] }
