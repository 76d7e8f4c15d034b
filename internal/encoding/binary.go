// Package encoding packs integers into the 16 bit channels of an RGBA64 pixel.
package encoding

import (
	"encoding/binary"
)

// MaxIndex is the largest index PackIndex can store
const MaxIndex = 1<<31 - 1

// PackIndex packs a (zero based) index into two uint16 channels.
// The index is stored +1 so that a zeroed pixel reads back as -1 (no index).
// Indexes outside [0, MaxIndex] are stored as "no index".
func PackIndex(i int) (uint16, uint16) {
	if i < 0 || i > MaxIndex {
		return 0, 0
	}
	return Split32(uint32(i + 1))
}

// UnpackIndex reverses PackIndex, returning -1 if no index was set.
func UnpackIndex(hi, lo uint16) int {
	return int(Merge16(hi, lo)) - 1
}

// FromBytes8 turns a []byte into a uint8.
func FromBytes8(data []byte) uint8 {
	if len(data) == 0 {
		return 0
	}
	if len(data) == 1 {
		data = []byte{0x00, data[0]}
	}
	// there isn't a Uint8 function
	i16 := binary.BigEndian.Uint16(data)
	return uint8(i16)
}

// ToBytes8 turns uint8 into []byte of len 1 (eg. 8 bits)
func ToBytes8(in uint8) []byte {
	return []byte{in}
}

// Split32 uint32 to two uint16
func Split32(in uint32) (uint16, uint16) {
	return uint16(in >> 16), uint16(in)
}

// Merge16 two uint16 to uint32
func Merge16(a, b uint16) uint32 {
	return (uint32(a) << 16) + uint32(b)
}

// Split16 uint16 to two uint8
func Split16(in uint16) (uint8, uint8) {
	return uint8(in >> 8), uint8(in)
}

// Merge8 two uint8 to uint16
func Merge8(a, b uint8) uint16 {
	return (uint16(a) << 8) + uint16(b)
}
