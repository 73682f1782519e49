// Package bitfield implements the bit range arithmetic used to pack and
// unpack register fields. A field is a contiguous run of bits described by
// the offset of its least significant bit and its width; values travel as
// uint64 words regardless of the hardware register size.
package bitfield

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/AdronTech/svd-tools/pkg/utils"
)

var ErrValueTooWide = errors.New("value does not fit in the field")

// Returns an all ones bitmask of n bits of the given unsigned integer type
func AllOnes[T constraints.Unsigned](bits uint) T {
	return (T(1) << bits) - T(1)
}

// Mask returns the in-place mask covering a field of the given geometry.
func Mask(offset, width uint) uint64 {
	return AllOnes[uint64](width) << offset
}

// Extract returns the field value held in word, shifted down to bit zero.
func Extract(word uint64, offset, width uint) uint64 {
	return (word >> offset) & AllOnes[uint64](width)
}

// Fits reports whether value can be encoded in width bits.
func Fits(value uint64, width uint) bool {
	return value <= AllOnes[uint64](width)
}

// Merge returns word with the field bits replaced by value and every other
// bit untouched. Fails if value needs more than width bits.
func Merge(word uint64, offset, width uint, value uint64) (uint64, error) {
	if !Fits(value, width) {
		return 0, utils.MakeError(ErrValueTooWide, "%#x needs more than %v bits (max value %#x)", value, width, AllOnes[uint64](width))
	}

	return (word &^ Mask(offset, width)) | (value << offset), nil
}

// Label formats a field name with its bit range, MODER0[1:0] style.
func Label(name string, offset, width uint) string {
	return fmt.Sprintf("%v[%v:%v]", name, offset+width-1, offset)
}
