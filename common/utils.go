package common

import (
	"encoding/binary"
	"math"
)

// Coalesce returns the first argument that is not the zero value of T, or the zero value when all are zero.
// Used to apply defaults to partially filled descriptors.
//
// Parameters:
//   - values: candidates in priority order
//
// Returns:
//   - T: the first non-zero candidate
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Float32Bytes encodes a float32 slice as little-endian bytes for buffer uploads.
// Unlike an unsafe view, the result is an independent copy the caller may retain.
//
// Parameters:
//   - data: the floats to encode
//
// Returns:
//   - []byte: 4*len(data) bytes, or nil for empty input
func Float32Bytes(data []float32) []byte {
	if len(data) == 0 {
		return nil
	}
	out := make([]byte, 4*len(data))
	for i, f := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// Uint32Bytes encodes a uint32 slice as little-endian bytes, used for index buffers.
//
// Parameters:
//   - data: the values to encode
//
// Returns:
//   - []byte: 4*len(data) bytes, or nil for empty input
func Uint32Bytes(data []uint32) []byte {
	if len(data) == 0 {
		return nil
	}
	out := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// Clamp limits v to the closed range [lo, hi].
func Clamp[T ~int | ~float32 | ~float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
