package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindInvalid is the zero Value; it never uploads and every accessor panics on it.
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindUint32
	KindUint64
	KindFloat
	KindVec2
	KindVec3
	KindVec4
	KindQuat
	KindMat2
	KindMat3
	KindMat4
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt:     "int",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindFloat:   "float",
	KindVec2:    "vec2",
	KindVec3:    "vec3",
	KindVec4:    "vec4",
	KindQuat:    "quat",
	KindMat2:    "mat2",
	KindMat3:    "mat3",
	KindMat4:    "mat4",
}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is a tagged union over the closed set of shader input types. It backs both
// uniform uploads and the typed parameter maps. Accessors panic when the requested
// variant does not match the stored one: a mismatch is a wiring bug, not a runtime condition.
type Value struct {
	kind Kind
	bits uint64
	f    [16]float32
}

// BoolValue wraps a bool.
func BoolValue(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.bits = 1
	}
	return v
}

// IntValue wraps a signed integer. Shaders receive it as i32.
func IntValue(i int) Value { return Value{kind: KindInt, bits: uint64(int64(i))} }

// Uint32Value wraps a uint32.
func Uint32Value(u uint32) Value { return Value{kind: KindUint32, bits: uint64(u)} }

// Uint64Value wraps a uint64. Shaders receive it as vec2<u32> (low word first).
func Uint64Value(u uint64) Value { return Value{kind: KindUint64, bits: u} }

// FloatValue wraps a float32.
func FloatValue(f float32) Value {
	v := Value{kind: KindFloat}
	v.f[0] = f
	return v
}

// Vec2Value wraps a 2-component vector.
func Vec2Value(x mgl32.Vec2) Value {
	v := Value{kind: KindVec2}
	copy(v.f[:], x[:])
	return v
}

// Vec3Value wraps a 3-component vector.
func Vec3Value(x mgl32.Vec3) Value {
	v := Value{kind: KindVec3}
	copy(v.f[:], x[:])
	return v
}

// Vec4Value wraps a 4-component vector.
func Vec4Value(x mgl32.Vec4) Value {
	v := Value{kind: KindVec4}
	copy(v.f[:], x[:])
	return v
}

// QuatValue wraps a quaternion, stored as (x, y, z, w).
func QuatValue(q mgl32.Quat) Value {
	v := Value{kind: KindQuat}
	v.f[0], v.f[1], v.f[2], v.f[3] = q.V[0], q.V[1], q.V[2], q.W
	return v
}

// Mat2Value wraps a column-major 2x2 matrix.
func Mat2Value(m mgl32.Mat2) Value {
	v := Value{kind: KindMat2}
	copy(v.f[:], m[:])
	return v
}

// Mat3Value wraps a column-major 3x3 matrix.
func Mat3Value(m mgl32.Mat3) Value {
	v := Value{kind: KindMat3}
	copy(v.f[:], m[:])
	return v
}

// Mat4Value wraps a column-major 4x4 matrix.
func Mat4Value(m mgl32.Mat4) Value {
	v := Value{kind: KindMat4}
	copy(v.f[:], m[:])
	return v
}

// Kind returns the stored variant.
func (v Value) Kind() Kind { return v.kind }

func (v Value) must(k Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("gpu: value holds %s, not %s", v.kind, k))
	}
}

// Bool returns the stored bool; panics unless Kind() == KindBool.
func (v Value) Bool() bool {
	v.must(KindBool)
	return v.bits != 0
}

// Int returns the stored int; panics unless Kind() == KindInt.
func (v Value) Int() int {
	v.must(KindInt)
	return int(int64(v.bits))
}

// Uint32 returns the stored uint32; panics unless Kind() == KindUint32.
func (v Value) Uint32() uint32 {
	v.must(KindUint32)
	return uint32(v.bits)
}

// Uint64 returns the stored uint64; panics unless Kind() == KindUint64.
func (v Value) Uint64() uint64 {
	v.must(KindUint64)
	return v.bits
}

// Float returns the stored float32; panics unless Kind() == KindFloat.
func (v Value) Float() float32 {
	v.must(KindFloat)
	return v.f[0]
}

// Vec2 returns the stored vector; panics unless Kind() == KindVec2.
func (v Value) Vec2() mgl32.Vec2 {
	v.must(KindVec2)
	return mgl32.Vec2{v.f[0], v.f[1]}
}

// Vec3 returns the stored vector; panics unless Kind() == KindVec3.
func (v Value) Vec3() mgl32.Vec3 {
	v.must(KindVec3)
	return mgl32.Vec3{v.f[0], v.f[1], v.f[2]}
}

// Vec4 returns the stored vector; panics unless Kind() == KindVec4.
func (v Value) Vec4() mgl32.Vec4 {
	v.must(KindVec4)
	return mgl32.Vec4{v.f[0], v.f[1], v.f[2], v.f[3]}
}

// Quat returns the stored quaternion; panics unless Kind() == KindQuat.
func (v Value) Quat() mgl32.Quat {
	v.must(KindQuat)
	return mgl32.Quat{W: v.f[3], V: mgl32.Vec3{v.f[0], v.f[1], v.f[2]}}
}

// Mat2 returns the stored matrix; panics unless Kind() == KindMat2.
func (v Value) Mat2() mgl32.Mat2 {
	v.must(KindMat2)
	var m mgl32.Mat2
	copy(m[:], v.f[:4])
	return m
}

// Mat3 returns the stored matrix; panics unless Kind() == KindMat3.
func (v Value) Mat3() mgl32.Mat3 {
	v.must(KindMat3)
	var m mgl32.Mat3
	copy(m[:], v.f[:9])
	return m
}

// Mat4 returns the stored matrix; panics unless Kind() == KindMat4.
func (v Value) Mat4() mgl32.Mat4 {
	v.must(KindMat4)
	var m mgl32.Mat4
	copy(m[:], v.f[:16])
	return m
}

// Bytes encodes the value with WGSL uniform address space layout: bools become u32,
// uint64 becomes two u32 words, and mat3 columns are padded to 16 bytes.
//
// Returns:
//   - []byte: the little-endian encoding, nil for KindInvalid
func (v Value) Bytes() []byte {
	switch v.kind {
	case KindBool, KindUint32:
		return binary.LittleEndian.AppendUint32(nil, uint32(v.bits))
	case KindInt:
		return binary.LittleEndian.AppendUint32(nil, uint32(int32(int64(v.bits))))
	case KindUint64:
		return binary.LittleEndian.AppendUint64(nil, v.bits)
	case KindFloat:
		return floatBytes(v.f[:1])
	case KindVec2:
		return floatBytes(v.f[:2])
	case KindVec3:
		return floatBytes(v.f[:3])
	case KindVec4, KindQuat, KindMat2:
		return floatBytes(v.f[:4])
	case KindMat3:
		out := make([]byte, 0, 48)
		for c := 0; c < 3; c++ {
			out = append(out, floatBytes(v.f[c*3:c*3+3])...)
			out = append(out, 0, 0, 0, 0)
		}
		return out
	case KindMat4:
		return floatBytes(v.f[:16])
	}
	return nil
}

// String formats the value for logs and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return fmt.Sprintf("bool(%t)", v.bits != 0)
	case KindInt:
		return fmt.Sprintf("int(%d)", int64(v.bits))
	case KindUint32, KindUint64:
		return fmt.Sprintf("%s(%d)", v.kind, v.bits)
	case KindFloat:
		return fmt.Sprintf("float(%g)", v.f[0])
	case KindInvalid:
		return "invalid"
	}
	n := map[Kind]int{KindVec2: 2, KindVec3: 3, KindVec4: 4, KindQuat: 4, KindMat2: 4, KindMat3: 9, KindMat4: 16}[v.kind]
	return fmt.Sprintf("%s%v", v.kind, v.f[:n])
}

func floatBytes(f []float32) []byte {
	out := make([]byte, 0, 4*len(f))
	for _, x := range f {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(x))
	}
	return out
}
