// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package encode

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
)

// highPartStep is the granularity of the high part of an encoded double.
const highPartStep = 65536.0

// Double splits v into a float32 high part that is a multiple of 65536 and a
// float32 low part holding the remainder.
func Double(v float64) (high, low float32) {
	var h float64
	if v >= 0 {
		h = math.Floor(v/highPartStep) * highPartStep
	} else {
		h = -math.Floor(-v/highPartStep) * highPartStep
	}
	return float32(h), float32(v - h)
}

// Cartesian3 is a position split for relative-to-eye rendering.
type Cartesian3 struct {
	High [3]float32
	Low  [3]float32
}

// EncodeCartesian splits each component of p with Double.
func EncodeCartesian(p mgl64.Vec3) Cartesian3 {
	var e Cartesian3
	for i := 0; i < 3; i++ {
		e.High[i], e.Low[i] = Double(p[i])
	}
	return e
}

// Decode recombines the high and low parts.
func (e Cartesian3) Decode() mgl64.Vec3 {
	return mgl64.Vec3{
		float64(e.High[0]) + float64(e.Low[0]),
		float64(e.High[1]) + float64(e.Low[1]),
		float64(e.High[2]) + float64(e.Low[2]),
	}
}

// FloatToByte quantizes v in [0, 1] to a byte value: 1 maps to 255, anything
// else to floor(v*256), clamped to [0, 255].
func FloatToByte(v float32) float32 {
	if v >= 1 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return math32.Min(math32.Floor(v*256), 255)
}

// PackRGB packs three [0, 1] channels into one float as r*65536 + g*256 + b.
func PackRGB(r, g, b float32) float32 {
	return FloatToByte(r)*65536 + FloatToByte(g)*256 + FloatToByte(b)
}

// UnpackRGB reverses PackRGB, returning byte values in [0, 255].
func UnpackRGB(packed float32) (r, g, b float32) {
	r = math32.Floor(packed / 65536)
	rest := packed - r*65536
	g = math32.Floor(rest / 256)
	b = rest - g*256
	return r, g, b
}

// PackAlphas packs three [0, 1] alphas into one float the same way as PackRGB.
func PackAlphas(a0, a1, a2 float32) float32 {
	return PackRGB(a0, a1, a2)
}

// PackShowNear packs the show flag into the 256 bit above a byte-quantized
// near value. nearValue is clamped to [0, 1]; 1 maps to 255, anything else to
// floor(nearValue*255).
func PackShowNear(show bool, nearValue float32) float32 {
	nv := clamp01(nearValue)
	var q float32
	if nv == 1 {
		q = 255
	} else {
		q = math32.Floor(nv * 255)
	}
	if show {
		return 256 + q
	}
	return q
}

// UnpackShowNear reverses PackShowNear.
func UnpackShowNear(packed float32) (show bool, nearByte float32) {
	show = packed >= 256
	if show {
		packed -= 256
	}
	return show, packed
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
