package points

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BoundingSphere is a sphere enclosing a set of positions.
type BoundingSphere struct {
	Center mgl64.Vec3
	Radius float64
}

// BoundingSphereFromPoints returns a tight sphere around positions. It runs
// Ritter's algorithm and the naive axis-aligned-box sphere and keeps the
// smaller. An empty input yields the zero sphere.
func BoundingSphereFromPoints(positions []mgl64.Vec3) BoundingSphere {
	if len(positions) == 0 {
		return BoundingSphere{}
	}

	xMin, yMin, zMin := positions[0], positions[0], positions[0]
	xMax, yMax, zMax := positions[0], positions[0], positions[0]

	for _, p := range positions[1:] {
		if p[0] < xMin[0] {
			xMin = p
		}
		if p[0] > xMax[0] {
			xMax = p
		}
		if p[1] < yMin[1] {
			yMin = p
		}
		if p[1] > yMax[1] {
			yMax = p
		}
		if p[2] < zMin[2] {
			zMin = p
		}
		if p[2] > zMax[2] {
			zMax = p
		}
	}

	// Diameter endpoints: the pair with the largest span.
	xSpan := lenSqr(xMax.Sub(xMin))
	ySpan := lenSqr(yMax.Sub(yMin))
	zSpan := lenSqr(zMax.Sub(zMin))

	d1, d2, maxSpan := xMin, xMax, xSpan
	if ySpan > maxSpan {
		d1, d2, maxSpan = yMin, yMax, ySpan
	}
	if zSpan > maxSpan {
		d1, d2 = zMin, zMax
	}

	ritterCenter := d1.Add(d2).Mul(0.5)
	radiusSquared := lenSqr(d2.Sub(ritterCenter))
	ritterRadius := math.Sqrt(radiusSquared)

	minBox := mgl64.Vec3{xMin[0], yMin[1], zMin[2]}
	maxBox := mgl64.Vec3{xMax[0], yMax[1], zMax[2]}
	naiveCenter := minBox.Add(maxBox).Mul(0.5)

	naiveRadius := 0.0
	for _, p := range positions {
		if r := p.Sub(naiveCenter).Len(); r > naiveRadius {
			naiveRadius = r
		}

		// Grow the Ritter sphere to include points that lie outside.
		oldCenterToPointSquared := lenSqr(p.Sub(ritterCenter))
		if oldCenterToPointSquared > radiusSquared {
			oldCenterToPoint := math.Sqrt(oldCenterToPointSquared)
			ritterRadius = (ritterRadius + oldCenterToPoint) * 0.5
			radiusSquared = ritterRadius * ritterRadius
			oldToNew := oldCenterToPoint - ritterRadius
			ritterCenter = ritterCenter.Mul(ritterRadius).Add(p.Mul(oldToNew)).Mul(1 / oldCenterToPoint)
		}
	}

	if ritterRadius < naiveRadius {
		return BoundingSphere{Center: ritterCenter, Radius: ritterRadius}
	}
	return BoundingSphere{Center: naiveCenter, Radius: naiveRadius}
}

// Expand returns the sphere grown, about the same center, to contain p.
func (s BoundingSphere) Expand(p mgl64.Vec3) BoundingSphere {
	if r := p.Sub(s.Center).Len(); r > s.Radius {
		s.Radius = r
	}
	return s
}

// Transform returns the sphere transformed by m. The radius is scaled by the
// largest axis scale of m.
func (s BoundingSphere) Transform(m mgl64.Mat4) BoundingSphere {
	return BoundingSphere{
		Center: m.Mul4x1(s.Center.Vec4(1)).Vec3(),
		Radius: maximumScale(m) * s.Radius,
	}
}

// Contains reports whether p lies within the sphere.
func (s BoundingSphere) Contains(p mgl64.Vec3) bool {
	return p.Sub(s.Center).Len() <= s.Radius
}

func maximumScale(m mgl64.Mat4) float64 {
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	return math.Max(sx, math.Max(sy, sz))
}

func lenSqr(v mgl64.Vec3) float64 { return v.Dot(v) }
