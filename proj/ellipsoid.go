package proj

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Cartographic is a geodetic position. Longitude and Latitude are in radians,
// Height is in metres above the ellipsoid surface.
type Cartographic struct {
	Longitude float64
	Latitude  float64
	Height    float64
}

// Ellipsoid is a quadratic surface x²/a² + y²/b² + z²/c² = 1 in Cartesian
// coordinates.
type Ellipsoid struct {
	radii               mgl64.Vec3
	radiiSquared        mgl64.Vec3
	oneOverRadii        mgl64.Vec3
	oneOverRadiiSquared mgl64.Vec3
}

// centerToleranceSquared bounds how close to the centre a point may be before
// it has no well-defined surface projection.
const centerToleranceSquared = 0.1

// geodeticEpsilon is the convergence tolerance for the Newton iteration in
// ScaleToGeodeticSurface.
const geodeticEpsilon = 1e-12

// WGS84 is the World Geodetic System 1984 ellipsoid.
var WGS84 = NewEllipsoid(6378137.0, 6378137.0, 6356752.3142451793)

// NewEllipsoid creates an ellipsoid with the given radii in metres.
func NewEllipsoid(x, y, z float64) *Ellipsoid {
	return &Ellipsoid{
		radii:               mgl64.Vec3{x, y, z},
		radiiSquared:        mgl64.Vec3{x * x, y * y, z * z},
		oneOverRadii:        mgl64.Vec3{1 / x, 1 / y, 1 / z},
		oneOverRadiiSquared: mgl64.Vec3{1 / (x * x), 1 / (y * y), 1 / (z * z)},
	}
}

// Radii returns the ellipsoid radii.
func (e *Ellipsoid) Radii() mgl64.Vec3 { return e.radii }

// MaximumRadius returns the largest of the three radii.
func (e *Ellipsoid) MaximumRadius() float64 {
	return math.Max(e.radii[0], math.Max(e.radii[1], e.radii[2]))
}

// GeodeticSurfaceNormal returns the unit normal of the surface through p.
func (e *Ellipsoid) GeodeticSurfaceNormal(p mgl64.Vec3) mgl64.Vec3 {
	n := mgl64.Vec3{
		p[0] * e.oneOverRadiiSquared[0],
		p[1] * e.oneOverRadiiSquared[1],
		p[2] * e.oneOverRadiiSquared[2],
	}
	return n.Normalize()
}

// ScaleToGeodeticSurface projects p along the geodetic normal onto the
// ellipsoid surface. It reports false when p is too close to the centre for
// the projection to be defined.
func (e *Ellipsoid) ScaleToGeodeticSurface(p mgl64.Vec3) (mgl64.Vec3, bool) {
	x, y, z := p.Elem()
	ox, oy, oz := e.oneOverRadii.Elem()

	x2 := x * x * ox * ox
	y2 := y * y * oy * oy
	z2 := z * z * oz * oz

	squaredNorm := x2 + y2 + z2
	ratio := math.Sqrt(1.0 / squaredNorm)

	// Initial approximation: scale along the geocentric direction.
	intersection := p.Mul(ratio)

	if squaredNorm < centerToleranceSquared {
		if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
			return mgl64.Vec3{}, false
		}
		return intersection, true
	}

	ors := e.oneOverRadiiSquared
	gradient := mgl64.Vec3{
		intersection[0] * ors[0] * 2.0,
		intersection[1] * ors[1] * 2.0,
		intersection[2] * ors[2] * 2.0,
	}

	lambda := (1.0 - ratio) * p.Len() / (0.5 * gradient.Len())
	correction := 0.0

	var xMultiplier, yMultiplier, zMultiplier float64
	for {
		lambda -= correction

		xMultiplier = 1.0 / (1.0 + lambda*ors[0])
		yMultiplier = 1.0 / (1.0 + lambda*ors[1])
		zMultiplier = 1.0 / (1.0 + lambda*ors[2])

		xMultiplier2 := xMultiplier * xMultiplier
		yMultiplier2 := yMultiplier * yMultiplier
		zMultiplier2 := zMultiplier * zMultiplier

		xMultiplier3 := xMultiplier2 * xMultiplier
		yMultiplier3 := yMultiplier2 * yMultiplier
		zMultiplier3 := zMultiplier2 * zMultiplier

		fn := x2*xMultiplier2 + y2*yMultiplier2 + z2*zMultiplier2 - 1.0

		denominator := x2*xMultiplier3*ors[0] + y2*yMultiplier3*ors[1] + z2*zMultiplier3*ors[2]
		derivative := -2.0 * denominator
		correction = fn / derivative

		if math.Abs(fn) <= geodeticEpsilon {
			break
		}
	}

	return mgl64.Vec3{x * xMultiplier, y * yMultiplier, z * zMultiplier}, true
}

// CartesianToCartographic converts an Earth-centred position into geodetic
// coordinates. It reports false for positions at the ellipsoid centre.
func (e *Ellipsoid) CartesianToCartographic(p mgl64.Vec3) (Cartographic, bool) {
	surface, ok := e.ScaleToGeodeticSurface(p)
	if !ok {
		return Cartographic{}, false
	}

	n := e.GeodeticSurfaceNormal(surface)
	h := p.Sub(surface)

	longitude := math.Atan2(n[1], n[0])
	latitude := math.Asin(clamp(n[2], -1, 1))
	height := math.Copysign(h.Len(), h.Dot(p))

	return Cartographic{Longitude: longitude, Latitude: latitude, Height: height}, true
}

// CartographicToCartesian converts geodetic coordinates to an Earth-centred
// position.
func (e *Ellipsoid) CartographicToCartesian(c Cartographic) mgl64.Vec3 {
	cosLat := math.Cos(c.Latitude)
	n := mgl64.Vec3{
		cosLat * math.Cos(c.Longitude),
		cosLat * math.Sin(c.Longitude),
		math.Sin(c.Latitude),
	}.Normalize()

	k := mgl64.Vec3{
		e.radiiSquared[0] * n[0],
		e.radiiSquared[1] * n[1],
		e.radiiSquared[2] * n[2],
	}
	gamma := math.Sqrt(n.Dot(k))
	k = k.Mul(1 / gamma)

	return k.Add(n.Mul(c.Height))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
