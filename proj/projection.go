package proj

import "github.com/go-gl/mathgl/mgl64"

// MapProjection maps geodetic coordinates onto a plane.
type MapProjection interface {
	// Ellipsoid returns the ellipsoid the projection is defined on.
	Ellipsoid() *Ellipsoid

	// Project converts cartographic coordinates into map coordinates
	// (x, y, height) in metres.
	Project(c Cartographic) mgl64.Vec3

	// Unproject is the inverse of Project.
	Unproject(v mgl64.Vec3) Cartographic
}

// GeographicProjection is the equirectangular projection: longitude and
// latitude scaled by the semi-major axis. It is commonly known as EPSG:4326.
type GeographicProjection struct {
	ellipsoid          *Ellipsoid
	semimajorAxis      float64
	oneOverSemimajorAx float64
}

// NewGeographicProjection creates a projection on e. A nil ellipsoid selects
// WGS84.
func NewGeographicProjection(e *Ellipsoid) *GeographicProjection {
	if e == nil {
		e = WGS84
	}
	a := e.MaximumRadius()
	return &GeographicProjection{
		ellipsoid:          e,
		semimajorAxis:      a,
		oneOverSemimajorAx: 1 / a,
	}
}

// Ellipsoid implements MapProjection.
func (p *GeographicProjection) Ellipsoid() *Ellipsoid { return p.ellipsoid }

// Project implements MapProjection.
func (p *GeographicProjection) Project(c Cartographic) mgl64.Vec3 {
	return mgl64.Vec3{
		c.Longitude * p.semimajorAxis,
		c.Latitude * p.semimajorAxis,
		c.Height,
	}
}

// Unproject implements MapProjection.
func (p *GeographicProjection) Unproject(v mgl64.Vec3) Cartographic {
	return Cartographic{
		Longitude: v[0] * p.oneOverSemimajorAx,
		Latitude:  v[1] * p.oneOverSemimajorAx,
		Height:    v[2],
	}
}
