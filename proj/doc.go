// Package proj converts between Earth-centred Cartesian coordinates,
// geodetic cartographic coordinates, and the flat map coordinates used by the
// 2D and Columbus-view scene modes.
//
// The package is intentionally small: an [Ellipsoid] with the geodetic surface
// projection needed to recover longitude/latitude/height, and a
// [GeographicProjection] that maps cartographic coordinates onto a plane by
// scaling longitude and latitude by the ellipsoid's semi-major axis.
//
//	p := proj.NewGeographicProjection(proj.WGS84)
//	c, ok := proj.WGS84.CartesianToCartographic(world)
//	if ok {
//	    flat := p.Project(c)
//	}
package proj
