package points

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/points/gpucore"
)

// PointOptions holds the initial field values of a point.
// Start from DefaultPointOptions and override what you need.
type PointOptions struct {
	Show                     bool
	Position                 mgl64.Vec3
	PixelSize                float64
	Color                    gputypes.Color
	OutlineColor             gputypes.Color
	OutlineWidth             float64
	ScaleByDistance          *NearFarScalar
	TranslucencyByDistance   *NearFarScalar
	DistanceDisplayCondition *DistanceDisplayCondition
	DisableDepthTestDistance float64
	SplitDirection           SplitDirection

	// ID is returned with the point when it is picked.
	ID any
}

// DefaultPointOptions returns a visible white 10 pixel point at the origin
// with no outline.
func DefaultPointOptions() PointOptions {
	return PointOptions{
		Show:      true,
		PixelSize: 10,
		Color:     gputypes.Color{R: 1, G: 1, B: 1, A: 1},
	}
}

func (o *PointOptions) validate() error {
	if !finite(o.PixelSize) || o.PixelSize < 0 {
		return fmt.Errorf("%w: pixel size %g", ErrInvalidArgument, o.PixelSize)
	}
	if !finite(o.OutlineWidth) || o.OutlineWidth < 0 {
		return fmt.Errorf("%w: outline width %g", ErrInvalidArgument, o.OutlineWidth)
	}
	if math.IsNaN(o.DisableDepthTestDistance) || o.DisableDepthTestDistance < 0 {
		return fmt.Errorf("%w: disable depth test distance %g", ErrInvalidArgument, o.DisableDepthTestDistance)
	}
	if !finiteVec(o.Position) {
		return fmt.Errorf("%w: non-finite position", ErrInvalidArgument)
	}
	if err := validateSplit(o.SplitDirection); err != nil {
		return err
	}
	if err := validateNearFar(o.ScaleByDistance); err != nil {
		return err
	}
	if err := validateNearFar(o.TranslucencyByDistance); err != nil {
		return err
	}
	return validateDisplayCondition(o.DistanceDisplayCondition)
}

// PickObject is what a pick ID resolves to.
type PickObject struct {
	Point      *Point
	Collection *Collection
	ID         any
}

// Point is one point sprite in a Collection. Points are created by
// Collection.Add and become invalid after Collection.Remove; every setter
// on a removed point returns ErrDestroyed.
//
// Points are not safe for concurrent use.
type Point struct {
	// owner is a non-owning back-reference, nil once removed. ownerID guards
	// against a stale point being mistaken for a member.
	owner   *Collection
	ownerID uint64
	index   int
	dirty   bool

	show                     bool
	clusterShow              bool
	position                 mgl64.Vec3
	actualPosition           mgl64.Vec3
	pixelSize                float64
	color                    gputypes.Color
	outlineColor             gputypes.Color
	outlineWidth             float64
	scaleByDistance          *NearFarScalar
	translucencyByDistance   *NearFarScalar
	distanceDisplayCondition *DistanceDisplayCondition
	disableDepthTestDistance float64
	splitDirection           SplitDirection
	id                       any

	pickID *gpucore.PickID
}

func newPoint(c *Collection, o *PointOptions) *Point {
	return &Point{
		owner:                    c,
		ownerID:                  c.id,
		show:                     o.Show,
		clusterShow:              true,
		position:                 o.Position,
		actualPosition:           o.Position,
		pixelSize:                o.PixelSize,
		color:                    o.Color,
		outlineColor:             o.OutlineColor,
		outlineWidth:             o.OutlineWidth,
		scaleByDistance:          cloneNearFar(o.ScaleByDistance),
		translucencyByDistance:   cloneNearFar(o.TranslucencyByDistance),
		distanceDisplayCondition: cloneDisplayCondition(o.DistanceDisplayCondition),
		disableDepthTestDistance: o.DisableDepthTestDistance,
		splitDirection:           o.SplitDirection,
		id:                       o.ID,
	}
}

// Index returns the point's position in its collection. It is only
// guaranteed to be current after Collection.Len or Collection.Get.
func (p *Point) Index() int { return p.index }

// IsDestroyed reports whether the point has been removed from its collection.
func (p *Point) IsDestroyed() bool { return p.owner == nil }

// Show reports whether the point is drawn.
func (p *Point) Show() bool { return p.show }

// ClusterShow reports whether clustering lets the point be drawn.
func (p *Point) ClusterShow() bool { return p.clusterShow }

// Position returns the position in the collection's local coordinates.
func (p *Point) Position() mgl64.Vec3 { return p.position }

// PixelSize returns the inner diameter in pixels.
func (p *Point) PixelSize() float64 { return p.pixelSize }

// Color returns the inner color.
func (p *Point) Color() gputypes.Color { return p.color }

// OutlineColor returns the outline color.
func (p *Point) OutlineColor() gputypes.Color { return p.outlineColor }

// OutlineWidth returns the outline width in pixels.
func (p *Point) OutlineWidth() float64 { return p.outlineWidth }

// ScaleByDistance returns a copy of the scale curve, or nil.
func (p *Point) ScaleByDistance() *NearFarScalar { return cloneNearFar(p.scaleByDistance) }

// TranslucencyByDistance returns a copy of the translucency curve, or nil.
func (p *Point) TranslucencyByDistance() *NearFarScalar {
	return cloneNearFar(p.translucencyByDistance)
}

// DistanceDisplayCondition returns a copy of the display range, or nil.
func (p *Point) DistanceDisplayCondition() *DistanceDisplayCondition {
	return cloneDisplayCondition(p.distanceDisplayCondition)
}

// DisableDepthTestDistance returns the camera distance below which depth
// testing is skipped. Zero means always test; +Inf means never test.
func (p *Point) DisableDepthTestDistance() float64 { return p.disableDepthTestDistance }

// SplitDirection returns the split side.
func (p *Point) SplitDirection() SplitDirection { return p.splitDirection }

// ID returns the user identifier returned when the point is picked.
func (p *Point) ID() any { return p.id }

// SetShow sets whether the point is drawn.
func (p *Point) SetShow(show bool) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if p.show != show {
		p.show = show
		p.makeDirty(PropShow)
	}
	return nil
}

// SetClusterShow is used by clustering to hide points that were merged
// into a cluster.
func (p *Point) SetClusterShow(show bool) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if p.clusterShow != show {
		p.clusterShow = show
		p.makeDirty(PropShow)
	}
	return nil
}

// SetPosition moves the point.
func (p *Point) SetPosition(v mgl64.Vec3) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if !finiteVec(v) {
		return fmt.Errorf("%w: non-finite position", ErrInvalidArgument)
	}
	if p.position != v {
		p.position = v
		p.actualPosition = v
		p.makeDirty(PropPosition)
	}
	return nil
}

// SetPixelSize sets the inner diameter in pixels.
func (p *Point) SetPixelSize(size float64) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if !finite(size) || size < 0 {
		return fmt.Errorf("%w: pixel size %g", ErrInvalidArgument, size)
	}
	if p.pixelSize != size {
		p.pixelSize = size
		p.makeDirty(PropPixelSize)
	}
	return nil
}

// SetColor sets the inner color.
func (p *Point) SetColor(c gputypes.Color) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if p.color != c {
		p.color = c
		p.makeDirty(PropColor)
	}
	return nil
}

// SetOutlineColor sets the outline color.
func (p *Point) SetOutlineColor(c gputypes.Color) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if p.outlineColor != c {
		p.outlineColor = c
		p.makeDirty(PropOutlineColor)
	}
	return nil
}

// SetOutlineWidth sets the outline width in pixels.
func (p *Point) SetOutlineWidth(width float64) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if !finite(width) || width < 0 {
		return fmt.Errorf("%w: outline width %g", ErrInvalidArgument, width)
	}
	if p.outlineWidth != width {
		p.outlineWidth = width
		p.makeDirty(PropOutlineWidth)
	}
	return nil
}

// SetScaleByDistance sets the scale curve. Nil disables scaling for this
// point.
func (p *Point) SetScaleByDistance(v *NearFarScalar) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if err := validateNearFar(v); err != nil {
		return err
	}
	if !equalNearFar(p.scaleByDistance, v) {
		p.scaleByDistance = cloneNearFar(v)
		p.makeDirty(PropScaleByDistance)
	}
	return nil
}

// SetTranslucencyByDistance sets the translucency curve. Nil disables
// distance translucency for this point.
func (p *Point) SetTranslucencyByDistance(v *NearFarScalar) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if err := validateNearFar(v); err != nil {
		return err
	}
	if !equalNearFar(p.translucencyByDistance, v) {
		p.translucencyByDistance = cloneNearFar(v)
		p.makeDirty(PropTranslucencyByDistance)
	}
	return nil
}

// SetDistanceDisplayCondition sets the visible distance range. Nil shows
// the point at any distance.
func (p *Point) SetDistanceDisplayCondition(v *DistanceDisplayCondition) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if err := validateDisplayCondition(v); err != nil {
		return err
	}
	if !equalDisplayCondition(p.distanceDisplayCondition, v) {
		p.distanceDisplayCondition = cloneDisplayCondition(v)
		p.makeDirty(PropDistanceDisplayCondition)
	}
	return nil
}

// SetDisableDepthTestDistance sets the camera distance below which the
// point ignores the depth buffer. Use math.Inf(1) to never depth test.
func (p *Point) SetDisableDepthTestDistance(d float64) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if math.IsNaN(d) || d < 0 {
		return fmt.Errorf("%w: disable depth test distance %g", ErrInvalidArgument, d)
	}
	if p.disableDepthTestDistance != d {
		p.disableDepthTestDistance = d
		p.makeDirty(PropDistanceDisplayCondition)
	}
	return nil
}

// SetSplitDirection sets the split side.
func (p *Point) SetSplitDirection(d SplitDirection) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if err := validateSplit(d); err != nil {
		return err
	}
	if p.splitDirection != d {
		p.splitDirection = d
		p.makeDirty(PropDistanceDisplayCondition)
	}
	return nil
}

// SetID sets the user identifier. It is not uploaded, so no update is queued.
func (p *Point) SetID(id any) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	p.id = id
	return nil
}

// PickID returns the point's pick ID, allocating it on first use.
func (p *Point) PickID() (gpucore.PickID, error) {
	if err := p.checkLive(); err != nil {
		return gpucore.PickID{}, err
	}
	if p.pickID == nil {
		id := p.owner.device.CreatePickID(PickObject{Point: p, Collection: p.owner, ID: p.id})
		p.pickID = &id
	}
	return *p.pickID, nil
}

// setActualPosition stores the mode-projected position used for rendering.
func (p *Point) setActualPosition(v mgl64.Vec3) {
	if p.actualPosition != v {
		p.actualPosition = v
		p.makeDirty(PropPosition)
	}
}

func (p *Point) makeDirty(prop Property) {
	if c := p.owner; c != nil {
		c.markPropertyChanged(p, prop)
		p.dirty = true
	}
}

func (p *Point) checkLive() error {
	if p == nil {
		return fmt.Errorf("%w: nil point", ErrInvalidArgument)
	}
	if p.owner == nil {
		return fmt.Errorf("%w: point removed from its collection", ErrDestroyed)
	}
	return nil
}

// destroy detaches the point and releases its pick ID.
func (p *Point) destroy() {
	if p.pickID != nil && p.owner != nil {
		p.owner.device.ReleasePickID(p.pickID.Key)
	}
	p.pickID = nil
	p.owner = nil
}

func validateSplit(d SplitDirection) error {
	if d < SplitLeft || d > SplitRight {
		return fmt.Errorf("%w: split direction %d", ErrInvalidArgument, d)
	}
	return nil
}

func finiteVec(v mgl64.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}
