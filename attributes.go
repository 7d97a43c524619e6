package points

import (
	"math"

	"github.com/gogpu/points/internal/encode"
)

// writer writes one group of vertex slots for a point.
type writer func(c *Collection, f *vertexArrayFacade, p *Point) error

// writePoint writes every vertex slot of p.
func (c *Collection) writePoint(f *vertexArrayFacade, p *Point) error {
	c.writePositionSizeAndOutline(f, p)
	if err := c.writeCompressedAttribute0(f, p); err != nil {
		return err
	}
	c.writeCompressedAttribute1(f, p)
	c.writeScaleByDistance(f, p)
	c.writeDistanceDisplayConditionAndDisableDepth(f, p)
	return nil
}

// dirtyWriters returns the writer groups whose properties changed since the
// last rebuild.
func (c *Collection) dirtyWriters() []writer {
	changed := &c.propertiesChanged
	var writers []writer

	if changed[PropPosition] > 0 || changed[PropOutlineWidth] > 0 || changed[PropPixelSize] > 0 {
		writers = append(writers, func(c *Collection, f *vertexArrayFacade, p *Point) error {
			c.writePositionSizeAndOutline(f, p)
			return nil
		})
	}
	if changed[PropColor] > 0 || changed[PropOutlineColor] > 0 {
		writers = append(writers, (*Collection).writeCompressedAttribute0)
	}
	// The show bit in slot D also depends on both color alphas.
	if changed[PropShow] > 0 || changed[PropTranslucencyByDistance] > 0 ||
		changed[PropColor] > 0 || changed[PropOutlineColor] > 0 {
		writers = append(writers, func(c *Collection, f *vertexArrayFacade, p *Point) error {
			c.writeCompressedAttribute1(f, p)
			return nil
		})
	}
	if changed[PropScaleByDistance] > 0 {
		writers = append(writers, func(c *Collection, f *vertexArrayFacade, p *Point) error {
			c.writeScaleByDistance(f, p)
			return nil
		})
	}
	if changed[PropDistanceDisplayCondition] > 0 {
		writers = append(writers, func(c *Collection, f *vertexArrayFacade, p *Point) error {
			c.writeDistanceDisplayConditionAndDisableDepth(f, p)
			return nil
		})
	}
	return writers
}

// writePositionSizeAndOutline fills slots A and B. In 3D it also grows the
// model-space bounding sphere.
func (c *Collection) writePositionSizeAndOutline(f *vertexArrayFacade, p *Point) {
	pos := p.actualPosition
	if c.mode == Scene3D {
		c.baseVolume = c.baseVolume.Expand(pos)
		c.boundingVolumeDirty = true
	}

	c.maxPixelSize = math.Max(c.maxPixelSize, p.pixelSize+p.outlineWidth)

	e := encode.EncodeCartesian(pos)
	f.write(slotPositionHighAndSize, p.index, e.High[0], e.High[1], e.High[2], float32(p.pixelSize))
	f.write(slotPositionLowAndOutline, p.index, e.Low[0], e.Low[1], e.Low[2], float32(p.outlineWidth))
}

// writeCompressedAttribute0 fills slot C with packed fill, outline and pick
// colors and their alphas.
func (c *Collection) writeCompressedAttribute0(f *vertexArrayFacade, p *Point) error {
	pick, err := p.PickID()
	if err != nil {
		return err
	}
	color, outline, pc := p.color, p.outlineColor, pick.Color

	f.write(slotCompressedAttribute0, p.index,
		encode.PackRGB(float32(color.R), float32(color.G), float32(color.B)),
		encode.PackRGB(float32(outline.R), float32(outline.G), float32(outline.B)),
		encode.PackRGB(float32(pc.R), float32(pc.G), float32(pc.B)),
		encode.PackAlphas(float32(color.A), float32(outline.A), float32(pc.A)),
	)
	return nil
}

// writeCompressedAttribute1 fills slot D with the show bit, the quantized
// near translucency and the raw rest of the translucency curve.
func (c *Collection) writeCompressedAttribute1(f *vertexArrayFacade, p *Point) {
	near, nearValue, far, farValue := 0.0, 1.0, 1.0, 1.0
	if t := p.translucencyByDistance; t != nil {
		near, nearValue, far, farValue = t.Near, t.NearValue, t.Far, t.FarValue
		if nearValue != 1 || farValue != 1 {
			c.shader.translucencyByDistance = true
		}
	}

	show := p.show && p.clusterShow
	// Fully transparent points are hidden so the pick pass needs no color.
	if p.color.A == 0 && p.outlineColor.A == 0 {
		show = false
	}

	f.write(slotCompressedAttribute1, p.index,
		encode.PackShowNear(show, float32(nearValue)),
		float32(farValue),
		float32(near),
		float32(far),
	)
}

// writeScaleByDistance fills slot E with the raw scale curve.
func (c *Collection) writeScaleByDistance(f *vertexArrayFacade, p *Point) {
	near, nearValue, far, farValue := 0.0, 1.0, 1.0, 1.0
	if s := p.scaleByDistance; s != nil {
		near, nearValue, far, farValue = s.Near, s.NearValue, s.Far, s.FarValue
		if nearValue != 1 || farValue != 1 {
			c.shader.scaleByDistance = true
		}
	}
	f.write(slotScaleByDistance, p.index, float32(near), float32(nearValue), float32(far), float32(farValue))
}

// disableDepthNever is written when a point never depth tests.
const disableDepthNever = -1

// writeDistanceDisplayConditionAndDisableDepth fills slot F with squared
// display distances, the squared disable depth distance and the split
// direction.
func (c *Collection) writeDistanceDisplayConditionAndDisableDepth(f *vertexArrayFacade, p *Point) {
	near, far := 0.0, math.MaxFloat32
	if d := p.distanceDisplayCondition; d != nil {
		near = d.Near * d.Near
		far = math.Min(d.Far*d.Far, math.MaxFloat32)
		c.shader.distanceDisplayCondition = true
	}

	disableDepth := p.disableDepthTestDistance * p.disableDepthTestDistance
	if disableDepth > 0 {
		c.shader.disableDepthDistance = true
		if math.IsInf(disableDepth, 1) {
			disableDepth = disableDepthNever
		}
	}

	f.write(slotDistanceDisplayConditionAndDisableDepth, p.index,
		float32(near), float32(far), float32(disableDepth), float32(p.splitDirection))
}
