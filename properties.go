package points

import "fmt"

// Property identifies an attribute group whose changes are counted to
// classify buffer usage.
type Property uint8

// Tracked properties. Disable-depth distance and split direction are
// counted under PropDistanceDisplayCondition: they share its vertex slot.
const (
	PropShow Property = iota
	PropPosition
	PropColor
	PropOutlineColor
	PropOutlineWidth
	PropPixelSize
	PropScaleByDistance
	PropTranslucencyByDistance
	PropDistanceDisplayCondition

	numProperties
)

var propertyNames = [numProperties]string{
	"Show",
	"Position",
	"Color",
	"OutlineColor",
	"OutlineWidth",
	"PixelSize",
	"ScaleByDistance",
	"TranslucencyByDistance",
	"DistanceDisplayCondition",
}

// String returns the string representation of Property.
func (p Property) String() string {
	if p < numProperties {
		return propertyNames[p]
	}
	return fmt.Sprintf("Property(%d)", uint8(p))
}
