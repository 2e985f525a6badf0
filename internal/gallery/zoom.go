package gallery

// ZoomLevel is one of three magnification states, cycled independently of
// the image selection.
type ZoomLevel string

const (
	ZoomMin ZoomLevel = "min"
	ZoomMed ZoomLevel = "med"
	ZoomMax ZoomLevel = "max"
)

// ZoomLevels lists the zoom cycle in order.
func ZoomLevels() []ZoomLevel {
	return []ZoomLevel{ZoomMin, ZoomMed, ZoomMax}
}

// CSSClass is the marker applied to the image area, e.g. "zoom-med".
func (z ZoomLevel) CSSClass() string {
	return "zoom-" + string(z)
}

// IndicatorClass is the marker applied to the zoom indicator, e.g. "zoom-ind-med".
func (z ZoomLevel) IndicatorClass() string {
	return "zoom-ind-" + string(z)
}
