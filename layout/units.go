package layout

// This file defines unit helpers shared by the layout and canvas backends.
// Layout works in pixels; the canvas backend rasterizes at one dot per canvas
// unit (mm), so a pixel and a canvas unit are the same length. Font faces are
// created in points.

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// PxToPt converts a pixel font size into the point size that yields an em of
// px canvas units.
func PxToPt(px float64) float64 { return px * MmToPt }

// PtToPx is the inverse of PxToPt.
func PtToPx(pt float64) float64 { return pt * PtToMm }
