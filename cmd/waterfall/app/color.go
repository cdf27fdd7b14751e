package app

import (
	"image/color"
	"math"
)

// HSV represents a color in HSV color space.
type HSV struct {
	H float64 // Hue [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value [0-1]
}

// PowerToColor converts a normalized power value [0-1] to RGB color using a
// cold-to-hot scheme: blue for the noise floor through red for the peaks.
func PowerToColor(normalizedPower float64) color.Color {
	power := math.Max(0, math.Min(1, normalizedPower))

	hsv := HSV{
		H: 240 - (power * 240),
		S: 0.9 + (power * 0.1),
		V: math.Pow(power, 0.7), // gamma correction for better visual perception
	}
	return HSVToRGB(hsv)
}

// HSVToRGB converts HSV color space to RGB.
// H: [0-360], S: [0-1], V: [0-1]
func HSVToRGB(hsv HSV) color.Color {
	h := hsv.H
	s := hsv.S
	v := hsv.V

	if s <= 0.0 {
		rgb := uint8(v * 255)
		return color.RGBA{R: rgb, G: rgb, B: rgb, A: 0xff}
	}

	h = math.Mod(h, 360) / 60
	i := math.Floor(h)
	f := h - i

	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64

	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 0xff}
}

// CreateColorMap generates a lookup table for quick color mapping.
func CreateColorMap(size int) []color.Color {
	colorMap := make([]color.Color, size)
	for i := 0; i < size; i++ {
		colorMap[i] = PowerToColor(float64(i) / float64(size-1))
	}
	return colorMap
}
