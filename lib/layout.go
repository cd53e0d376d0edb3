package collagelib

import "image"

// Dimensions is the pixel size of an image, before or after scaling.
type Dimensions struct {
	Width  int
	Height int
}

// ScaledDimensions shrinks d to fit a canvas of the given height. Images that
// are already short enough are never enlarged.
func ScaledDimensions(canvasHeight int, d Dimensions) Dimensions {
	if d.Height <= canvasHeight {
		return d
	}

	// Rounded integer division, avoids float error on exact ratios
	w := (d.Width*canvasHeight + d.Height/2) / d.Height
	return Dimensions{Width: w, Height: canvasHeight}
}

// LayoutRegions places images side by side on a width x height canvas in the
// order given. Images are accepted until the next one would overflow the
// canvas horizontally, every later image is dropped. The leftover width is
// split evenly between the gaps, including both outer edges, and each image
// is centred vertically.
//
// The returned rectangles are in canvas coordinates, one per accepted image,
// in the same order as the input.
func LayoutRegions(width, height int, images []Dimensions) []image.Rectangle {
	var scaled []Dimensions
	total := 0

	for _, d := range images {
		s := ScaledDimensions(height, d)
		if total+s.Width > width {
			break
		}
		total += s.Width
		scaled = append(scaled, s)
	}

	// +1 for the outside edge
	spacing := (width - total) / (len(scaled) + 1)

	rois := make([]image.Rectangle, 0, len(scaled))
	x := 0
	for _, s := range scaled {
		x += spacing

		y := 0
		if s.Height < height {
			y = (height - s.Height) / 2
		}

		rois = append(rois, image.Rect(x, y, x+s.Width, y+s.Height))
		x += s.Width
	}
	return rois
}
