package collagelib

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Composer tiles catalogued images onto a canvas.
type Composer struct {
	Catalog *Catalog
	// Replaceable for tests, defaults to decoding from disk by type
	Decode func(SourceImage) (image.Image, error)
}

func NewComposer(c *Catalog) *Composer {
	return &Composer{Catalog: c, Decode: decodeSource}
}

func decodeSource(s SourceImage) (image.Image, error) {
	return s.Type.Decode(s.Path)
}

// Plan returns the images that fit on a width x height canvas, in order, and
// where each of them goes. Every path must be in the catalog.
func (c *Composer) Plan(
	width, height int, paths []string) ([]SourceImage, []image.Rectangle, error) {
	sources := make([]SourceImage, len(paths))
	dims := make([]Dimensions, len(paths))
	for i, p := range paths {
		s, ok := c.Catalog.Lookup(p)
		if !ok {
			return nil, nil, fmt.Errorf("Image [%s] is not in the catalog", p)
		}
		sources[i] = s
		dims[i] = s.Dimensions()
	}

	rois := LayoutRegions(width, height, dims)
	return sources[:len(rois)], rois, nil
}

// Compose builds a width x height collage from paths. Only the images that
// end up on the canvas are decoded.
func (c *Composer) Compose(width, height int, paths []string) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("Invalid canvas size %dx%d", width, height)
	}

	sources, rois, err := c.Plan(width, height, paths)
	if err != nil {
		return nil, err
	}

	canvas := imaging.New(width, height, color.Black)

	for i, s := range sources {
		roi := rois[i]
		if roi.Empty() {
			// Extremely wide images can round down to nothing
			continue
		}

		img, err := c.Decode(s)
		if err != nil {
			return nil, err
		}

		paste(canvas, roi, img)
	}
	return canvas, nil
}

// Transparent parts of img leave the black background showing.
func paste(canvas *image.NRGBA, roi image.Rectangle, img image.Image) {
	b := img.Bounds()
	if b.Dx() == roi.Dx() && b.Dy() == roi.Dy() {
		draw.Copy(canvas, roi.Min, img, b, draw.Over, nil)
		return
	}

	draw.BiLinear.Scale(canvas, roi, img, b, draw.Over, nil)
}
