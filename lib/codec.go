package collagelib

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// DecodeConfig reads only the header of the file at path.
func (t ImageType) DecodeConfig(path string) (image.Config, error) {
	var c image.Config
	err := withFile(path, func(r io.Reader) (err error) {
		switch t {
		case JPEG:
			c, err = jpeg.DecodeConfig(r)
		case PNG:
			c, err = png.DecodeConfig(r)
		case BMP:
			c, err = bmp.DecodeConfig(r)
		case GIF:
			c, err = gif.DecodeConfig(r)
		case WEBP:
			c, err = webp.DecodeConfig(r)
		case TIFF:
			c, err = tiff.DecodeConfig(r)
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownImageType, t)
		}
		return err
	})
	if err != nil {
		return c, fmt.Errorf("Error reading %s header of [%s]: %w", t, path, err)
	}
	return c, nil
}

// Decode reads the whole image at path.
func (t ImageType) Decode(path string) (image.Image, error) {
	var img image.Image
	err := withFile(path, func(r io.Reader) (err error) {
		switch t {
		case JPEG:
			img, err = jpeg.Decode(r)
		case PNG:
			img, err = png.Decode(r)
		case BMP:
			img, err = bmp.Decode(r)
		case GIF:
			// First frame only
			img, err = gif.Decode(r)
		case WEBP:
			img, err = webp.Decode(r)
		case TIFF:
			img, err = tiff.Decode(r)
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownImageType, t)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("Error decoding %s image [%s]: %w", t, path, err)
	}
	return img, nil
}

func withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

// OutputOptions controls how generated collages are written to disk.
type OutputOptions struct {
	Type        ImageType
	JPEGQuality int
}

func (o OutputOptions) imagingFormat() (imaging.Format, error) {
	switch o.Type {
	case JPEG:
		return imaging.JPEG, nil
	case PNG:
		return imaging.PNG, nil
	case BMP:
		return imaging.BMP, nil
	}
	return 0, fmt.Errorf("Unsupported output format %s", o.Type)
}

// EncodeImage writes img to path. The file is written under a temporary name
// and renamed so a partially written file is never installed as a wallpaper.
func EncodeImage(img image.Image, path string, o OutputOptions) error {
	format, err := o.imagingFormat()
	if err != nil {
		return err
	}

	wipFile := path + "-wip"
	f, err := os.Create(wipFile)
	if err != nil {
		return err
	}

	err = imaging.Encode(f, img, format, imaging.JPEGQuality(o.JPEGQuality))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(wipFile)
		return fmt.Errorf("Error encoding [%s]: %w", path, err)
	}

	// Renaming should be atomic enough for our purposes
	return os.Rename(wipFile, path)
}
