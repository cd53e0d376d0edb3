package collagelib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ImageType identifies the codec needed for a source image.
type ImageType int

const (
	UnknownType ImageType = iota
	JPEG
	PNG
	BMP
	GIF
	WEBP
	TIFF
)

var ErrUnknownImageType = errors.New("Unrecognized image header")

func (t ImageType) String() string {
	switch t {
	case JPEG:
		return "jpeg"
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case GIF:
		return "gif"
	case WEBP:
		return "webp"
	case TIFF:
		return "tiff"
	}
	return "unknown"
}

// Extension is used when naming generated files
func (t ImageType) Extension() string {
	if t == JPEG {
		return "jpg"
	}
	return t.String()
}

// Longest header we need to look at, RIFF????WEBP
const headerLen = 12

var (
	jpegMagic   = []byte{0xFF, 0xD8, 0xFF}
	pngMagic    = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	bmpMagic    = []byte("BM")
	gif87Magic  = []byte("GIF87a")
	gif89Magic  = []byte("GIF89a")
	riffMagic   = []byte("RIFF")
	webpMagic   = []byte("WEBP")
	tiffLEMagic = []byte{'I', 'I', 0x2A, 0x00}
	tiffBEMagic = []byte{'M', 'M', 0x00, 0x2A}
)

// ProbeImageType identifies a file by its magic number, ignoring the
// extension entirely.
func ProbeImageType(path string) (ImageType, error) {
	f, err := os.Open(path)
	if err != nil {
		return UnknownType, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return UnknownType, err
	}
	if !fi.Mode().IsRegular() {
		return UnknownType, fmt.Errorf("Input image [%s] is not a regular file", path)
	}

	header := make([]byte, headerLen)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return UnknownType, err
	}

	t := imageTypeFromHeader(header[:n])
	if t == UnknownType {
		return UnknownType, fmt.Errorf("%w: [%s]", ErrUnknownImageType, path)
	}
	return t, nil
}

func imageTypeFromHeader(header []byte) ImageType {
	switch {
	case bytes.HasPrefix(header, jpegMagic):
		return JPEG
	case bytes.HasPrefix(header, pngMagic):
		return PNG
	case bytes.HasPrefix(header, gif87Magic), bytes.HasPrefix(header, gif89Magic):
		return GIF
	case len(header) >= 12 &&
		bytes.HasPrefix(header, riffMagic) && bytes.Equal(header[8:12], webpMagic):
		return WEBP
	case bytes.HasPrefix(header, tiffLEMagic), bytes.HasPrefix(header, tiffBEMagic):
		return TIFF
	// Only two bytes, so check it last
	case bytes.HasPrefix(header, bmpMagic):
		return BMP
	}
	return UnknownType
}
