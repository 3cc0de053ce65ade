package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Encoding names accepted in Format.Encoding
const (
	BMP  = "BMP"
	JPEG = "JPEG"
	PNG  = "PNG"
)

// Format is a device's declared key image format. Rotation is in degrees
// counter-clockwise and must be a multiple of 90.
type Format struct {
	Size     image.Point
	Encoding string
	FlipX    bool
	FlipY    bool
	Rotation int
}

func (f Format) String() string {
	return fmt.Sprintf("%dx%d %s flip=(%t,%t) rot=%d", f.Size.X, f.Size.Y, f.Encoding, f.FlipX, f.FlipY, f.Rotation)
}

// Transform applies flip X, flip Y, then rotation, in that order
func Transform(img image.Image, f Format) image.Image {
	out := img
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	if f.FlipX {
		out = affine(out, image.Pt(b.Dx(), b.Dy()), f64.Aff3{-1, 0, w, 0, 1, 0})
	}
	if f.FlipY {
		out = affine(out, image.Pt(b.Dx(), b.Dy()), f64.Aff3{1, 0, 0, 0, -1, h})
	}

	switch ((f.Rotation % 360) + 360) % 360 {
	case 90:
		out = affine(out, image.Pt(b.Dy(), b.Dx()), f64.Aff3{0, 1, 0, -1, 0, w})
	case 180:
		out = affine(out, image.Pt(b.Dx(), b.Dy()), f64.Aff3{-1, 0, w, 0, -1, h})
	case 270:
		out = affine(out, image.Pt(b.Dy(), b.Dx()), f64.Aff3{0, -1, h, 1, 0, 0})
	}
	return out
}

// affine maps src (rebased to the origin) into a new size-d canvas with m
func affine(src image.Image, size image.Point, m f64.Aff3) *image.RGBA {
	origin := image.NewRGBA(image.Rectangle{Max: src.Bounds().Size()})
	draw.Draw(origin, origin.Bounds(), src, src.Bounds().Min, draw.Src)

	dst := image.NewRGBA(image.Rectangle{Max: size})
	xdraw.NearestNeighbor.Transform(dst, m, origin, origin.Bounds(), xdraw.Src, nil)
	return dst
}

// Encode serializes img in the device's encoding
func Encode(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch strings.ToUpper(f.Encoding) {
	case BMP:
		err = bmp.Encode(&buf, img)
	case JPEG, "JPG":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100})
	case PNG, "":
		err = png.Encode(&buf, img)
	default:
		return nil, fmt.Errorf("unsupported key image encoding %q", f.Encoding)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode; drivers that take image.Image use it
func Decode(data []byte, f Format) (image.Image, error) {
	switch strings.ToUpper(f.Encoding) {
	case BMP:
		return bmp.Decode(bytes.NewReader(data))
	case JPEG, "JPG":
		return jpeg.Decode(bytes.NewReader(data))
	case PNG, "":
		return png.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported key image encoding %q", f.Encoding)
	}
}
