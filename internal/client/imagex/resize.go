// Package imagex shrinks note images before upload.
package imagex

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
)

// ContentType of every image produced by this package.
const ContentType = "image/png"

var ErrInvalidFactor = errors.New("scale factor must be in (0, 1]")

// Downscale decodes an encoded image, scales both sides by factor and
// returns the result PNG encoded. Sides never shrink below one pixel.
func Downscale(data []byte, factor float64) ([]byte, error) {
	if !(factor > 0 && factor <= 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFactor, factor)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	w := scaledSide(b.Dx(), factor)
	h := scaledSide(b.Dy(), factor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, Fill(src, w, h)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Fill scales src to cover a w x h canvas keeping its aspect ratio and
// crops the overflow evenly from both sides.
func Fill(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	b := src.Bounds()
	if b.Empty() {
		return dst
	}

	scale := math.Max(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	rw := int(math.Round(float64(b.Dx()) * scale))
	rh := int(math.Round(float64(b.Dy()) * scale))

	// centre the scaled image; the negative offset crops it
	offX := (w - rw) / 2
	offY := (h - rh) / 2
	target := image.Rect(offX, offY, offX+rw, offY+rh)

	draw.CatmullRom.Scale(dst, target, src, b, draw.Over, nil)
	return dst
}

func scaledSide(n int, factor float64) int {
	return max(1, int(math.Round(float64(n)*factor)))
}
