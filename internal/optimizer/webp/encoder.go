// Package webp encodes derived images as lossy WebP. It needs cgo.
package webp

import (
	"fmt"
	"image"
	"io"

	cwebp "github.com/chai2010/webp"
)

type Encoder struct{}

func New() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Encode(w io.Writer, img image.Image, quality int) error {
	if quality < 1 || quality > 100 {
		return fmt.Errorf("webp quality %d out of range", quality)
	}
	return cwebp.Encode(w, img, &cwebp.Options{Lossless: false, Quality: float32(quality)})
}
