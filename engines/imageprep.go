package engines

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// NewImagePrep builds an image-preprocessing workload: each call fills a
// source image from the input bytes, resizes it with a pure-Go bilinear
// kernel, and writes the resized RGBA pixels to the output. This mirrors
// the preprocessing stage in front of a vision model and is deterministic;
// nfnt/resize is single-threaded pure Go.
func NewImagePrep(srcW, srcH, dstW, dstH int) *Engine {
	src := image.NewRGBA(image.Rect(0, 0, srcW, srcH))

	inSize := srcW * srcH
	outSize := dstW * dstH * 4

	fn := func(_ any, input, output []byte) error {
		for y := 0; y < srcH; y++ {
			for x := 0; x < srcW; x++ {
				v := input[(y*srcW+x)%len(input)]
				src.SetRGBA(x, y, color.RGBA{R: v, G: v ^ 0x55, B: v ^ 0xAA, A: 0xFF})
			}
		}

		resized := resize.Resize(uint(dstW), uint(dstH), src, resize.Bilinear)

		i := 0
		for y := 0; y < dstH; y++ {
			for x := 0; x < dstW; x++ {
				r, g, b, a := resized.At(x, y).RGBA()
				output[i%len(output)] = byte(r >> 8)
				output[(i+1)%len(output)] = byte(g >> 8)
				output[(i+2)%len(output)] = byte(b >> 8)
				output[(i+3)%len(output)] = byte(a >> 8)
				i += 4
			}
		}
		return nil
	}

	return &Engine{Name: "imageprep", InputSize: inSize, OutputSize: outSize, Fn: fn}
}
