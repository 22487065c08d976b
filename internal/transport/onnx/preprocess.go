package onnx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"math"

	_ "golang.org/x/image/bmp"  // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/kailas-cloud/smartshopper/internal/domain"
)

// CLIP normalization constants (RGB).
var (
	clipMean = [3]float32{0.48145466, 0.4578275, 0.40821073}
	clipStd  = [3]float32{0.26862954, 0.26130258, 0.27577711}
)

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidImage, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty bounds", domain.ErrInvalidImage)
	}
	return img, nil
}

// pixelValues resizes the shorter side to size, center-crops a size x size
// square and returns normalized values in CHW order.
func pixelValues(img image.Image, size int) []float32 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	scale := float64(size) / float64(min(w, h))
	rw := max(size, int(math.Round(float64(w)*scale)))
	rh := max(size, int(math.Round(float64(h)*scale)))

	resized := image.NewRGBA(image.Rect(0, 0, rw, rh))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, b, draw.Src, nil)

	x0, y0 := (rw-size)/2, (rh-size)/2
	plane := size * size
	out := make([]float32, 3*plane)
	for y := range size {
		for x := range size {
			i := resized.PixOffset(x0+x, y0+y)
			idx := y*size + x
			for c := range 3 {
				v := float32(resized.Pix[i+c]) / 255
				out[c*plane+idx] = (v - clipMean[c]) / clipStd[c]
			}
		}
	}
	return out
}
