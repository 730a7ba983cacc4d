package preprocess

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/tensor"
)

// ChannelOrder is the color channel layout a model expects.
type ChannelOrder int

const (
	RGB ChannelOrder = iota
	BGR
)

func (c ChannelOrder) String() string {
	if c == BGR {
		return "bgr"
	}
	return "rgb"
}

// ParseChannelOrder accepts "rgb" or "bgr"; empty means RGB.
func ParseChannelOrder(s string) (ChannelOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rgb":
		return RGB, nil
	case "bgr":
		return BGR, nil
	}
	return 0, fmt.Errorf("unknown channel order %q", s)
}

// Image resizes img to the height/width of an NHWC target, reorders
// channels, scales samples to [0,1] and adds a batch dimension of 1.
// Single-channel targets receive ITU-R 601 luma.
func Image(img image.Image, target []int, order ChannelOrder) (*tensor.Tensor, error) {
	if len(target) != 4 {
		return nil, fmt.Errorf("%w: image target must be rank 4 (NHWC), got %v", model.ErrUnsupportedShape, target)
	}
	h, w, c := target[1], target[2], target[3]
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("%w: image target %v has a non-positive dimension", model.ErrUnsupportedShape, target)
	}
	if c != 1 && c != 3 {
		return nil, fmt.Errorf("%w: image target needs 1 or 3 channels, got %d", model.ErrUnsupportedShape, c)
	}

	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", model.ErrDecode)
	}

	resized := imaging.Resize(img, w, h, imaging.Linear)
	data := make([]float32, h*w*c)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := resized.Pix[y*resized.Stride+x*4:]
			r, g, b := float32(p[0])/255, float32(p[1])/255, float32(p[2])/255
			o := (y*w + x) * c
			switch {
			case c == 1:
				data[o] = 0.299*r + 0.587*g + 0.114*b
			case order == BGR:
				data[o], data[o+1], data[o+2] = b, g, r
			default:
				data[o], data[o+1], data[o+2] = r, g, b
			}
		}
	}
	return tensor.FromFloat32([]int{1, h, w, c}, data)
}
