//go:build !tflite

package runtime

import (
	"fmt"

	"github.com/daryltucker/model-harness/internal/model"
)

// TFLite is unavailable in builds without the "tflite" tag, which needs the
// TensorFlow Lite C library at link time.
type TFLite struct {
	opts Options
}

func NewTFLite(opts Options) *TFLite { return &TFLite{opts: opts} }

func (r *TFLite) Name() string { return "tflite" }

func (r *TFLite) Load(path string) (Session, error) {
	return nil, fmt.Errorf("%w: %s: built without tflite support; rebuild with -tags tflite", model.ErrLoad, path)
}
