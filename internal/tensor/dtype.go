/*
PURPOSE:
  Defines the closed set of element types the harness can feed to and read
  from a model, and the single cast/clip rule used everywhere a float value
  has to become an element of that type.

REQUIREMENTS:
  User-specified:
  - Support 32-bit float and 8-bit unsigned integer tensors.

  Implementation-discovered:
  - Generator, preprocessor and runtime adapters all need the same cast rule,
    so it lives on the Dtype itself.

ARCHITECTURE INTEGRATION:
  - Used by: internal/synth, internal/preprocess, internal/runtime, internal/engine

ERROR HANDLING:
  - ParseDtype returns an error for names outside the closed set.

IMPLEMENTATION RULES:
  - Adding a dtype means adding a constant and extending Cast/Size/String here.

RELATED FILES:
  - internal/tensor/tensor.go

MAINTENANCE:
  - Keep String() values stable; they are written into reports.
*/

package tensor

import (
	"fmt"
	"math"
	"strings"
)

// Dtype is the element type of a tensor.
type Dtype int

const (
	Float32 Dtype = iota
	Uint8
)

// String returns the report name of the dtype.
func (d Dtype) String() string {
	switch d {
	case Float32:
		return "float32"
	case Uint8:
		return "uint8"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// Size returns the element size in bytes.
func (d Dtype) Size() int {
	switch d {
	case Uint8:
		return 1
	default:
		return 4
	}
}

// Cast converts v to a value representable by the dtype.
// Uint8 clips to [0,255] and truncates toward zero.
func (d Dtype) Cast(v float64) float64 {
	switch d {
	case Uint8:
		if math.IsNaN(v) || v <= 0 {
			return 0
		}
		if v >= 255 {
			return 255
		}
		return math.Trunc(v)
	default:
		return float64(float32(v))
	}
}

// Max returns the largest "full scale" value of the dtype: 255 for Uint8, 1 otherwise.
func (d Dtype) Max() float64 {
	if d == Uint8 {
		return 255
	}
	return 1
}

// ParseDtype parses a dtype name such as "float32" or "uint8".
func ParseDtype(s string) (Dtype, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float32", "float", "f32":
		return Float32, nil
	case "uint8", "u8":
		return Uint8, nil
	}
	return 0, fmt.Errorf("unsupported dtype %q", s)
}

// MarshalText writes the dtype name so reports and configs carry "float32"/"uint8".
func (d Dtype) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a dtype name.
func (d *Dtype) UnmarshalText(b []byte) error {
	v, err := ParseDtype(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
