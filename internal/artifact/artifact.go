/*
PURPOSE:
  Reads model artifact headers without loading a runtime. Detects the
  container format and pulls out versions, descriptive strings and the
  declared input/output tensors.

REQUIREMENTS:
  User-specified:
  - TFLite files are recognized by the "TFL3" flatbuffer identifier.
  - ONNX files are recognized by a well-formed ModelProto header.
  - Anything else is reported as unknown, not as an error.

  Implementation-discovered:
  - Flatbuffer accessors do not bounds-check; corrupt input panics inside
    the library, so Parse recovers and reports ErrDecode.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli (inspect), internal/engine (model_info format)

ERROR HANDLING:
  - File errors wrap model.ErrIO, malformed headers wrap model.ErrDecode.

IMPLEMENTATION RULES:
  - Read-only. Never execute the model.

RELATED FILES:
  - internal/artifact/tflite.go
  - internal/artifact/onnx.go

MAINTENANCE:
  - New formats add a Format constant and a branch in Parse.
*/

package artifact

import (
	"fmt"
	"os"

	"github.com/daryltucker/model-harness/internal/model"
)

// Format is a model container format.
type Format string

const (
	TFLite  Format = "tflite"
	ONNX    Format = "onnx"
	Unknown Format = "unknown"
)

// Tensor is a tensor declared in the artifact. Dynamic dimensions are -1.
type Tensor struct {
	Name  string `json:"name" yaml:"name"`
	Shape []int  `json:"shape" yaml:"shape,flow"`
	Type  string `json:"type" yaml:"type"`
}

// Opset is an ONNX operator set import.
type Opset struct {
	Domain  string `json:"domain" yaml:"domain"`
	Version int64  `json:"version" yaml:"version"`
}

// Info is everything read from an artifact header.
type Info struct {
	Path            string   `json:"path" yaml:"path"`
	Format          Format   `json:"format" yaml:"format"`
	SizeBytes       int64    `json:"size_bytes" yaml:"size_bytes"`
	Version         int64    `json:"version" yaml:"version"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`
	Producer        string   `json:"producer,omitempty" yaml:"producer,omitempty"`
	ProducerVersion string   `json:"producer_version,omitempty" yaml:"producer_version,omitempty"`
	Subgraphs       int      `json:"subgraphs,omitempty" yaml:"subgraphs,omitempty"`
	OperatorCodes   int      `json:"operator_codes,omitempty" yaml:"operator_codes,omitempty"`
	MetadataNames   []string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Opsets          []Opset  `json:"opsets,omitempty" yaml:"opsets,omitempty"`
	Inputs          []Tensor `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs         []Tensor `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// Sniff reads the file at path and parses its header.
func Sniff(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	info, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	info.Path = path
	return info, nil
}

// Parse detects the format of data and reads its header.
func Parse(data []byte) (info *Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("%w: truncated or corrupt artifact: %v", model.ErrDecode, r)
		}
	}()

	if isTFLite(data) {
		info, err = parseTFLite(data)
	} else if isONNX(data) {
		info, err = parseONNX(data)
	} else {
		info = &Info{Format: Unknown}
	}
	if err != nil {
		return nil, err
	}
	info.SizeBytes = int64(len(data))
	return info, nil
}
