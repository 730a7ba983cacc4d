package artifact

import (
	"fmt"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/daryltucker/model-harness/internal/model"
)

var onnxTypes = []string{
	"undefined", "float32", "uint8", "int8", "uint16", "int16", "int32",
	"int64", "string", "bool", "float16", "float64", "uint32", "uint64",
	"complex64", "complex128", "bfloat16",
}

func onnxTypeName(t uint64) string {
	if t < uint64(len(onnxTypes)) {
		return onnxTypes[t]
	}
	return fmt.Sprintf("type_%d", t)
}

// walk visits every field of one protobuf message. Varint fields arrive in
// x, length-delimited fields in v; other wire types are skipped.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, x uint64, v []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var (
			x uint64
			v []byte
		)
		switch typ {
		case protowire.VarintType:
			x, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			v, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if err := fn(num, typ, x, v); err != nil {
			return err
		}
	}
	return nil
}

// isONNX reports whether data is a well-formed ModelProto carrying an
// ir_version and a graph.
func isONNX(data []byte) bool {
	var version, graph bool
	err := walk(data, func(num protowire.Number, typ protowire.Type, x uint64, _ []byte) error {
		switch {
		case num == 1 && typ == protowire.VarintType:
			version = x > 0
		case num == 7 && typ == protowire.BytesType:
			graph = true
		}
		return nil
	})
	return err == nil && version && graph
}

func parseONNX(data []byte) (*Info, error) {
	info := &Info{Format: ONNX}
	err := walk(data, func(num protowire.Number, _ protowire.Type, x uint64, v []byte) error {
		switch num {
		case 1: // ir_version
			info.Version = int64(x)
		case 2:
			info.Producer = string(v)
		case 3:
			info.ProducerVersion = string(v)
		case 6:
			info.Description = string(v)
		case 7:
			info.Subgraphs = 1
			return parseGraph(v, info)
		case 8:
			var op Opset
			err := walk(v, func(num protowire.Number, _ protowire.Type, x uint64, v []byte) error {
				switch num {
				case 1:
					op.Domain = string(v)
				case 2:
					op.Version = int64(x)
				}
				return nil
			})
			if err != nil {
				return err
			}
			info.Opsets = append(info.Opsets, op)
		case 14: // metadata_props
			return walk(v, func(num protowire.Number, _ protowire.Type, _ uint64, v []byte) error {
				if num == 1 {
					info.MetadataNames = append(info.MetadataNames, string(v))
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: onnx header: %v", model.ErrDecode, err)
	}
	return info, nil
}

func parseGraph(b []byte, info *Info) error {
	var inputs, outputs []Tensor
	var initializers []string
	ops := map[string]bool{}
	err := walk(b, func(num protowire.Number, _ protowire.Type, _ uint64, v []byte) error {
		switch num {
		case 1: // node
			return walk(v, func(num protowire.Number, _ protowire.Type, _ uint64, v []byte) error {
				if num == 4 { // op_type
					ops[string(v)] = true
				}
				return nil
			})
		case 5: // initializer
			return walk(v, func(num protowire.Number, _ protowire.Type, _ uint64, v []byte) error {
				if num == 8 {
					initializers = append(initializers, string(v))
				}
				return nil
			})
		case 11, 12:
			t, err := parseValueInfo(v)
			if err != nil {
				return err
			}
			if num == 11 {
				inputs = append(inputs, t)
			} else {
				outputs = append(outputs, t)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Older exporters list initializers among the graph inputs.
	for _, t := range inputs {
		if !slices.Contains(initializers, t.Name) {
			info.Inputs = append(info.Inputs, t)
		}
	}
	info.Outputs = outputs
	info.OperatorCodes = len(ops)
	return nil
}

func parseValueInfo(b []byte) (Tensor, error) {
	t := Tensor{Type: onnxTypes[0]}
	err := walk(b, func(num protowire.Number, _ protowire.Type, _ uint64, v []byte) error {
		switch num {
		case 1:
			t.Name = string(v)
		case 2: // TypeProto
			return walk(v, func(num protowire.Number, _ protowire.Type, _ uint64, v []byte) error {
				if num != 1 { // tensor_type
					return nil
				}
				return walk(v, func(num protowire.Number, _ protowire.Type, x uint64, v []byte) error {
					switch num {
					case 1:
						t.Type = onnxTypeName(x)
					case 2:
						shape, err := parseShape(v)
						t.Shape = shape
						return err
					}
					return nil
				})
			})
		}
		return nil
	})
	return t, err
}

// parseShape reads a TensorShapeProto; symbolic dimensions become -1.
func parseShape(b []byte) ([]int, error) {
	shape := []int{}
	err := walk(b, func(num protowire.Number, _ protowire.Type, _ uint64, v []byte) error {
		if num != 1 {
			return nil
		}
		dim := -1
		err := walk(v, func(num protowire.Number, _ protowire.Type, x uint64, _ []byte) error {
			if num == 1 {
				dim = int(int64(x))
			}
			return nil
		})
		shape = append(shape, dim)
		return err
	})
	return shape, err
}
