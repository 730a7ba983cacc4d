package artifact

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/daryltucker/model-harness/internal/model"
)

const tfliteIdentifier = "TFL3"

// vtable slots of the TFLite schema tables used here.
const (
	modelVersion      = 4
	modelOpCodes      = 6
	modelSubgraphs    = 8
	modelDescription  = 10
	modelMetadata     = 16
	subgraphTensors   = 4
	subgraphInputs    = 6
	subgraphOutputs   = 8
	subgraphOperators = 10
	tensorShape       = 4
	tensorType        = 6
	tensorName        = 10
	metadataName      = 4
)

var tfliteTypes = []string{
	"float32", "float16", "int32", "uint8", "int64", "string", "bool",
	"int16", "complex64", "int8", "float64", "complex128", "uint64",
	"resource", "variant", "uint32", "uint16", "int4",
}

func tfliteTypeName(t byte) string {
	if int(t) < len(tfliteTypes) {
		return tfliteTypes[t]
	}
	return fmt.Sprintf("type_%d", t)
}

func isTFLite(data []byte) bool {
	return len(data) >= 8 && flatbuffers.BufferHasIdentifier(data, tfliteIdentifier)
}

type table struct{ flatbuffers.Table }

func (t table) field(slot flatbuffers.VOffsetT) flatbuffers.UOffsetT {
	return flatbuffers.UOffsetT(t.Offset(slot))
}

func (t table) str(slot flatbuffers.VOffsetT) string {
	if o := t.field(slot); o != 0 {
		return t.String(o + t.Pos)
	}
	return ""
}

func (t table) vecLen(slot flatbuffers.VOffsetT) int {
	if o := t.field(slot); o != 0 {
		return t.VectorLen(o)
	}
	return 0
}

func (t table) tableAt(slot flatbuffers.VOffsetT, j int) table {
	x := t.Vector(t.field(slot)) + flatbuffers.UOffsetT(j)*flatbuffers.SizeUOffsetT
	return table{flatbuffers.Table{Bytes: t.Bytes, Pos: t.Indirect(x)}}
}

func (t table) int32At(slot flatbuffers.VOffsetT, j int) int32 {
	return t.GetInt32(t.Vector(t.field(slot)) + flatbuffers.UOffsetT(j)*flatbuffers.SizeInt32)
}

func (t table) int32s(slot flatbuffers.VOffsetT) []int {
	n := t.vecLen(slot)
	out := make([]int, n)
	for j := range out {
		out[j] = int(t.int32At(slot, j))
	}
	return out
}

func parseTFLite(data []byte) (*Info, error) {
	root := table{flatbuffers.Table{Bytes: data, Pos: flatbuffers.GetUOffsetT(data)}}
	if int(root.Pos) >= len(data) {
		return nil, fmt.Errorf("%w: tflite root offset out of range", model.ErrDecode)
	}

	info := &Info{
		Format:        TFLite,
		Description:   root.str(modelDescription),
		Subgraphs:     root.vecLen(modelSubgraphs),
		OperatorCodes: root.vecLen(modelOpCodes),
	}
	if o := root.field(modelVersion); o != 0 {
		info.Version = int64(root.GetUint32(o + root.Pos))
	}
	for j := 0; j < root.vecLen(modelMetadata); j++ {
		info.MetadataNames = append(info.MetadataNames, root.tableAt(modelMetadata, j).str(metadataName))
	}

	if info.Subgraphs == 0 {
		return info, nil
	}
	sg := root.tableAt(modelSubgraphs, 0)
	nTensors := sg.vecLen(subgraphTensors)
	pick := func(slot flatbuffers.VOffsetT) ([]Tensor, error) {
		idx := sg.int32s(slot)
		out := make([]Tensor, 0, len(idx))
		for _, i := range idx {
			if i < 0 || i >= nTensors {
				return nil, fmt.Errorf("%w: tensor index %d out of range (%d tensors)", model.ErrDecode, i, nTensors)
			}
			t := sg.tableAt(subgraphTensors, i)
			var typ byte
			if o := t.field(tensorType); o != 0 {
				typ = t.GetByte(o + t.Pos)
			}
			out = append(out, Tensor{
				Name:  t.str(tensorName),
				Shape: t.int32s(tensorShape),
				Type:  tfliteTypeName(typ),
			})
		}
		return out, nil
	}

	var err error
	if info.Inputs, err = pick(subgraphInputs); err != nil {
		return nil, err
	}
	if info.Outputs, err = pick(subgraphOutputs); err != nil {
		return nil, err
	}
	return info, nil
}
