package engine

import (
	"fmt"
	"os"

	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/output"
	"github.com/daryltucker/model-harness/internal/runtime"
)

// Model is an opened artifact: its contract plus the live session.
type Model struct {
	Spec    model.ModelSpec
	Session runtime.Session
}

// Close releases the runtime session.
func (m *Model) Close() error {
	return m.Session.Close()
}

// Open loads path through rt and derives its ModelSpec. Missing files,
// runtime rejections and models without inputs or outputs are ErrLoad.
func Open(rt runtime.Runtime, path string) (*Model, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrLoad, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", model.ErrLoad, path)
	}

	sess, err := rt.Load(path)
	if err != nil {
		return nil, err
	}
	spec := model.ModelSpec{
		Path:      path,
		Format:    string(runtime.FormatOf(path)),
		Runtime:   rt.Name(),
		SizeBytes: st.Size(),
		Inputs:    sess.Inputs(),
		Outputs:   sess.Outputs(),
	}
	if len(spec.Inputs) == 0 || len(spec.Outputs) == 0 {
		sess.Close()
		return nil, fmt.Errorf("%w: %s declares %d inputs and %d outputs", model.ErrLoad, path, len(spec.Inputs), len(spec.Outputs))
	}

	if len(spec.Inputs) != 1 {
		output.Logger.Warn("Model has more than one input, only input 0 is exercised", "model", path, "inputs", len(spec.Inputs))
	}
	if len(spec.Outputs) != 1 {
		output.Logger.Warn("Model has more than one output, only output 0 is read", "model", path, "outputs", len(spec.Outputs))
	}
	output.Logger.Info("Model loaded",
		"model", path,
		"runtime", spec.Runtime,
		"input_shape", spec.Input().Shape,
		"input_dtype", spec.Input().Dtype,
		"output_shape", spec.Output().Shape,
		"size_mb", fmt.Sprintf("%.2f", spec.SizeMB()),
	)
	return &Model{Spec: spec, Session: sess}, nil
}
