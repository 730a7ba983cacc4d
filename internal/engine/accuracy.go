package engine

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daryltucker/model-harness/internal/media"
	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/output"
	"github.com/daryltucker/model-harness/internal/preprocess"
	"github.com/daryltucker/model-harness/internal/runtime"
	"github.com/daryltucker/model-harness/internal/tensor"
)

// LabelsPath returns <dir>/<stem>_labels.txt for a model path.
func LabelsPath(modelPath string) string {
	stem := strings.TrimSuffix(filepath.Base(modelPath), filepath.Ext(modelPath))
	return filepath.Join(filepath.Dir(modelPath), stem+"_labels.txt")
}

// LoadLabels reads one label per line. A missing file yields nil.
func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	defer f.Close()

	var labels []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		labels = append(labels, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	return labels, nil
}

// sampleTensor decodes and preprocesses one file for the model input spec.
// Image tensors come out of the preprocessor in [0,1] and are rescaled to
// the dtype's full scale before casting.
func sampleTensor(file string, modality model.Modality, spec tensor.Spec, opts *Options) (*tensor.Tensor, error) {
	var (
		x   *tensor.Tensor
		err error
	)
	switch modality {
	case model.Audio:
		wave, derr := opts.Decoder.DecodeAudio(file, opts.Audio.SampleRate)
		if derr != nil {
			return nil, derr
		}
		x, err = preprocess.Audio(wave, spec.Shape, opts.Audio)
	default:
		img, derr := opts.Decoder.DecodeImage(file)
		if derr != nil {
			return nil, derr
		}
		x, err = preprocess.Image(img, spec.Shape, opts.ChannelOrder)
		if err == nil && spec.Dtype.Max() != 1 {
			for i, v := range x.F32 {
				x.F32[i] = v * float32(spec.Dtype.Max())
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return x.CastTo(spec.Dtype)
}

// Accuracy runs every sample file of the modality through the real-data
// pipeline and records the top class per file. A file that fails is
// recorded with its error and the rest proceed. It returns nil when the
// samples directory holds no files for the modality.
func Accuracy(s runtime.Session, spec model.ModelSpec, modality model.Modality, opts Options) (*model.AccuracyReport, error) {
	opts.fill()
	dir := opts.SamplesDir[modality]
	if dir == "" {
		return nil, nil
	}
	files, err := media.SampleFiles(dir, modality)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	labels, err := LoadLabels(LabelsPath(spec.Path))
	if err != nil {
		output.Logger.Warn("Ignoring unreadable labels file", "model", spec.Path, "error", err)
	}

	report := &model.AccuracyReport{Modality: modality, SamplesDir: dir}
	in := spec.Input()
	for _, file := range files {
		p := model.Prediction{File: filepath.Base(file)}
		if err := predict(s, file, modality, in, labels, &opts, &p); err != nil {
			p.Error = err.Error()
			report.Failed++
			output.Logger.Warn("Sample failed", "model", spec.Path, "file", file, "error", err)
		} else {
			report.Processed++
		}
		report.Predictions = append(report.Predictions, p)
	}
	return report, nil
}

func predict(s runtime.Session, file string, modality model.Modality, in tensor.Spec, labels []string, opts *Options, p *model.Prediction) error {
	x, err := sampleTensor(file, modality, in, opts)
	if err != nil {
		return err
	}
	if err := infer(s, x); err != nil {
		return err
	}
	out, err := s.Output(0)
	if err != nil {
		return err
	}
	row := out.FirstRow()
	idx, conf := tensor.ArgMax(row)
	if idx < 0 {
		return fmt.Errorf("%w: empty output", model.ErrInference)
	}
	p.TopClass = &idx
	p.Confidence = model.DecimalPtr(conf)
	p.RawOutput = model.Decimals(row)
	if idx < len(labels) {
		p.TopLabel = labels[idx]
	}
	return nil
}
