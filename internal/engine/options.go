package engine

import (
	"time"

	"github.com/daryltucker/model-harness/internal/config"
	"github.com/daryltucker/model-harness/internal/media"
	"github.com/daryltucker/model-harness/internal/memprobe"
	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/preprocess"
	"github.com/daryltucker/model-harness/internal/runtime"
	"github.com/daryltucker/model-harness/internal/synth"
)

// Options tune one validation session.
type Options struct {
	Iterations        int
	WarmupIterations  int
	StabilityTests    int
	StabilitySeed     uint64
	MemoryIterations  int
	MemorySampleEvery int

	Audio        preprocess.AudioOptions
	ChannelOrder preprocess.ChannelOrder
	// SamplesDir maps a modality to its directory of real sample files.
	SamplesDir map[model.Modality]string

	Probe     memprobe.Probe
	Decoder   media.Decoder
	Generator *synth.Generator // unseeded; stability builds its own seeded one
	Now       func() time.Time
}

// DefaultOptions mirrors config.DefaultConfig.
func DefaultOptions() Options {
	opts, _ := FromConfig(config.DefaultConfig())
	return opts
}

// FromConfig builds Options from cfg.
func FromConfig(cfg *config.Config) (Options, error) {
	order, err := preprocess.ParseChannelOrder(cfg.ChannelOrder)
	if err != nil {
		return Options{}, err
	}
	audio := preprocess.DefaultAudioOptions()
	audio.SampleRate = cfg.SampleRate
	return Options{
		Iterations:        cfg.Iterations,
		WarmupIterations:  cfg.WarmupIterations,
		StabilityTests:    cfg.StabilityTests,
		StabilitySeed:     cfg.StabilitySeed,
		MemoryIterations:  cfg.MemoryIterations,
		MemorySampleEvery: cfg.MemorySampleEvery,
		Audio:             audio,
		ChannelOrder:      order,
		SamplesDir: map[model.Modality]string{
			model.Image: cfg.ImageSamplesDir,
			model.Audio: cfg.AudioSamplesDir,
		},
		Probe:     memprobe.Default(),
		Decoder:   media.Files{},
		Generator: synth.NewUnseeded(),
		Now:       time.Now,
	}, nil
}

// RuntimeOptions extracts the runtime settings from cfg.
func RuntimeOptions(cfg *config.Config) runtime.Options {
	return runtime.Options{ONNXLibrary: cfg.ONNXRuntimeLibrary, NumThreads: cfg.NumThreads}
}

func (o *Options) fill() {
	if o.Probe == nil {
		o.Probe = memprobe.Noop{}
	}
	if o.Decoder == nil {
		o.Decoder = media.Files{}
	}
	if o.Generator == nil {
		o.Generator = synth.NewUnseeded()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

func (o *Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}
